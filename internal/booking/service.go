package booking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomly/roomly-backend/internal/confirmation"
	"github.com/roomly/roomly-backend/internal/metrics"
	"github.com/roomly/roomly-backend/internal/notification"
	"github.com/roomly/roomly-backend/internal/room"
)

// notifyTimeout bounds each fire-and-forget notification send.
const notifyTimeout = 15 * time.Second

type AttendeeInput struct {
	Email string
	Name  *string
}

type CreateRequest struct {
	OrganizerID string
	Title       string
	Description *string
	RoomID      string
	StartTime   time.Time
	EndTime     time.Time
	Attendees   []AttendeeInput
}

type UpdateRequest struct {
	Title       *string
	Description *string
	RoomID      *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// Availability is the result of a read-only slot check. AvailableRooms is
// only populated when the slot is taken; it is advisory and re-validated at
// actual booking time.
type Availability struct {
	Available      bool
	Conflict       *Booking
	AvailableRooms []*room.Room
}

type Service interface {
	// Create books the room if the slot is free, minting one pending
	// attendee with a confirmation token per invited email. On a taken slot
	// it returns a *ConflictError carrying the conflicting booking and the
	// rooms still free for the interval.
	Create(ctx context.Context, req CreateRequest) (*Booking, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Calendar returns scheduled bookings starting within [from, to].
	Calendar(ctx context.Context, from, to time.Time) ([]*Booking, error)

	CheckAvailability(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (*Availability, error)

	// Update mutates a scheduled booking; organizer only. Room or interval
	// changes re-validate availability excluding the booking's own id.
	Update(ctx context.Context, id string, req UpdateRequest, updaterUserID string) (*Booking, error)

	// Cancel moves a scheduled booking to cancelled; organizer only.
	Cancel(ctx context.Context, id string, userID string) error
}

type service struct {
	repo        Repository
	roomService room.Service
	dispatcher  notification.Dispatcher
	logger      zerolog.Logger
}

func NewService(repo Repository, roomService room.Service, dispatcher notification.Dispatcher, logger zerolog.Logger) Service {
	return &service{
		repo:        repo,
		roomService: roomService,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	rm, err := s.roomService.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !rm.IsActive {
		return nil, ErrRoomInactive
	}

	attendees := make([]*Attendee, 0, len(req.Attendees))
	for _, in := range req.Attendees {
		token, err := confirmation.NewToken()
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, &Attendee{
			Email:             in.Email,
			Name:              in.Name,
			Status:            AttendeePending,
			ConfirmationToken: &token,
		})
	}

	b := &Booking{
		Title:       req.Title,
		Description: req.Description,
		RoomID:      req.RoomID,
		OrganizerID: req.OrganizerID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      StatusScheduled,
		Attendees:   attendees,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, ErrTimeConflict) {
			metrics.IncBookingConflict()
			return nil, s.conflictError(ctx, req.RoomID, req.StartTime, req.EndTime, "")
		}
		return nil, err
	}

	b.RoomName = rm.Name
	b.RoomColor = rm.Color

	metrics.IncBookingCreated()

	// The booking is committed; invitation delivery is best-effort and must
	// never undo it.
	go s.sendInvitations(b, rm)

	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Calendar(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	if !from.Before(to) {
		return nil, ErrInvalidTimeRange
	}
	return s.repo.ListRange(ctx, from, to)
}

func (s *service) CheckAvailability(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (*Availability, error) {
	if !start.Before(end) {
		return nil, ErrInvalidTimeRange
	}

	conflict, err := s.repo.FindConflict(ctx, roomID, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}
	if conflict == nil {
		return &Availability{Available: true}, nil
	}

	alternatives, err := s.availableRooms(ctx, start, end, roomID)
	if err != nil {
		return nil, err
	}

	return &Availability{
		Available:      false,
		Conflict:       conflict,
		AvailableRooms: alternatives,
	}, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, updaterUserID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.OrganizerID != updaterUserID {
		return nil, ErrPermissionDenied
	}
	if b.Status != StatusScheduled {
		return nil, ErrNotScheduled
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Description != nil {
		b.Description = req.Description
	}

	roomChanged := false
	if req.RoomID != nil && *req.RoomID != b.RoomID {
		rm, err := s.roomService.GetByID(ctx, *req.RoomID)
		if err != nil {
			if errors.Is(err, room.ErrNotFound) {
				return nil, ErrRoomNotFound
			}
			return nil, err
		}
		if !rm.IsActive {
			return nil, ErrRoomInactive
		}
		b.RoomID = rm.ID
		b.RoomName = rm.Name
		b.RoomColor = rm.Color
		roomChanged = true
	}

	timeChanged := false
	if req.StartTime != nil {
		b.StartTime = *req.StartTime
		timeChanged = true
	}
	if req.EndTime != nil {
		b.EndTime = *req.EndTime
		timeChanged = true
	}
	if timeChanged && !b.StartTime.Before(b.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	recheck := roomChanged || timeChanged
	if err := s.repo.Update(ctx, b, recheck); err != nil {
		if errors.Is(err, ErrTimeConflict) {
			metrics.IncBookingConflict()
			return nil, s.conflictError(ctx, b.RoomID, b.StartTime, b.EndTime, b.ID)
		}
		return nil, err
	}

	return b, nil
}

func (s *service) Cancel(ctx context.Context, id string, userID string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if b.OrganizerID != userID {
		return ErrPermissionDenied
	}

	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}

	metrics.IncBookingCancelled()

	go s.sendCancellations(b)

	return nil
}

// conflictError assembles the structured rejection: the conflicting booking
// plus the rooms still free for the interval. The detail queries run outside
// the failed transaction; suggestions are advisory by design.
func (s *service) conflictError(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) error {
	conflict, err := s.repo.FindConflict(ctx, roomID, start, end, excludeBookingID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load conflicting booking for rejection detail")
	}

	alternatives, err := s.availableRooms(ctx, start, end, roomID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list alternative rooms for rejection detail")
	}

	return &ConflictError{
		Conflict:     conflict,
		Alternatives: alternatives,
	}
}

// availableRooms scans all active rooms and keeps those with no overlapping
// scheduled booking. Rooms come back ordered by name, so the result is
// deterministic.
func (s *service) availableRooms(ctx context.Context, start, end time.Time, excludeRoomID string) ([]*room.Room, error) {
	rooms, err := s.roomService.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*room.Room, 0, len(rooms))
	for _, rm := range rooms {
		if rm.ID == excludeRoomID {
			continue
		}
		conflict, err := s.repo.FindConflict(ctx, rm.ID, start, end, "")
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			available = append(available, rm)
		}
	}
	return available, nil
}

func (s *service) sendInvitations(b *Booking, rm *room.Room) {
	for _, a := range b.Attendees {
		if a.ConfirmationToken == nil {
			continue
		}

		inv := notification.Invitation{
			To:            a.Email,
			BookingTitle:  b.Title,
			RoomName:      rm.Name,
			OrganizerName: b.OrganizerName,
			Start:         b.StartTime,
			End:           b.EndTime,
			Token:         *a.ConfirmationToken,
		}
		if a.Name != nil {
			inv.AttendeeName = *a.Name
		}
		if b.Description != nil {
			inv.Description = *b.Description
		}

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		if err := s.dispatcher.SendInvitation(ctx, inv); err != nil {
			s.logger.Warn().Err(err).Str("attendee", a.Email).Msg("invitation delivery failed")
		}
		cancel()
	}
}

func (s *service) sendCancellations(b *Booking) {
	for _, a := range b.Attendees {
		cn := notification.Cancellation{
			To:            a.Email,
			BookingTitle:  b.Title,
			RoomName:      b.RoomName,
			OrganizerName: b.OrganizerName,
			Start:         b.StartTime,
		}

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		if err := s.dispatcher.SendCancellation(ctx, cn); err != nil {
			s.logger.Warn().Err(err).Str("attendee", a.Email).Msg("cancellation notice delivery failed")
		}
		cancel()
	}
}
