package booking

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomly/roomly-backend/internal/notification"
	"github.com/roomly/roomly-backend/internal/room"
)

// fakeRepository is an in-memory Repository with the same locking contract
// as the pgx implementation: the slot check and the insert happen under one
// lock, so concurrent creates for the same slot serialize.
type fakeRepository struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	order    []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{bookings: map[string]*Booking{}}
}

func (r *fakeRepository) findOverlap(roomID string, start, end time.Time, excludeID string) *Booking {
	for _, id := range r.order {
		b := r.bookings[id]
		if b.RoomID != roomID || b.Status != StatusScheduled || b.ID == excludeID {
			continue
		}
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			return b
		}
	}
	return nil
}

func (r *fakeRepository) Create(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findOverlap(b.RoomID, b.StartTime, b.EndTime, "") != nil {
		return ErrTimeConflict
	}

	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	for _, a := range b.Attendees {
		a.ID = uuid.NewString()
		a.BookingID = b.ID
	}
	r.bookings[b.ID] = b
	r.order = append(r.order, b.ID)
	return nil
}

func (r *fakeRepository) Update(ctx context.Context, b *Booking, recheck bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	if recheck && r.findOverlap(b.RoomID, b.StartTime, b.EndTime, b.ID) != nil {
		return ErrTimeConflict
	}
	b.UpdatedAt = time.Now()
	r.bookings[b.ID] = b
	return nil
}

func (r *fakeRepository) Cancel(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if b.Status != StatusScheduled {
		return ErrNotScheduled
	}
	b.Status = StatusCancelled
	return nil
}

func (r *fakeRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, id := range r.order {
		b := r.bookings[id]
		if filter.OrganizerID != "" && b.OrganizerID != filter.OrganizerID {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *fakeRepository) ListRange(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, id := range r.order {
		b := r.bookings[id]
		if b.Status != StatusScheduled {
			continue
		}
		if b.StartTime.Before(from) || b.StartTime.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeRepository) FindConflict(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b := r.findOverlap(roomID, start, end, excludeBookingID); b != nil {
		copied := *b
		return &copied, nil
	}
	return nil, nil
}

// fakeRoomService serves rooms from a fixed slice, pre-sorted by name the
// way the real repository returns them.
type fakeRoomService struct {
	rooms []*room.Room
}

func (s *fakeRoomService) GetByID(ctx context.Context, id string) (*room.Room, error) {
	for _, rm := range s.rooms {
		if rm.ID == id {
			return rm, nil
		}
	}
	return nil, room.ErrNotFound
}

func (s *fakeRoomService) ListActive(ctx context.Context) ([]*room.Room, error) {
	var out []*room.Room
	for _, rm := range s.rooms {
		if rm.IsActive {
			out = append(out, rm)
		}
	}
	return out, nil
}

func (s *fakeRoomService) List(ctx context.Context) ([]*room.Room, error) {
	return s.rooms, nil
}

func (s *fakeRoomService) Create(ctx context.Context, req room.CreateRequest) (*room.Room, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeRoomService) Update(ctx context.Context, id string, req room.UpdateRequest) (*room.Room, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeRoomService) Deactivate(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

type fakeDispatcher struct {
	mu            sync.Mutex
	invitations   []notification.Invitation
	cancellations []notification.Cancellation
}

func (d *fakeDispatcher) SendInvitation(ctx context.Context, inv notification.Invitation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invitations = append(d.invitations, inv)
	return nil
}

func (d *fakeDispatcher) SendCancellation(ctx context.Context, cn notification.Cancellation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancellations = append(d.cancellations, cn)
	return nil
}

func testRooms() []*room.Room {
	return []*room.Room{
		{ID: "room-a", Name: "Aurora", Capacity: 4, Color: "#6366F1", IsActive: true},
		{ID: "room-b", Name: "Borealis", Capacity: 8, Color: "#22C55E", IsActive: true},
		{ID: "room-c", Name: "Cascade", Capacity: 12, Color: "#F97316", IsActive: true},
		{ID: "room-d", Name: "Dormant", Capacity: 6, Color: "#6366F1", IsActive: false},
	}
}

func newTestService(repo Repository, rooms []*room.Room) Service {
	return NewService(repo, &fakeRoomService{rooms: rooms}, &fakeDispatcher{}, zerolog.Nop())
}

func slot(h int) (time.Time, time.Time) {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(h) * time.Hour), base.Add(time.Duration(h+1) * time.Hour)
}

func createReq(roomID string, start, end time.Time) CreateRequest {
	return CreateRequest{
		OrganizerID: "user-1",
		Title:       "Sprint planning",
		RoomID:      roomID,
		StartTime:   start,
		EndTime:     end,
	}
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	start, end := slot(10)

	t.Run("success mints pending attendees with unique tokens", func(t *testing.T) {
		svc := newTestService(newFakeRepository(), testRooms())

		name := "Ada"
		req := createReq("room-a", start, end)
		req.Attendees = []AttendeeInput{
			{Email: "ada@example.com", Name: &name},
			{Email: "grace@example.com"},
		}

		b, err := svc.Create(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, b.ID)
		assert.Equal(t, StatusScheduled, b.Status)
		assert.Equal(t, "Aurora", b.RoomName)

		require.Len(t, b.Attendees, 2)
		seen := map[string]bool{}
		for _, a := range b.Attendees {
			assert.Equal(t, AttendeePending, a.Status)
			require.NotNil(t, a.ConfirmationToken)
			assert.False(t, seen[*a.ConfirmationToken], "tokens must be unique")
			seen[*a.ConfirmationToken] = true

			raw, err := base64.RawURLEncoding.DecodeString(*a.ConfirmationToken)
			require.NoError(t, err, "token must be URL-safe base64")
			assert.GreaterOrEqual(t, len(raw), 32, "token must carry at least 256 bits")
		}
	})

	t.Run("start must be before end", func(t *testing.T) {
		svc := newTestService(newFakeRepository(), testRooms())

		_, err := svc.Create(ctx, createReq("room-a", start, start))
		assert.ErrorIs(t, err, ErrInvalidTimeRange)

		_, err = svc.Create(ctx, createReq("room-a", end, start))
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("unknown room", func(t *testing.T) {
		svc := newTestService(newFakeRepository(), testRooms())

		_, err := svc.Create(ctx, createReq("room-nope", start, end))
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("inactive room", func(t *testing.T) {
		svc := newTestService(newFakeRepository(), testRooms())

		_, err := svc.Create(ctx, createReq("room-d", start, end))
		assert.ErrorIs(t, err, ErrRoomInactive)
	})

	t.Run("back to back bookings do not conflict", func(t *testing.T) {
		svc := newTestService(newFakeRepository(), testRooms())

		_, err := svc.Create(ctx, createReq("room-a", start, end))
		require.NoError(t, err)

		before, _ := slot(9)
		_, err = svc.Create(ctx, createReq("room-a", before, start))
		assert.NoError(t, err, "booking ending at another's start must succeed")

		_, later := slot(11)
		_, err = svc.Create(ctx, createReq("room-a", end, later))
		assert.NoError(t, err, "booking starting at another's end must succeed")
	})

	t.Run("conflict carries detail and alternatives", func(t *testing.T) {
		svc := newTestService(newFakeRepository(), testRooms())

		first, err := svc.Create(ctx, createReq("room-b", start, end))
		require.NoError(t, err)

		_, err = svc.Create(ctx, createReq("room-b", start.Add(30*time.Minute), end.Add(30*time.Minute)))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTimeConflict)

		var ce *ConflictError
		require.ErrorAs(t, err, &ce)
		require.NotNil(t, ce.Conflict)
		assert.Equal(t, first.ID, ce.Conflict.ID)

		// Alternatives are the active rooms still free for the interval,
		// name-ordered, never including the contested room.
		require.Len(t, ce.Alternatives, 2)
		assert.Equal(t, "Aurora", ce.Alternatives[0].Name)
		assert.Equal(t, "Cascade", ce.Alternatives[1].Name)
	})

	t.Run("occupied alternatives are filtered out", func(t *testing.T) {
		svc := newTestService(newFakeRepository(), testRooms())

		_, err := svc.Create(ctx, createReq("room-a", start, end))
		require.NoError(t, err)
		_, err = svc.Create(ctx, createReq("room-b", start, end))
		require.NoError(t, err)

		_, err = svc.Create(ctx, createReq("room-a", start, end))
		var ce *ConflictError
		require.ErrorAs(t, err, &ce)
		require.Len(t, ce.Alternatives, 1)
		assert.Equal(t, "Cascade", ce.Alternatives[0].Name)
	})
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	ctx := context.Background()
	start, end := slot(14)
	svc := newTestService(newFakeRepository(), testRooms())

	const workers = 16

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, createReq("room-a", start, end))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrTimeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one concurrent create must win")
	assert.Equal(t, workers-1, conflicts)
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()
	start, end := slot(10)

	setup := func(t *testing.T) (Service, *Booking) {
		svc := newTestService(newFakeRepository(), testRooms())
		b, err := svc.Create(ctx, createReq("room-a", start, end))
		require.NoError(t, err)
		return svc, b
	}

	t.Run("organizer only", func(t *testing.T) {
		svc, b := setup(t)

		title := "Renamed"
		_, err := svc.Update(ctx, b.ID, UpdateRequest{Title: &title}, "someone-else")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("shifting within own slot is not a self-conflict", func(t *testing.T) {
		svc, b := setup(t)

		newStart := start.Add(15 * time.Minute)
		updated, err := svc.Update(ctx, b.ID, UpdateRequest{StartTime: &newStart}, "user-1")
		require.NoError(t, err)
		assert.Equal(t, newStart, updated.StartTime)
	})

	t.Run("moving onto another booking conflicts", func(t *testing.T) {
		svc, b := setup(t)

		otherStart, otherEnd := slot(12)
		_, err := svc.Create(ctx, createReq("room-a", otherStart, otherEnd))
		require.NoError(t, err)

		newStart := otherStart.Add(10 * time.Minute)
		newEnd := otherEnd
		_, err = svc.Update(ctx, b.ID, UpdateRequest{StartTime: &newStart, EndTime: &newEnd}, "user-1")
		assert.ErrorIs(t, err, ErrTimeConflict)

		var ce *ConflictError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("room change validates target room", func(t *testing.T) {
		svc, b := setup(t)

		inactive := "room-d"
		_, err := svc.Update(ctx, b.ID, UpdateRequest{RoomID: &inactive}, "user-1")
		assert.ErrorIs(t, err, ErrRoomInactive)

		missing := "room-nope"
		_, err = svc.Update(ctx, b.ID, UpdateRequest{RoomID: &missing}, "user-1")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("cancelled bookings are frozen", func(t *testing.T) {
		svc, b := setup(t)
		require.NoError(t, svc.Cancel(ctx, b.ID, "user-1"))

		title := "Too late"
		_, err := svc.Update(ctx, b.ID, UpdateRequest{Title: &title}, "user-1")
		assert.ErrorIs(t, err, ErrNotScheduled)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	start, end := slot(10)

	svc := newTestService(newFakeRepository(), testRooms())
	b, err := svc.Create(ctx, createReq("room-a", start, end))
	require.NoError(t, err)

	t.Run("organizer only", func(t *testing.T) {
		err := svc.Cancel(ctx, b.ID, "someone-else")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("cancel frees the slot", func(t *testing.T) {
		require.NoError(t, svc.Cancel(ctx, b.ID, "user-1"))

		got, err := svc.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)

		_, err = svc.Create(ctx, createReq("room-a", start, end))
		assert.NoError(t, err, "cancelled bookings must not block the slot")
	})

	t.Run("cancel is not repeatable", func(t *testing.T) {
		err := svc.Cancel(ctx, b.ID, "user-1")
		assert.ErrorIs(t, err, ErrNotScheduled)
	})

	t.Run("unknown booking", func(t *testing.T) {
		err := svc.Cancel(ctx, uuid.NewString(), "user-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	start, end := slot(10)

	svc := newTestService(newFakeRepository(), testRooms())
	b, err := svc.Create(ctx, createReq("room-a", start, end))
	require.NoError(t, err)

	t.Run("free slot", func(t *testing.T) {
		laterStart, laterEnd := slot(15)
		av, err := svc.CheckAvailability(ctx, "room-a", laterStart, laterEnd, "")
		require.NoError(t, err)
		assert.True(t, av.Available)
		assert.Nil(t, av.Conflict)
	})

	t.Run("taken slot reports conflict and alternatives", func(t *testing.T) {
		av, err := svc.CheckAvailability(ctx, "room-a", start, end, "")
		require.NoError(t, err)
		assert.False(t, av.Available)
		require.NotNil(t, av.Conflict)
		assert.Equal(t, b.ID, av.Conflict.ID)
		require.Len(t, av.AvailableRooms, 2)
		assert.Equal(t, "Borealis", av.AvailableRooms[0].Name)
	})

	t.Run("excluding own booking", func(t *testing.T) {
		av, err := svc.CheckAvailability(ctx, "room-a", start, end, b.ID)
		require.NoError(t, err)
		assert.True(t, av.Available, "a booking never conflicts with itself")
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := svc.CheckAvailability(ctx, "room-a", end, start, "")
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
}

func TestCalendar(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepository(), testRooms())

	s1, e1 := slot(9)
	s2, e2 := slot(13)
	_, err := svc.Create(ctx, createReq("room-a", s1, e1))
	require.NoError(t, err)
	cancelled, err := svc.Create(ctx, createReq("room-b", s2, e2))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, cancelled.ID, "user-1"))

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	events, err := svc.Calendar(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1, "cancelled bookings stay off the calendar")
	assert.Equal(t, s1, events[0].StartTime)

	_, err = svc.Calendar(ctx, day, day)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}
