package http

import (
	"time"

	"github.com/roomly/roomly-backend/internal/booking"
	"github.com/roomly/roomly-backend/internal/pkg/request"
	"github.com/roomly/roomly-backend/internal/room"
	roomHttp "github.com/roomly/roomly-backend/internal/room/http"
	userHttp "github.com/roomly/roomly-backend/internal/user/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	RoomID        string     `form:"room_id" binding:"omitempty,uuid"`
	Status        string     `form:"status" binding:"omitempty,oneof=scheduled cancelled completed"`
	StartTimeFrom *time.Time `form:"start_time_from" time_format:"2006-01-02T15:04:05Z07:00"`
	StartTimeTo   *time.Time `form:"start_time_to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.StartTimeFrom != nil && r.StartTimeTo != nil {
		if r.StartTimeFrom.After(*r.StartTimeTo) {
			return booking.ErrInvalidTimeRange
		}
	}
	return nil
}

type AttendeeBody struct {
	Email string  `json:"email" binding:"required,email"`
	Name  *string `json:"name"`
}

type AttendeeResponse struct {
	Email  string  `json:"email"`
	Name   *string `json:"name"`
	Status string  `json:"status"`
}

type BookingResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Room        roomHttp.RoomTag   `json:"room"`
	Organizer   userHttp.UserTag   `json:"organizer"`
	Attendees   []AttendeeResponse `json:"attendees"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	attendees := make([]AttendeeResponse, 0, len(b.Attendees))
	for _, a := range b.Attendees {
		attendees = append(attendees, AttendeeResponse{
			Email:  a.Email,
			Name:   a.Name,
			Status: string(a.Status),
		})
	}

	return BookingResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Room:        roomHttp.RoomTag{ID: b.RoomID, Name: b.RoomName, Color: b.RoomColor},
		Organizer:   userHttp.UserTag{ID: b.OrganizerID, Name: b.OrganizerName},
		Attendees:   attendees,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description *string        `json:"description"`
	RoomID      string         `json:"room_id" binding:"required,uuid"`
	Attendees   []AttendeeBody `json:"attendees" binding:"omitempty,dive"`
	StartTime   time.Time      `json:"start_time" binding:"required"`
	EndTime     time.Time      `json:"end_time" binding:"required"`
}

// Validate performs custom validation for CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	if !r.StartTime.Before(r.EndTime) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

type UpdateBookingRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	RoomID      *string    `json:"room_id" binding:"omitempty,uuid"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// Validate performs custom validation for UpdateBookingRequest.
func (r *UpdateBookingRequest) Validate() error {
	if r.StartTime != nil && r.EndTime != nil {
		if !r.StartTime.Before(*r.EndTime) {
			return booking.ErrInvalidTimeRange
		}
	}
	return nil
}

// AlternativeRoom describes a room still free for the rejected interval.
type AlternativeRoom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Color    string `json:"color"`
}

func newAlternativeRooms(rooms []*room.Room) []AlternativeRoom {
	out := make([]AlternativeRoom, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, AlternativeRoom{
			ID:       rm.ID,
			Name:     rm.Name,
			Capacity: rm.Capacity,
			Color:    rm.Color,
		})
	}
	return out
}

// ConflictSummary is the minimal detail exposed about the booking that
// occupies a requested slot.
type ConflictSummary struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Organizer string    `json:"organizer"`
}

// ConflictResponse is the 409 payload for a rejected booking.
type ConflictResponse struct {
	Error          string            `json:"error"`
	Conflict       *ConflictSummary  `json:"conflict,omitempty"`
	AvailableRooms []AlternativeRoom `json:"available_rooms"`
}

func NewConflictResponse(ce *booking.ConflictError) ConflictResponse {
	resp := ConflictResponse{
		Error:          ce.Error(),
		AvailableRooms: newAlternativeRooms(ce.Alternatives),
	}
	if ce.Conflict != nil {
		resp.Conflict = &ConflictSummary{
			Title:     ce.Conflict.Title,
			StartTime: ce.Conflict.StartTime,
			EndTime:   ce.Conflict.EndTime,
			Organizer: ce.Conflict.OrganizerName,
		}
	}
	return resp
}

// CheckAvailabilityRequest defines query parameters for the availability probe.
type CheckAvailabilityRequest struct {
	RoomID    string    `form:"room_id" binding:"required,uuid"`
	Start     time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End       time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	BookingID string    `form:"booking_id" binding:"omitempty,uuid"`
}

type AvailabilityResponse struct {
	IsAvailable    bool              `json:"is_available"`
	RoomID         string            `json:"room_id"`
	Conflict       *ConflictSummary  `json:"conflict,omitempty"`
	AvailableRooms []AlternativeRoom `json:"available_rooms,omitempty"`
}

// CalendarRequest defines query parameters for the calendar view.
type CalendarRequest struct {
	Start time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End   time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CalendarEvent is one entry in the calendar view.
type CalendarEvent struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	RoomID        string    `json:"room_id"`
	RoomName      string    `json:"room_name"`
	RoomColor     string    `json:"room_color"`
	OrganizerName string    `json:"organizer_name"`
	IsOwnMeeting  bool      `json:"is_own_meeting"`
}
