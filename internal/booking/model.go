package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/roomly/roomly-backend/internal/pkg/apperror"
	"github.com/roomly/roomly-backend/internal/room"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "room already booked for this time slot")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrRoomNotFound     = apperror.New(http.StatusNotFound, "room not found")
	ErrRoomInactive     = apperror.New(http.StatusBadRequest, "room is not active")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "only the organizer may modify this booking")
	ErrNotScheduled     = apperror.New(http.StatusBadRequest, "booking is no longer scheduled")
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type AttendeeStatus string

const (
	AttendeePending  AttendeeStatus = "pending"
	AttendeeAccepted AttendeeStatus = "accepted"
	AttendeeDeclined AttendeeStatus = "declined"
)

// Booking is a scheduled use of a room for a half-open interval
// [StartTime, EndTime). While Status is scheduled, no two bookings for the
// same room may overlap.
type Booking struct {
	ID             string
	Title          string
	Description    *string
	RoomID         string
	RoomName       string
	RoomColor      string
	OrganizerID    string
	OrganizerName  string
	OrganizerEmail string
	StartTime      time.Time
	EndTime        time.Time
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Attendees      []*Attendee
}

// Attendee is a person invited to a booking. The confirmation token is a
// single-use credential: it is cleared the moment the status leaves pending.
type Attendee struct {
	ID                string
	BookingID         string
	Email             string
	Name              *string
	Status            AttendeeStatus
	ConfirmationToken *string
}

// ConflictError is returned when a requested slot is taken. It is an
// expected business outcome, not a failure: it carries the conflicting
// booking and the rooms still free for the same interval.
type ConflictError struct {
	Conflict     *Booking
	Alternatives []*room.Room
}

func (e *ConflictError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("room already booked for this time slot by %q", e.Conflict.Title)
	}
	return "room already booked for this time slot"
}

// Unwrap lets errors.Is(err, ErrTimeConflict) match a ConflictError.
func (e *ConflictError) Unwrap() error {
	return ErrTimeConflict
}

// Filter defines parameters for listing bookings.
type Filter struct {
	OrganizerID string
	RoomID      string
	Status      string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}
