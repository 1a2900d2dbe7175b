package confirmation

import (
	"net/http"
	"time"

	"github.com/roomly/roomly-backend/internal/pkg/apperror"
)

var (
	// ErrInvalidToken deliberately covers both "never issued" and "already
	// consumed" so that callers cannot probe token state.
	ErrInvalidToken = apperror.New(http.StatusBadRequest, "invalid or already used token")

	ErrInvalidDecision = apperror.New(http.StatusBadRequest, "decision must be accept or decline")
)

// Decision is an attendee's answer to an invitation.
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// Result echoes what was recorded when a token is consumed.
type Result struct {
	BookingTitle  string
	AttendeeEmail string
	Decision      Decision
}

// Invite describes the invitation behind a still-valid token, shown on the
// public respond page before the attendee picks a decision.
type Invite struct {
	BookingTitle  string
	RoomName      string
	OrganizerName string
	AttendeeEmail string
	Start         time.Time
	End           time.Time
}
