package http

import (
	"time"

	"github.com/roomly/roomly-backend/internal/confirmation"
)

// RespondRequest is the payload of the public confirmation endpoint.
type RespondRequest struct {
	Token    string `json:"token" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=accept decline"`
}

type RespondResponse struct {
	Message      string `json:"message"`
	MeetingTitle string `json:"meeting_title"`
	Decision     string `json:"decision"`
}

func NewRespondResponse(res *confirmation.Result) RespondResponse {
	msg := "Your response has been recorded."
	return RespondResponse{
		Message:      msg,
		MeetingTitle: res.BookingTitle,
		Decision:     string(res.Decision),
	}
}

type InviteResponse struct {
	MeetingTitle  string    `json:"meeting_title"`
	RoomName      string    `json:"room_name"`
	OrganizerName string    `json:"organizer_name"`
	AttendeeEmail string    `json:"participant_email"`
	Start         time.Time `json:"start_time"`
	End           time.Time `json:"end_time"`
}

func NewInviteResponse(inv *confirmation.Invite) InviteResponse {
	return InviteResponse{
		MeetingTitle:  inv.BookingTitle,
		RoomName:      inv.RoomName,
		OrganizerName: inv.OrganizerName,
		AttendeeEmail: inv.AttendeeEmail,
		Start:         inv.Start,
		End:           inv.End,
	}
}
