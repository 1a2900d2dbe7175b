package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Invitation holds everything needed to invite one attendee to a booking.
// Token is the attendee's single-use confirmation token; the dispatcher
// turns it into accept/decline links.
type Invitation struct {
	To            string
	AttendeeName  string
	BookingTitle  string
	Description   string
	RoomName      string
	OrganizerName string
	Start         time.Time
	End           time.Time
	Token         string
}

// Cancellation notifies an attendee that a booking was cancelled.
type Cancellation struct {
	To            string
	BookingTitle  string
	RoomName      string
	OrganizerName string
	Start         time.Time
}

// Dispatcher delivers notifications to attendees. Delivery is best-effort:
// callers never roll back committed work because a notification failed.
type Dispatcher interface {
	SendInvitation(ctx context.Context, inv Invitation) error
	SendCancellation(ctx context.Context, cn Cancellation) error
}

type emailDispatcher struct {
	mailer  Mailer
	baseURL string
	logger  zerolog.Logger
}

// NewEmailDispatcher returns a Dispatcher that renders invitation and
// cancellation emails and sends them through the given Mailer. baseURL is
// the externally reachable app URL used to build confirmation links.
func NewEmailDispatcher(mailer Mailer, baseURL string, logger zerolog.Logger) Dispatcher {
	return &emailDispatcher{
		mailer:  mailer,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (d *emailDispatcher) SendInvitation(ctx context.Context, inv Invitation) error {
	subject, html, text := renderInvitation(d.baseURL, inv)
	if err := d.mailer.Send(inv.To, subject, html, text); err != nil {
		d.logger.Error().Err(err).Str("to", inv.To).Msg("failed to send invitation email")
		return err
	}
	d.logger.Info().Str("to", inv.To).Str("booking", inv.BookingTitle).Msg("invitation email sent")
	return nil
}

func (d *emailDispatcher) SendCancellation(ctx context.Context, cn Cancellation) error {
	subject, html, text := renderCancellation(cn)
	if err := d.mailer.Send(cn.To, subject, html, text); err != nil {
		d.logger.Error().Err(err).Str("to", cn.To).Msg("failed to send cancellation email")
		return err
	}
	d.logger.Info().Str("to", cn.To).Str("booking", cn.BookingTitle).Msg("cancellation email sent")
	return nil
}
