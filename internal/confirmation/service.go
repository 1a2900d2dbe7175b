package confirmation

import (
	"context"

	"github.com/roomly/roomly-backend/internal/metrics"
)

// Attendee status values written when a token is consumed. They must match
// the booking module's attendee states.
const (
	statusAccepted = "accepted"
	statusDeclined = "declined"
)

type Service interface {
	// Respond consumes a token exactly once and records the decision.
	// A second call with the same token fails with ErrInvalidToken.
	Respond(ctx context.Context, token string, decision Decision) (*Result, error)

	// Info returns invitation details for a still-valid token.
	Info(ctx context.Context, token string) (*Invite, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Respond(ctx context.Context, token string, decision Decision) (*Result, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var status string
	switch decision {
	case DecisionAccept:
		status = statusAccepted
	case DecisionDecline:
		status = statusDeclined
	default:
		return nil, ErrInvalidDecision
	}

	res, err := s.repo.Consume(ctx, token, status)
	if err != nil {
		return nil, err
	}
	res.Decision = decision

	metrics.IncConfirmation(string(decision))
	return res, nil
}

func (s *service) Info(ctx context.Context, token string) (*Invite, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	return s.repo.GetByToken(ctx, token)
}
