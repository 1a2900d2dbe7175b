package confirmation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Consume atomically records the decision and clears the token. The
	// conditional UPDATE on confirmation_token guarantees that of two
	// concurrent requests with the same token exactly one succeeds.
	Consume(ctx context.Context, token string, status string) (*Result, error)

	// GetByToken resolves a still-valid token to its invitation details.
	GetByToken(ctx context.Context, token string) (*Invite, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Consume(ctx context.Context, token string, status string) (*Result, error) {
	const query = `
		WITH consumed AS (
			UPDATE public.attendees
			SET status = $1, confirmation_token = NULL
			WHERE confirmation_token = $2
			RETURNING booking_id, email
		)
		SELECT c.email, b.title
		FROM consumed c
		JOIN public.bookings b ON b.id = c.booking_id
	`
	var res Result
	err := r.pool.QueryRow(ctx, query, status, token).Scan(&res.AttendeeEmail, &res.BookingTitle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("consume confirmation token failed: %w", err)
	}
	return &res, nil
}

func (r *pgxRepository) GetByToken(ctx context.Context, token string) (*Invite, error) {
	const query = `
		SELECT b.title, rm.name, COALESCE(u.display_name, u.email), a.email, b.start_time, b.end_time
		FROM public.attendees a
		JOIN public.bookings b ON b.id = a.booking_id
		JOIN public.rooms rm ON rm.id = b.room_id
		JOIN public.users u ON u.id = b.organizer_id
		WHERE a.confirmation_token = $1
	`
	var inv Invite
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&inv.BookingTitle, &inv.RoomName, &inv.OrganizerName,
		&inv.AttendeeEmail, &inv.Start, &inv.End,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get invitation by token failed: %w", err)
	}
	return &inv, nil
}
