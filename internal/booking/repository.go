package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomly/roomly-backend/internal/db"
)

type Repository interface {
	// Create inserts a booking and its attendees in one transaction. It
	// takes a row lock on the room and re-checks the slot under that lock,
	// so two concurrent creates for an overlapping interval cannot both
	// commit. Returns ErrTimeConflict when the slot is taken and
	// ErrRoomNotFound when the room row does not exist.
	Create(ctx context.Context, b *Booking) error

	// Update rewrites a booking's mutable fields. When recheck is true the
	// room/interval change is re-validated under the same room lock used by
	// Create, ignoring the booking's own row.
	Update(ctx context.Context, b *Booking, recheck bool) error

	// Cancel moves a scheduled booking to cancelled. Returns ErrNotScheduled
	// if the booking exists but is not scheduled, ErrNotFound otherwise.
	Cancel(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// ListRange returns scheduled bookings starting inside [from, to],
	// ordered by start time. Used by the calendar view.
	ListRange(ctx context.Context, from, to time.Time) ([]*Booking, error)

	// FindConflict returns the first scheduled booking on the room whose
	// interval overlaps [start, end), or nil when the room is free.
	// excludeBookingID is used during updates to ignore the booking itself.
	FindConflict(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// queryRower is satisfied by both *pgxpool.Pool and pgx.Tx, letting the
// conflict check run inside or outside a transaction.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockRoom(ctx, tx, b.RoomID); err != nil {
			return err
		}

		taken, err := slotTaken(ctx, tx, b.RoomID, b.StartTime, b.EndTime, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrTimeConflict
		}

		const insertBooking = `
			INSERT INTO public.bookings (title, description, room_id, organizer_id, start_time, end_time, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`
		err = tx.QueryRow(ctx, insertBooking,
			b.Title, b.Description, b.RoomID, b.OrganizerID, b.StartTime, b.EndTime, b.Status,
		).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}

		const insertAttendee = `
			INSERT INTO public.attendees (booking_id, email, name, status, confirmation_token)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		for _, a := range b.Attendees {
			a.BookingID = b.ID
			if err := tx.QueryRow(ctx, insertAttendee,
				a.BookingID, a.Email, a.Name, a.Status, a.ConfirmationToken,
			).Scan(&a.ID); err != nil {
				return fmt.Errorf("insert attendee failed: %w", err)
			}
		}

		return nil
	})
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking, recheck bool) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if recheck {
			if err := lockRoom(ctx, tx, b.RoomID); err != nil {
				return err
			}
			taken, err := slotTaken(ctx, tx, b.RoomID, b.StartTime, b.EndTime, b.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrTimeConflict
			}
		}

		const query = `
			UPDATE public.bookings
			SET title = $1, description = $2, room_id = $3, start_time = $4, end_time = $5, updated_at = now()
			WHERE id = $6
		`
		ct, err := tx.Exec(ctx, query, b.Title, b.Description, b.RoomID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return fmt.Errorf("update booking failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *pgxRepository) Cancel(ctx context.Context, id string) error {
	const query = `
		UPDATE public.bookings
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status = 'scheduled'
	`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancel booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Either the booking does not exist or it already left scheduled.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNotScheduled
	}
	return nil
}

const bookingColumns = `
	b.id, b.title, b.description, b.room_id, rm.name, rm.color,
	b.organizer_id, COALESCE(u.display_name, u.email), u.email,
	b.start_time, b.end_time, b.status, b.created_at, b.updated_at
`

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM public.bookings b
		JOIN public.rooms rm ON b.room_id = rm.id
		JOIN public.users u ON b.organizer_id = u.id
		WHERE b.id = $1
	`
	b, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	attendees, err := r.listAttendees(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Attendees = attendees
	return b, nil
}

func (r *pgxRepository) listAttendees(ctx context.Context, bookingID string) ([]*Attendee, error) {
	const query = `
		SELECT id, booking_id, email, name, status, confirmation_token
		FROM public.attendees
		WHERE booking_id = $1
		ORDER BY email ASC
	`
	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list attendees failed: %w", err)
	}
	defer rows.Close()

	var attendees []*Attendee
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.ID, &a.BookingID, &a.Email, &a.Name, &a.Status, &a.ConfirmationToken); err != nil {
			return nil, fmt.Errorf("scan attendee failed: %w", err)
		}
		attendees = append(attendees, &a)
	}
	return attendees, rows.Err()
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.title", "b.description", "b.room_id", "rm.name", "rm.color",
		"b.organizer_id", "COALESCE(u.display_name, u.email)", "u.email",
		"b.start_time", "b.end_time", "b.status", "b.created_at", "b.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.bookings b").
		Join("public.rooms rm ON b.room_id = rm.id").
		Join("public.users u ON b.organizer_id = u.id")

	if filter.OrganizerID != "" {
		query = query.Where(squirrel.Eq{"b.organizer_id": filter.OrganizerID})
	}
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	// Date range filtering (intersection logic)
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"b.end_time": filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"b.start_time": filter.To})
	}

	query = query.OrderBy("b.start_time ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Description, &b.RoomID, &b.RoomName, &b.RoomColor,
			&b.OrganizerID, &b.OrganizerName, &b.OrganizerEmail,
			&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *pgxRepository) ListRange(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM public.bookings b
		JOIN public.rooms rm ON b.room_id = rm.id
		JOIN public.users u ON b.organizer_id = u.id
		WHERE b.status = 'scheduled'
		  AND b.start_time >= $1
		  AND b.start_time <= $2
		ORDER BY b.start_time ASC
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings in range failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Description, &b.RoomID, &b.RoomName, &b.RoomColor,
			&b.OrganizerID, &b.OrganizerName, &b.OrganizerEmail,
			&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

func (r *pgxRepository) FindConflict(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.title", "b.description", "b.room_id", "rm.name", "rm.color",
		"b.organizer_id", "COALESCE(u.display_name, u.email)", "u.email",
		"b.start_time", "b.end_time", "b.status", "b.created_at", "b.updated_at",
	).
		From("public.bookings b").
		Join("public.rooms rm ON b.room_id = rm.id").
		Join("public.users u ON b.organizer_id = u.id").
		Where(squirrel.Eq{"b.room_id": roomID}).
		Where(squirrel.Eq{"b.status": StatusScheduled}).
		Where(squirrel.Lt{"b.start_time": end}).
		Where(squirrel.Gt{"b.end_time": start}).
		OrderBy("b.start_time ASC").
		Limit(1)

	if excludeBookingID != "" {
		query = query.Where(squirrel.NotEq{"b.id": excludeBookingID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find conflict query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// lockRoom takes a row lock on the room for the rest of the transaction,
// serializing conflicting writers per room.
func lockRoom(ctx context.Context, tx pgx.Tx, roomID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM public.rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("lock room failed: %w", err)
	}
	return nil
}

// slotTaken checks for an overlapping scheduled booking. Overlap condition:
// existing.start < new.end AND existing.end > new.start (half-open intervals).
func slotTaken(ctx context.Context, q queryRower, roomID string, start, end time.Time, excludeBookingID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.Eq{"status": StatusScheduled}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start})

	if excludeBookingID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeBookingID})
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.Title, &b.Description, &b.RoomID, &b.RoomName, &b.RoomColor,
		&b.OrganizerID, &b.OrganizerName, &b.OrganizerEmail,
		&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}
