package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, rm *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)

	// ListActive returns all active rooms ordered by name ascending.
	ListActive(ctx context.Context) ([]*Room, error)

	// List returns all rooms (including deactivated ones) ordered by name.
	List(ctx context.Context) ([]*Room, error)

	Update(ctx context.Context, rm *Room) error
	SetActive(ctx context.Context, id string, active bool) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, rm *Room) error {
	const query = `
		INSERT INTO public.rooms (name, capacity, color, resources, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		rm.Name, rm.Capacity, rm.Color, rm.Resources, rm.IsActive,
	).Scan(&rm.ID, &rm.CreatedAt)
	if err != nil {
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	const query = `
		SELECT id, name, capacity, color, resources, is_active, created_at
		FROM public.rooms
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var rm Room
	if err := row.Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Color, &rm.Resources, &rm.IsActive, &rm.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return &rm, nil
}

func (r *pgxRepository) ListActive(ctx context.Context) ([]*Room, error) {
	const query = `
		SELECT id, name, capacity, color, resources, is_active, created_at
		FROM public.rooms
		WHERE is_active = true
		ORDER BY name ASC
	`
	return r.queryRooms(ctx, query)
}

func (r *pgxRepository) List(ctx context.Context) ([]*Room, error) {
	const query = `
		SELECT id, name, capacity, color, resources, is_active, created_at
		FROM public.rooms
		ORDER BY name ASC
	`
	return r.queryRooms(ctx, query)
}

func (r *pgxRepository) queryRooms(ctx context.Context, query string) ([]*Room, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Color, &rm.Resources, &rm.IsActive, &rm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, &rm)
	}
	return rooms, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, rm *Room) error {
	const query = `
		UPDATE public.rooms
		SET name = $1, capacity = $2, color = $3, resources = $4
		WHERE id = $5
	`
	ct, err := r.pool.Exec(ctx, query, rm.Name, rm.Capacity, rm.Color, rm.Resources, rm.ID)
	if err != nil {
		return fmt.Errorf("update room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE public.rooms SET is_active = $1 WHERE id = $2`
	ct, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set room active failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
