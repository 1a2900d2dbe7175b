package room

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name      string
	Capacity  int
	Color     string
	Resources []string
}

type UpdateRequest struct {
	Name      *string
	Capacity  *int
	Color     *string
	Resources *[]string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	ListActive(ctx context.Context) ([]*Room, error)
	List(ctx context.Context) ([]*Room, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Room, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if req.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	color := req.Color
	if color == "" {
		color = DefaultColor
	}

	resources := req.Resources
	if resources == nil {
		resources = []string{}
	}

	rm := &Room{
		Name:      strings.TrimSpace(req.Name),
		Capacity:  req.Capacity,
		Color:     color,
		Resources: resources,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListActive(ctx context.Context) ([]*Room, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) List(ctx context.Context) ([]*Room, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		rm.Name = strings.TrimSpace(*req.Name)
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, ErrInvalidCapacity
		}
		rm.Capacity = *req.Capacity
	}
	if req.Color != nil && *req.Color != "" {
		rm.Color = *req.Color
	}
	if req.Resources != nil {
		rm.Resources = *req.Resources
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

// Deactivate takes the room out of the bookable pool. Existing bookings keep
// their room reference; rooms are never physically deleted.
func (s *service) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, false)
}
