package room

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("room not found")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrInvalidCapacity = errors.New("capacity must be positive")
)

// DefaultColor is used when a room is created without a display color.
const DefaultColor = "#6366F1"

// Room represents a bookable meeting room. Rooms are never deleted so that
// historical bookings keep a valid reference; they are deactivated instead.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Color     string
	Resources []string // equipment names, display only
	IsActive  bool
	CreatedAt time.Time
}
