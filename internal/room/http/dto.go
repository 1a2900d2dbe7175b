package http

import (
	"github.com/roomly/roomly-backend/internal/room"
)

type RoomResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Color     string   `json:"color"`
	Resources []string `json:"resources"`
	IsActive  bool     `json:"is_active"`
}

// RoomTag is a brief representation of a room used inside other responses.
type RoomTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func NewRoomResponse(rm *room.Room) RoomResponse {
	resources := rm.Resources
	if resources == nil {
		resources = []string{}
	}
	return RoomResponse{
		ID:        rm.ID,
		Name:      rm.Name,
		Capacity:  rm.Capacity,
		Color:     rm.Color,
		Resources: resources,
		IsActive:  rm.IsActive,
	}
}

type CreateRoomRequest struct {
	Name      string   `json:"name" binding:"required"`
	Capacity  int      `json:"capacity" binding:"required,min=1"`
	Color     string   `json:"color" binding:"omitempty,hexcolor"`
	Resources []string `json:"resources"`
}

type UpdateRoomRequest struct {
	Name      *string   `json:"name"`
	Capacity  *int      `json:"capacity" binding:"omitempty,min=1"`
	Color     *string   `json:"color" binding:"omitempty,hexcolor"`
	Resources *[]string `json:"resources"`
}
