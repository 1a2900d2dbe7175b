package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomly/roomly-backend/internal/auth"
	"github.com/roomly/roomly-backend/internal/booking"
	"github.com/roomly/roomly-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// List returns the authenticated user's own bookings.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	filter := booking.Filter{
		OrganizerID: auth.GetUserID(c),
		RoomID:      req.RoomID,
		Status:      req.Status,
		From:        req.StartTimeFrom,
		To:          req.StartTimeTo,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	attendees := make([]booking.AttendeeInput, 0, len(body.Attendees))
	for _, a := range body.Attendees {
		attendees = append(attendees, booking.AttendeeInput{Email: a.Email, Name: a.Name})
	}

	req := booking.CreateRequest{
		OrganizerID: userID,
		Title:       body.Title,
		Description: body.Description,
		RoomID:      body.RoomID,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Attendees:   attendees,
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		var ce *booking.ConflictError
		if errors.As(err, &ce) {
			c.JSON(http.StatusConflict, NewConflictResponse(ce))
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	req := booking.UpdateRequest{
		Title:       body.Title,
		Description: body.Description,
		RoomID:      body.RoomID,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	}

	b, err := h.service.Update(c.Request.Context(), id, req, auth.GetUserID(c))
	if err != nil {
		var ce *booking.ConflictError
		if errors.As(err, &ce) {
			c.JSON(http.StatusConflict, NewConflictResponse(ce))
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Delete cancels a booking. The row is kept with status cancelled so the
// history stays intact.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckAvailability is a read-only probe used by the booking form. The
// answer is advisory: the slot is re-validated inside the create transaction.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	av, err := h.service.CheckAvailability(c.Request.Context(), req.RoomID, req.Start, req.End, req.BookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := AvailabilityResponse{
		IsAvailable: av.Available,
		RoomID:      req.RoomID,
	}
	if av.Conflict != nil {
		resp.Conflict = &ConflictSummary{
			Title:     av.Conflict.Title,
			StartTime: av.Conflict.StartTime,
			EndTime:   av.Conflict.EndTime,
			Organizer: av.Conflict.OrganizerName,
		}
		resp.AvailableRooms = newAlternativeRooms(av.AvailableRooms)
	}

	c.JSON(http.StatusOK, resp)
}

// Calendar returns all scheduled bookings in a time window, room-colored
// for display.
func (h *Handler) Calendar(c *gin.Context) {
	var req CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	bookings, err := h.service.Calendar(c.Request.Context(), req.Start, req.End)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)

	events := make([]CalendarEvent, len(bookings))
	for i, b := range bookings {
		events[i] = CalendarEvent{
			ID:            b.ID,
			Title:         b.Title,
			Start:         b.StartTime,
			End:           b.EndTime,
			RoomID:        b.RoomID,
			RoomName:      b.RoomName,
			RoomColor:     b.RoomColor,
			OrganizerName: b.OrganizerName,
			IsOwnMeeting:  b.OrganizerID == userID,
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": events})
}
