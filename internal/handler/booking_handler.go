package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

type bookingService interface {
	List(ctx context.Context, claims *models.Claims, filter dto.BookingFilter) ([]models.Booking, error)
	Create(ctx context.Context, claims *models.Claims, req dto.CreateBookingRequest) (*models.Booking, error)
	Transition(ctx context.Context, id string, req dto.UpdateBookingStatusRequest) (*models.Booking, error)
	Cancel(ctx context.Context, claims *models.Claims, id string, req dto.CancelRequest) (*models.Booking, error)
	AlternativeSlots(ctx context.Context, id string) (*dto.AlternativeSlotsResponse, error)
	Reschedule(ctx context.Context, claims *models.Claims, id string, req dto.RescheduleRequest) (*dto.RescheduleResponse, error)
}

// BookingHandler drives the booking lifecycle over HTTP.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(svc bookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// List godoc
// @Summary List bookings visible to the caller
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Booking status"
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := dto.BookingFilter{
		Status:  strings.TrimSpace(c.Query("status")),
		ClassID: strings.TrimSpace(c.Query("classId")),
	}
	bookings, err := h.service.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BookingListResponse{Bookings: bookings})
}

// Create godoc
// @Summary Request a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := bindJSON(c, &req, "booking"); err != nil {
		response.Error(c, err)
		return
	}
	booking, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// UpdateStatus godoc
// @Summary Confirm or reject a pending booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param payload body dto.UpdateBookingStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id} [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateBookingStatusRequest
	if err := bindJSON(c, &req, "booking status"); err != nil {
		response.Error(c, err)
		return
	}
	booking, err := h.service.Transition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param payload body dto.CancelRequest false "Cancellation reason"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req dto.CancelRequest
	if err := bindOptionalJSON(c, &req, "cancellation"); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.service.Cancel(c.Request.Context(), claimsFromContext(c), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Booking cancelled successfully")
}

// AlternativeSlots godoc
// @Summary Suggest reschedule slots
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id}/alternative-slots [get]
func (h *BookingHandler) AlternativeSlots(c *gin.Context) {
	res, err := h.service.AlternativeSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Reschedule godoc
// @Summary Move a booking to a new slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param payload body dto.RescheduleRequest true "New slot"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id}/reschedule [put]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	var req dto.RescheduleRequest
	if err := bindJSON(c, &req, "reschedule"); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.Reschedule(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
