package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

type waitlistService interface {
	Add(ctx context.Context, claims *models.Claims, req dto.AddWaitlistRequest) (*dto.WaitlistAddResponse, error)
	Remove(ctx context.Context, claims *models.Claims, id string) error
	List(ctx context.Context, claims *models.Claims) ([]models.WaitlistEntry, error)
}

// WaitlistHandler manages waitlist entries.
type WaitlistHandler struct {
	service waitlistService
}

// NewWaitlistHandler constructs the handler.
func NewWaitlistHandler(svc waitlistService) *WaitlistHandler {
	return &WaitlistHandler{service: svc}
}

// Add godoc
// @Summary Join a waitlist
// @Tags Waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AddWaitlistRequest true "Waitlist payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /waitlist [post]
func (h *WaitlistHandler) Add(c *gin.Context) {
	var req dto.AddWaitlistRequest
	if err := bindJSON(c, &req, "waitlist"); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.Add(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// List godoc
// @Summary List waitlist entries visible to the caller
// @Tags Waitlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /waitlist [get]
func (h *WaitlistHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.WaitlistListResponse{Waitlist: entries})
}

// Remove godoc
// @Summary Leave a waitlist
// @Tags Waitlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Waitlist entry ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /waitlist/{id} [delete]
func (h *WaitlistHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Removed from waitlist successfully")
}
