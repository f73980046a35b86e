package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

type dashboardService interface {
	Tutor(ctx context.Context, claims *models.Claims) (*dto.TutorDashboard, error)
	Student(ctx context.Context, claims *models.Claims) (*dto.StudentDashboard, error)
	CTSV(ctx context.Context) (*dto.CTSVDashboard, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Tutor godoc
// @Summary Tutor dashboard summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/tutor [get]
func (h *DashboardHandler) Tutor(c *gin.Context) {
	res, err := h.service.Tutor(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Student godoc
// @Summary Student dashboard summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	res, err := h.service.Student(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// CTSV godoc
// @Summary Student affairs dashboard summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/ctsv [get]
func (h *DashboardHandler) CTSV(c *gin.Context) {
	res, err := h.service.CTSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
