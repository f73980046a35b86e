package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

type catalogService interface {
	ListTutors(ctx context.Context, filter dto.TutorFilter) (*dto.TutorListResponse, error)
	GetTutor(ctx context.Context, id string) (*models.Tutor, error)
	GetAvailability(ctx context.Context, id string) (*dto.AvailabilityResponse, error)
	UpdateAvailability(ctx context.Context, id string, req dto.UpdateAvailabilityRequest) (*models.Tutor, error)
	ListSubjects(ctx context.Context) (*dto.SubjectListResponse, error)
	GetUser(ctx context.Context, id string) (*models.UserProfile, error)
}

// CatalogHandler serves tutors, subjects and user lookups.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListTutors godoc
// @Summary List tutors
// @Tags Tutors
// @Produce json
// @Param subject query string false "Subject, All for no filter"
// @Param rating_min query number false "Minimum rating"
// @Param search query string false "Matches name, subject or expertise"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tutors [get]
func (h *CatalogHandler) ListTutors(c *gin.Context) {
	filter := dto.TutorFilter{
		Subject: strings.TrimSpace(c.Query("subject")),
		Search:  strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("rating_min")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "rating_min must be a number"))
			return
		}
		filter.RatingMin = &rating
	}
	var err error
	if filter.Page, err = queryInt(c, "page"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.ListTutors(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// GetTutor godoc
// @Summary Get tutor
// @Tags Tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id} [get]
func (h *CatalogHandler) GetTutor(c *gin.Context) {
	tutor, err := h.service.GetTutor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tutor)
}

// GetAvailability godoc
// @Summary Tutor availability
// @Tags Tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id}/availability [get]
func (h *CatalogHandler) GetAvailability(c *gin.Context) {
	res, err := h.service.GetAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// UpdateAvailability godoc
// @Summary Replace tutor availability
// @Tags Tutors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutor ID"
// @Param payload body dto.UpdateAvailabilityRequest true "Slots"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id}/availability [put]
func (h *CatalogHandler) UpdateAvailability(c *gin.Context) {
	var req dto.UpdateAvailabilityRequest
	if err := bindJSON(c, &req, "availability"); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.service.UpdateAvailability(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Availability updated successfully")
}

// ListSubjects godoc
// @Summary List subjects
// @Tags Tutors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	res, err := h.service.ListSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// GetUser godoc
// @Summary Get user profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *CatalogHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
