package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

type riskService interface {
	Assessment(ctx context.Context, riskLevel string) (*dto.RiskAssessmentResponse, error)
	RunDetection(ctx context.Context, req dto.RunDetectionRequest) (*dto.DetectionResponse, error)
	GetStudent(ctx context.Context, id string) (*models.RiskStudent, error)
	ListInterventions(ctx context.Context) (*dto.InterventionListResponse, error)
	StudentInterventions(ctx context.Context, studentID string) (*dto.StudentInterventionsResponse, error)
	CreateIntervention(ctx context.Context, claims *models.Claims, req dto.CreateInterventionRequest) (*dto.CreateInterventionResponse, error)
	UpdateIntervention(ctx context.Context, id string, req dto.UpdateInterventionRequest) (*models.Intervention, error)
	Export(ctx context.Context, format, riskLevel string) (*dto.ExportFile, error)
}

// RiskHandler exposes at-risk detection and interventions to student affairs.
type RiskHandler struct {
	service riskService
}

// NewRiskHandler constructs the handler.
func NewRiskHandler(svc riskService) *RiskHandler {
	return &RiskHandler{service: svc}
}

// Assessment godoc
// @Summary At-risk roster with summary
// @Tags Risk
// @Produce json
// @Security BearerAuth
// @Param riskLevel query string false "high, medium or low"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /risk-assessment [get]
func (h *RiskHandler) Assessment(c *gin.Context) {
	res, err := h.service.Assessment(c.Request.Context(), strings.TrimSpace(c.Query("riskLevel")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// RunDetection godoc
// @Summary Run at-risk detection
// @Tags Risk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RunDetectionRequest false "Thresholds"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /risk-detection/run [post]
func (h *RiskHandler) RunDetection(c *gin.Context) {
	var req dto.RunDetectionRequest
	if err := bindOptionalJSON(c, &req, "detection"); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.RunDetection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Student godoc
// @Summary At-risk student detail
// @Tags Risk
// @Produce json
// @Security BearerAuth
// @Param id path string true "Roster ID or student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /risk-assessment/students/{id} [get]
func (h *RiskHandler) Student(c *gin.Context) {
	student, err := h.service.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Export godoc
// @Summary Export the at-risk roster
// @Tags Risk
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param riskLevel query string false "high, medium or low"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /risk-assessment/export [get]
func (h *RiskHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.DefaultQuery("format", "csv"), strings.TrimSpace(c.Query("riskLevel")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// ListInterventions godoc
// @Summary List interventions, newest first
// @Tags Interventions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /interventions [get]
func (h *RiskHandler) ListInterventions(c *gin.Context) {
	res, err := h.service.ListInterventions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// StudentInterventions godoc
// @Summary Interventions of one student
// @Tags Interventions
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interventions/student/{studentId} [get]
func (h *RiskHandler) StudentInterventions(c *gin.Context) {
	res, err := h.service.StudentInterventions(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// CreateIntervention godoc
// @Summary Record an intervention
// @Tags Interventions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateInterventionRequest true "Intervention payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interventions [post]
func (h *RiskHandler) CreateIntervention(c *gin.Context) {
	var req dto.CreateInterventionRequest
	if err := bindJSON(c, &req, "intervention"); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.CreateIntervention(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// UpdateIntervention godoc
// @Summary Update an intervention
// @Tags Interventions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Intervention ID"
// @Param payload body dto.UpdateInterventionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interventions/{id} [patch]
func (h *RiskHandler) UpdateIntervention(c *gin.Context) {
	var req dto.UpdateInterventionRequest
	if err := bindJSON(c, &req, "intervention"); err != nil {
		response.Error(c, err)
		return
	}
	intervention, err := h.service.UpdateIntervention(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, intervention)
}
