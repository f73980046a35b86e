package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, claims *models.Claims) ([]models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	UpdateGrade(ctx context.Context, claims *models.Claims, id string, req dto.UpdateGradeRequest) (*models.Enrollment, error)
	Drop(ctx context.Context, claims *models.Claims, id string, req dto.CancelRequest) (*dto.DropEnrollmentResponse, error)
	ListClassStudents(ctx context.Context, classID string) (*dto.ClassStudentsResponse, error)
}

// EnrollmentHandler exposes enrollments and grading.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// List godoc
// @Summary List enrollments visible to the caller
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	enrollments, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.EnrollmentListResponse{Enrollments: enrollments})
}

// ListByStudent godoc
// @Summary List a student's enrollments
// @Description Students may only read their own enrollments.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student user ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	studentID := c.Param("id")
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent && claims.UserID != studentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "You can only view your own enrollments"))
		return
	}
	enrollments, err := h.service.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.EnrollmentListResponse{Enrollments: enrollments})
}

// UpdateGrade godoc
// @Summary Grade an enrollment
// @Description Absent fields are left untouched, null clears them.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param payload body dto.UpdateGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/grade [put]
func (h *EnrollmentHandler) UpdateGrade(c *gin.Context) {
	var req dto.UpdateGradeRequest
	if err := bindJSON(c, &req, "grade"); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.service.UpdateGrade(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment)
}

// Drop godoc
// @Summary Drop an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param payload body dto.CancelRequest false "Drop reason"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	var req dto.CancelRequest
	if err := bindOptionalJSON(c, &req, "drop"); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.Drop(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ClassStudents godoc
// @Summary Grading roster of a class
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *EnrollmentHandler) ClassStudents(c *gin.Context) {
	res, err := h.service.ListClassStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
