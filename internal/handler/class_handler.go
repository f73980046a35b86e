package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/service"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, filter dto.ClassFilter) (*dto.ClassListResponse, error)
	Get(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, claims *models.Claims, req dto.CreateClassRequest) (*models.Class, error)
	AddMaterial(ctx context.Context, classID string, req dto.CreateMaterialRequest) (*models.Material, error)
	UploadMaterial(ctx context.Context, classID, filename string, body io.Reader) (*models.Material, error)
	MaterialDownloadURL(ctx context.Context, materialID string) (*dto.MaterialDownloadResponse, error)
	OpenMaterial(ctx context.Context, token string) (*service.MaterialFile, error)
}

// ClassHandler exposes classes and their materials.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs the handler.
func NewClassHandler(svc classService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param tutorId query string false "Tutor ID or tutor user ID"
// @Param subject query string false "Subject"
// @Param status query string false "Class status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	filter := dto.ClassFilter{
		TutorID: strings.TrimSpace(c.Query("tutorId")),
		Subject: strings.TrimSpace(c.Query("subject")),
		Status:  strings.TrimSpace(c.Query("status")),
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
	res, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Get godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := bindJSON(c, &req, "class"); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// AddMaterial godoc
// @Summary Add class material
// @Description Accepts JSON metadata or a multipart form with a file part.
// @Tags Classes
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param payload body dto.CreateMaterialRequest false "Material metadata"
// @Param file formData file false "Material file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/materials [post]
func (h *ClassHandler) AddMaterial(c *gin.Context) {
	var (
		material *models.Material
		err      error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		material, err = h.upload(c)
	} else {
		var req dto.CreateMaterialRequest
		if err = bindOptionalJSON(c, &req, "material"); err == nil {
			material, err = h.service.AddMaterial(c.Request.Context(), c.Param("id"), req)
		}
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithMessage(c, http.StatusCreated, material, "Material uploaded successfully")
}

func (h *ClassHandler) upload(c *gin.Context) (*models.Material, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to read upload")
	}
	defer file.Close()
	return h.service.UploadMaterial(c.Request.Context(), c.Param("id"), header.Filename, file)
}

// DownloadURL godoc
// @Summary Issue a signed material download link
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/{id}/download-url [get]
func (h *ClassHandler) DownloadURL(c *gin.Context) {
	res, err := h.service.MaterialDownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Download godoc
// @Summary Download a stored material
// @Tags Classes
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/download [get]
func (h *ClassHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, err := h.service.OpenMaterial(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Body.Close()

	size := file.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, file.ContentType, file.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.Name),
		"Cache-Control":       "no-store",
	})
}
