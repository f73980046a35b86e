package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, userID string) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, id, userID string) (*models.Notification, error)
	Poll(ctx context.Context, userID, since string) (*dto.NotificationPollResponse, error)
}

// NotificationHandler serves the caller's inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	res, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if _, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Notification marked as read")
}

// Poll godoc
// @Summary Poll for new notifications
// @Description Pass the returned timestamp as the next since cursor.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param since query string false "RFC3339 cursor"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications/poll [get]
func (h *NotificationHandler) Poll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	res, err := h.service.Poll(c.Request.Context(), claims.UserID, c.Query("since"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
