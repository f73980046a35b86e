package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

type fakeNotificationSrv struct {
	userID string
	since  string
	readID string
}

func (f *fakeNotificationSrv) List(_ context.Context, userID string) (*dto.NotificationListResponse, error) {
	f.userID = userID
	return &dto.NotificationListResponse{Notifications: []models.Notification{}}, nil
}

func (f *fakeNotificationSrv) MarkRead(_ context.Context, id, userID string) (*models.Notification, error) {
	f.readID, f.userID = id, userID
	if id == "ntf_missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Notification not found")
	}
	return &models.Notification{ID: id}, nil
}

func (f *fakeNotificationSrv) Poll(_ context.Context, userID, since string) (*dto.NotificationPollResponse, error) {
	f.userID, f.since = userID, since
	return &dto.NotificationPollResponse{Notifications: []models.Notification{}, Timestamp: time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)}, nil
}

func TestNotificationHandlerPollUsesCaller(t *testing.T) {
	srv := &fakeNotificationSrv{}
	h := NewNotificationHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/api/notifications/poll?since=2024-05-10T07:00:00Z", "", studentClaims())
	h.Poll(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student1", srv.userID)
	assert.Equal(t, "2024-05-10T07:00:00Z", srv.since)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"timestamp":"2024-05-10T08:00:00Z"`)
}

func TestNotificationHandlerRequiresClaims(t *testing.T) {
	h := NewNotificationHandler(&fakeNotificationSrv{})

	c, rec := newTestContext(http.MethodGet, "/api/notifications", "", nil)
	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	srv := &fakeNotificationSrv{}
	h := NewNotificationHandler(srv)

	c, rec := newTestContext(http.MethodPut, "/api/notifications/ntf_1/read", "", studentClaims(), gin.Param{Key: "id", Value: "ntf_1"})
	h.MarkRead(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notification marked as read", decodeEnvelope(t, rec).Message)

	c, rec = newTestContext(http.MethodPut, "/api/notifications/ntf_missing/read", "", studentClaims(), gin.Param{Key: "id", Value: "ntf_missing"})
	h.MarkRead(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
