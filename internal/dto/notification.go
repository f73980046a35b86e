package dto

import (
	"time"

	"github.com/noah-isme/tutor-booking-api/internal/models"
)

// AppendNotification describes a message to deliver to one user.
type AppendNotification struct {
	UserID    string `validate:"required"`
	Type      string `validate:"required"`
	Title     string `validate:"required"`
	Message   string
	ActionURL string
}

// NotificationListResponse is the caller's inbox.
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// NotificationPollResponse carries notifications newer than the cursor and the
// timestamp to pass as the next cursor.
type NotificationPollResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
	Timestamp     time.Time             `json:"timestamp"`
}
