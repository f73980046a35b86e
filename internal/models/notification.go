package models

import "time"

// Notification types emitted by the services.
const (
	NotificationBookingRequest      = "booking_request"
	NotificationBookingConfirmed    = "booking_confirmed"
	NotificationBookingRejected     = "booking_rejected"
	NotificationBookingRescheduled  = "booking_rescheduled"
	NotificationGradeUpdated        = "grade_updated"
	NotificationEnrollmentCancelled = "enrollment_cancelled"
	NotificationWaitlistAvailable   = "waitlist_slot_available"
	NotificationInterventionCreated = "intervention_created"
)

// Notification is an append-only message for one user; only Read changes.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	ActionURL string    `json:"actionUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
