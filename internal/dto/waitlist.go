package dto

import "github.com/noah-isme/tutor-booking-api/internal/models"

// AddWaitlistRequest joins the waitlist of a class or a tutor.
type AddWaitlistRequest struct {
	ClassID        string        `json:"classId"`
	TutorID        string        `json:"tutorId"`
	PreferredSlots []models.Slot `json:"preferredSlots" validate:"omitempty,dive"`
	Reason         string        `json:"reason"`
}

// WaitlistAddResponse returns the created entry.
type WaitlistAddResponse struct {
	WaitlistEntry models.WaitlistEntry `json:"waitlistEntry"`
	Message       string               `json:"message"`
}

// WaitlistListResponse wraps waitlist entries.
type WaitlistListResponse struct {
	Waitlist []models.WaitlistEntry `json:"waitlist"`
}
