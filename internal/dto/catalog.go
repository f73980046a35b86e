package dto

import (
	"time"

	"github.com/noah-isme/tutor-booking-api/internal/models"
)

// TutorFilter narrows the tutor listing.
type TutorFilter struct {
	Subject   string   `json:"subject,omitempty"`
	Search    string   `json:"search,omitempty"`
	RatingMin *float64 `json:"ratingMin,omitempty"`
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
}

// TutorListResponse is a page of tutors.
type TutorListResponse struct {
	Tutors     []models.Tutor    `json:"tutors"`
	Pagination models.Pagination `json:"pagination"`
}

// AvailabilityResponse lists a tutor's published slots.
type AvailabilityResponse struct {
	TutorID string            `json:"tutorId"`
	Slots   []models.TimeSlot `json:"slots"`
}

// UpdateAvailabilityRequest replaces the slot list when Slots is present.
type UpdateAvailabilityRequest struct {
	Slots []models.TimeSlot `json:"slots" validate:"omitempty,dive"`
}

// SubjectListResponse lists subjects derived from the tutor roster.
type SubjectListResponse struct {
	Subjects []models.Subject `json:"subjects"`
}

// ClassFilter narrows the class listing. TutorID accepts a tutor id or its user id.
type ClassFilter struct {
	TutorID string
	Subject string
	Status  string
	Page    int
	Limit   int
}

// ClassListResponse is a page of classes.
type ClassListResponse struct {
	Classes    []models.Class    `json:"classes"`
	Pagination models.Pagination `json:"pagination"`
}

// CreateClassRequest creates a class owned by the calling tutor.
type CreateClassRequest struct {
	Name          string `json:"name" validate:"required"`
	Subject       string `json:"subject" validate:"required"`
	Description   string `json:"description"`
	Schedule      string `json:"schedule"`
	MaxStudents   int    `json:"maxStudents" validate:"gte=0"`
	Location      string `json:"location"`
	NextSession   string `json:"nextSession"`
	TotalSessions int    `json:"totalSessions" validate:"gte=0"`
}

// CreateMaterialRequest registers material metadata without a file body.
type CreateMaterialRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size string `json:"size"`
}

// MaterialDownloadResponse is a signed link to a stored material.
type MaterialDownloadResponse struct {
	MaterialID string    `json:"materialId"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ClassStudentsResponse is the grading roster of a class.
type ClassStudentsResponse struct {
	Students []models.ClassStudent `json:"students"`
}
