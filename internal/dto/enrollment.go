package dto

import "github.com/noah-isme/tutor-booking-api/internal/models"

// UpdateGradeRequest is a partial update; absent fields are untouched and
// explicit nulls clear the stored value.
type UpdateGradeRequest struct {
	Grade    Optional[float64] `json:"grade" swaggertype:"number"`
	Feedback Optional[string]  `json:"feedback" swaggertype:"string"`
}

// EnrollmentListResponse wraps an enrollment list.
type EnrollmentListResponse struct {
	Enrollments []models.Enrollment `json:"enrollments"`
}

// DropEnrollmentResponse returns the removed enrollment.
type DropEnrollmentResponse struct {
	Message    string            `json:"message"`
	Enrollment models.Enrollment `json:"enrollment"`
}
