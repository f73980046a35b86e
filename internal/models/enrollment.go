package models

import "time"

// Enrollment is created once per confirmed booking and removed when dropped.
// Materials is a copy of the class materials taken at confirmation time.
type Enrollment struct {
	ID                string     `json:"id"`
	StudentID         string     `json:"studentId"`
	ClassID           string     `json:"classId"`
	ClassName         string     `json:"className"`
	Subject           string     `json:"subject"`
	TutorID           string     `json:"tutorId"`
	TutorName         string     `json:"tutorName"`
	TutorEmail        string     `json:"tutorEmail"`
	Schedule          string     `json:"schedule"`
	NextSession       string     `json:"nextSession"`
	TotalSessions     int        `json:"totalSessions"`
	CompletedSessions int        `json:"completedSessions"`
	Grade             *float64   `json:"grade"`
	Feedback          *string    `json:"feedback"`
	Materials         []Material `json:"materials"`
	EnrolledAt        time.Time  `json:"enrolledAt"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// ClassStudent is the grading view of one enrollment joined with its user.
type ClassStudent struct {
	EnrollmentID      string    `json:"enrollmentId"`
	StudentID         string    `json:"studentId"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	EnrolledAt        time.Time `json:"enrolledAt"`
	Grade             *float64  `json:"grade"`
	Feedback          *string   `json:"feedback"`
	CompletedSessions int       `json:"completedSessions"`
	TotalSessions     int       `json:"totalSessions"`
}
