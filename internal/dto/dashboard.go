package dto

import (
	"time"

	"github.com/noah-isme/tutor-booking-api/internal/models"
)

// TutorDashboard summarises the calling tutor's classes.
type TutorDashboard struct {
	TotalClasses     int            `json:"totalClasses"`
	TotalStudents    int            `json:"totalStudents"`
	PendingBookings  int            `json:"pendingBookings"`
	UpcomingSessions int            `json:"upcomingSessions"`
	Classes          []models.Class `json:"classes"`
}

// StudentDashboard summarises the calling student's progress.
type StudentDashboard struct {
	TotalEnrollments int                 `json:"totalEnrollments"`
	PendingBookings  int                 `json:"pendingBookings"`
	AverageGrade     *float64            `json:"averageGrade"`
	Enrollments      []models.Enrollment `json:"enrollments"`
}

// CTSVDashboard summarises the at-risk roster.
type CTSVDashboard struct {
	TotalStudentsAtRisk  int       `json:"totalStudentsAtRisk"`
	HighRiskCount        int       `json:"highRiskCount"`
	MediumRiskCount      int       `json:"mediumRiskCount"`
	LowRiskCount         int       `json:"lowRiskCount"`
	InterventionsPending int       `json:"interventionsPending"`
	LastDetectionRun     time.Time `json:"lastDetectionRun"`
}
