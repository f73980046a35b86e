package dto

import (
	"time"

	"github.com/noah-isme/tutor-booking-api/internal/models"
)

// Default detection thresholds.
const (
	DefaultAttendanceThreshold = 80.0
	DefaultGradeThreshold      = 6.0
)

// RiskSummary aggregates the whole roster.
type RiskSummary struct {
	TotalAtRisk       int      `json:"totalAtRisk"`
	HighRisk          int      `json:"highRisk"`
	MediumRisk        int      `json:"mediumRisk"`
	LowRisk           int      `json:"lowRisk"`
	AverageRiskScore  int      `json:"averageRiskScore"`
	CommonRiskFactors []string `json:"commonRiskFactors"`
}

// RiskAssessmentResponse lists roster students, highest risk first.
type RiskAssessmentResponse struct {
	Students      []models.RiskStudent `json:"students"`
	Summary       RiskSummary          `json:"summary"`
	LastDetection time.Time            `json:"lastDetection"`
}

// RunDetectionRequest overrides the detection thresholds; zero means default.
type RunDetectionRequest struct {
	AttendanceThreshold float64 `json:"attendanceThreshold" validate:"gte=0,lte=100"`
	GradeThreshold      float64 `json:"gradeThreshold" validate:"gte=0"`
}

// Thresholds echoes the thresholds a detection used.
type Thresholds struct {
	Attendance float64 `json:"attendance"`
	Grade      float64 `json:"grade"`
}

// DetectionResponse is the result of one detection run.
type DetectionResponse struct {
	DetectionID      string               `json:"detectionId"`
	Timestamp        time.Time            `json:"timestamp"`
	ThresholdsUsed   Thresholds           `json:"thresholdsUsed"`
	StudentsDetected int                  `json:"studentsDetected"`
	HighRisk         int                  `json:"highRisk"`
	MediumRisk       int                  `json:"mediumRisk"`
	LowRisk          int                  `json:"lowRisk"`
	Students         []models.RiskStudent `json:"students"`
}

// CreateInterventionRequest records an intervention for a roster student.
type CreateInterventionRequest struct {
	StudentID           string   `json:"studentId" validate:"required"`
	InterventionType    string   `json:"interventionType" validate:"required"`
	Notes               string   `json:"notes"`
	NotifyStudent       bool     `json:"notifyStudent"`
	NotifyParent        bool     `json:"notifyParent"`
	NotifyMethod        []string `json:"notifyMethod"`
	NotificationMethods []string `json:"notificationMethods"`
	FollowUpDate        string   `json:"followUpDate"`
	AssignedTo          string   `json:"assignedTo"`
}

// InterventionNotifications reports which parties were flagged for notification.
type InterventionNotifications struct {
	StudentNotified bool `json:"studentNotified"`
	ParentNotified  bool `json:"parentNotified"`
}

// CreateInterventionResponse acknowledges a new intervention.
type CreateInterventionResponse struct {
	ID            string                    `json:"id"`
	StudentID     string                    `json:"studentId"`
	Status        string                    `json:"status"`
	CreatedAt     time.Time                 `json:"createdAt"`
	Notifications InterventionNotifications `json:"notifications"`
}

// UpdateInterventionRequest merges the present fields into an intervention.
type UpdateInterventionRequest struct {
	Type                *string  `json:"type"`
	Notes               *string  `json:"notes"`
	Status              *string  `json:"status" validate:"omitempty,oneof=created in_progress completed"`
	FollowUpDate        *string  `json:"followUpDate"`
	AssignedTo          *string  `json:"assignedTo"`
	NotifyStudent       *bool    `json:"notifyStudent"`
	NotifyParent        *bool    `json:"notifyParent"`
	NotificationMethods []string `json:"notificationMethods"`
	Outcome             *string  `json:"outcome"`
}

// InterventionView is an intervention annotated with its student.
type InterventionView struct {
	models.Intervention
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
}

// InterventionListResponse wraps interventions across the roster.
type InterventionListResponse struct {
	Interventions []InterventionView `json:"interventions"`
}

// StudentInterventionsResponse lists one student's interventions.
type StudentInterventionsResponse struct {
	StudentID     string                `json:"studentId"`
	StudentName   string                `json:"studentName"`
	Interventions []models.Intervention `json:"interventions"`
}

// ExportFile is a rendered report.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
