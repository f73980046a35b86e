package models

import "time"

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// LevelForScore maps a score to its band: >=80 high, >=60 medium, else low.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskHigh
	case score >= 60:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Intervention statuses.
const (
	InterventionCreated    = "created"
	InterventionInProgress = "in_progress"
	InterventionCompleted  = "completed"
)

// Intervention is a remedial action recorded against an at-risk student.
type Intervention struct {
	ID                  string     `json:"id"`
	Type                string     `json:"type"`
	Notes               string     `json:"notes"`
	NotifyStudent       bool       `json:"notifyStudent"`
	NotifyParent        bool       `json:"notifyParent"`
	NotificationMethods []string   `json:"notificationMethods"`
	FollowUpDate        string     `json:"followUpDate,omitempty"`
	AssignedTo          string     `json:"assignedTo,omitempty"`
	Status              string     `json:"status"`
	Outcome             string     `json:"outcome,omitempty"`
	CreatedBy           string     `json:"createdBy"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
}

// RiskStudent is one entry of the at-risk roster.
type RiskStudent struct {
	ID            string         `json:"id"`
	StudentID     string         `json:"studentId"`
	Name          string         `json:"name"`
	RiskScore     float64        `json:"riskScore"`
	Attendance    float64        `json:"attendance"`
	GradesAvg     float64        `json:"gradesAvg"`
	RiskFactors   []string       `json:"riskFactors"`
	Courses       []string       `json:"courses"`
	Interventions []Intervention `json:"interventions"`
	LastDetected  *time.Time     `json:"lastDetected,omitempty"`
}

// Level returns the student's risk band.
func (s RiskStudent) Level() RiskLevel {
	return LevelForScore(s.RiskScore)
}
