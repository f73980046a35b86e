package models

import "time"

// ClassStatus values.
const (
	ClassStatusActive    = "active"
	ClassStatusCompleted = "completed"
)

// Material is a file attached to a class. Entries without a StorageKey were
// registered by metadata only and have nothing to download.
type Material struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       string    `json:"size"`
	SizeBytes  int64     `json:"sizeBytes,omitempty"`
	StorageKey string    `json:"storageKey,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Class is a tutor-owned offering. EnrolledStudents and PendingBookings are
// denormalised counters maintained by the booking and enrollment services.
type Class struct {
	ID                string     `json:"id"`
	TutorID           string     `json:"tutorId"`
	TutorName         string     `json:"tutorName"`
	TutorEmail        string     `json:"tutorEmail"`
	Name              string     `json:"name"`
	Subject           string     `json:"subject"`
	Description       string     `json:"description"`
	Schedule          string     `json:"schedule"`
	MaxStudents       int        `json:"maxStudents"`
	EnrolledStudents  int        `json:"enrolledStudents"`
	PendingBookings   int        `json:"pendingBookings"`
	Location          string     `json:"location"`
	Status            string     `json:"status"`
	NextSession       string     `json:"nextSession"`
	TotalSessions     int        `json:"totalSessions"`
	CompletedSessions int        `json:"completedSessions"`
	Materials         []Material `json:"materials"`
	CreatedAt         time.Time  `json:"createdAt"`
}
