package models

import "time"

// Waitlist statuses. Both count as active for duplicate detection.
const (
	WaitlistWaiting  = "waiting"
	WaitlistNotified = "notified"
)

// WaitlistEntry is a standby request against a class or a tutor.
type WaitlistEntry struct {
	ID             string     `json:"id"`
	StudentID      string     `json:"studentId"`
	StudentName    string     `json:"studentName"`
	StudentEmail   string     `json:"studentEmail"`
	ClassID        *string    `json:"classId"`
	ClassName      *string    `json:"className"`
	TutorID        *string    `json:"tutorId"`
	TutorName      *string    `json:"tutorName"`
	PreferredSlots []Slot     `json:"preferredSlots"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	NotifiedAt     *time.Time `json:"notifiedAt"`
}

// Target returns the class id when present, otherwise the tutor id.
func (w WaitlistEntry) Target() string {
	if w.ClassID != nil && *w.ClassID != "" {
		return *w.ClassID
	}
	if w.TutorID != nil {
		return *w.TutorID
	}
	return ""
}
