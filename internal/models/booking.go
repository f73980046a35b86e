package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// Slot is a concrete session time.
type Slot struct {
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
}

// Booking is a student's request to join a class at a slot.
type Booking struct {
	ID              string        `json:"id"`
	ClassID         string        `json:"classId"`
	ClassName       string        `json:"className"`
	StudentID       string        `json:"studentId"`
	StudentName     string        `json:"studentName"`
	StudentEmail    string        `json:"studentEmail"`
	TutorID         string        `json:"tutorId"`
	TutorName       string        `json:"tutorName"`
	Slot            Slot          `json:"slot"`
	Status          BookingStatus `json:"status"`
	Message         string        `json:"message"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	CancelReason    string        `json:"cancelReason,omitempty"`
	CancelDetails   string        `json:"cancelDetails,omitempty"`
	RescheduledFrom *Slot         `json:"rescheduledFrom,omitempty"`
	RescheduledAt   *time.Time    `json:"rescheduledAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// AlternativeSlot is a candidate offered when rescheduling.
type AlternativeSlot struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}
