package dto

import "github.com/noah-isme/tutor-booking-api/internal/models"

// BookingFilter narrows a booking listing.
type BookingFilter struct {
	Status  string
	ClassID string
}

// CreateBookingRequest requests a place in a class.
type CreateBookingRequest struct {
	ClassID string       `json:"classId" validate:"required"`
	Slot    *models.Slot `json:"slot"`
	Message string       `json:"message"`
}

// UpdateBookingStatusRequest confirms or rejects a pending booking.
type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required,oneof=confirmed rejected"`
	Reason string               `json:"reason"`
}

// CancelRequest carries the optional explanation for a cancellation or drop.
type CancelRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

// RescheduleRequest moves a booking to a new slot.
type RescheduleRequest struct {
	NewSlot *models.Slot `json:"newSlot" validate:"required"`
}

// BookingListResponse wraps a booking list.
type BookingListResponse struct {
	Bookings []models.Booking `json:"bookings"`
}

// CurrentBooking summarises the booking being rescheduled.
type CurrentBooking struct {
	ID          string      `json:"id"`
	ClassName   string      `json:"className"`
	TutorName   string      `json:"tutorName"`
	CurrentSlot models.Slot `json:"currentSlot"`
}

// AlternativeSlotsResponse lists reschedule candidates.
type AlternativeSlotsResponse struct {
	CurrentBooking   CurrentBooking           `json:"currentBooking"`
	AlternativeSlots []models.AlternativeSlot `json:"alternativeSlots"`
}

// RescheduleResponse returns the updated booking.
type RescheduleResponse struct {
	Booking models.Booking `json:"booking"`
	Message string         `json:"message"`
}
