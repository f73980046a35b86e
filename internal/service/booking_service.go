package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

// Default slot used when a booking request omits one.
const (
	defaultSlotStart = "09:00"
	defaultSlotEnd   = "10:30"
)

// BookingService drives the booking lifecycle. Every operation locks the
// bookings collection together with the class counters, enrollments and
// notifications it touches, so side effects commit with the status change or
// not at all.
type BookingService struct {
	store         recordStore
	notifications *NotificationService
	slots         SlotAvailability
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewBookingService constructs the service. slots defaults to AlwaysAvailable;
// metrics may be nil.
func NewBookingService(store recordStore, notifications *NotificationService, slots SlotAvailability, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if slots == nil {
		slots = AlwaysAvailable{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		store:         store,
		notifications: notifications,
		slots:         slots,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		now:           time.Now,
	}
}

// List returns bookings visible to the caller. Students see their own, tutors
// see bookings for their classes and CTSV sees everything.
func (s *BookingService) List(ctx context.Context, claims *models.Claims, filter dto.BookingFilter) ([]models.Booking, error) {
	var result []models.Booking
	err := view(ctx, s.store, []string{repository.CollectionBookings, repository.CollectionTutors}, "failed to list bookings", func(r *repository.Records) error {
		bookings, err := r.Bookings()
		if err != nil {
			return err
		}
		tutorID := ""
		if claims.Role == models.RoleTutor {
			tutors, err := r.Tutors()
			if err != nil {
				return err
			}
			tutorID = claims.UserID
			if t, ok := repository.FindTutorByUser(tutors, claims.UserID); ok {
				tutorID = t.ID
			}
		}
		result = repository.Filter(bookings, func(b models.Booking) bool {
			switch claims.Role {
			case models.RoleStudent:
				if b.StudentID != claims.UserID {
					return false
				}
			case models.RoleTutor:
				if b.TutorID != tutorID {
					return false
				}
			}
			if filter.Status != "" && string(b.Status) != filter.Status {
				return false
			}
			if filter.ClassID != "" && b.ClassID != filter.ClassID {
				return false
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Create records a pending booking, bumps the class pending counter and
// notifies the class tutor.
func (s *BookingService) Create(ctx context.Context, claims *models.Claims, req dto.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "classId is required and slot needs date, startTime and endTime")
	}

	now := s.now().UTC()
	slot := models.Slot{Date: now.Format(dateLayout), StartTime: defaultSlotStart, EndTime: defaultSlotEnd}
	if req.Slot != nil {
		slot = *req.Slot
	}

	names := []string{repository.CollectionBookings, repository.CollectionClasses, repository.CollectionTutors, repository.CollectionUsers, repository.CollectionNotifications}
	var created models.Booking
	err := update(ctx, s.store, names, "failed to create booking", func(r *repository.Records) error {
		classes, err := r.Classes()
		if err != nil {
			return err
		}
		ci := repository.IndexOf(classes, func(c models.Class) bool { return c.ID == req.ClassID })
		if ci < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Class not found")
		}
		class := classes[ci]

		bookings, err := r.Bookings()
		if err != nil {
			return err
		}
		created = models.Booking{
			ID:           repository.NextSequentialID(repository.PrefixBooking, repository.IDs(bookings, func(b models.Booking) string { return b.ID })),
			ClassID:      class.ID,
			ClassName:    class.Name,
			StudentID:    claims.UserID,
			StudentName:  claims.Name,
			StudentEmail: claims.Email,
			TutorID:      class.TutorID,
			TutorName:    class.TutorName,
			Slot:         slot,
			Status:       models.BookingPending,
			Message:      req.Message,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.SaveBookings(append(bookings, created)); err != nil {
			return err
		}

		classes[ci].PendingBookings++
		if err := r.SaveClasses(classes); err != nil {
			return err
		}

		recipient, err := tutorRecipient(r, class.TutorID)
		if err != nil {
			return err
		}
		if recipient == "" {
			return nil
		}
		_, err = s.notifications.stage(r, dto.AppendNotification{
			UserID:    recipient,
			Type:      models.NotificationBookingRequest,
			Title:     "New Booking Request",
			Message:   fmt.Sprintf("%s requested to join %s", claims.Name, class.Name),
			ActionURL: "/bookings/" + created.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBookingTransition("new", string(models.BookingPending))
	s.logger.Info("booking created", zap.String("booking_id", created.ID), zap.String("class_id", created.ClassID), zap.String("student_id", created.StudentID))
	return &created, nil
}

// tutorRecipient resolves the user that receives tutor-facing notifications:
// the class tutor's account, falling back to the first Tutor user.
func tutorRecipient(r *repository.Records, tutorID string) (string, error) {
	tutors, err := r.Tutors()
	if err != nil {
		return "", err
	}
	if t, ok := repository.FindTutor(tutors, tutorID); ok && t.UserID != "" {
		return t.UserID, nil
	}
	users, err := r.Users()
	if err != nil {
		return "", err
	}
	if i := repository.IndexOf(users, func(u models.User) bool { return u.Role == models.RoleTutor }); i >= 0 {
		return users[i].ID, nil
	}
	return "", nil
}

// Transition confirms or rejects a pending booking. Any other current status is
// a conflict, so a booking is never confirmed twice.
func (s *BookingService) Transition(ctx context.Context, id string, req dto.UpdateBookingStatusRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Status must be confirmed or rejected")
	}

	now := s.now().UTC()
	names := []string{repository.CollectionBookings, repository.CollectionClasses, repository.CollectionEnrollments, repository.CollectionNotifications}
	var updated models.Booking
	err := update(ctx, s.store, names, "failed to update booking", func(r *repository.Records) error {
		bookings, err := r.Bookings()
		if err != nil {
			return err
		}
		bi := repository.IndexOf(bookings, func(b models.Booking) bool { return b.ID == id })
		if bi < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
		}
		booking := bookings[bi]
		if booking.Status != models.BookingPending {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Booking is already %s", booking.Status))
		}

		classes, err := r.Classes()
		if err != nil {
			return err
		}
		ci := repository.IndexOf(classes, func(c models.Class) bool { return c.ID == booking.ClassID })

		booking.Status = req.Status
		booking.UpdatedAt = now
		if req.Reason != "" {
			booking.RejectionReason = req.Reason
		}

		var notice dto.AppendNotification
		switch req.Status {
		case models.BookingConfirmed:
			enrollment, err := s.enroll(r, booking, classes, ci, now)
			if err != nil {
				return err
			}
			if ci >= 0 {
				classes[ci].EnrolledStudents++
			}
			notice = dto.AppendNotification{
				UserID:    booking.StudentID,
				Type:      models.NotificationBookingConfirmed,
				Title:     "Booking Confirmed",
				Message:   fmt.Sprintf("Your booking for %s has been confirmed", booking.ClassName),
				ActionURL: "/enrollments/" + enrollment.ID,
			}
		case models.BookingRejected:
			message := fmt.Sprintf("Your booking for %s was rejected", booking.ClassName)
			if req.Reason != "" {
				message += ": " + req.Reason
			}
			notice = dto.AppendNotification{
				UserID:    booking.StudentID,
				Type:      models.NotificationBookingRejected,
				Title:     "Booking Rejected",
				Message:   message,
				ActionURL: "/bookings/" + booking.ID,
			}
		}
		if ci >= 0 {
			classes[ci].PendingBookings = floorDecrement(classes[ci].PendingBookings)
			if err := r.SaveClasses(classes); err != nil {
				return err
			}
		}

		bookings[bi] = booking
		if err := r.SaveBookings(bookings); err != nil {
			return err
		}
		if _, err := s.notifications.stage(r, notice); err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBookingTransition(string(models.BookingPending), string(updated.Status))
	s.logger.Info("booking transitioned", zap.String("booking_id", updated.ID), zap.String("status", string(updated.Status)))
	return &updated, nil
}

// enroll creates the enrollment for a confirmed booking. Materials are copied
// so later uploads to the class do not appear on it.
func (s *BookingService) enroll(r *repository.Records, booking models.Booking, classes []models.Class, ci int, now time.Time) (models.Enrollment, error) {
	enrollments, err := r.Enrollments()
	if err != nil {
		return models.Enrollment{}, err
	}
	enrollment := models.Enrollment{
		ID:            repository.NextSequentialID(repository.PrefixEnrollment, repository.IDs(enrollments, func(e models.Enrollment) string { return e.ID })),
		StudentID:     booking.StudentID,
		ClassID:       booking.ClassID,
		ClassName:     booking.ClassName,
		TutorID:       booking.TutorID,
		TutorName:     booking.TutorName,
		TotalSessions: defaultTotalSessions,
		Materials:     []models.Material{},
		EnrolledAt:    now,
	}
	if ci >= 0 {
		class := classes[ci]
		enrollment.Subject = class.Subject
		enrollment.TutorEmail = class.TutorEmail
		enrollment.Schedule = class.Schedule
		enrollment.NextSession = class.NextSession
		if class.TotalSessions > 0 {
			enrollment.TotalSessions = class.TotalSessions
		}
		enrollment.Materials = append(enrollment.Materials, class.Materials...)
	}
	if err := r.SaveEnrollments(append(enrollments, enrollment)); err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

// Cancel marks a pending or confirmed booking cancelled. Students may only
// cancel their own bookings. A confirmed booking's enrollment stays in place,
// so no seat is freed and the waitlist is left alone.
func (s *BookingService) Cancel(ctx context.Context, claims *models.Claims, id string, req dto.CancelRequest) (*models.Booking, error) {
	now := s.now().UTC()
	var cancelled models.Booking
	var previous models.BookingStatus
	err := update(ctx, s.store, []string{repository.CollectionBookings, repository.CollectionClasses}, "failed to cancel booking", func(r *repository.Records) error {
		bookings, err := r.Bookings()
		if err != nil {
			return err
		}
		bi := repository.IndexOf(bookings, func(b models.Booking) bool { return b.ID == id })
		if bi < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
		}
		booking := bookings[bi]
		if claims.Role == models.RoleStudent && booking.StudentID != claims.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "You can only cancel your own bookings")
		}
		if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Booking is already %s", booking.Status))
		}

		previous = booking.Status
		booking.Status = models.BookingCancelled
		booking.CancelReason = req.Reason
		booking.CancelDetails = req.Details
		booking.UpdatedAt = now
		bookings[bi] = booking
		if err := r.SaveBookings(bookings); err != nil {
			return err
		}
		cancelled = booking

		if previous != models.BookingPending {
			return nil
		}
		classes, err := r.Classes()
		if err != nil {
			return err
		}
		ci := repository.IndexOf(classes, func(c models.Class) bool { return c.ID == booking.ClassID })
		if ci < 0 {
			return nil
		}
		classes[ci].PendingBookings = floorDecrement(classes[ci].PendingBookings)
		return r.SaveClasses(classes)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBookingTransition(string(previous), string(models.BookingCancelled))
	s.logger.Info("booking cancelled", zap.String("booking_id", cancelled.ID), zap.String("previous_status", string(previous)))
	return &cancelled, nil
}

// AlternativeSlots proposes weekday slots for rescheduling over the next week.
func (s *BookingService) AlternativeSlots(ctx context.Context, id string) (*dto.AlternativeSlotsResponse, error) {
	var booking models.Booking
	taken := make(map[string]struct{})
	err := view(ctx, s.store, []string{repository.CollectionBookings}, "failed to load bookings", func(r *repository.Records) error {
		bookings, err := r.Bookings()
		if err != nil {
			return err
		}
		bi := repository.IndexOf(bookings, func(b models.Booking) bool { return b.ID == id })
		if bi < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
		}
		booking = bookings[bi]
		for _, b := range bookings {
			if b.ID == booking.ID || b.TutorID != booking.TutorID || b.Status == models.BookingCancelled {
				continue
			}
			taken[b.Slot.Date+" "+b.Slot.StartTime] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.AlternativeSlotsResponse{
		CurrentBooking: dto.CurrentBooking{
			ID:          booking.ID,
			ClassName:   booking.ClassName,
			TutorName:   booking.TutorName,
			CurrentSlot: booking.Slot,
		},
		AlternativeSlots: alternativeSlots(s.now().UTC(), taken, s.slots),
	}, nil
}

// Reschedule moves a pending or confirmed booking to a new slot and notifies
// the tutor. Students may only reschedule their own bookings.
func (s *BookingService) Reschedule(ctx context.Context, claims *models.Claims, id string, req dto.RescheduleRequest) (*dto.RescheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "New slot information is required")
	}

	now := s.now().UTC()
	names := []string{repository.CollectionBookings, repository.CollectionTutors, repository.CollectionNotifications}
	var updated models.Booking
	err := update(ctx, s.store, names, "failed to reschedule booking", func(r *repository.Records) error {
		bookings, err := r.Bookings()
		if err != nil {
			return err
		}
		bi := repository.IndexOf(bookings, func(b models.Booking) bool { return b.ID == id })
		if bi < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
		}
		booking := bookings[bi]
		if claims.Role == models.RoleStudent && booking.StudentID != claims.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "You can only reschedule your own bookings")
		}
		if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot reschedule a %s booking", booking.Status))
		}

		old := booking.Slot
		booking.Slot = *req.NewSlot
		booking.RescheduledFrom = &old
		booking.RescheduledAt = &now
		booking.UpdatedAt = now
		bookings[bi] = booking
		if err := r.SaveBookings(bookings); err != nil {
			return err
		}
		updated = booking

		tutors, err := r.Tutors()
		if err != nil {
			return err
		}
		tutor, ok := repository.FindTutor(tutors, booking.TutorID)
		if !ok || tutor.UserID == "" {
			return nil
		}
		_, err = s.notifications.stage(r, dto.AppendNotification{
			UserID:    tutor.UserID,
			Type:      models.NotificationBookingRescheduled,
			Title:     "Booking Rescheduled",
			Message:   fmt.Sprintf("%s rescheduled their session for %s from %s to %s", claims.Name, booking.ClassName, old.Date, booking.Slot.Date),
			ActionURL: "/bookings/" + booking.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.RescheduleResponse{Booking: updated, Message: "Booking rescheduled successfully"}, nil
}

func floorDecrement(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}
