package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

const defaultDropReason = "No reason provided"

type waitlistScheduler interface {
	ScheduleWaitlistRelease(classID string)
}

// EnrollmentService manages grades, drops and class rosters.
type EnrollmentService struct {
	store         recordStore
	notifications *NotificationService
	waitlist      waitlistScheduler
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewEnrollmentService constructs the service. waitlist may be nil.
func NewEnrollmentService(store recordStore, notifications *NotificationService, waitlist waitlistScheduler, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, notifications: notifications, waitlist: waitlist, validator: validate, logger: logger, now: time.Now}
}

// List returns the caller's enrollments for students and every enrollment otherwise.
func (s *EnrollmentService) List(ctx context.Context, claims *models.Claims) ([]models.Enrollment, error) {
	if claims.Role == models.RoleStudent {
		return s.ListByStudent(ctx, claims.UserID)
	}
	return s.filter(ctx, func(models.Enrollment) bool { return true })
}

// ListByStudent returns one student's enrollments.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return s.filter(ctx, func(e models.Enrollment) bool { return e.StudentID == studentID })
}

func (s *EnrollmentService) filter(ctx context.Context, keep func(models.Enrollment) bool) ([]models.Enrollment, error) {
	var result []models.Enrollment
	err := view(ctx, s.store, []string{repository.CollectionEnrollments}, "failed to list enrollments", func(r *repository.Records) error {
		enrollments, err := r.Enrollments()
		if err != nil {
			return err
		}
		result = repository.Filter(enrollments, keep)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateGrade applies a partial grade/feedback update and notifies the student.
// Tutors may only grade enrollments of their own classes.
func (s *EnrollmentService) UpdateGrade(ctx context.Context, claims *models.Claims, id string, req dto.UpdateGradeRequest) (*models.Enrollment, error) {
	if req.Grade.Value != nil && *req.Grade.Value < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade must not be negative")
	}

	now := s.now().UTC()
	var updated models.Enrollment
	names := []string{repository.CollectionEnrollments, repository.CollectionTutors, repository.CollectionNotifications}
	err := update(ctx, s.store, names, "failed to update grade", func(r *repository.Records) error {
		enrollments, err := r.Enrollments()
		if err != nil {
			return err
		}
		idx := repository.IndexOf(enrollments, func(e models.Enrollment) bool { return e.ID == id })
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Enrollment not found")
		}
		if claims != nil && claims.Role == models.RoleTutor {
			tutors, err := r.Tutors()
			if err != nil {
				return err
			}
			if t, ok := repository.FindTutorByUser(tutors, claims.UserID); !ok || t.ID != enrollments[idx].TutorID {
				return appErrors.Clone(appErrors.ErrForbidden, "You can only grade students in your own classes")
			}
		}
		if req.Grade.Set {
			enrollments[idx].Grade = req.Grade.Value
		}
		if req.Feedback.Set {
			enrollments[idx].Feedback = req.Feedback.Value
		}
		enrollments[idx].UpdatedAt = &now
		if err := r.SaveEnrollments(enrollments); err != nil {
			return err
		}
		updated = enrollments[idx]

		message := fmt.Sprintf("Your grade for %s has been updated", updated.ClassName)
		if req.Grade.Value != nil && *req.Grade.Value != 0 {
			message += ": " + strconv.FormatFloat(*req.Grade.Value, 'f', -1, 64)
		}
		_, err = s.notifications.stage(r, dto.AppendNotification{
			UserID:    updated.StudentID,
			Type:      models.NotificationGradeUpdated,
			Title:     "Grade Updated",
			Message:   message,
			ActionURL: "/enrollments/" + updated.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("grade updated", zap.String("enrollment_id", updated.ID))
	return &updated, nil
}

// Drop hard-deletes an enrollment, decrements the class counter and notifies
// the tutor. Students may only drop their own enrollments.
func (s *EnrollmentService) Drop(ctx context.Context, claims *models.Claims, id string, req dto.CancelRequest) (*dto.DropEnrollmentResponse, error) {
	names := []string{repository.CollectionEnrollments, repository.CollectionClasses, repository.CollectionTutors, repository.CollectionNotifications}
	var dropped models.Enrollment
	err := update(ctx, s.store, names, "failed to drop enrollment", func(r *repository.Records) error {
		enrollments, err := r.Enrollments()
		if err != nil {
			return err
		}
		idx := repository.IndexOf(enrollments, func(e models.Enrollment) bool { return e.ID == id })
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Enrollment not found")
		}
		dropped = enrollments[idx]
		if claims.Role == models.RoleStudent && dropped.StudentID != claims.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "You can only cancel your own enrollments")
		}
		enrollments = append(enrollments[:idx], enrollments[idx+1:]...)
		if err := r.SaveEnrollments(enrollments); err != nil {
			return err
		}

		classes, err := r.Classes()
		if err != nil {
			return err
		}
		if ci := repository.IndexOf(classes, func(c models.Class) bool { return c.ID == dropped.ClassID }); ci >= 0 {
			classes[ci].EnrolledStudents = floorDecrement(classes[ci].EnrolledStudents)
			if err := r.SaveClasses(classes); err != nil {
				return err
			}
		}

		recipient := dropped.TutorID
		tutors, err := r.Tutors()
		if err != nil {
			return err
		}
		if t, ok := repository.FindTutor(tutors, dropped.TutorID); ok && t.UserID != "" {
			recipient = t.UserID
		}
		_, err = s.notifications.stage(r, dto.AppendNotification{
			UserID:    recipient,
			Type:      models.NotificationEnrollmentCancelled,
			Title:     "Student Dropped Class",
			Message:   dropMessage(claims.Name, dropped.ClassName, req),
			ActionURL: "/classes/" + dropped.ClassID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("enrollment dropped", zap.String("enrollment_id", dropped.ID), zap.String("class_id", dropped.ClassID))
	if s.waitlist != nil {
		s.waitlist.ScheduleWaitlistRelease(dropped.ClassID)
	}
	return &dto.DropEnrollmentResponse{Message: "Enrollment cancelled successfully", Enrollment: dropped}, nil
}

func dropMessage(actor, className string, req dto.CancelRequest) string {
	if actor == "" {
		actor = "A student"
	}
	reason := valueOr(req.Reason, defaultDropReason)
	message := fmt.Sprintf("%s has dropped %s. Reason: %s", actor, className, reason)
	if req.Details != "" {
		message += " - " + req.Details
	}
	return message
}

// ListClassStudents joins a class's enrollments with their user records.
func (s *EnrollmentService) ListClassStudents(ctx context.Context, classID string) (*dto.ClassStudentsResponse, error) {
	resp := &dto.ClassStudentsResponse{Students: []models.ClassStudent{}}
	err := view(ctx, s.store, []string{repository.CollectionEnrollments, repository.CollectionUsers}, "failed to list class students", func(r *repository.Records) error {
		enrollments, err := r.Enrollments()
		if err != nil {
			return err
		}
		users, err := r.Users()
		if err != nil {
			return err
		}
		for _, e := range enrollments {
			if e.ClassID != classID {
				continue
			}
			student := models.ClassStudent{
				EnrollmentID:      e.ID,
				StudentID:         e.StudentID,
				Name:              e.StudentID,
				EnrolledAt:        e.EnrolledAt,
				Grade:             e.Grade,
				Feedback:          e.Feedback,
				CompletedSessions: e.CompletedSessions,
				TotalSessions:     e.TotalSessions,
			}
			if u, ok := repository.FindUser(users, e.StudentID); ok {
				student.Name = u.Name
				student.Email = u.Email
			}
			resp.Students = append(resp.Students, student)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
