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

const defaultWaitlistReason = "Looking for available slot"

// WaitlistService records standby requests against classes or tutors.
type WaitlistService struct {
	store         recordStore
	notifications *NotificationService
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewWaitlistService constructs the service.
func NewWaitlistService(store recordStore, notifications *NotificationService, validate *validator.Validate, logger *zap.Logger) *WaitlistService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistService{store: store, notifications: notifications, validator: validate, logger: logger, now: time.Now}
}

// Add creates a waiting entry. A student holds at most one entry per class,
// or per tutor when no class is given.
func (s *WaitlistService) Add(ctx context.Context, claims *models.Claims, req dto.AddWaitlistRequest) (*dto.WaitlistAddResponse, error) {
	if req.ClassID == "" && req.TutorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Either classId or tutorId is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "preferred slots need date, startTime and endTime")
	}

	entry := models.WaitlistEntry{
		ID:             repository.ShortID(repository.PrefixWaitlist),
		StudentID:      claims.UserID,
		StudentName:    claims.Name,
		StudentEmail:   claims.Email,
		PreferredSlots: req.PreferredSlots,
		Reason:         valueOr(req.Reason, defaultWaitlistReason),
		Status:         models.WaitlistWaiting,
		CreatedAt:      s.now().UTC(),
	}
	if entry.PreferredSlots == nil {
		entry.PreferredSlots = []models.Slot{}
	}
	if req.ClassID != "" {
		entry.ClassID = &req.ClassID
	}
	if req.TutorID != "" {
		entry.TutorID = &req.TutorID
	}
	target := entry.Target()

	names := []string{repository.CollectionWaitlist, repository.CollectionClasses, repository.CollectionTutors}
	err := update(ctx, s.store, names, "failed to join waitlist", func(r *repository.Records) error {
		waitlist, err := r.Waitlist()
		if err != nil {
			return err
		}
		if repository.IndexOf(waitlist, func(w models.WaitlistEntry) bool {
			return w.StudentID == claims.UserID && w.Target() == target
		}) >= 0 {
			return appErrors.Clone(appErrors.ErrConflict, "You are already on the waitlist for this class/tutor")
		}

		classes, err := r.Classes()
		if err != nil {
			return err
		}
		tutors, err := r.Tutors()
		if err != nil {
			return err
		}
		if ci := repository.IndexOf(classes, func(c models.Class) bool { return c.ID == req.ClassID }); ci >= 0 {
			class := classes[ci]
			entry.ClassName = &class.Name
			if entry.TutorID == nil {
				entry.TutorID = &class.TutorID
			}
			entry.TutorName = &class.TutorName
		}
		if entry.TutorID != nil {
			if t, ok := repository.FindTutor(tutors, *entry.TutorID); ok {
				entry.TutorName = &t.Name
			}
		}
		return r.SaveWaitlist(append(waitlist, entry))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("waitlist joined", zap.String("entry_id", entry.ID), zap.String("target", target))
	return &dto.WaitlistAddResponse{
		WaitlistEntry: entry,
		Message:       "You have been added to the waitlist. We will notify you when a slot becomes available.",
	}, nil
}

// Remove deletes an entry. Students may only remove their own.
func (s *WaitlistService) Remove(ctx context.Context, claims *models.Claims, id string) error {
	return update(ctx, s.store, []string{repository.CollectionWaitlist}, "failed to leave waitlist", func(r *repository.Records) error {
		waitlist, err := r.Waitlist()
		if err != nil {
			return err
		}
		idx := repository.IndexOf(waitlist, func(w models.WaitlistEntry) bool { return w.ID == id })
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Waitlist entry not found")
		}
		if claims.Role == models.RoleStudent && waitlist[idx].StudentID != claims.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "You can only remove your own waitlist entries")
		}
		return r.SaveWaitlist(append(waitlist[:idx], waitlist[idx+1:]...))
	})
}

// List returns entries visible to the caller.
func (s *WaitlistService) List(ctx context.Context, claims *models.Claims) ([]models.WaitlistEntry, error) {
	var result []models.WaitlistEntry
	err := view(ctx, s.store, []string{repository.CollectionWaitlist, repository.CollectionTutors}, "failed to list waitlist", func(r *repository.Records) error {
		waitlist, err := r.Waitlist()
		if err != nil {
			return err
		}
		switch claims.Role {
		case models.RoleStudent:
			result = repository.Filter(waitlist, func(w models.WaitlistEntry) bool { return w.StudentID == claims.UserID })
		case models.RoleTutor:
			tutors, err := r.Tutors()
			if err != nil {
				return err
			}
			tutorID := claims.UserID
			if t, ok := repository.FindTutorByUser(tutors, claims.UserID); ok {
				tutorID = t.ID
			}
			result = repository.Filter(waitlist, func(w models.WaitlistEntry) bool { return w.TutorID != nil && *w.TutorID == tutorID })
		default:
			result = waitlist
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Release marks waiting entries for a class as notified and tells each
// student a place may be free. It returns the number of entries released.
func (s *WaitlistService) Release(ctx context.Context, classID string) (int, error) {
	if classID == "" {
		return 0, nil
	}
	now := s.now().UTC()
	released := 0
	err := update(ctx, s.store, []string{repository.CollectionWaitlist, repository.CollectionNotifications}, "failed to release waitlist", func(r *repository.Records) error {
		waitlist, err := r.Waitlist()
		if err != nil {
			return err
		}
		var notices []dto.AppendNotification
		for i := range waitlist {
			w := &waitlist[i]
			if w.Status != models.WaitlistWaiting || w.ClassID == nil || *w.ClassID != classID {
				continue
			}
			w.Status = models.WaitlistNotified
			w.NotifiedAt = &now
			className := classID
			if w.ClassName != nil {
				className = *w.ClassName
			}
			notices = append(notices, dto.AppendNotification{
				UserID:    w.StudentID,
				Type:      models.NotificationWaitlistAvailable,
				Title:     "Slot Available",
				Message:   fmt.Sprintf("A place opened up in %s. Book now before it is taken.", className),
				ActionURL: "/classes/" + classID,
			})
		}
		if len(notices) == 0 {
			return nil
		}
		released = len(notices)
		if err := r.SaveWaitlist(waitlist); err != nil {
			return err
		}
		_, err = s.notifications.stage(r, notices...)
		return err
	})
	if err != nil {
		return 0, err
	}
	if released > 0 {
		s.logger.Info("waitlist released", zap.String("class_id", classID), zap.Int("entries", released))
	}
	return released, nil
}
