package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

// NotificationService manages per-user inboxes. Other services append
// notifications through stage so they land in the same commit as the change
// that caused them.
type NotificationService struct {
	store     recordStore
	stamper   *Stamper
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(store recordStore, stamper *Stamper, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if stamper == nil {
		stamper = NewStamper(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, stamper: stamper, validator: validate, logger: logger}
}

// Append stores a new unread notification.
func (s *NotificationService) Append(ctx context.Context, req dto.AppendNotification) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "userId, type and title are required")
	}
	var created models.Notification
	err := update(ctx, s.store, []string{repository.CollectionNotifications}, "failed to append notification", func(r *repository.Records) error {
		out, err := s.stage(r, req)
		if err != nil {
			return err
		}
		created = out[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// stage appends notifications inside an open update that holds the
// notifications collection.
func (s *NotificationService) stage(r *repository.Records, reqs ...dto.AppendNotification) ([]models.Notification, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	items, err := r.Notifications()
	if err != nil {
		return nil, err
	}
	created := make([]models.Notification, 0, len(reqs))
	for _, req := range reqs {
		n := models.Notification{
			ID:        repository.ShortID(repository.PrefixNotification),
			UserID:    req.UserID,
			Type:      req.Type,
			Title:     req.Title,
			Message:   req.Message,
			ActionURL: req.ActionURL,
			CreatedAt: s.stamper.Next(),
		}
		items = append(items, n)
		created = append(created, n)
	}
	if err := r.SaveNotifications(items); err != nil {
		return nil, err
	}
	return created, nil
}

// List returns the user's notifications newest first.
func (s *NotificationService) List(ctx context.Context, userID string) (*dto.NotificationListResponse, error) {
	var resp dto.NotificationListResponse
	err := view(ctx, s.store, []string{repository.CollectionNotifications}, "failed to list notifications", func(r *repository.Records) error {
		items, err := r.Notifications()
		if err != nil {
			return err
		}
		resp.Notifications = newestFirst(repository.Filter(items, func(n models.Notification) bool { return n.UserID == userID }))
		resp.UnreadCount = unread(resp.Notifications)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkRead flips the read flag. Notifications owned by someone else are
// reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	var marked models.Notification
	err := update(ctx, s.store, []string{repository.CollectionNotifications}, "failed to mark notification", func(r *repository.Records) error {
		items, err := r.Notifications()
		if err != nil {
			return err
		}
		idx := repository.IndexOf(items, func(n models.Notification) bool { return n.ID == id && n.UserID == userID })
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Notification not found")
		}
		if items[idx].Read {
			marked = items[idx]
			return nil
		}
		items[idx].Read = true
		marked = items[idx]
		return r.SaveNotifications(items)
	})
	if err != nil {
		return nil, err
	}
	return &marked, nil
}

// Poll returns notifications created strictly after since together with a
// cursor for the next call. An empty since means the epoch.
func (s *NotificationService) Poll(ctx context.Context, userID, since string) (*dto.NotificationPollResponse, error) {
	cursor := time.Unix(0, 0).UTC()
	if since != "" {
		parsed, err := time.Parse(time.RFC3339Nano, since)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "since must be an RFC3339 timestamp")
		}
		cursor = parsed
	}

	var resp dto.NotificationPollResponse
	err := view(ctx, s.store, []string{repository.CollectionNotifications}, "failed to poll notifications", func(r *repository.Records) error {
		items, err := r.Notifications()
		if err != nil {
			return err
		}
		mine := repository.Filter(items, func(n models.Notification) bool { return n.UserID == userID })
		resp.Notifications = newestFirst(repository.Filter(mine, func(n models.Notification) bool { return n.CreatedAt.After(cursor) }))
		resp.UnreadCount = unread(mine)
		// Taken under the read lock: anything committed later is stamped after it.
		resp.Timestamp = s.stamper.Next()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func newestFirst(items []models.Notification) []models.Notification {
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items
}

func unread(items []models.Notification) int {
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count
}
