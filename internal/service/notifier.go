package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	"github.com/noah-isme/tutor-booking-api/pkg/jobs"
)

// Background job types.
const (
	JobWaitlistRelease    = "waitlist.release"
	JobInterventionNotify = "intervention.notify"
)

type jobQueue interface {
	Register(jobType string, handler jobs.Handler)
	Enqueue(job jobs.Job) error
}

type waitlistReleaser interface {
	Release(ctx context.Context, classID string) (int, error)
}

type notificationAppender interface {
	Append(ctx context.Context, req dto.AppendNotification) (*models.Notification, error)
}

// InterventionNotice is the payload of an intervention notification job.
type InterventionNotice struct {
	InterventionID string
	StudentID      string
	Type           string
	FollowUpDate   string
}

// Notifier defers side effects that must not hold up the request that
// triggered them.
type Notifier struct {
	queue         jobQueue
	waitlist      waitlistReleaser
	notifications notificationAppender
	logger        *zap.Logger
}

// NewNotifier registers the job handlers on queue.
func NewNotifier(queue jobQueue, waitlist waitlistReleaser, notifications notificationAppender, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifier{queue: queue, waitlist: waitlist, notifications: notifications, logger: logger}
	queue.Register(JobWaitlistRelease, n.handleWaitlistRelease)
	queue.Register(JobInterventionNotify, n.handleInterventionNotify)
	return n
}

// ScheduleWaitlistRelease queues a waitlist release for the class.
func (n *Notifier) ScheduleWaitlistRelease(classID string) {
	n.enqueue(JobWaitlistRelease, classID)
}

// NotifyInterventionCreated queues the student-facing intervention notice.
func (n *Notifier) NotifyInterventionCreated(notice InterventionNotice) {
	n.enqueue(JobInterventionNotify, notice)
}

func (n *Notifier) enqueue(jobType string, payload interface{}) {
	job := jobs.Job{ID: repository.ShortID("job"), Type: jobType, Payload: payload}
	if err := n.queue.Enqueue(job); err != nil {
		n.logger.Warn("failed to enqueue job", zap.String("type", jobType), zap.Error(err))
	}
}

func (n *Notifier) handleWaitlistRelease(ctx context.Context, job jobs.Job) error {
	classID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	_, err := n.waitlist.Release(ctx, classID)
	return err
}

func (n *Notifier) handleInterventionNotify(ctx context.Context, job jobs.Job) error {
	notice, ok := job.Payload.(InterventionNotice)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	message := fmt.Sprintf("Student affairs opened a %s intervention for you.", notice.Type)
	if notice.FollowUpDate != "" {
		message += " Follow-up on " + notice.FollowUpDate + "."
	}
	_, err := n.notifications.Append(ctx, dto.AppendNotification{
		UserID:    notice.StudentID,
		Type:      models.NotificationInterventionCreated,
		Title:     "Support Intervention",
		Message:   message,
		ActionURL: "/interventions/" + notice.InterventionID,
	})
	return err
}
