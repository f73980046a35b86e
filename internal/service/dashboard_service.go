package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
)

type detectionClock interface {
	LastDetection() time.Time
}

// DashboardService aggregates per-role overview data.
type DashboardService struct {
	store  recordStore
	risk   detectionClock
	logger *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(store recordStore, risk detectionClock, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: store, risk: risk, logger: logger}
}

// Tutor summarises the caller's classes.
func (s *DashboardService) Tutor(ctx context.Context, claims *models.Claims) (*dto.TutorDashboard, error) {
	resp := &dto.TutorDashboard{}
	err := view(ctx, s.store, []string{repository.CollectionClasses, repository.CollectionTutors}, "failed to build tutor dashboard", func(r *repository.Records) error {
		tutors, err := r.Tutors()
		if err != nil {
			return err
		}
		classes, err := r.Classes()
		if err != nil {
			return err
		}
		tutorID := claims.UserID
		if t, ok := repository.FindTutorByUser(tutors, claims.UserID); ok {
			tutorID = t.ID
		}
		resp.Classes = repository.Filter(classes, func(c models.Class) bool { return c.TutorID == tutorID })
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.TotalClasses = len(resp.Classes)
	for _, c := range resp.Classes {
		resp.TotalStudents += c.EnrolledStudents
		resp.PendingBookings += c.PendingBookings
		if c.Status == models.ClassStatusActive {
			resp.UpcomingSessions++
		}
	}
	return resp, nil
}

// Student summarises the caller's enrollments and bookings.
func (s *DashboardService) Student(ctx context.Context, claims *models.Claims) (*dto.StudentDashboard, error) {
	resp := &dto.StudentDashboard{}
	err := view(ctx, s.store, []string{repository.CollectionEnrollments, repository.CollectionBookings}, "failed to build student dashboard", func(r *repository.Records) error {
		enrollments, err := r.Enrollments()
		if err != nil {
			return err
		}
		bookings, err := r.Bookings()
		if err != nil {
			return err
		}
		resp.Enrollments = repository.Filter(enrollments, func(e models.Enrollment) bool { return e.StudentID == claims.UserID })
		resp.PendingBookings = len(repository.Filter(bookings, func(b models.Booking) bool {
			return b.StudentID == claims.UserID && b.Status == models.BookingPending
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.TotalEnrollments = len(resp.Enrollments)
	sum, graded := 0.0, 0
	for _, e := range resp.Enrollments {
		if e.Grade != nil {
			sum += *e.Grade
			graded++
		}
	}
	if graded > 0 {
		avg := math.Round(sum / float64(graded))
		resp.AverageGrade = &avg
	}
	return resp, nil
}

// CTSV summarises the at-risk roster.
func (s *DashboardService) CTSV(ctx context.Context) (*dto.CTSVDashboard, error) {
	var students []models.RiskStudent
	err := view(ctx, s.store, []string{repository.CollectionRiskStudents}, "failed to build ctsv dashboard", func(r *repository.Records) error {
		var err error
		students, err = r.RiskStudents()
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.CTSVDashboard{TotalStudentsAtRisk: len(students)}
	for _, st := range students {
		switch st.Level() {
		case models.RiskHigh:
			resp.HighRiskCount++
		case models.RiskMedium:
			resp.MediumRiskCount++
		default:
			resp.LowRiskCount++
		}
		for _, in := range st.Interventions {
			if in.Status != models.InterventionCompleted {
				resp.InterventionsPending++
			}
		}
	}
	if s.risk != nil {
		resp.LastDetectionRun = s.risk.LastDetection()
	} else {
		resp.LastDetectionRun = time.Now().UTC()
	}
	return resp, nil
}
