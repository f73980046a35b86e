package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/export"
)

const commonRiskFactorLimit = 3

type interventionNotifier interface {
	NotifyInterventionCreated(notice InterventionNotice)
}

// RiskService runs at-risk detection over the student roster and records
// interventions.
type RiskService struct {
	store     recordStore
	notifier  interventionNotifier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	mu            sync.RWMutex
	lastDetection time.Time
}

// NewRiskService constructs the service. notifier may be nil.
func NewRiskService(store recordStore, notifier interventionNotifier, validate *validator.Validate, logger *zap.Logger) *RiskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskService{store: store, notifier: notifier, validator: validate, logger: logger, now: time.Now}
}

// LastDetection returns when detection last ran, or now when it never has.
func (s *RiskService) LastDetection() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastDetection.IsZero() {
		return s.now().UTC()
	}
	return s.lastDetection
}

func (s *RiskService) roster(ctx context.Context) ([]models.RiskStudent, error) {
	var students []models.RiskStudent
	err := view(ctx, s.store, []string{repository.CollectionRiskStudents}, "failed to load risk roster", func(r *repository.Records) error {
		var err error
		students, err = r.RiskStudents()
		return err
	})
	return students, err
}

func parseRiskLevel(raw string) (models.RiskLevel, error) {
	level := models.RiskLevel(strings.ToLower(strings.TrimSpace(raw)))
	switch level {
	case "", models.RiskHigh, models.RiskMedium, models.RiskLow:
		return level, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "riskLevel must be high, medium or low")
	}
}

func filterByLevel(students []models.RiskStudent, level models.RiskLevel) []models.RiskStudent {
	filtered := repository.Filter(students, func(st models.RiskStudent) bool {
		return level == "" || st.Level() == level
	})
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].RiskScore > filtered[j].RiskScore })
	return filtered
}

// Assessment lists roster students, highest risk first, with a roster summary.
func (s *RiskService) Assessment(ctx context.Context, riskLevel string) (*dto.RiskAssessmentResponse, error) {
	level, err := parseRiskLevel(riskLevel)
	if err != nil {
		return nil, err
	}
	students, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.RiskAssessmentResponse{
		Students:      filterByLevel(students, level),
		Summary:       summarize(students),
		LastDetection: s.LastDetection(),
	}, nil
}

func summarize(students []models.RiskStudent) dto.RiskSummary {
	summary := dto.RiskSummary{TotalAtRisk: len(students), CommonRiskFactors: commonRiskFactors(students)}
	total := 0.0
	for _, st := range students {
		total += st.RiskScore
		switch st.Level() {
		case models.RiskHigh:
			summary.HighRisk++
		case models.RiskMedium:
			summary.MediumRisk++
		default:
			summary.LowRisk++
		}
	}
	if len(students) > 0 {
		summary.AverageRiskScore = int(math.Round(total / float64(len(students))))
	}
	return summary
}

// commonRiskFactors returns the most frequent factors, first seen wins ties.
func commonRiskFactors(students []models.RiskStudent) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, st := range students {
		for _, f := range st.RiskFactors {
			if _, ok := counts[f]; !ok {
				order = append(order, f)
			}
			counts[f]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > commonRiskFactorLimit {
		order = order[:commonRiskFactorLimit]
	}
	return order
}

// RunDetection selects students below either threshold. Matches are stamped
// with lastDetected in the response only; the stored roster is unchanged.
func (s *RiskService) RunDetection(ctx context.Context, req dto.RunDetectionRequest) (*dto.DetectionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "thresholds must be non-negative and attendance at most 100")
	}
	thresholds := dto.Thresholds{Attendance: req.AttendanceThreshold, Grade: req.GradeThreshold}
	if thresholds.Attendance == 0 {
		thresholds.Attendance = dto.DefaultAttendanceThreshold
	}
	if thresholds.Grade == 0 {
		thresholds.Grade = dto.DefaultGradeThreshold
	}

	students, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	resp := &dto.DetectionResponse{
		DetectionID:    repository.ShortID(repository.PrefixDetection),
		Timestamp:      now,
		ThresholdsUsed: thresholds,
		Students:       []models.RiskStudent{},
	}
	for _, st := range students {
		if st.Attendance >= thresholds.Attendance && st.GradesAvg >= thresholds.Grade {
			continue
		}
		st.LastDetected = &now
		resp.Students = append(resp.Students, st)
		switch st.Level() {
		case models.RiskHigh:
			resp.HighRisk++
		case models.RiskMedium:
			resp.MediumRisk++
		default:
			resp.LowRisk++
		}
	}
	resp.StudentsDetected = len(resp.Students)

	s.mu.Lock()
	s.lastDetection = now
	s.mu.Unlock()

	s.logger.Info("risk detection run",
		zap.String("detection_id", resp.DetectionID),
		zap.Float64("attendance_threshold", thresholds.Attendance),
		zap.Float64("grade_threshold", thresholds.Grade),
		zap.Int("detected", resp.StudentsDetected),
	)
	return resp, nil
}

// GetStudent finds a roster entry by its id or the student's user id.
func (s *RiskService) GetStudent(ctx context.Context, id string) (*models.RiskStudent, error) {
	students, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}
	idx := repository.IndexOf(students, func(st models.RiskStudent) bool { return st.ID == id || st.StudentID == id })
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	}
	return &students[idx], nil
}

// ListInterventions returns every intervention, newest first.
func (s *RiskService) ListInterventions(ctx context.Context) (*dto.InterventionListResponse, error) {
	students, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]dto.InterventionView, 0)
	for _, st := range students {
		for _, in := range st.Interventions {
			views = append(views, dto.InterventionView{Intervention: in, StudentID: st.StudentID, StudentName: st.Name})
		}
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	return &dto.InterventionListResponse{Interventions: views}, nil
}

// StudentInterventions lists one student's interventions.
func (s *RiskService) StudentInterventions(ctx context.Context, studentID string) (*dto.StudentInterventionsResponse, error) {
	students, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}
	idx := repository.IndexOf(students, func(st models.RiskStudent) bool { return st.StudentID == studentID })
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	}
	st := students[idx]
	interventions := st.Interventions
	if interventions == nil {
		interventions = []models.Intervention{}
	}
	return &dto.StudentInterventionsResponse{StudentID: st.StudentID, StudentName: st.Name, Interventions: interventions}, nil
}

// CreateIntervention appends an intervention to a roster student.
func (s *RiskService) CreateIntervention(ctx context.Context, claims *models.Claims, req dto.CreateInterventionRequest) (*dto.CreateInterventionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "studentId and interventionType are required")
	}

	methods := req.NotifyMethod
	if len(methods) == 0 {
		methods = req.NotificationMethods
	}
	if methods == nil {
		methods = []string{}
	}
	intervention := models.Intervention{
		ID:                  repository.ShortID(repository.PrefixIntervention),
		Type:                req.InterventionType,
		Notes:               req.Notes,
		NotifyStudent:       req.NotifyStudent,
		NotifyParent:        req.NotifyParent,
		NotificationMethods: methods,
		FollowUpDate:        req.FollowUpDate,
		AssignedTo:          valueOr(req.AssignedTo, claims.UserID),
		Status:              models.InterventionCreated,
		CreatedBy:           claims.Name,
		CreatedAt:           s.now().UTC(),
	}

	err := update(ctx, s.store, []string{repository.CollectionRiskStudents}, "failed to create intervention", func(r *repository.Records) error {
		students, err := r.RiskStudents()
		if err != nil {
			return err
		}
		idx := repository.IndexOf(students, func(st models.RiskStudent) bool { return st.StudentID == req.StudentID })
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		students[idx].Interventions = append(students[idx].Interventions, intervention)
		return r.SaveRiskStudents(students)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("intervention created", zap.String("intervention_id", intervention.ID), zap.String("student_id", req.StudentID))
	if intervention.NotifyStudent && s.notifier != nil {
		s.notifier.NotifyInterventionCreated(InterventionNotice{
			InterventionID: intervention.ID,
			StudentID:      req.StudentID,
			Type:           intervention.Type,
			FollowUpDate:   intervention.FollowUpDate,
		})
	}
	return &dto.CreateInterventionResponse{
		ID:        intervention.ID,
		StudentID: req.StudentID,
		Status:    intervention.Status,
		CreatedAt: intervention.CreatedAt,
		Notifications: dto.InterventionNotifications{
			StudentNotified: intervention.NotifyStudent,
			ParentNotified:  intervention.NotifyParent,
		},
	}, nil
}

// UpdateIntervention merges the supplied fields into an intervention.
func (s *RiskService) UpdateIntervention(ctx context.Context, id string, req dto.UpdateInterventionRequest) (*models.Intervention, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status must be created, in_progress or completed")
	}

	now := s.now().UTC()
	var updated models.Intervention
	err := update(ctx, s.store, []string{repository.CollectionRiskStudents}, "failed to update intervention", func(r *repository.Records) error {
		students, err := r.RiskStudents()
		if err != nil {
			return err
		}
		for i := range students {
			for j := range students[i].Interventions {
				in := &students[i].Interventions[j]
				if in.ID != id {
					continue
				}
				applyInterventionUpdate(in, req)
				in.UpdatedAt = &now
				updated = *in
				return r.SaveRiskStudents(students)
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "Intervention not found")
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func applyInterventionUpdate(in *models.Intervention, req dto.UpdateInterventionRequest) {
	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.Notes != nil {
		in.Notes = *req.Notes
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.FollowUpDate != nil {
		in.FollowUpDate = *req.FollowUpDate
	}
	if req.AssignedTo != nil {
		in.AssignedTo = *req.AssignedTo
	}
	if req.NotifyStudent != nil {
		in.NotifyStudent = *req.NotifyStudent
	}
	if req.NotifyParent != nil {
		in.NotifyParent = *req.NotifyParent
	}
	if req.NotificationMethods != nil {
		in.NotificationMethods = req.NotificationMethods
	}
	if req.Outcome != nil {
		in.Outcome = *req.Outcome
	}
}

// Export renders the roster, optionally narrowed to one risk band.
func (s *RiskService) Export(ctx context.Context, format, riskLevel string) (*dto.ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	level, err := parseRiskLevel(riskLevel)
	if err != nil {
		return nil, err
	}
	students, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   "At-Risk Students",
		Columns: []string{"Student ID", "Name", "Risk Level", "Risk Score", "Attendance", "Grades Avg", "Risk Factors", "Interventions"},
	}
	for _, st := range filterByLevel(students, level) {
		table.Rows = append(table.Rows, []string{
			st.StudentID,
			st.Name,
			string(st.Level()),
			strconv.FormatFloat(st.RiskScore, 'f', -1, 64),
			strconv.FormatFloat(st.Attendance, 'f', -1, 64),
			strconv.FormatFloat(st.GradesAvg, 'f', -1, 64),
			strings.Join(st.RiskFactors, "; "),
			strconv.Itoa(len(st.Interventions)),
		})
	}
	body, err := export.Render(f, table)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render risk export")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("risk-assessment-%s.%s", s.now().UTC().Format("20060102"), f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}
