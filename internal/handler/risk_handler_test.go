package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

type fakeRiskSrv struct {
	level     string
	format    string
	detection dto.RunDetectionRequest
}

func (f *fakeRiskSrv) Assessment(_ context.Context, riskLevel string) (*dto.RiskAssessmentResponse, error) {
	f.level = riskLevel
	if riskLevel == "critical" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "riskLevel must be high, medium or low")
	}
	return &dto.RiskAssessmentResponse{Students: []models.RiskStudent{}}, nil
}

func (f *fakeRiskSrv) RunDetection(_ context.Context, req dto.RunDetectionRequest) (*dto.DetectionResponse, error) {
	f.detection = req
	return &dto.DetectionResponse{DetectionID: "det_12345678"}, nil
}

func (f *fakeRiskSrv) GetStudent(context.Context, string) (*models.RiskStudent, error) {
	return &models.RiskStudent{ID: "rsk_001"}, nil
}

func (f *fakeRiskSrv) ListInterventions(context.Context) (*dto.InterventionListResponse, error) {
	return &dto.InterventionListResponse{}, nil
}

func (f *fakeRiskSrv) StudentInterventions(context.Context, string) (*dto.StudentInterventionsResponse, error) {
	return &dto.StudentInterventionsResponse{}, nil
}

func (f *fakeRiskSrv) CreateIntervention(_ context.Context, _ *models.Claims, req dto.CreateInterventionRequest) (*dto.CreateInterventionResponse, error) {
	return &dto.CreateInterventionResponse{ID: "int_1", StudentID: req.StudentID, Status: models.InterventionCreated}, nil
}

func (f *fakeRiskSrv) UpdateIntervention(_ context.Context, id string, _ dto.UpdateInterventionRequest) (*models.Intervention, error) {
	return &models.Intervention{ID: id}, nil
}

func (f *fakeRiskSrv) Export(_ context.Context, format, _ string) (*dto.ExportFile, error) {
	f.format = format
	return &dto.ExportFile{Filename: "risk-assessment-20240510.csv", ContentType: "text/csv", Body: []byte("studentId,name\n")}, nil
}

func TestRiskHandlerAssessmentForwardsLevel(t *testing.T) {
	srv := &fakeRiskSrv{}
	h := NewRiskHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/api/risk-assessment?riskLevel=critical", "", nil)
	h.Assessment(c)

	assert.Equal(t, "critical", srv.level)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRiskHandlerRunDetectionWithoutBodyUsesDefaults(t *testing.T) {
	srv := &fakeRiskSrv{}
	h := NewRiskHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/api/risk-detection/run", "", nil)
	h.RunDetection(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.RunDetectionRequest{}, srv.detection)

	c, _ = newTestContext(http.MethodPost, "/api/risk-detection/run", `{"attendanceThreshold":70}`, nil)
	h.RunDetection(c)
	assert.Equal(t, 70.0, srv.detection.AttendanceThreshold)
}

func TestRiskHandlerExportWritesAttachment(t *testing.T) {
	srv := &fakeRiskSrv{}
	h := NewRiskHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/api/risk-assessment/export", "", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.format)
	assert.Equal(t, `attachment; filename="risk-assessment-20240510.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "studentId,name\n", rec.Body.String())
}

func TestRiskHandlerCreateIntervention(t *testing.T) {
	h := NewRiskHandler(&fakeRiskSrv{})

	c, rec := newTestContext(http.MethodPost, "/api/interventions", `{"studentId":"student1","interventionType":"meeting"}`, nil)
	h.CreateIntervention(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"studentId":"student1"`)
}
