package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
)

type fakeEnrollmentSrv struct {
	studentQueried string
	grade          dto.UpdateGradeRequest
}

func (f *fakeEnrollmentSrv) List(context.Context, *models.Claims) ([]models.Enrollment, error) {
	return []models.Enrollment{}, nil
}

func (f *fakeEnrollmentSrv) ListByStudent(_ context.Context, studentID string) ([]models.Enrollment, error) {
	f.studentQueried = studentID
	return []models.Enrollment{{ID: "enr_001", StudentID: studentID}}, nil
}

func (f *fakeEnrollmentSrv) UpdateGrade(_ context.Context, _ *models.Claims, id string, req dto.UpdateGradeRequest) (*models.Enrollment, error) {
	f.grade = req
	return &models.Enrollment{ID: id}, nil
}

func (f *fakeEnrollmentSrv) Drop(_ context.Context, _ *models.Claims, id string, _ dto.CancelRequest) (*dto.DropEnrollmentResponse, error) {
	return &dto.DropEnrollmentResponse{Message: "Enrollment cancelled successfully", Enrollment: models.Enrollment{ID: id}}, nil
}

func (f *fakeEnrollmentSrv) ListClassStudents(context.Context, string) (*dto.ClassStudentsResponse, error) {
	return &dto.ClassStudentsResponse{Students: []models.ClassStudent{}}, nil
}

func TestEnrollmentHandlerStudentCannotReadOthers(t *testing.T) {
	srv := &fakeEnrollmentSrv{}
	h := NewEnrollmentHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/api/students/student2/enrollments", "", studentClaims(), gin.Param{Key: "id", Value: "student2"})
	h.ListByStudent(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, srv.studentQueried)
}

func TestEnrollmentHandlerListByStudent(t *testing.T) {
	cases := []struct {
		name   string
		claims *models.Claims
	}{
		{name: "own enrollments", claims: studentClaims()},
		{name: "tutor", claims: tutorClaims()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := &fakeEnrollmentSrv{}
			h := NewEnrollmentHandler(srv)

			c, rec := newTestContext(http.MethodGet, "/api/students/student1/enrollments", "", tc.claims, gin.Param{Key: "id", Value: "student1"})
			h.ListByStudent(c)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "student1", srv.studentQueried)
			assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"enr_001"`)
		})
	}
}

func TestEnrollmentHandlerGradeKeepsNullDistinction(t *testing.T) {
	srv := &fakeEnrollmentSrv{}
	h := NewEnrollmentHandler(srv)

	c, rec := newTestContext(http.MethodPut, "/api/enrollments/enr_001/grade", `{"feedback":null}`, tutorClaims(), gin.Param{Key: "id", Value: "enr_001"})
	h.UpdateGrade(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, srv.grade.Grade.Set)
	assert.True(t, srv.grade.Feedback.Set)
	assert.Nil(t, srv.grade.Feedback.Value)
}

func TestEnrollmentHandlerDropReturnsRemovedEnrollment(t *testing.T) {
	h := NewEnrollmentHandler(&fakeEnrollmentSrv{})

	c, rec := newTestContext(http.MethodDelete, "/api/enrollments/enr_002", "", studentClaims(), gin.Param{Key: "id", Value: "enr_002"})
	h.Drop(c)

	require.Equal(t, http.StatusOK, rec.Code)
	data := string(decodeEnvelope(t, rec).Data)
	assert.Contains(t, data, `"message":"Enrollment cancelled successfully"`)
	assert.Contains(t, data, `"id":"enr_002"`)
}
