package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

func enrolledFixture() fixture {
	fx := baseFixture()
	enrolledAt := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	fx.enrollments = []models.Enrollment{
		{ID: "enr_001", StudentID: "student1", ClassID: "cls_001", ClassName: "Calculus I", TutorID: "tut_001", TotalSessions: 10, EnrolledAt: enrolledAt},
		{ID: "enr_002", StudentID: "student2", ClassID: "cls_001", ClassName: "Calculus I", TutorID: "tut_001", TotalSessions: 10, EnrolledAt: enrolledAt},
	}
	fx.classes[0].EnrolledStudents = 2
	return fx
}

func TestEnrollmentUpdateGradePartial(t *testing.T) {
	h := newBookingHarness(t, enrolledFixture())
	ctx := context.Background()

	updated, err := h.enrollments.UpdateGrade(ctx, tutorClaims(), "enr_001", dto.UpdateGradeRequest{Grade: dto.Some(8.5), Feedback: dto.Some("Good work")})
	require.NoError(t, err)
	require.NotNil(t, updated.Grade)
	assert.Equal(t, 8.5, *updated.Grade)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, "Good work", *updated.Feedback)
	assert.NotNil(t, updated.UpdatedAt)

	// Absent grade leaves it untouched; explicit null clears feedback.
	updated, err = h.enrollments.UpdateGrade(ctx, tutorClaims(), "enr_001", dto.UpdateGradeRequest{Feedback: dto.Null[string]()})
	require.NoError(t, err)
	require.NotNil(t, updated.Grade)
	assert.Equal(t, 8.5, *updated.Grade)
	assert.Nil(t, updated.Feedback)

	notes := readNotifications(t, h.store)
	require.Len(t, notes, 2)
	assert.Equal(t, "student1", notes[0].UserID)
	assert.Equal(t, "Your grade for Calculus I has been updated: 8.5", notes[0].Message)
	assert.Equal(t, "Your grade for Calculus I has been updated", notes[1].Message)
}

func TestEnrollmentUpdateGradeErrors(t *testing.T) {
	h := newBookingHarness(t, enrolledFixture())
	ctx := context.Background()

	_, err := h.enrollments.UpdateGrade(ctx, tutorClaims(), "enr_001", dto.UpdateGradeRequest{Grade: dto.Some(-1.0)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = h.enrollments.UpdateGrade(ctx, tutorClaims(), "enr_404", dto.UpdateGradeRequest{Grade: dto.Some(7.0)})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	other := &models.Claims{UserID: "tutor9", Username: "tutor9", Role: models.RoleTutor, Name: "Other Tutor"}
	_, err = h.enrollments.UpdateGrade(ctx, other, "enr_001", dto.UpdateGradeRequest{Grade: dto.Some(7.0)})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Nil(t, readRecords(t, h.store).enrollments[0].Grade)
	assert.Empty(t, readNotifications(t, h.store))
}

func TestEnrollmentDropOwnership(t *testing.T) {
	h := newBookingHarness(t, enrolledFixture())
	ctx := context.Background()

	_, err := h.enrollments.Drop(ctx, studentClaims("student2", "Tran Thi B"), "enr_001", dto.CancelRequest{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Len(t, readRecords(t, h.store).enrollments, 2)

	_, err = h.enrollments.Drop(ctx, studentClaims("student1", "Nguyen Van A"), "enr_404", dto.CancelRequest{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, h.scheduler.classIDs)
}

func TestEnrollmentDropNotifiesTutor(t *testing.T) {
	h := newBookingHarness(t, enrolledFixture())
	ctx := context.Background()

	resp, err := h.enrollments.Drop(ctx, studentClaims("student1", "Nguyen Van A"), "enr_001", dto.CancelRequest{Details: "moving abroad"})
	require.NoError(t, err)
	assert.Equal(t, "Enrollment cancelled successfully", resp.Message)

	notes := readNotifications(t, h.store)
	require.Len(t, notes, 1)
	assert.Equal(t, "tutor1", notes[0].UserID)
	assert.Equal(t, models.NotificationEnrollmentCancelled, notes[0].Type)
	assert.Equal(t, "Nguyen Van A has dropped Calculus I. Reason: No reason provided - moving abroad", notes[0].Message)

	state := readRecords(t, h.store)
	assert.Equal(t, 1, state.classes[0].EnrolledStudents)
	assertCounters(t, h.store)
}

func TestEnrollmentListScopes(t *testing.T) {
	h := newBookingHarness(t, enrolledFixture())
	ctx := context.Background()

	mine, err := h.enrollments.List(ctx, studentClaims("student1", "A"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "enr_001", mine[0].ID)

	all, err := h.enrollments.List(ctx, ctsvClaims())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byStudent, err := h.enrollments.ListByStudent(ctx, "student2")
	require.NoError(t, err)
	require.Len(t, byStudent, 1)
	assert.Equal(t, "enr_002", byStudent[0].ID)
}

func TestEnrollmentListClassStudents(t *testing.T) {
	h := newBookingHarness(t, enrolledFixture())
	resp, err := h.enrollments.ListClassStudents(context.Background(), "cls_001")
	require.NoError(t, err)
	require.Len(t, resp.Students, 2)
	assert.Equal(t, "enr_001", resp.Students[0].EnrollmentID)
	assert.Equal(t, "Nguyen Van A", resp.Students[0].Name)
	assert.Equal(t, "a@uni.edu", resp.Students[0].Email)
	assert.Equal(t, 10, resp.Students[0].TotalSessions)

	empty, err := h.enrollments.ListClassStudents(context.Background(), "cls_999")
	require.NoError(t, err)
	assert.Empty(t, empty.Students)
}
