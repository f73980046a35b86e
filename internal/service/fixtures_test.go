package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	"github.com/noah-isme/tutor-booking-api/pkg/jsonstore"
)

type fixture struct {
	users       []models.User
	tutors      []models.Tutor
	classes     []models.Class
	bookings    []models.Booking
	enrollments []models.Enrollment
	waitlist    []models.WaitlistEntry
	risk        []models.RiskStudent
}

func baseFixture() fixture {
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return fixture{
		users: []models.User{
			{ID: "student1", Username: "student1", Password: "pass123", Role: models.RoleStudent, Name: "Nguyen Van A", Email: "a@uni.edu"},
			{ID: "student2", Username: "student2", Password: "pass123", Role: models.RoleStudent, Name: "Tran Thi B", Email: "b@uni.edu"},
			{ID: "tutor1", Username: "tutor1", Password: "pass123", Role: models.RoleTutor, Name: "Dr. Le Van C", Email: "c@uni.edu"},
			{ID: "ctsv1", Username: "ctsv1", Password: "pass123", Role: models.RoleCTSV, Name: "Hoang Van E", Email: "e@uni.edu"},
		},
		tutors: []models.Tutor{
			{ID: "tut_001", UserID: "tutor1", Name: "Dr. Le Van C", Subject: "Mathematics", Expertise: []string{"Calculus"}, Rating: 4.8},
		},
		classes: []models.Class{
			{
				ID: "cls_001", TutorID: "tut_001", TutorName: "Dr. Le Van C", TutorEmail: "c@uni.edu",
				Name: "Calculus I", Subject: "Mathematics", Schedule: "Mon 09:00", MaxStudents: 2,
				Status: models.ClassStatusActive, TotalSessions: 10,
				Materials: []models.Material{{ID: "mat_00000001", Name: "Syllabus.pdf", Type: "PDF", Size: "1.0 MB", UploadedAt: created}},
				CreatedAt: created,
			},
		},
	}
}

func newTestStore(t *testing.T, fx fixture) *jsonstore.Store {
	t.Helper()
	store := jsonstore.New(jsonstore.NewMemoryBackend())
	err := store.Update(context.Background(), repository.AllCollections, func(tx *jsonstore.Tx) error {
		r := repository.NewRecords(tx)
		if err := r.SaveUsers(fx.users); err != nil {
			return err
		}
		if err := r.SaveTutors(fx.tutors); err != nil {
			return err
		}
		if err := r.SaveClasses(fx.classes); err != nil {
			return err
		}
		if err := r.SaveBookings(fx.bookings); err != nil {
			return err
		}
		if err := r.SaveEnrollments(fx.enrollments); err != nil {
			return err
		}
		if err := r.SaveWaitlist(fx.waitlist); err != nil {
			return err
		}
		return r.SaveRiskStudents(fx.risk)
	})
	require.NoError(t, err)
	return store
}

func readRecords(t *testing.T, store *jsonstore.Store) fixture {
	t.Helper()
	var fx fixture
	err := store.View(context.Background(), repository.AllCollections, func(tx *jsonstore.Tx) error {
		r := repository.NewRecords(tx)
		var err error
		if fx.classes, err = r.Classes(); err != nil {
			return err
		}
		if fx.bookings, err = r.Bookings(); err != nil {
			return err
		}
		if fx.enrollments, err = r.Enrollments(); err != nil {
			return err
		}
		if fx.waitlist, err = r.Waitlist(); err != nil {
			return err
		}
		fx.risk, err = r.RiskStudents()
		return err
	})
	require.NoError(t, err)
	return fx
}

func readNotifications(t *testing.T, store *jsonstore.Store) []models.Notification {
	t.Helper()
	var items []models.Notification
	err := store.View(context.Background(), []string{repository.CollectionNotifications}, func(tx *jsonstore.Tx) error {
		var err error
		items, err = repository.NewRecords(tx).Notifications()
		return err
	})
	require.NoError(t, err)
	return items
}

// assertCounters checks every class counter against the live records.
func assertCounters(t *testing.T, store *jsonstore.Store) {
	t.Helper()
	fx := readRecords(t, store)
	for _, c := range fx.classes {
		enrolled := len(repository.Filter(fx.enrollments, func(e models.Enrollment) bool { return e.ClassID == c.ID }))
		pending := len(repository.Filter(fx.bookings, func(b models.Booking) bool {
			return b.ClassID == c.ID && b.Status == models.BookingPending
		}))
		assert.Equal(t, enrolled, c.EnrolledStudents, "enrolledStudents for %s", c.ID)
		assert.Equal(t, pending, c.PendingBookings, "pendingBookings for %s", c.ID)
	}
}

func studentClaims(id, name string) *models.Claims {
	return &models.Claims{SessionID: "sess-" + id, UserID: id, Username: id, Role: models.RoleStudent, Name: name}
}

func tutorClaims() *models.Claims {
	return &models.Claims{SessionID: "sess-tutor1", UserID: "tutor1", Username: "tutor1", Role: models.RoleTutor, Name: "Dr. Le Van C", Email: "c@uni.edu"}
}

func ctsvClaims() *models.Claims {
	return &models.Claims{SessionID: "sess-ctsv1", UserID: "ctsv1", Username: "ctsv1", Role: models.RoleCTSV, Name: "Hoang Van E"}
}

type recordingScheduler struct {
	classIDs []string
}

func (r *recordingScheduler) ScheduleWaitlistRelease(classID string) {
	r.classIDs = append(r.classIDs, classID)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
