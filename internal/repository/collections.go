package repository

import (
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/pkg/jsonstore"
)

// Collection names as persisted by the record store.
const (
	CollectionUsers         = "users"
	CollectionTutors        = "tutors"
	CollectionClasses       = "classes"
	CollectionBookings      = "bookings"
	CollectionEnrollments   = "enrollments"
	CollectionNotifications = "notifications"
	CollectionWaitlist      = "waitlist"
	CollectionRiskStudents  = "risk-students"
)

// AllCollections lists every collection, used by seeding.
var AllCollections = []string{
	CollectionUsers,
	CollectionTutors,
	CollectionClasses,
	CollectionBookings,
	CollectionEnrollments,
	CollectionNotifications,
	CollectionWaitlist,
	CollectionRiskStudents,
}

// Records gives typed access to the collections locked by one store transaction.
type Records struct {
	tx *jsonstore.Tx
}

// NewRecords wraps a transaction.
func NewRecords(tx *jsonstore.Tx) *Records {
	return &Records{tx: tx}
}

func loadAll[T any](tx *jsonstore.Tx, name string) ([]T, error) {
	items := make([]T, 0)
	if err := tx.Load(name, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]T, 0)
	}
	return items, nil
}

func saveAll[T any](tx *jsonstore.Tx, name string, items []T) error {
	if items == nil {
		items = make([]T, 0)
	}
	return tx.Save(name, items)
}

func (r *Records) Users() ([]models.User, error) { return loadAll[models.User](r.tx, CollectionUsers) }
func (r *Records) SaveUsers(v []models.User) error {
	return saveAll(r.tx, CollectionUsers, v)
}

func (r *Records) Tutors() ([]models.Tutor, error) { return loadAll[models.Tutor](r.tx, CollectionTutors) }
func (r *Records) SaveTutors(v []models.Tutor) error {
	return saveAll(r.tx, CollectionTutors, v)
}

func (r *Records) Classes() ([]models.Class, error) { return loadAll[models.Class](r.tx, CollectionClasses) }
func (r *Records) SaveClasses(v []models.Class) error {
	return saveAll(r.tx, CollectionClasses, v)
}

func (r *Records) Bookings() ([]models.Booking, error) {
	return loadAll[models.Booking](r.tx, CollectionBookings)
}
func (r *Records) SaveBookings(v []models.Booking) error {
	return saveAll(r.tx, CollectionBookings, v)
}

func (r *Records) Enrollments() ([]models.Enrollment, error) {
	return loadAll[models.Enrollment](r.tx, CollectionEnrollments)
}
func (r *Records) SaveEnrollments(v []models.Enrollment) error {
	return saveAll(r.tx, CollectionEnrollments, v)
}

func (r *Records) Notifications() ([]models.Notification, error) {
	return loadAll[models.Notification](r.tx, CollectionNotifications)
}
func (r *Records) SaveNotifications(v []models.Notification) error {
	return saveAll(r.tx, CollectionNotifications, v)
}

func (r *Records) Waitlist() ([]models.WaitlistEntry, error) {
	return loadAll[models.WaitlistEntry](r.tx, CollectionWaitlist)
}
func (r *Records) SaveWaitlist(v []models.WaitlistEntry) error {
	return saveAll(r.tx, CollectionWaitlist, v)
}

func (r *Records) RiskStudents() ([]models.RiskStudent, error) {
	return loadAll[models.RiskStudent](r.tx, CollectionRiskStudents)
}
func (r *Records) SaveRiskStudents(v []models.RiskStudent) error {
	return saveAll(r.tx, CollectionRiskStudents, v)
}

// IndexOf returns the position of the first item matching fn, or -1.
func IndexOf[T any](items []T, fn func(T) bool) int {
	for i := range items {
		if fn(items[i]) {
			return i
		}
	}
	return -1
}

// Filter returns the items matching fn, never nil.
func Filter[T any](items []T, fn func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if fn(item) {
			out = append(out, item)
		}
	}
	return out
}

// FindUser looks a user up by id.
func FindUser(users []models.User, id string) (models.User, bool) {
	i := IndexOf(users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, false
	}
	return users[i], true
}

// FindTutor looks a tutor up by tutor id.
func FindTutor(tutors []models.Tutor, id string) (models.Tutor, bool) {
	i := IndexOf(tutors, func(t models.Tutor) bool { return t.ID == id })
	if i < 0 {
		return models.Tutor{}, false
	}
	return tutors[i], true
}

// FindTutorByUser looks a tutor up by the owning user id.
func FindTutorByUser(tutors []models.Tutor, userID string) (models.Tutor, bool) {
	i := IndexOf(tutors, func(t models.Tutor) bool { return t.UserID == userID })
	if i < 0 {
		return models.Tutor{}, false
	}
	return tutors[i], true
}
