package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "pass123"

// Seeder fills empty collections with demo data.
type Seeder struct {
	store  recordStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSeeder constructs a seeder.
func NewSeeder(store recordStore, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{store: store, logger: logger, now: time.Now}
}

// Seed writes demo records into collections that are still empty. Existing
// data is never touched.
func (s *Seeder) Seed(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash demo password")
	}
	now := s.now().UTC()
	seeded := make([]string, 0)

	err = update(ctx, s.store, repository.AllCollections, "failed to seed demo data", func(r *repository.Records) error {
		users, err := r.Users()
		if err != nil {
			return err
		}
		if len(users) == 0 {
			if err := r.SaveUsers(demoUsers(string(hash))); err != nil {
				return err
			}
			seeded = append(seeded, repository.CollectionUsers)
		}

		tutors, err := r.Tutors()
		if err != nil {
			return err
		}
		if len(tutors) == 0 {
			if err := r.SaveTutors(demoTutors(now)); err != nil {
				return err
			}
			seeded = append(seeded, repository.CollectionTutors)
		}

		classes, err := r.Classes()
		if err != nil {
			return err
		}
		if len(classes) == 0 {
			if err := r.SaveClasses(demoClasses(now)); err != nil {
				return err
			}
			seeded = append(seeded, repository.CollectionClasses)
		}

		roster, err := r.RiskStudents()
		if err != nil {
			return err
		}
		if len(roster) == 0 {
			if err := r.SaveRiskStudents(demoRiskStudents()); err != nil {
				return err
			}
			seeded = append(seeded, repository.CollectionRiskStudents)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(seeded) > 0 {
		s.logger.Info("demo data seeded", zap.Strings("collections", seeded))
	}
	return nil
}

func demoUsers(hash string) []models.User {
	return []models.User{
		{ID: "student1", Username: "student1", Password: hash, Role: models.RoleStudent, Name: "Nguyen Van A", Email: "student1@university.edu"},
		{ID: "student2", Username: "student2", Password: hash, Role: models.RoleStudent, Name: "Tran Thi B", Email: "student2@university.edu"},
		{ID: "tutor1", Username: "tutor1", Password: hash, Role: models.RoleTutor, Name: "Dr. Le Van C", Email: "tutor1@university.edu"},
		{ID: "tutor2", Username: "tutor2", Password: hash, Role: models.RoleTutor, Name: "Pham Thi D", Email: "tutor2@university.edu"},
		{ID: "ctsv1", Username: "ctsv1", Password: hash, Role: models.RoleCTSV, Name: "Hoang Van E", Email: "ctsv1@university.edu"},
	}
}

func demoTutors(now time.Time) []models.Tutor {
	day := now.AddDate(0, 0, 1).Format(dateLayout)
	return []models.Tutor{
		{
			ID: "tut_001", UserID: "tutor1", Name: "Dr. Le Van C", Subject: "Mathematics",
			Expertise: []string{"Calculus", "Linear Algebra"}, Rating: 4.8, Reviews: 42, HourlyRate: 25,
			YearsOfExperience: 8, Bio: "Lecturer in applied mathematics.",
			AvailableSlots: []models.TimeSlot{
				{Date: day, StartTime: "09:00", EndTime: "10:30", Available: true},
				{Date: day, StartTime: "14:00", EndTime: "15:30", Available: true},
			},
		},
		{
			ID: "tut_002", UserID: "tutor2", Name: "Pham Thi D", Subject: "Computer Science",
			Expertise: []string{"Go", "Data Structures"}, Rating: 4.5, Reviews: 18, HourlyRate: 30,
			YearsOfExperience: 5, Bio: "Software engineer and teaching assistant.",
			AvailableSlots: []models.TimeSlot{
				{Date: day, StartTime: "13:00", EndTime: "14:30", Available: true},
			},
		},
	}
}

func demoClasses(now time.Time) []models.Class {
	return []models.Class{
		{
			ID: "cls_001", TutorID: "tut_001", TutorName: "Dr. Le Van C", TutorEmail: "tutor1@university.edu",
			Name: "Calculus I", Subject: "Mathematics", Description: "Limits, derivatives and integrals.",
			Schedule: "Mon, Wed 09:00-10:30", MaxStudents: 30, Location: "Room A101",
			Status: models.ClassStatusActive, TotalSessions: 12, Materials: []models.Material{}, CreatedAt: now,
		},
		{
			ID: "cls_002", TutorID: "tut_002", TutorName: "Pham Thi D", TutorEmail: "tutor2@university.edu",
			Name: "Introduction to Programming", Subject: "Computer Science", Description: "Programming fundamentals in Go.",
			Schedule: "Tue, Thu 13:00-14:30", MaxStudents: 25, Location: "Lab B203",
			Status: models.ClassStatusActive, TotalSessions: 10, Materials: []models.Material{}, CreatedAt: now,
		},
	}
}

func demoRiskStudents() []models.RiskStudent {
	return []models.RiskStudent{
		{
			ID: "rsk_001", StudentID: "student1", Name: "Nguyen Van A", RiskScore: 85, Attendance: 62, GradesAvg: 5.1,
			RiskFactors: []string{"Low attendance", "Declining grades"}, Courses: []string{"Calculus I"},
			Interventions: []models.Intervention{},
		},
		{
			ID: "rsk_002", StudentID: "student2", Name: "Tran Thi B", RiskScore: 64, Attendance: 75, GradesAvg: 7.0,
			RiskFactors: []string{"Low attendance", "Missed sessions"}, Courses: []string{"Introduction to Programming"},
			Interventions: []models.Intervention{},
		},
	}
}
