package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

// CatalogService serves tutors, subjects and user profiles.
type CatalogService struct {
	store     recordStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs the service. cache may be nil.
func NewCatalogService(store recordStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{store: store, cache: cache, validator: validate, logger: logger}
}

// ListTutors filters and paginates the tutor roster.
func (s *CatalogService) ListTutors(ctx context.Context, filter dto.TutorFilter) (*dto.TutorListResponse, error) {
	key := cacheKey(cacheTutorsPrefix, tutorFilterValues(filter))
	var cached dto.TutorListResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	var tutors []models.Tutor
	err := view(ctx, s.store, []string{repository.CollectionTutors}, "failed to list tutors", func(r *repository.Records) error {
		var err error
		tutors, err = r.Tutors()
		return err
	})
	if err != nil {
		return nil, err
	}

	matched := repository.Filter(tutors, func(t models.Tutor) bool { return matchesTutor(t, filter) })
	pagination := models.NewPagination(filter.Page, filter.Limit, len(matched))
	start, end := pagination.Bounds(len(matched))
	resp := &dto.TutorListResponse{Tutors: matched[start:end], Pagination: pagination}

	s.cache.Set(ctx, key, resp)
	return resp, nil
}

func matchesTutor(t models.Tutor, filter dto.TutorFilter) bool {
	if filter.Subject != "" && filter.Subject != "All" && t.Subject != filter.Subject {
		return false
	}
	if filter.RatingMin != nil && t.Rating < *filter.RatingMin {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if strings.Contains(strings.ToLower(t.Name), needle) || strings.Contains(strings.ToLower(t.Subject), needle) {
			return true
		}
		for _, e := range t.Expertise {
			if strings.Contains(strings.ToLower(e), needle) {
				return true
			}
		}
		return false
	}
	return true
}

func tutorFilterValues(filter dto.TutorFilter) url.Values {
	values := url.Values{}
	values.Set("subject", filter.Subject)
	values.Set("search", strings.ToLower(filter.Search))
	if filter.RatingMin != nil {
		values.Set("rating_min", strconv.FormatFloat(*filter.RatingMin, 'f', -1, 64))
	}
	values.Set("page", strconv.Itoa(filter.Page))
	values.Set("limit", strconv.Itoa(filter.Limit))
	return values
}

// GetTutor returns one tutor.
func (s *CatalogService) GetTutor(ctx context.Context, id string) (*models.Tutor, error) {
	var tutor models.Tutor
	err := view(ctx, s.store, []string{repository.CollectionTutors}, "failed to load tutor", func(r *repository.Records) error {
		tutors, err := r.Tutors()
		if err != nil {
			return err
		}
		t, ok := repository.FindTutor(tutors, id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "Tutor not found")
		}
		tutor = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tutor, nil
}

// GetAvailability returns the tutor's published slots.
func (s *CatalogService) GetAvailability(ctx context.Context, id string) (*dto.AvailabilityResponse, error) {
	tutor, err := s.GetTutor(ctx, id)
	if err != nil {
		return nil, err
	}
	slots := tutor.AvailableSlots
	if slots == nil {
		slots = []models.TimeSlot{}
	}
	return &dto.AvailabilityResponse{TutorID: tutor.ID, Slots: slots}, nil
}

// UpdateAvailability replaces the slot list wholesale when slots are supplied.
func (s *CatalogService) UpdateAvailability(ctx context.Context, id string, req dto.UpdateAvailabilityRequest) (*models.Tutor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	var tutor models.Tutor
	err := update(ctx, s.store, []string{repository.CollectionTutors}, "failed to update availability", func(r *repository.Records) error {
		tutors, err := r.Tutors()
		if err != nil {
			return err
		}
		idx := repository.IndexOf(tutors, func(t models.Tutor) bool { return t.ID == id })
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Tutor not found")
		}
		if req.Slots != nil {
			tutors[idx].AvailableSlots = req.Slots
		}
		tutor = tutors[idx]
		return r.SaveTutors(tutors)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cacheTutorsPattern)
	return &tutor, nil
}

// ListSubjects derives subjects from the tutor roster in first-seen order.
func (s *CatalogService) ListSubjects(ctx context.Context) (*dto.SubjectListResponse, error) {
	var cached dto.SubjectListResponse
	if s.cache.Get(ctx, cacheSubjectsKey, &cached) {
		return &cached, nil
	}

	var tutors []models.Tutor
	err := view(ctx, s.store, []string{repository.CollectionTutors}, "failed to list subjects", func(r *repository.Records) error {
		var err error
		tutors, err = r.Tutors()
		return err
	})
	if err != nil {
		return nil, err
	}

	subjects := make([]models.Subject, 0)
	index := make(map[string]int)
	for _, t := range tutors {
		if t.Subject == "" {
			continue
		}
		if i, ok := index[t.Subject]; ok {
			subjects[i].TutorCount++
			continue
		}
		index[t.Subject] = len(subjects)
		subjects = append(subjects, models.Subject{
			ID:         repository.SequentialID(repository.PrefixSubject, len(subjects)+1),
			Name:       t.Subject,
			TutorCount: 1,
		})
	}
	resp := &dto.SubjectListResponse{Subjects: subjects}
	s.cache.Set(ctx, cacheSubjectsKey, resp)
	return resp, nil
}

// GetUser returns a user profile without its credential.
func (s *CatalogService) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := view(ctx, s.store, []string{repository.CollectionUsers}, "failed to load user", func(r *repository.Records) error {
		users, err := r.Users()
		if err != nil {
			return err
		}
		u, ok := repository.FindUser(users, id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		profile = u.Profile()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
