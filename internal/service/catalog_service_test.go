package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func catalogFixture() fixture {
	fx := baseFixture()
	fx.tutors = append(fx.tutors,
		models.Tutor{ID: "tut_002", UserID: "tutor2", Name: "Pham Thi D", Subject: "Computer Science", Expertise: []string{"Go", "Algorithms"}, Rating: 4.5},
		models.Tutor{ID: "tut_003", UserID: "tutor3", Name: "Vo Van G", Subject: "Mathematics", Expertise: []string{"Statistics"}, Rating: 3.9},
	)
	return fx
}

func TestCatalogListTutorsFilters(t *testing.T) {
	svc := NewCatalogService(newTestStore(t, catalogFixture()), nil, nil, nil)
	ctx := context.Background()

	all, err := svc.ListTutors(ctx, dto.TutorFilter{Subject: "All"})
	require.NoError(t, err)
	assert.Len(t, all.Tutors, 3)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, TotalItems: 3, TotalPages: 1}, all.Pagination)

	maths, err := svc.ListTutors(ctx, dto.TutorFilter{Subject: "Mathematics"})
	require.NoError(t, err)
	assert.Len(t, maths.Tutors, 2)

	minRating := 4.0
	rated, err := svc.ListTutors(ctx, dto.TutorFilter{Subject: "Mathematics", RatingMin: &minRating})
	require.NoError(t, err)
	require.Len(t, rated.Tutors, 1)
	assert.Equal(t, "tut_001", rated.Tutors[0].ID)

	search, err := svc.ListTutors(ctx, dto.TutorFilter{Search: "ALGO"})
	require.NoError(t, err)
	require.Len(t, search.Tutors, 1)
	assert.Equal(t, "tut_002", search.Tutors[0].ID)

	page, err := svc.ListTutors(ctx, dto.TutorFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Tutors, 1)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	var far *dto.TutorListResponse
	require.NotPanics(t, func() {
		far, err = svc.ListTutors(ctx, dto.TutorFilter{Page: 4611686018427387904, Limit: 4})
	})
	require.NoError(t, err)
	assert.Empty(t, far.Tutors)
}

func TestCatalogSubjectsInFirstSeenOrder(t *testing.T) {
	svc := NewCatalogService(newTestStore(t, catalogFixture()), nil, nil, nil)
	resp, err := svc.ListSubjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Subject{
		{ID: "sub_001", Name: "Mathematics", TutorCount: 2},
		{ID: "sub_002", Name: "Computer Science", TutorCount: 1},
	}, resp.Subjects)
}

func TestCatalogCachesAndInvalidatesOnAvailabilityChange(t *testing.T) {
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewCatalogService(newTestStore(t, catalogFixture()), cache, nil, nil)
	ctx := context.Background()

	_, err := svc.ListTutors(ctx, dto.TutorFilter{})
	require.NoError(t, err)
	_, err = svc.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Len(t, cacheRepo.entries, 2)

	cached, err := svc.ListTutors(ctx, dto.TutorFilter{})
	require.NoError(t, err)
	assert.Len(t, cached.Tutors, 3)

	slots := []models.TimeSlot{{Date: "2024-05-13", StartTime: "09:00", EndTime: "10:00", Available: true}}
	tutor, err := svc.UpdateAvailability(ctx, "tut_001", dto.UpdateAvailabilityRequest{Slots: slots})
	require.NoError(t, err)
	assert.Equal(t, slots, tutor.AvailableSlots)
	assert.Empty(t, cacheRepo.entries)

	avail, err := svc.GetAvailability(ctx, "tut_001")
	require.NoError(t, err)
	assert.Equal(t, "tut_001", avail.TutorID)
	assert.Equal(t, slots, avail.Slots)

	// Omitting slots keeps the existing list.
	tutor, err = svc.UpdateAvailability(ctx, "tut_001", dto.UpdateAvailabilityRequest{})
	require.NoError(t, err)
	assert.Equal(t, slots, tutor.AvailableSlots)
}

func TestCatalogNotFound(t *testing.T) {
	svc := NewCatalogService(newTestStore(t, catalogFixture()), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.GetTutor(ctx, "tut_404")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.UpdateAvailability(ctx, "tut_404", dto.UpdateAvailabilityRequest{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	profile, err := svc.GetUser(ctx, "tutor1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTutor, profile.Role)
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	var dest dto.SubjectListResponse
	assert.False(t, nilCache.Get(context.Background(), "k", &dest))
	nilCache.Set(context.Background(), "k", dest)
	nilCache.Invalidate(context.Background(), "tutors:*")

	repo := newMemoryCache()
	disabled := NewCacheService(repo, nil, 0, nil, false)
	disabled.Set(context.Background(), "k", dest)
	assert.Empty(t, repo.entries)
}
