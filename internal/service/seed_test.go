package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	"github.com/noah-isme/tutor-booking-api/pkg/jsonstore"
)

func TestSeederFillsEmptyStoreOnce(t *testing.T) {
	store := jsonstore.New(jsonstore.NewMemoryBackend())
	seeder := NewSeeder(store, nil)
	ctx := context.Background()

	require.NoError(t, seeder.Seed(ctx))
	state := readRecords(t, store)
	assert.Len(t, state.classes, 2)
	assert.Len(t, state.risk, 2)

	// Seeded users log in with the demo password.
	auth := NewAuthService(store, repository.NewMemorySessionRepository(), nil, nil, nil, AuthConfig{Secret: "seed"})
	resp, err := auth.Login(ctx, dto.LoginRequest{Username: "ctsv1", Password: DemoPassword, Role: models.RoleCTSV})
	require.NoError(t, err)
	assert.Equal(t, "Hoang Van E", resp.User.Name)

	_, err = NewClassService(store, nil, nil, nil, nil, ClassConfig{}).AddMaterial(ctx, "cls_001", dto.CreateMaterialRequest{Name: "extra"})
	require.NoError(t, err)
	require.NoError(t, seeder.Seed(ctx))

	state = readRecords(t, store)
	require.Len(t, state.classes, 2)
	for _, c := range state.classes {
		if c.ID == "cls_001" {
			assert.Equal(t, "extra", c.Materials[len(c.Materials)-1].Name)
		}
	}
}

func TestSeederKeepsExistingRecords(t *testing.T) {
	store := newTestStore(t, baseFixture())
	require.NoError(t, NewSeeder(store, nil).Seed(context.Background()))

	state := readRecords(t, store)
	require.Len(t, state.classes, 1)
	assert.Equal(t, "Calculus I", state.classes[0].Name)
	assert.Len(t, state.risk, 2, "empty roster is still seeded")
}
