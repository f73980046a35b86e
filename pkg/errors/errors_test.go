package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrNotFound, "Booking not found"))
	got := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, "Booking not found", got.Message)
	assert.Equal(t, http.StatusNotFound, got.Status)
}

func TestFromErrorNormalisesUnknown(t *testing.T) {
	got := FromError(errors.New("disk on fire"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
}

func TestIsMatchesClonesByCode(t *testing.T) {
	err := Clone(ErrConflict, "already on the waitlist")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPublicHidesInternalDetail(t *testing.T) {
	err := Internal(errors.New("open /data/bookings.json: permission denied"), "failed to load bookings")
	public := Public(err)
	assert.Equal(t, ErrInternal.Message, public.Message)
	assert.Equal(t, ErrValidation, Public(ErrValidation))
	assert.Equal(t, "SERVICE_UNAVAILABLE", Public(ErrUnavailable).Code)
}
