package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

type fakeBookingSrv struct {
	lastClaims *models.Claims
	lastFilter dto.BookingFilter
	lastCreate dto.CreateBookingRequest
	lastCancel dto.CancelRequest
	lastID     string
	booking    *models.Booking
	err        error
}

func (f *fakeBookingSrv) List(_ context.Context, claims *models.Claims, filter dto.BookingFilter) ([]models.Booking, error) {
	f.lastClaims, f.lastFilter = claims, filter
	if f.booking == nil {
		return []models.Booking{}, f.err
	}
	return []models.Booking{*f.booking}, f.err
}

func (f *fakeBookingSrv) Create(_ context.Context, claims *models.Claims, req dto.CreateBookingRequest) (*models.Booking, error) {
	f.lastClaims, f.lastCreate = claims, req
	return f.booking, f.err
}

func (f *fakeBookingSrv) Transition(_ context.Context, id string, _ dto.UpdateBookingStatusRequest) (*models.Booking, error) {
	f.lastID = id
	return f.booking, f.err
}

func (f *fakeBookingSrv) Cancel(_ context.Context, claims *models.Claims, id string, req dto.CancelRequest) (*models.Booking, error) {
	f.lastClaims, f.lastID, f.lastCancel = claims, id, req
	return f.booking, f.err
}

func (f *fakeBookingSrv) AlternativeSlots(_ context.Context, id string) (*dto.AlternativeSlotsResponse, error) {
	f.lastID = id
	return &dto.AlternativeSlotsResponse{}, f.err
}

func (f *fakeBookingSrv) Reschedule(_ context.Context, _ *models.Claims, id string, _ dto.RescheduleRequest) (*dto.RescheduleResponse, error) {
	f.lastID = id
	return &dto.RescheduleResponse{Message: "Booking rescheduled successfully"}, f.err
}

func TestBookingHandlerCreate(t *testing.T) {
	srv := &fakeBookingSrv{booking: &models.Booking{ID: "bkg_001", Status: models.BookingPending}}
	h := NewBookingHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/api/bookings", `{"classId":"cls_001","message":"hi"}`, studentClaims())
	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "cls_001", srv.lastCreate.ClassID)
	assert.Equal(t, "student1", srv.lastClaims.UserID)
	env := decodeEnvelope(t, rec)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, "bkg_001", booking.ID)
}

func TestBookingHandlerCreateRejectsMalformedJSON(t *testing.T) {
	h := NewBookingHandler(&fakeBookingSrv{})

	c, rec := newTestContext(http.MethodPost, "/api/bookings", `{"classId":`, studentClaims())
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Error.Code)
}

func TestBookingHandlerCancelAcceptsEmptyBody(t *testing.T) {
	srv := &fakeBookingSrv{booking: &models.Booking{ID: "bkg_003"}}
	h := NewBookingHandler(srv)

	c, rec := newTestContext(http.MethodDelete, "/api/bookings/bkg_003", "", studentClaims(), gin.Param{Key: "id", Value: "bkg_003"})
	h.Cancel(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bkg_003", srv.lastID)
	assert.Equal(t, dto.CancelRequest{}, srv.lastCancel)
	assert.Equal(t, "Booking cancelled successfully", decodeEnvelope(t, rec).Message)
}

func TestBookingHandlerCancelForwardsReason(t *testing.T) {
	srv := &fakeBookingSrv{booking: &models.Booking{ID: "bkg_003"}}
	h := NewBookingHandler(srv)

	c, _ := newTestContext(http.MethodDelete, "/api/bookings/bkg_003", `{"reason":"Schedule conflict","details":"exam week"}`, studentClaims(), gin.Param{Key: "id", Value: "bkg_003"})
	h.Cancel(c)

	assert.Equal(t, dto.CancelRequest{Reason: "Schedule conflict", Details: "exam week"}, srv.lastCancel)
}

func TestBookingHandlerSurfacesServiceErrors(t *testing.T) {
	srv := &fakeBookingSrv{err: appErrors.Clone(appErrors.ErrConflict, "Booking is already confirmed")}
	h := NewBookingHandler(srv)

	c, rec := newTestContext(http.MethodPatch, "/api/bookings/bkg_001", `{"status":"confirmed"}`, tutorClaims(), gin.Param{Key: "id", Value: "bkg_001"})
	h.UpdateStatus(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Booking is already confirmed", env.Error.Message)
}

func TestBookingHandlerListParsesFilters(t *testing.T) {
	srv := &fakeBookingSrv{}
	h := NewBookingHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/api/bookings?status=pending&classId=cls_002", "", tutorClaims())
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.BookingFilter{Status: "pending", ClassID: "cls_002"}, srv.lastFilter)
	assert.JSONEq(t, `{"bookings":[]}`, string(decodeEnvelope(t, rec).Data))
}
