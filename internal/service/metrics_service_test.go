package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/api/health", 200, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.ObserveStoreOperation("view", time.Millisecond)
		m.RecordBookingTransition("pending", "confirmed")
		m.ObserveJob(JobWaitlistRelease, nil)
		m.RecordLogin(false)
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "metrics are not enabled")
}

func TestMetricsServiceExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordBookingTransition("pending", "confirmed")
	m.RecordBookingTransition("pending", "confirmed")
	m.ObserveJob(JobWaitlistRelease, errors.New("boom"))
	m.RecordLogin(true)
	m.ObserveHTTPRequest("GET", "/api/tutors", 200, 5*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `background_jobs_total{result="failure",type="waitlist.release"} 1`))
	assert.True(t, strings.Contains(body, `booking_transitions_total{from="pending",to="confirmed"} 2`))
	assert.True(t, strings.Contains(body, `auth_login_attempts_total{result="success"} 1`))
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/api/tutors",status="200"} 1`))
}
