package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-booking-api/internal/models"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/logger"
)

type stubAuthenticator struct {
	tokens map[string]*models.Claims
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*models.Claims, error) {
	if claims, ok := s.tokens[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrInvalidToken
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := stubAuthenticator{tokens: map[string]*models.Claims{
		"student-token": {UserID: "student1", Role: models.RoleStudent},
		"ctsv-token":    {UserID: "ctsv1", Role: models.RoleCTSV},
	}}
	router := gin.New()
	router.GET("/me", Auth(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": Claims(c).UserID, "logged": c.GetString(logger.ContextUserIDKey)})
	})
	router.GET("/risk", Auth(auth), RequireRoles(models.RoleCTSV), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthRouter()

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "unknown token", header: "Bearer nope", status: http.StatusUnauthorized, code: "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer student-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"student1","logged":"student1"}`, w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/risk", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, w).Error.Code)

	req = httptest.NewRequest(http.MethodGet, "/risk", nil)
	req.Header.Set("Authorization", "Bearer ctsv-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRolesWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", RequireRoles(models.RoleTutor), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type recordedRequest struct {
	method string
	path   string
	status int
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{method: method, path: path, status: status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/bookings/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/bkg_001", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, observer.requests, 2)
	assert.Equal(t, recordedRequest{method: "GET", path: "/bookings/:id", status: 200}, observer.requests[0])
	assert.Equal(t, recordedRequest{method: "GET", path: "unmatched", status: 404}, observer.requests[1])
}

func TestRateLimiterPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, 2, nil)
	router := gin.New()
	router.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	limited := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, limited).Error.Code)

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRecoveryRendersEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(nil))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"An unexpected error occurred"}}`, w.Body.String())
}
