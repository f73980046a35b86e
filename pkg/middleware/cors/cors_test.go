package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New(origins))
	router.GET("/api/tutors", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestAllowedOriginIsEchoed(t *testing.T) {
	router := newRouter([]string{"http://localhost:5173/"})

	req := httptest.NewRequest(http.MethodGet, "/api/tutors", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownOriginRejected(t *testing.T) {
	router := newRouter([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/api/tutors", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPreflightShortCircuits(t *testing.T) {
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/tutors", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://anywhere.example", w.Header().Get("Access-Control-Allow-Origin"))
}
