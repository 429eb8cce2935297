package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pressureflow/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
)

func TestProfilingMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{Enabled: false}))
	r.GET("/api/v1/estimates", func(c *gin.Context) {
		_, ok := pprof.Label(c.Request.Context(), "route")
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/estimates", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfilingMiddleware_LabelsRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))

	var route, method string
	r.GET("/api/v1/estimates/:id/pdf", func(c *gin.Context) {
		route, _ = pprof.Label(c.Request.Context(), "route")
		method, _ = pprof.Label(c.Request.Context(), "method")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/estimates/17/pdf", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/estimates/:id/pdf", route)
	assert.Equal(t, http.MethodGet, method)
}

func TestProfilingMiddleware_SkipPaths(t *testing.T) {
	tests := []struct {
		path    string
		labeled bool
	}{
		{"/health", false},
		{"/ready", false},
		{"/health/db", false},
		{"/healthy", true},
		{"/api/v1/customers", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))

			called := false
			r.GET(tt.path, func(c *gin.Context) {
				called = true
				_, ok := pprof.Label(c.Request.Context(), "route")
				assert.Equal(t, tt.labeled, ok)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.True(t, called)
		})
	}
}

func TestProfilingMiddleware_UnmatchedRoute(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
