// Package middleware provides HTTP middleware functions.
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupLoggerRouter(logger *zap.SugaredLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.GET("/standings", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"standings": []string{}})
	})
	r.GET("/bad", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
	})
	r.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
	return r
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		status        int
		expectedLevel zapcore.Level
	}{
		{
			name:          "2xx logs at info",
			path:          "/standings",
			status:        http.StatusOK,
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name:          "4xx logs at warn",
			path:          "/bad",
			status:        http.StatusBadRequest,
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name:          "5xx logs at error",
			path:          "/boom",
			status:        http.StatusInternalServerError,
			expectedLevel: zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			router := setupLoggerRouter(zap.New(core).Sugar())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.expectedLevel, entry.Level)
			assert.Equal(t, "HTTP request", entry.Message)
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := setupLoggerRouter(zap.New(core).Sugar())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/standings?season_id=1", nil)
	req.Header.Set("User-Agent", "league-client")
	router.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/standings", fields["path"])
	assert.Equal(t, "season_id=1", fields["query"])
	assert.Equal(t, "league-client", fields["user_agent"])
	assert.Contains(t, fields, "latency_ms")
	assert.Contains(t, fields, "size")
}

func TestLogger_RequestID(t *testing.T) {
	t.Run("propagates caller id", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		router := setupLoggerRouter(zap.New(core).Sugar())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/standings", nil)
		req.Header.Set(RequestIDHeader, "match-42")
		router.ServeHTTP(w, req)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "match-42", fields["request_id"])
		assert.Equal(t, "match-42", w.Header().Get(RequestIDHeader))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		router := setupLoggerRouter(zap.New(core).Sugar())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/standings", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.NotEmpty(t, fields["request_id"])
		assert.Equal(t, fields["request_id"], w.Header().Get(RequestIDHeader))
	})
}
