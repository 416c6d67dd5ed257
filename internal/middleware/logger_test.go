package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantLevel  zapcore.Level
	}{
		{name: "ok", path: "/ok", wantStatus: http.StatusOK, wantLevel: zapcore.InfoLevel},
		{name: "missing route", path: "/missing", wantStatus: http.StatusNotFound, wantLevel: zapcore.WarnLevel},
		{name: "handler failure", path: "/fail", wantStatus: http.StatusInternalServerError, wantLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			e := echo.New()
			e.Use(RequestLogger(zap.New(core)))
			e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
			e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			entries := logs.FilterMessage("request").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			assert.Equal(t, "http", entries[0].LoggerName)

			ctx := entries[0].ContextMap()
			assert.Equal(t, http.MethodGet, ctx["method"])
			assert.Equal(t, tt.path, ctx["uri"])
			assert.EqualValues(t, tt.wantStatus, ctx["status"])
		})
	}
}

func TestStandard_LogsPanics(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := echo.New()
	e.Use(Standard(zap.New(core))...)
	e.GET("/panic", func(c echo.Context) error { panic("handler bug") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusInternalServerError, entries[0].ContextMap()["status"])
}
