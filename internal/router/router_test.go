package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/wordbook/internal/handler"
	"github.com/iliyamo/wordbook/internal/repository/mock"
)

func newServer(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>words</h1>\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "main.js"), []byte("console.log('hi');\n"), 0o644))

	e := echo.New()
	RegisterRoutes(e, handler.NewWordHandler(mock.New(), zap.NewNop()), dir)
	return e, dir
}

func TestStaticFiles(t *testing.T) {
	e, _ := newServer(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/", wantStatus: http.StatusOK, wantBody: "<h1>words</h1>\n"},
		{path: "/index.html", wantStatus: http.StatusOK, wantBody: "<h1>words</h1>\n"},
		{path: "/js/main.js", wantStatus: http.StatusOK, wantBody: "console.log('hi');\n"},
		{path: "/nope.css", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestWordRoutes(t *testing.T) {
	e, _ := newServer(t)

	for _, w := range []string{"banana", "apple"} {
		form := url.Values{"word": {w}, "definition": {"fruit"}}
		req := httptest.NewRequest(http.MethodPut, "/words", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/words", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "apple"), strings.Index(body, "banana"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/words", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
