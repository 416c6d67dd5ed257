package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/wordbook/internal/repository"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// StatusFor maps a store error kind to the HTTP status returned to clients.
func StatusFor(kind repository.Kind) int {
	switch kind {
	case repository.KindValidation:
		return http.StatusBadRequest
	case repository.KindNotFound:
		return http.StatusNotFound
	case repository.KindConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError is the one place store errors become HTTP responses.
func (h *WordHandler) respondError(c echo.Context, action string, err error) error {
	kind := repository.KindOf(err)
	status := StatusFor(kind)
	h.Log.Error(action+" failed",
		zap.Error(err),
		zap.String("kind", kind.String()),
		zap.Int("status", status))

	msg := err.Error()
	if msg == "" {
		msg = http.StatusText(status)
	}
	return c.JSON(status, errorBody{Error: msg, Kind: kind.String()})
}
