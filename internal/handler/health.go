package handler // declare the package name; contains HTTP handlers

import (
	"context"  // context bounds the store ping
	"net/http" // net/http provides status codes
	"time"     // time sets the ping deadline

	"github.com/labstack/echo/v4" // echo is the web framework used for this project

	"github.com/iliyamo/wordbook/internal/repository" // repository exposes the store kinds
)

// healthPingTimeout caps how long a health check waits on the datastore.
const healthPingTimeout = 2 * time.Second

// Health is a health-check endpoint used by load balancers and monitoring
// systems.  It answers 200 {"status":"ok"} when the datastore responds to a
// ping and 503 with the error otherwise.
func (h *WordHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil { // datastore unreachable
		return c.JSON(http.StatusServiceUnavailable, errorBody{
			Error: err.Error(),
			Kind:  repository.KindOf(err).String(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
