package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/wordbook/internal/handler" // import the handlers that call the word store
)

// RegisterRoutes registers the health check, the /words API and the static
// asset directory on the provided Echo instance.
func RegisterRoutes(e *echo.Echo, h *handler.WordHandler, publicDir string) {
	// Map GET /healthz to the store-backed health check used by load balancers.
	e.GET("/healthz", h.Health)

	// PUT stores one word/definition pair, GET lists every pair ordered by word.
	e.PUT("/words", h.PutWord)
	e.GET("/words", h.ListWords)

	// Serve every file under publicDir verbatim at its path; / serves index.html.
	e.Static("/", publicDir)
}
