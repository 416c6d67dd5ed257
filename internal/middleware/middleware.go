// Package middleware holds the echo middleware shared by every route.
package middleware

import (
	"github.com/labstack/echo/v4"                   // echo defines the middleware signature
	echomw "github.com/labstack/echo/v4/middleware" // echo's recover middleware
	"go.uber.org/zap"                               // zap receives the request log
)

// Standard returns the server's middleware in registration order.  The
// request logger comes first so that it wraps Recover and still records a
// request whose handler panicked.
func Standard(log *zap.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		RequestLogger(log),
		echomw.Recover(),
	}
}
