package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/powchat/internal/middleware"
)

// setupErrorHandling installs an error handler that logs unhandled errors
// with a stack trace and never leaks their text to the client.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Internal != nil {
				middleware.FromContext(c.Request().Context()).Warn("HTTP error", "status", he.Code, "error", he.Internal)
			}
			writeError(c, he.Code, http.StatusText(he.Code))
			return
		}

		middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
			"error", err,
			"method", c.Request().Method,
			"path", c.Path(),
			"stack_trace", string(debug.Stack()),
		)
		writeError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func writeError(c echo.Context, code int, message string) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"message": message})
	}
	if err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
