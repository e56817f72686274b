package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"pharmaplus_echo/internal/services"
)

// CustomErrorHandler creates a custom error handler for Echo. Every error is
// rendered as a JSON envelope; service-layer sentinels map to their HTTP
// codes and internal errors never leak their message to the client.
func CustomErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	status := "error"
	message := "Something went wrong. Please try again later."

	switch {
	case errors.Is(err, services.ErrNotFound):
		code = http.StatusNotFound
		status = "fail"
		message = err.Error()
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInsufficientStock):
		code = http.StatusBadRequest
		status = "fail"
		message = err.Error()
	default:
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if code < http.StatusInternalServerError {
				status = "fail"
				if msg, ok := he.Message.(string); ok && msg != "" {
					message = msg
				}
			}
		}
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, map[string]interface{}{
		"status":  status,
		"message": message,
	})
}
