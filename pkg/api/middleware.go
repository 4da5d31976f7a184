package api

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zpam/hamspam/pkg/apperr"
)

const (
	HeaderRequestID = "X-Request-ID"
	localRequestID  = "request_id"
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

func errorResponse(c *fiber.Ctx, detail ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     detail,
		RequestID: requestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorHandler renders every error as the standard envelope
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var status int
		var detail ErrorDetail

		if appErr, ok := apperr.As(err); ok {
			status = appErr.Status
			detail = ErrorDetail{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}

			event := log.Warn()
			if status >= fiber.StatusInternalServerError {
				event = log.Error()
			}
			event.Err(appErr.Err).
				Str("request_id", requestID(c)).
				Str("error_code", appErr.Code).
				Msg(appErr.Message)
		} else if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
			detail = ErrorDetail{Code: apperr.CodeForStatus(fe.Code), Message: fe.Message}
		} else {
			status = fiber.StatusInternalServerError
			detail = ErrorDetail{Code: apperr.CodeInternalError, Message: "An unexpected error occurred"}
			log.Error().Err(err).Str("request_id", requestID(c)).Msg("unexpected error")
		}

		return c.Status(status).JSON(errorResponse(c, detail))
	}
}

// RequestID tags each request with the caller's X-Request-ID or a new uuid
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if appErr, ok := apperr.As(err); ok {
				status = appErr.Status
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		event := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		}

		event.
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")

		return err
	}
}

// Recover turns handler panics into 500 responses
func Recover(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", requestID(c)).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")
				err = apperr.Internal(fmt.Errorf("panic: %v", r))
			}
		}()
		return c.Next()
	}
}
