package middleware

import (
	"errors"

	"skilltrack/internal/pkg/logger"
	"skilltrack/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// AppError carries the HTTP rendering of a failure. Cause is logged for
// 5xx responses and never sent to the client.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// WithCode attaches a machine-readable code to the rendered error.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

type ErrorMiddleware struct {
	logger *logger.Logger
}

func NewErrorMiddleware(log *logger.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: log}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("panic recovered", "panic", r, "path", c.Path())
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		rendered := normalizeError(err)
		if rendered.status >= 500 {
			m.logger.Error("request failed", "path", c.Path(), "status", rendered.status, "error", err)
		}
		return response.ErrorWithCode(c, rendered.status, rendered.code, rendered.message, rendered.data)
	}
}

type renderedError struct {
	status  int
	code    string
	message string
	data    interface{}
}

var internalError = renderedError{status: fiber.StatusInternalServerError, message: response.MessageInternalServerError}

// normalizeError hides the detail of server-side failures. 503 keeps its
// status so clients can tell a retryable outage from a bug.
func normalizeError(err error) renderedError {
	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case err == nil:
		return internalError
	case errors.As(err, &appErr):
		return renderStatus(appErr.StatusCode, appErr.Code, appErr.Message, appErr.Data)
	case errors.As(err, &fiberErr):
		return renderStatus(fiberErr.Code, "", fiberErr.Message, nil)
	default:
		return internalError
	}
}

func renderStatus(status int, code, message string, data interface{}) renderedError {
	switch {
	case status <= 0:
		return internalError
	case status == fiber.StatusServiceUnavailable:
		return renderedError{status: status, code: code, message: response.MessageServiceUnavailable}
	case status >= 500:
		return internalError
	}
	if message == "" {
		message = response.DefaultMessage(status)
	}
	return renderedError{status: status, code: code, message: message, data: data}
}
