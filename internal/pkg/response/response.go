package response

import "github.com/gofiber/fiber/v3"

// SemanticResponse is the envelope every endpoint answers with. Code is set
// on errors the client can branch on.
type SemanticResponse struct {
	Status  int         `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

const (
	MessageOK                  = "ok"
	MessageCreated             = "created"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageInternalServerError = "internal server error"
	MessageServiceUnavailable  = "service unavailable"
	MessageError               = "error"
)

var defaultMessages = map[int]string{
	fiber.StatusOK:                  MessageOK,
	fiber.StatusCreated:             MessageCreated,
	fiber.StatusBadRequest:          MessageBadRequest,
	fiber.StatusUnauthorized:        MessageUnauthorized,
	fiber.StatusForbidden:           MessageForbidden,
	fiber.StatusNotFound:            MessageNotFound,
	fiber.StatusConflict:            MessageConflict,
	fiber.StatusUnprocessableEntity: MessageUnprocessableEntity,
	fiber.StatusInternalServerError: MessageInternalServerError,
	fiber.StatusServiceUnavailable:  MessageServiceUnavailable,
}

func Success(c fiber.Ctx, status int, message string, data interface{}) error {
	return write(c, status, "", message, data)
}

func Error(c fiber.Ctx, status int, message string, data interface{}) error {
	return write(c, status, "", message, data)
}

// ErrorWithCode is Error plus a stable machine-readable code.
func ErrorWithCode(c fiber.Ctx, status int, code, message string, data interface{}) error {
	return write(c, status, code, message, data)
}

func write(c fiber.Ctx, status int, code, message string, data interface{}) error {
	if status < 100 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	if message == "" {
		message = DefaultMessage(status)
	}
	return c.Status(status).JSON(SemanticResponse{Status: status, Code: code, Message: message, Data: data})
}

// DefaultMessage returns the generic message for status.
func DefaultMessage(status int) string {
	if msg, ok := defaultMessages[status]; ok {
		return msg
	}
	if status >= 500 {
		return MessageInternalServerError
	}
	if status < 300 {
		return MessageOK
	}
	return MessageError
}
