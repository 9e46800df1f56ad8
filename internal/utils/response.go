package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// ValidationErrorResponse sends a 400 naming the fields that failed
func ValidationErrorResponse(c *fiber.Ctx, message string, fields []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponseStruct{
		Status:    fiber.StatusBadRequest,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      "data.validation.input",
		Fields:    fields,
	})
}

// VersionErrorResponse sends a version conflict error (409)
func VersionErrorResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(ErrorResponseStruct{
		Status:       fiber.StatusConflict,
		Message:      "E_VERSION - Refresh and reconcile with current version and retry.",
		Ok:           false,
		VersionError: true,
		Timestamp:    timestamp(),
		URL:          c.OriginalURL(),
		Type:         "version",
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponseStruct{
		Status:    fiber.StatusNotFound,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
	})
}

// MutationSuccessResponse sends the result of a create (201) or delete (200)
func MutationSuccessResponse(c *fiber.Ctx, status int, id string, record interface{}) error {
	return c.Status(status).JSON(SuccessResponseStruct{
		Message:   "Success",
		Ok:        true,
		ID:        id,
		Record:    record,
		Timestamp: timestamp(),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status       int      `json:"status"`
	Message      string   `json:"message"`
	Ok           bool     `json:"ok"`
	Timestamp    string   `json:"timestamp"`
	URL          string   `json:"url"`
	Type         string   `json:"type,omitempty"`
	VersionError bool     `json:"versionError,omitempty"`
	Fields       []string `json:"fields,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string      `json:"message"`
	Ok        bool        `json:"ok"`
	ID        string      `json:"id,omitempty"`
	Record    interface{} `json:"record,omitempty"`
	Timestamp string      `json:"timestamp"`
}
