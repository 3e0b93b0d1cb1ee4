package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeAccessDenied = "ACCESS_DENIED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// Notice categories, rendered by clients as flash banners.
const (
	NoticeSuccess = "success"
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeDanger  = "danger"
)

// Notice is a user-facing message attached to a response.
type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error    string  `json:"error"`
	Code     string  `json:"code,omitempty"`
	Details  string  `json:"details,omitempty"`
	Notice   *Notice `json:"notice,omitempty"`
	Redirect string  `json:"redirect,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code     string
	Message  string
	Err      error
	Redirect string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithRedirect sets the path a client should navigate to after showing the error.
func (e *AppError) WithRedirect(path string) *AppError {
	e.Redirect = path
	return e
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewAccessDeniedError(message string) *AppError {
	return &AppError{
		Code:     CodeAccessDenied,
		Message:  message,
		Redirect: "/",
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error:    appErr.Message,
			Code:     appErr.Code,
			Redirect: appErr.Redirect,
			Notice:   &Notice{Category: noticeCategory(appErr.Code), Message: appErr.Message},
		}
		// internal causes stay in the logs
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

func noticeCategory(code string) string {
	switch code {
	case CodeValidation, CodeConflict:
		return NoticeWarning
	case CodeNotFound:
		return NoticeInfo
	default:
		return NoticeDanger
	}
}
