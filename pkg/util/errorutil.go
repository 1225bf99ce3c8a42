package util

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// Result is the response envelope for every API response.
type Result struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Response codes carried in Result.Code.
const (
	CodeSuccess                = 200
	CodeValidationFailed       = 400
	CodeAuthenticationRequired = 401
	CodeAccessDenied           = 403
	CodeNotFound               = 404
	CodeConflict               = 409
	CodeInternal               = 500
	CodeUnavailable            = 503
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       int
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code int, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewUnauthorized reports that the caller must authenticate first.
func NewUnauthorized(message string) error {
	return NewDomainError(CodeAuthenticationRequired, message, http.StatusUnauthorized, nil)
}

// NewForbidden reports an authenticated caller lacking the required capability.
func NewForbidden(message string) error {
	return NewDomainError(CodeAccessDenied, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewServiceUnavailable reports a failing backing service.
func NewServiceUnavailable(message string, err error) error {
	return &DomainError{
		Code:       CodeUnavailable,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{Code: fiberErr.Code, Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// WriteError renders err as a Result with a null data field.
func WriteError(c *fiber.Ctx, err error) error {
	domainErr := ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(Result{
		Code:      domainErr.Code,
		Message:   domainErr.Message,
		Data:      domainErr.Details,
		Timestamp: time.Now().UnixMilli(),
	})
}

// OK renders a successful Result carrying data.
func OK(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Result{
		Code:      CodeSuccess,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
