package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/homemeal/homemeal-backend/internal/app/model"
)

// Error is the failure type returned by every core operation.
// Two Errors match under errors.Is when their codes are equal.
type Error struct {
	Code      string
	Messages  []string
	Shortages []model.Shortage
	Err       error
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = e.Code
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation         = &Error{Code: ValidationInvalidInput}
	ErrNotFound           = &Error{Code: ResourceNotFound}
	ErrConflict           = &Error{Code: ResourceConflict}
	ErrInsufficientStock  = &Error{Code: StockInsufficient}
	ErrAvailability       = &Error{Code: StockUnavailable}
	ErrInvalidState       = &Error{Code: OrderInvalidState}
	ErrEmptyCart          = &Error{Code: CartEmpty}
	ErrStorage            = &Error{Code: InternalDatabase}
	ErrInvalidCredentials = &Error{Code: AuthInvalidCredentials}
	ErrSessionInvalid     = &Error{Code: AuthSessionInvalid}
)

const storageMessage = "A database error occurred"

func Validation(messages ...string) *Error {
	return &Error{Code: ValidationInvalidInput, Messages: messages}
}

func NotFound(message string) *Error {
	return &Error{Code: ResourceNotFound, Messages: []string{message}}
}

func Conflict(message string) *Error {
	return &Error{Code: ResourceConflict, Messages: []string{message}}
}

func InsufficientStock(available int) *Error {
	return &Error{
		Code:     StockInsufficient,
		Messages: []string{fmt.Sprintf("Insufficient stock. Available: %d", available)},
	}
}

// Availability reports cart entries that exceed current stock.
func Availability(shortages []model.Shortage) *Error {
	parts := make([]string, 0, len(shortages))
	for _, s := range shortages {
		parts = append(parts, fmt.Sprintf("%s (requested: %d, available: %d)", s.Name, s.Requested, s.Available))
	}
	return &Error{
		Code:      StockUnavailable,
		Messages:  []string{"Some items are no longer available: " + strings.Join(parts, "; ")},
		Shortages: shortages,
	}
}

func InvalidState(message string) *Error {
	return &Error{Code: OrderInvalidState, Messages: []string{message}}
}

func EmptyCart() *Error {
	return &Error{Code: CartEmpty, Messages: []string{"Cart is empty"}}
}

// Storage hides cause from callers; it stays reachable through Unwrap for logging.
func Storage(cause error) *Error {
	return &Error{Code: InternalDatabase, Messages: []string{storageMessage}, Err: cause}
}

func InvalidCredentials() *Error {
	return &Error{Code: AuthInvalidCredentials, Messages: []string{"Invalid phone number or password"}}
}

func SessionInvalid() *Error {
	return &Error{Code: AuthSessionInvalid, Messages: []string{"Session expired or invalid. Please log in again"}}
}

// IsStorage reports whether err is, or wraps, a storage failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
