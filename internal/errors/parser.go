package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Classify turns a raw repository error into an *Error.
// context names the entity involved ("item", "order", ...) and shapes the message.
// Anything it cannot recognise becomes a storage error.
func Classify(err error, context string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(notFoundMessage(context))
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Conflict(duplicateMessage(err.Error(), context))
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return NotFound(notFoundMessage(context))
	}

	// 2. PostgreSQL 에러 (lib/pq)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return Conflict(duplicateMessage(pqErr.Constraint+" "+pqErr.Message, context))
		case pgForeignKeyViolation:
			return NotFound(notFoundMessage(context))
		case pgCheckViolation:
			return checkConstraintError(pqErr.Constraint + " " + pqErr.Message)
		}
		return Storage(err)
	}

	// 3. 드라이버 메시지 기반 판별
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return Conflict(duplicateMessage(errLower, context))
	}
	if strings.Contains(errLower, "check constraint") {
		return checkConstraintError(errLower)
	}

	return Storage(err)
}

func notFoundMessage(context string) string {
	switch context {
	case "user":
		return "User not found"
	case "item":
		return "Item not found"
	case "cart":
		return "Cart item not found"
	case "order":
		return "Order not found"
	}
	return "Resource not found"
}

func duplicateMessage(detail string, context string) string {
	detail = strings.ToLower(detail)
	switch {
	case strings.Contains(detail, "phone"):
		return "Phone number already registered"
	case strings.Contains(detail, "idx_cart_user_item"), context == "cart":
		return "Item is already in the cart"
	}
	return "Resource already exists"
}

func checkConstraintError(detail string) *Error {
	detail = strings.ToLower(detail)
	switch {
	case strings.Contains(detail, "stock"):
		return &Error{Code: StockInsufficient, Messages: []string{"Stock quantity cannot be negative"}}
	case strings.Contains(detail, "price"):
		return Validation("Price must be greater than 0")
	case strings.Contains(detail, "quantity"):
		return Validation("Quantity must be a positive whole number")
	}
	return Validation("Invalid value")
}
