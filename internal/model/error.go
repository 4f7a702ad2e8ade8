package model

import (
	"errors"
	"fmt"
)

// Standard error codes for operator-facing responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeItemNotInCart     = "ITEM_NOT_IN_CART"
	ErrCodeInvalidDiscount   = "INVALID_DISCOUNT"
	ErrCodeQueueWriteFailed  = "QUEUE_WRITE_FAILED"
	ErrCodeOrderRejected     = "ORDER_REJECTED"
	ErrCodeBackendUnreached  = "BACKEND_UNREACHABLE"
	ErrCodeCategoryNotCached = "CATEGORY_NOT_CACHED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside the operator-facing message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart       = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrItemNotInCart   = NewDomainError(ErrCodeItemNotInCart, "Item is not in the cart")
	ErrInvalidDiscount = NewDomainError(ErrCodeInvalidDiscount, "Discount selection is not valid")

	// ErrQueueWriteFailed means a paid order could not be made durable. It is
	// the one failure this subsystem must always surface to the operator.
	ErrQueueWriteFailed = NewDomainError(ErrCodeQueueWriteFailed, "Order could not be saved to the offline queue")

	ErrBackendUnreachable = NewDomainError(ErrCodeBackendUnreached, "Order backend is unreachable")
)

// RejectionError is a definitive backend refusal of a payload (4xx or an
// explicit success=false envelope). Retrying a rejected payload will reject
// again, so it must never be queued or re-queued.
type RejectionError struct {
	StatusCode int
	Body       string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("backend rejected order (status %d): %s", e.StatusCode, e.Body)
}

// IsRejection reports whether err carries a backend rejection anywhere in
// its chain, as opposed to a connectivity failure.
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}
