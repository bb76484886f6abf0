package model

import (
	"errors"
	"fmt"
)

// Sentinel errors recognized across the store and workflow layers.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrDeliveryIncomplete = errors.New("delivery requires a receiver name")
)

// ValidationError reports a malformed or missing required field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Invalid returns a ValidationError with the given message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError reports a requested quantity exceeding the item's
// current availability. Available carries the actual amount so callers can
// name the short item and the shortfall.
type InsufficientStockError struct {
	Item      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Item, e.Requested, e.Available)
}

// IllegalTransitionError reports a status transition not permitted for the
// current status and acting role.
type IllegalTransitionError struct {
	From   Status
	To     Status
	Role   string
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot move request from %q to %q as %s: %s", e.From, e.To, e.Role, e.Reason)
	}
	return fmt.Sprintf("cannot move request from %q to %q as %s", e.From, e.To, e.Role)
}
