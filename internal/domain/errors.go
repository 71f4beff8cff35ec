package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is returned when checkout finds no cart or no items in it.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPermissionDenied indicates the actor lacks the role for the operation.
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError marks malformed input (missing or out-of-range fields).
type ValidationError struct {
	msg string
}

// Validation builds a ValidationError with the given message.
func Validation(msg string) error {
	return &ValidationError{msg: msg}
}

func (e *ValidationError) Error() string {
	return e.msg
}

// InsufficientStockError reports a requested quantity above the available
// stock. It names the offending product and the live count.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("not enough stock for %s: %d available", name, e.Available)
}

// InvalidStateError reports an order lifecycle transition that is not legal
// from the order's current status.
type InvalidStateError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidStateError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("cannot cancel order with status '%s'", e.From)
	}
	return fmt.Sprintf("cannot move order from '%s' to '%s'", e.From, e.To)
}
