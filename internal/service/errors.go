package service

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotCancellable     = errors.New("order can no longer be cancelled")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrIllegalTransition  = errors.New("illegal transition of order status")
	ErrTransitionConflict = errors.New("order status changed concurrently")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// ValidationError names the checkout or registration field that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
