package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("Not authorized")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrPersistence         = errors.New("persistence error")

	ErrProductNotFound = fmt.Errorf("Product %w", ErrNotFound)
	ErrCartNotFound    = fmt.Errorf("Cart %w", ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("Item %w in cart", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("Order %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("User %w", ErrNotFound)

	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidQuantity    = errors.New("Quantity must be at least 1")
	ErrQuantityTooLarge   = fmt.Errorf("Quantity must be at most %d", models.MaxItemQuantity)

	ErrEmptyCart       = errors.New("Cart is empty")
	ErrMissingAddress  = errors.New("Shipping address is required")
	ErrCartUnavailable = fmt.Errorf("Failed to retrieve cart: %w", ErrUpstreamUnavailable)
	ErrUserUnavailable = fmt.Errorf("Failed to retrieve user details: %w", ErrUpstreamUnavailable)
)

// ValidationError maps field names to the problems found with them.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// OrNil lets callers return the accumulated error only when something was added.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrPersistence, err)
}
