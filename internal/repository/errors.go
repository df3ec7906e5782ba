package repository

import "errors"

// ErrDuplicateKey is returned when a unique constraint (user email, cart
// owner) rejects a write.
var ErrDuplicateKey = errors.New("duplicate key")
