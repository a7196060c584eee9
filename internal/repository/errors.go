package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a guarded stock decrement
	// finds less quantity than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
)
