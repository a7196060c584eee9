package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrBatchNotFound    = errors.New("upload batch not found")
	ErrAlreadyCancelled = errors.New("order already cancelled")

	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
)

// DuplicateUploadError rejects a re-import of a file whose content
// fingerprint already has a live batch. It carries the existing batch so
// the caller can point at the original upload.
type DuplicateUploadError struct {
	UploadID   string
	UploadedAt string
}

func (e *DuplicateUploadError) Error() string {
	return "this file has already been uploaded"
}

// SizeUnavailableError is returned when an ordered size does not exist on
// the product.
type SizeUnavailableError struct {
	Size    string
	Product string
}

func (e *SizeUnavailableError) Error() string {
	return fmt.Sprintf("size %s not available for product %s", e.Size, e.Product)
}

// InsufficientStockError is returned when the requested quantity exceeds
// the available stock.
type InsufficientStockError struct {
	Available int
	Requested int
	Product   string
	Size      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock. Available: %d, Requested: %d for %s size %s",
		e.Available, e.Requested, e.Product, e.Size)
}
