package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a request that fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDataFormat signals a dataset record with missing or malformed fields.
	ErrDataFormat = errors.New("data format error")
	// ErrService signals a failure of the hosted model service.
	ErrService = errors.New("model service error")
	// ErrQuotaExceeded signals an exhausted token budget.
	ErrQuotaExceeded = errors.New("token quota exceeded")
	// ErrInsufficientBalance signals a leave request larger than the remaining balance.
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	// ErrIndexEmpty signals a research question asked before any article was ingested.
	ErrIndexEmpty = errors.New("research index is empty")
)

// DataFormatError describes which record and field of a dataset could not be parsed.
// Index is -1 when the whole payload is unreadable.
type DataFormatError struct {
	Index  int
	Field  string
	Reason string
}

func (e *DataFormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrDataFormat.Error(), e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: record %d: %s", ErrDataFormat.Error(), e.Index, e.Reason)
	}
	return fmt.Sprintf("%s: record %d: field %q: %s", ErrDataFormat.Error(), e.Index, e.Field, e.Reason)
}

func (e *DataFormatError) Unwrap() error { return ErrDataFormat }

// NewDataFormatError creates a record-level data format error.
func NewDataFormatError(index int, field, reason string) error {
	return &DataFormatError{Index: index, Field: field, Reason: reason}
}
