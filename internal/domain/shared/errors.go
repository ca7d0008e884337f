// Package shared holds the error taxonomy every domain package reports through.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors: malformed or out-of-range input, rejected at the boundary.
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrUnsupportedRole = errors.New("unsupported role")

	// Computation errors: invariant violations inside the fixed tables or algorithm.
	ErrComputation  = errors.New("computation error")
	ErrMissingTable = errors.New("missing lookup entry")

	// Assembly errors: a signal that cannot be turned into content.
	ErrAssembly = errors.New("assembly error")

	// A valid request for something switched off by a feature flag.
	ErrFeatureDisabled = errors.New("feature disabled")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "chart", "rhythm", "content"
	Op      string // Operation that failed, e.g., "ComputeChart"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Validationf builds a validation error with a formatted message.
func Validationf(domain, op string, kind error, format string, args ...any) *DomainError {
	return NewDomainError(domain, op, kind, fmt.Sprintf(format, args...))
}

// Computationf builds a computation error with a formatted message.
func Computationf(domain, op string, format string, args ...any) *DomainError {
	return NewDomainError(domain, op, ErrComputation, fmt.Sprintf(format, args...))
}

// Profile errors
var (
	ErrProfileNotFound = NewDomainError("profile", "Find", ErrNotFound, "profile not found")
	ErrProfileExists   = NewDomainError("profile", "Create", ErrAlreadyExists, "profile already exists")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrUnsupportedRole)
}

// IsComputation checks if the error signals a defect in tables or algorithm.
func IsComputation(err error) bool {
	return errors.Is(err, ErrComputation) || errors.Is(err, ErrMissingTable)
}

// IsAssembly checks if the error came from content assembly.
func IsAssembly(err error) bool {
	return errors.Is(err, ErrAssembly)
}

// IsFeatureDisabled checks if the request needs a feature that is off.
func IsFeatureDisabled(err error) bool {
	return errors.Is(err, ErrFeatureDisabled)
}
