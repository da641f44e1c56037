package services

import "fmt"

// NotFoundError indicates a requested entity does not exist in the store
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError indicates rejected input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientAvailabilityError indicates the requested quantity exceeds
// the remaining editions of a limited product. The message is
// user-facing and localized for the platform's market.
type InsufficientAvailabilityError struct {
	ProductID     string
	Requested     int
	Available     int
	TotalEditions int
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("%d exemplaire(s) disponible(s) sur %d", e.Available, e.TotalEditions)
}

// ExternalServiceError indicates a dependency (payment gateway, email
// provider) failed; the wrapped cause is preserved for logging
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewExternalServiceError creates an external-service error
func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

// PartialFailureError indicates the primary write succeeded but a
// follow-up write failed, leaving an accepted inconsistency that is
// logged rather than rolled back
type PartialFailureError struct {
	Operation string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure in %s: %v", e.Operation, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// NewPartialFailureError creates a partial-failure error
func NewPartialFailureError(operation string, err error) *PartialFailureError {
	return &PartialFailureError{Operation: operation, Err: err}
}
