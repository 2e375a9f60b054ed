package apperror

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotFoundError is returned when a referenced resource does not exist
// or is not visible to the caller.
type NotFoundError struct {
	Resource string
	Id       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Id)
}

func NewNotFound(resource string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Resource: resource, Id: id}
}

// InvalidOperationError is returned when an operation is applied to a
// message it cannot act on, such as editing an assistant message.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return e.Reason
}

func NewInvalidOperation(format string, args ...any) *InvalidOperationError {
	return &InvalidOperationError{Reason: fmt.Sprintf(format, args...)}
}

// NoAdjacentVersionError is returned when a directional version switch
// runs off either end of the version group.
type NoAdjacentVersionError struct {
	Direction string
}

func (e *NoAdjacentVersionError) Error() string {
	return fmt.Sprintf("no %s version available", e.Direction)
}

// RateLimitedError carries how long the caller should wait before the
// oldest tracked attempt falls out of the window.
type RateLimitedError struct {
	Operation  string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded, retry after %s", e.Operation, e.RetryAfter.Round(time.Second))
}

// GenerationFailedError wraps an upstream model failure. The user-side
// mutation that triggered generation has already been committed.
type GenerationFailedError struct {
	Err error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("response generation failed: %v", e.Err)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.Err
}
