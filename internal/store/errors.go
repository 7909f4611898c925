package store

import (
	"errors"
	"fmt"

	"github.com/chronolog/chronolog/internal/model"
)

// StorageError represents a typed failure from the storage layer.
//
// Storage errors include:
//   - Conflict: version allocation lost a race and exhausted its retry budget
//   - Not found: referenced entity has no version rows
//   - Invalid transition: operation references an id that was never allocated
//
// Corrections are NOT errors; the correction engine reports them as
// data and the triggering write still succeeds.
type StorageError struct {
	// Code identifies the error category.
	Code StorageErrorCode

	// Message is a human-readable description.
	Message string

	// EntityKind names the affected table family ("project", "task", "tag").
	EntityKind string

	// EntityID identifies the affected entity, when known.
	EntityID int64
}

// StorageErrorCode categorizes storage errors.
type StorageErrorCode string

const (
	// ErrCodeConflict indicates a version-allocation race exceeded the
	// retry budget. The caller should retry the whole logical operation.
	ErrCodeConflict StorageErrorCode = "CONFLICT"

	// ErrCodeNotFound indicates the referenced entity has no version rows.
	ErrCodeNotFound StorageErrorCode = "NOT_FOUND"

	// ErrCodeInvalidTransition indicates a nonsensical operation, such as
	// appending an event to a task id that was never allocated.
	ErrCodeInvalidTransition StorageErrorCode = "INVALID_TRANSITION"
)

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.EntityKind != "" && e.EntityID != 0 {
		return fmt.Sprintf("%s: %s (%s=%d)", e.Code, e.Message, e.EntityKind, e.EntityID)
	}
	if e.EntityKind != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.EntityKind)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConflict returns true if the error is a retry-budget conflict.
// Uses errors.As to handle wrapped errors.
func IsConflict(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code == ErrCodeConflict
	}
	return false
}

// IsNotFound returns true if the error is a missing-entity error.
func IsNotFound(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code == ErrCodeNotFound
	}
	return false
}

// IsInvalidTransition returns true if the error is an invalid-transition error.
func IsInvalidTransition(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code == ErrCodeInvalidTransition
	}
	return false
}

// NewConflictError creates a StorageError for an exhausted retry budget.
func NewConflictError(kind string, id int64, attempts int) *StorageError {
	return &StorageError{
		Code:       ErrCodeConflict,
		Message:    fmt.Sprintf("version allocation lost the race %d times", attempts),
		EntityKind: kind,
		EntityID:   id,
	}
}

// NewNotFoundError creates a StorageError for an entity with no versions.
func NewNotFoundError(kind string, id int64) *StorageError {
	return &StorageError{
		Code:       ErrCodeNotFound,
		Message:    "entity has no version rows",
		EntityKind: kind,
		EntityID:   id,
	}
}

// NewUnknownProjectError creates an invalid-transition error for an
// unallocated project id.
func NewUnknownProjectError(id model.ProjectID) *StorageError {
	return &StorageError{
		Code:       ErrCodeInvalidTransition,
		Message:    "project id was never allocated",
		EntityKind: "project",
		EntityID:   int64(id),
	}
}

// NewUnknownTaskError creates an invalid-transition error for an
// unallocated task id.
func NewUnknownTaskError(id model.TaskID) *StorageError {
	return &StorageError{
		Code:       ErrCodeInvalidTransition,
		Message:    "task id was never allocated",
		EntityKind: "task",
		EntityID:   int64(id),
	}
}
