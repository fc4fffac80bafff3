package macrolog

import (
	"errors"
	"fmt"
)

// Common errors returned by the macrolog client.
var (
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidQuantity is returned when a meal quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidMealType is returned when an unknown meal type is provided.
	ErrInvalidMealType = errors.New("invalid meal type")

	// ErrInvalidMood is returned when a mood rating is outside 1-5.
	ErrInvalidMood = errors.New("mood rating must be between 1 and 5")

	// ErrEmptyName is returned when a food name is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrTemplateNotFound is returned when a template id cannot be resolved.
	ErrTemplateNotFound = errors.New("food template not found")

	// ErrOffline is returned when a network operation is attempted while
	// the server is unreachable or the client runs in offline mode.
	ErrOffline = errors.New("operation unavailable while offline")

	// ErrUnauthorized is returned on a 401 from the server. It short-circuits
	// the sync cycle and signals that re-authentication is required.
	ErrUnauthorized = errors.New("authentication required")

	// ErrSyncInFlight is returned when a sync attempt starts while another
	// is still running.
	ErrSyncInFlight = errors.New("sync already in flight")

	// ErrSyncThrottled is returned when the scheduler rejects an attempt
	// because of the cooldown or the frequency cap. Not a failure: the
	// attempt is deliberately skipped.
	ErrSyncThrottled = errors.New("sync throttled")
)

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// SyncError is returned when a sync operation fails with details.
// Extractable via errors.As(). Supports Unwrap().
type SyncError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync: %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
