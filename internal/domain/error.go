package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrPartialCredentials = errors.New("store credentials must be supplied all together or not at all")
	ErrNoProductsForNiche = errors.New("no products available for this niche")
	ErrNicheRequired      = errors.New("niche is required to load products")
	ErrJobLocked          = errors.New("job is already being processed")
	ErrEmptyGeneration    = errors.New("generator returned no content")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid query execution context")
	ErrRateLimited        = errors.New("too many store creation requests")
)

// StageError marks a fail-fast workflow stage failure. It carries the stage
// name so callers can tell where the run stopped.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
