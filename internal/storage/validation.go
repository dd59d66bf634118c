// Package storage provides the run history persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/hessq/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun   = errors.New("invalid run")
	ErrInvalidLimit = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun checks the fields every stored run needs.
func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if strings.TrimSpace(run.Source) == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidRun)
	}
	if run.TransactionCount < 0 || run.EdgeCount < 0 {
		return fmt.Errorf("%w: counts cannot be negative", ErrInvalidRun)
	}
	if run.Threshold <= 0 {
		return fmt.Errorf("%w: threshold must be positive", ErrInvalidRun)
	}
	return nil
}
