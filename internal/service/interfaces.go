// Package service defines the interfaces shared between the commands, the server and storage.
package service

import (
	"context"

	"github.com/Veraticus/hessq/internal/model"
)

// Storage defines the contract for the run history persistence layer.
type Storage interface {
	SaveRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Database management
	Migrate(ctx context.Context) error
	Healthy(ctx context.Context) error
	Close() error
}
