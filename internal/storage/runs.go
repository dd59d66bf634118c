package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/hessq/internal/common"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/google/uuid"
)

// SaveRun records a run, assigning an ID and timestamp when they are unset.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	flagged := run.Flagged
	if flagged == nil {
		flagged = []string{}
	}
	flaggedJSON, err := json.Marshal(flagged)
	if err != nil {
		return fmt.Errorf("failed to encode flagged transactions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, source, transaction_count, edge_count,
			flagged, threshold, dataset_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt,
		run.Source,
		run.TransactionCount,
		run.EdgeCount,
		string(flaggedJSON),
		run.Threshold,
		run.DatasetHash,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	return nil
}

// GetRun loads a single run by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, source, transaction_count, edge_count,
		       flagged, threshold, dataset_hash
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source, transaction_count, edge_count,
		       flagged, threshold, dataset_hash
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	var flaggedJSON string

	err := row.Scan(
		&run.ID,
		&run.CreatedAt,
		&run.Source,
		&run.TransactionCount,
		&run.EdgeCount,
		&flaggedJSON,
		&run.Threshold,
		&run.DatasetHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if flaggedJSON != "" {
		if err := json.Unmarshal([]byte(flaggedJSON), &run.Flagged); err != nil {
			return nil, fmt.Errorf("failed to decode flagged transactions for run %s: %w", run.ID, err)
		}
	}

	return &run, nil
}
