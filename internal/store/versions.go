package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/chronolog/chronolog/internal/model"
)

// Retry policy for version allocation (lost read-compute-insert races).
const (
	maxAppendAttempts = 5
	baseBackoff       = 2 * time.Millisecond
)

// AppendProjectVersion appends a new immutable version row for the
// project, allocating version = max(existing) + 1.
//
// The read-compute-insert sequence runs inside a single immediate-lock
// transaction, so two writers on the same store cannot both observe
// the same max(version). A writer racing against another process can
// still lose on the UNIQUE(project_id, version) constraint; the whole
// sequence is then retried with exponential backoff, bounded by
// maxAppendAttempts, after which a CONFLICT error surfaces. The write
// is never silently dropped.
//
// effective_at may be past, present, or future (backfill is allowed).
func (s *Store) AppendProjectVersion(ctx context.Context, id model.ProjectID, name string, status model.Status, effectiveAt time.Time) (model.ProjectVersion, error) {
	exists, err := s.projectExists(ctx, id)
	if err != nil {
		return model.ProjectVersion{}, fmt.Errorf("append project version: %w", err)
	}
	if !exists {
		return model.ProjectVersion{}, NewUnknownProjectError(id)
	}

	name = model.NormalizeName(name)

	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return model.ProjectVersion{}, err
			}
		}

		pv, err := s.tryAppendProjectVersion(ctx, id, name, status, effectiveAt)
		if err == nil {
			return pv, nil
		}
		if !lostRace(err) {
			return model.ProjectVersion{}, fmt.Errorf("append project version: %w", err)
		}
	}

	return model.ProjectVersion{}, NewConflictError("project", int64(id), maxAppendAttempts)
}

func (s *Store) tryAppendProjectVersion(ctx context.Context, id model.ProjectID, name string, status model.Status, effectiveAt time.Time) (model.ProjectVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ProjectVersion{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var next int64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) + 1 FROM project_versions WHERE project_id = ?",
		int64(id)).Scan(&next)
	if err != nil {
		return model.ProjectVersion{}, fmt.Errorf("next version: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO project_versions
		(project_id, version, name, status, effective_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		int64(id),
		next,
		name,
		string(status),
		model.FormatTime(effectiveAt),
	)
	if err != nil {
		return model.ProjectVersion{}, fmt.Errorf("insert version: %w", err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return model.ProjectVersion{}, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.ProjectVersion{}, fmt.Errorf("commit: %w", err)
	}

	return model.ProjectVersion{
		ID:          rowID,
		ProjectID:   id,
		Version:     next,
		Name:        name,
		Status:      status,
		EffectiveAt: effectiveAt.UTC().Truncate(time.Second),
	}, nil
}

// AppendTaskVersion appends a new immutable version row for the task.
// Same allocation and retry discipline as AppendProjectVersion. The
// parent project must have been allocated.
func (s *Store) AppendTaskVersion(ctx context.Context, id model.TaskID, projectID model.ProjectID, name string, status model.Status, effectiveAt time.Time) (model.TaskVersion, error) {
	exists, err := s.taskExists(ctx, id)
	if err != nil {
		return model.TaskVersion{}, fmt.Errorf("append task version: %w", err)
	}
	if !exists {
		return model.TaskVersion{}, NewUnknownTaskError(id)
	}

	exists, err = s.projectExists(ctx, projectID)
	if err != nil {
		return model.TaskVersion{}, fmt.Errorf("append task version: %w", err)
	}
	if !exists {
		return model.TaskVersion{}, NewUnknownProjectError(projectID)
	}

	name = model.NormalizeName(name)

	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return model.TaskVersion{}, err
			}
		}

		tv, err := s.tryAppendTaskVersion(ctx, id, projectID, name, status, effectiveAt)
		if err == nil {
			return tv, nil
		}
		if !lostRace(err) {
			return model.TaskVersion{}, fmt.Errorf("append task version: %w", err)
		}
	}

	return model.TaskVersion{}, NewConflictError("task", int64(id), maxAppendAttempts)
}

func (s *Store) tryAppendTaskVersion(ctx context.Context, id model.TaskID, projectID model.ProjectID, name string, status model.Status, effectiveAt time.Time) (model.TaskVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.TaskVersion{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) + 1 FROM task_versions WHERE task_id = ?",
		int64(id)).Scan(&next)
	if err != nil {
		return model.TaskVersion{}, fmt.Errorf("next version: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO task_versions
		(task_id, version, project_id, name, status, effective_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		int64(id),
		next,
		int64(projectID),
		name,
		string(status),
		model.FormatTime(effectiveAt),
	)
	if err != nil {
		return model.TaskVersion{}, fmt.Errorf("insert version: %w", err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return model.TaskVersion{}, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.TaskVersion{}, fmt.Errorf("commit: %w", err)
	}

	return model.TaskVersion{
		ID:          rowID,
		TaskID:      id,
		Version:     next,
		ProjectID:   projectID,
		Name:        name,
		Status:      status,
		EffectiveAt: effectiveAt.UTC().Truncate(time.Second),
	}, nil
}

// lostRace reports whether the error is a recoverable allocation race:
// a UNIQUE(entity, version) violation from a writer that committed
// between our read and insert, or a busy/locked database.
func lostRace(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return true
	case sqlite3.ErrConstraint:
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// backoff sleeps for an exponentially growing interval, honoring
// context cancellation.
func backoff(ctx context.Context, attempt int) error {
	d := baseBackoff << (attempt - 1)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
