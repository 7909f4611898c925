package store

import (
	"context"
	"fmt"

	"github.com/chronolog/chronolog/internal/model"
)

// AllocateProject issues a fresh project identifier. The id is unique
// for the lifetime of the store and never reused (AUTOINCREMENT keeps
// the high-water mark even across deletes, which never happen anyway).
func (s *Store) AllocateProject(ctx context.Context) (model.ProjectID, error) {
	result, err := s.db.ExecContext(ctx, "INSERT INTO projects DEFAULT VALUES")
	if err != nil {
		return 0, fmt.Errorf("allocate project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("allocate project: last insert id: %w", err)
	}

	return model.ProjectID(id), nil
}

// AllocateTask issues a fresh task identifier.
func (s *Store) AllocateTask(ctx context.Context) (model.TaskID, error) {
	result, err := s.db.ExecContext(ctx, "INSERT INTO tasks DEFAULT VALUES")
	if err != nil {
		return 0, fmt.Errorf("allocate task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("allocate task: last insert id: %w", err)
	}

	return model.TaskID(id), nil
}

// projectExists reports whether the project id has been allocated.
func (s *Store) projectExists(ctx context.Context, id model.ProjectID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE id = ?", int64(id)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check project: %w", err)
	}
	return count > 0, nil
}

// taskExists reports whether the task id has been allocated.
func (s *Store) taskExists(ctx context.Context, id model.TaskID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE id = ?", int64(id)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check task: %w", err)
	}
	return count > 0, nil
}
