package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/chronolog/chronolog/internal/correct"
	"github.com/chronolog/chronolog/internal/model"
	"github.com/chronolog/chronolog/internal/store"
	"github.com/chronolog/chronolog/internal/view"
)

// Service is the operation layer over the append-only store: it wires
// the version store, event log, view folds, and correction engine into
// the contracts the application layer calls. It holds no state of its
// own - every answer is derived from the store at call time.
type Service struct {
	store  *store.Store
	repair *correct.Engine
	now    func() time.Time
	tokens correct.TokenGenerator
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the wall clock used when callers pass a zero time.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTokenGenerator overrides the repair-token source for implicit
// stops appended on the start path.
func WithTokenGenerator(g correct.TokenGenerator) Option {
	return func(s *Service) {
		s.tokens = g
	}
}

// New creates a Service over the given store and correction engine.
func New(st *store.Store, repair *correct.Engine, opts ...Option) *Service {
	s := &Service{
		store:  st,
		repair: repair,
		now:    time.Now,
		tokens: correct.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repair runs the correction engine over the whole store.
func (s *Service) Repair(ctx context.Context) ([]correct.Correction, error) {
	return s.repair.RepairAll(ctx)
}

// at resolves a caller-supplied timestamp, defaulting zero to now.
func (s *Service) at(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

// CreateProject allocates a project id and appends its first version.
// effectiveAt may be zero (now) or any past/future instant (backfill).
func (s *Service) CreateProject(ctx context.Context, name string, effectiveAt time.Time) (model.ProjectVersion, error) {
	id, err := s.store.AllocateProject(ctx)
	if err != nil {
		return model.ProjectVersion{}, fmt.Errorf("create project: %w", err)
	}
	return s.store.AppendProjectVersion(ctx, id, name, model.StatusActive, s.at(effectiveAt))
}

// RenameProject appends a version carrying the new name. Status is
// preserved from the current version.
func (s *Service) RenameProject(ctx context.Context, id model.ProjectID, name string, effectiveAt time.Time) (model.ProjectVersion, error) {
	cur, err := s.Project(ctx, id)
	if err != nil {
		return model.ProjectVersion{}, err
	}
	return s.store.AppendProjectVersion(ctx, id, name, cur.Status, s.at(effectiveAt))
}

// ArchiveProject appends a version with status archived. The history
// stays fully intact; no row is touched.
func (s *Service) ArchiveProject(ctx context.Context, id model.ProjectID, effectiveAt time.Time) (model.ProjectVersion, error) {
	cur, err := s.Project(ctx, id)
	if err != nil {
		return model.ProjectVersion{}, err
	}
	return s.store.AppendProjectVersion(ctx, id, cur.Name, model.StatusArchived, s.at(effectiveAt))
}

// RestoreProject appends a version with status active.
func (s *Service) RestoreProject(ctx context.Context, id model.ProjectID, effectiveAt time.Time) (model.ProjectVersion, error) {
	cur, err := s.Project(ctx, id)
	if err != nil {
		return model.ProjectVersion{}, err
	}
	return s.store.AppendProjectVersion(ctx, id, cur.Name, model.StatusActive, s.at(effectiveAt))
}

// Project returns the project's current version, or NOT_FOUND if the
// id has no version rows.
func (s *Service) Project(ctx context.Context, id model.ProjectID) (model.ProjectVersion, error) {
	versions, err := s.store.ProjectVersions(ctx, id)
	if err != nil {
		return model.ProjectVersion{}, err
	}
	cur, ok := view.CurrentProject(versions)
	if !ok {
		return model.ProjectVersion{}, store.NewNotFoundError("project", int64(id))
	}
	return cur, nil
}

// Projects returns the current version of every project, optionally
// filtered by status ("" means all).
func (s *Service) Projects(ctx context.Context, status model.Status) ([]model.ProjectVersion, error) {
	versions, err := s.store.AllProjectVersions(ctx)
	if err != nil {
		return nil, err
	}
	return view.CurrentProjects(versions, status), nil
}

// ProjectHistory returns every version row for a project in canonical
// order, oldest first.
func (s *Service) ProjectHistory(ctx context.Context, id model.ProjectID) ([]model.ProjectVersion, error) {
	versions, err := s.store.ProjectVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, store.NewNotFoundError("project", int64(id))
	}
	return versions, nil
}

// CreateTask allocates a task id under a project and appends its first
// version.
func (s *Service) CreateTask(ctx context.Context, projectID model.ProjectID, name string, effectiveAt time.Time) (model.TaskVersion, error) {
	if _, err := s.Project(ctx, projectID); err != nil {
		return model.TaskVersion{}, err
	}
	id, err := s.store.AllocateTask(ctx)
	if err != nil {
		return model.TaskVersion{}, fmt.Errorf("create task: %w", err)
	}
	return s.store.AppendTaskVersion(ctx, id, projectID, name, model.StatusActive, s.at(effectiveAt))
}

// RenameTask appends a version carrying the new name.
func (s *Service) RenameTask(ctx context.Context, id model.TaskID, name string, effectiveAt time.Time) (model.TaskVersion, error) {
	cur, err := s.Task(ctx, id)
	if err != nil {
		return model.TaskVersion{}, err
	}
	return s.store.AppendTaskVersion(ctx, id, cur.ProjectID, name, cur.Status, s.at(effectiveAt))
}

// MoveTask appends a version referencing a different parent project.
func (s *Service) MoveTask(ctx context.Context, id model.TaskID, projectID model.ProjectID, effectiveAt time.Time) (model.TaskVersion, error) {
	cur, err := s.Task(ctx, id)
	if err != nil {
		return model.TaskVersion{}, err
	}
	if _, err := s.Project(ctx, projectID); err != nil {
		return model.TaskVersion{}, err
	}
	return s.store.AppendTaskVersion(ctx, id, projectID, cur.Name, cur.Status, s.at(effectiveAt))
}

// ArchiveTask appends a version with status archived.
func (s *Service) ArchiveTask(ctx context.Context, id model.TaskID, effectiveAt time.Time) (model.TaskVersion, error) {
	cur, err := s.Task(ctx, id)
	if err != nil {
		return model.TaskVersion{}, err
	}
	return s.store.AppendTaskVersion(ctx, id, cur.ProjectID, cur.Name, model.StatusArchived, s.at(effectiveAt))
}

// RestoreTask appends a version with status active.
func (s *Service) RestoreTask(ctx context.Context, id model.TaskID, effectiveAt time.Time) (model.TaskVersion, error) {
	cur, err := s.Task(ctx, id)
	if err != nil {
		return model.TaskVersion{}, err
	}
	return s.store.AppendTaskVersion(ctx, id, cur.ProjectID, cur.Name, model.StatusActive, s.at(effectiveAt))
}

// Task returns the task's current version, or NOT_FOUND if the id has
// no version rows.
func (s *Service) Task(ctx context.Context, id model.TaskID) (model.TaskVersion, error) {
	versions, err := s.store.TaskVersions(ctx, id)
	if err != nil {
		return model.TaskVersion{}, err
	}
	cur, ok := view.CurrentTask(versions)
	if !ok {
		return model.TaskVersion{}, store.NewNotFoundError("task", int64(id))
	}
	return cur, nil
}

// Tasks returns the current version of every task, optionally filtered
// by status ("" means all) and parent project (0 means any).
func (s *Service) Tasks(ctx context.Context, status model.Status, projectID model.ProjectID) ([]model.TaskVersion, error) {
	versions, err := s.store.AllTaskVersions(ctx)
	if err != nil {
		return nil, err
	}
	return view.CurrentTasks(versions, status, projectID), nil
}

// TaskHistory returns every version row for a task in canonical order.
func (s *Service) TaskHistory(ctx context.Context, id model.TaskID) ([]model.TaskVersion, error) {
	versions, err := s.store.TaskVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, store.NewNotFoundError("task", int64(id))
	}
	return versions, nil
}
