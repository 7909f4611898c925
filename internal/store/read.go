package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chronolog/chronolog/internal/model"
)

// Every reader in this file returns rows in the canonical order the
// view folds require: versions by (effective_at, version, id), events
// by (at, id). Callers must not re-sort.

// ProjectVersions returns all version rows for one project.
// Returns an empty slice (not nil) if the project has no versions.
func (s *Store) ProjectVersions(ctx context.Context, id model.ProjectID) ([]model.ProjectVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, version, name, status, effective_at
		FROM project_versions
		WHERE project_id = ?
		ORDER BY effective_at ASC, version ASC, id ASC
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query project versions: %w", err)
	}
	defer rows.Close()

	return scanProjectVersions(rows)
}

// AllProjectVersions returns every project version row, grouped by
// project in canonical order.
func (s *Store) AllProjectVersions(ctx context.Context) ([]model.ProjectVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, version, name, status, effective_at
		FROM project_versions
		ORDER BY project_id ASC, effective_at ASC, version ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query project versions: %w", err)
	}
	defer rows.Close()

	return scanProjectVersions(rows)
}

// TaskVersions returns all version rows for one task.
func (s *Store) TaskVersions(ctx context.Context, id model.TaskID) ([]model.TaskVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, version, project_id, name, status, effective_at
		FROM task_versions
		WHERE task_id = ?
		ORDER BY effective_at ASC, version ASC, id ASC
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query task versions: %w", err)
	}
	defer rows.Close()

	return scanTaskVersions(rows)
}

// AllTaskVersions returns every task version row, grouped by task in
// canonical order.
func (s *Store) AllTaskVersions(ctx context.Context) ([]model.TaskVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, version, project_id, name, status, effective_at
		FROM task_versions
		ORDER BY task_id ASC, effective_at ASC, version ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query task versions: %w", err)
	}
	defer rows.Close()

	return scanTaskVersions(rows)
}

// TimeEvents returns the full event log for one task in (at, id) order.
func (s *Store) TimeEvents(ctx context.Context, id model.TaskID) ([]model.TimeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, kind, at, start_event_id, payload, reason, repair_token
		FROM time_entry_events
		WHERE task_id = ?
		ORDER BY at ASC, id ASC
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query time events: %w", err)
	}
	defer rows.Close()

	return scanTimeEvents(rows)
}

// AllTimeEvents returns every time event grouped by task in canonical
// order. Used by whole-store scans (repair, reports).
func (s *Store) AllTimeEvents(ctx context.Context) ([]model.TimeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, kind, at, start_event_id, payload, reason, repair_token
		FROM time_entry_events
		ORDER BY task_id ASC, at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query time events: %w", err)
	}
	defer rows.Close()

	return scanTimeEvents(rows)
}

// TagEvents returns the tag event log for one task in (at, id) order.
func (s *Store) TagEvents(ctx context.Context, id model.TaskID) ([]model.TagEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, tag_id, kind, at
		FROM task_tag_events
		WHERE task_id = ?
		ORDER BY at ASC, id ASC
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query tag events: %w", err)
	}
	defer rows.Close()

	events := []model.TagEvent{}
	for rows.Next() {
		var (
			ev   model.TagEvent
			kind string
			at   string
		)
		if err := rows.Scan(&ev.ID, &ev.TaskID, &ev.TagID, &kind, &at); err != nil {
			return nil, fmt.Errorf("scan tag event: %w", err)
		}
		ev.Kind = model.TagEventKind(kind)
		if ev.At, err = model.ParseTime(at); err != nil {
			return nil, fmt.Errorf("parse tag event time: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag events: %w", err)
	}

	return events, nil
}

// Tags returns the whole tag dictionary ordered by id.
func (s *Store) Tags(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM tags ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return tags, nil
}

// TaskIDs returns every allocated task id in ascending order.
func (s *Store) TaskIDs(ctx context.Context) ([]model.TaskID, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM tasks ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("query task ids: %w", err)
	}
	defer rows.Close()

	ids := []model.TaskID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, model.TaskID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task ids: %w", err)
	}

	return ids, nil
}

// ProjectIDs returns every allocated project id in ascending order.
func (s *Store) ProjectIDs(ctx context.Context) ([]model.ProjectID, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM projects ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("query project ids: %w", err)
	}
	defer rows.Close()

	ids := []model.ProjectID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, model.ProjectID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project ids: %w", err)
	}

	return ids, nil
}

func scanProjectVersions(rows *sql.Rows) ([]model.ProjectVersion, error) {
	versions := []model.ProjectVersion{}
	for rows.Next() {
		var (
			pv     model.ProjectVersion
			status string
			at     string
		)
		if err := rows.Scan(&pv.ID, &pv.ProjectID, &pv.Version, &pv.Name, &status, &at); err != nil {
			return nil, fmt.Errorf("scan project version: %w", err)
		}
		st, ok := model.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("project version %d: invalid status %q", pv.ID, status)
		}
		pv.Status = st
		var err error
		if pv.EffectiveAt, err = model.ParseTime(at); err != nil {
			return nil, fmt.Errorf("parse project version time: %w", err)
		}
		versions = append(versions, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project versions: %w", err)
	}
	return versions, nil
}

func scanTaskVersions(rows *sql.Rows) ([]model.TaskVersion, error) {
	versions := []model.TaskVersion{}
	for rows.Next() {
		var (
			tv     model.TaskVersion
			status string
			at     string
		)
		if err := rows.Scan(&tv.ID, &tv.TaskID, &tv.Version, &tv.ProjectID, &tv.Name, &status, &at); err != nil {
			return nil, fmt.Errorf("scan task version: %w", err)
		}
		st, ok := model.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("task version %d: invalid status %q", tv.ID, status)
		}
		tv.Status = st
		var err error
		if tv.EffectiveAt, err = model.ParseTime(at); err != nil {
			return nil, fmt.Errorf("parse task version time: %w", err)
		}
		versions = append(versions, tv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task versions: %w", err)
	}
	return versions, nil
}

func scanTimeEvents(rows *sql.Rows) ([]model.TimeEvent, error) {
	events := []model.TimeEvent{}
	for rows.Next() {
		var (
			ev      model.TimeEvent
			kind    string
			at      string
			backref sql.NullInt64
			payload sql.NullString
			reason  sql.NullString
			token   sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.TaskID, &kind, &at, &backref, &payload, &reason, &token); err != nil {
			return nil, fmt.Errorf("scan time event: %w", err)
		}
		ev.Kind = model.EventKind(kind)
		var err error
		if ev.At, err = model.ParseTime(at); err != nil {
			return nil, fmt.Errorf("parse time event time: %w", err)
		}
		if backref.Valid {
			v := backref.Int64
			ev.StartEventID = &v
		}
		ev.Payload = payload.String
		ev.Reason = model.Reason(reason.String)
		ev.RepairToken = token.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time events: %w", err)
	}
	return events, nil
}
