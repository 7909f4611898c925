package store

import (
	"context"
	"fmt"

	"github.com/chronolog/chronolog/internal/model"
)

// AppendTimeEvent appends one row to the time-entry event log and
// returns its id.
//
// No state-machine legality is checked here: the log accepts any
// start/stop/annotate sequence, including historical backfills, and
// the correction engine reconciles anomalies at derivation time. The
// only write-time validation is that the task id was actually
// allocated (INVALID_TRANSITION otherwise).
func (s *Store) AppendTimeEvent(ctx context.Context, ev model.TimeEvent) (int64, error) {
	if !model.ValidEventKinds[ev.Kind] {
		return 0, fmt.Errorf("append time event: unknown kind %q", ev.Kind)
	}

	exists, err := s.taskExists(ctx, ev.TaskID)
	if err != nil {
		return 0, fmt.Errorf("append time event: %w", err)
	}
	if !exists {
		return 0, NewUnknownTaskError(ev.TaskID)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO time_entry_events
		(task_id, kind, at, start_event_id, payload, reason, repair_token)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		int64(ev.TaskID),
		string(ev.Kind),
		model.FormatTime(ev.At),
		ev.StartEventID,
		nullIfEmpty(ev.Payload),
		nullIfEmpty(string(ev.Reason)),
		nullIfEmpty(ev.RepairToken),
	)
	if err != nil {
		return 0, fmt.Errorf("append time event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append time event: last insert id: %w", err)
	}

	return id, nil
}

// EnsureTag returns the id of the tag with the given name, creating
// the dictionary entry if it does not exist yet. Names are NFC
// normalized; the UNIQUE(name) constraint applies to the normalized
// form.
//
// Insert-or-select runs in one transaction so two concurrent callers
// agree on a single id.
func (s *Store) EnsureTag(ctx context.Context, name string) (model.Tag, error) {
	name = model.NormalizeName(name)
	if name == "" {
		return model.Tag{}, fmt.Errorf("ensure tag: empty name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Tag{}, fmt.Errorf("ensure tag: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO tags (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`, name)
	if err != nil {
		return model.Tag{}, fmt.Errorf("ensure tag: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.Tag{}, fmt.Errorf("ensure tag: rows affected: %w", err)
	}

	var id int64
	if rowsAffected > 0 {
		id, err = result.LastInsertId()
		if err != nil {
			return model.Tag{}, fmt.Errorf("ensure tag: last insert id: %w", err)
		}
	} else {
		err = tx.QueryRowContext(ctx,
			"SELECT id FROM tags WHERE name = ?", name).Scan(&id)
		if err != nil {
			return model.Tag{}, fmt.Errorf("ensure tag: select existing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Tag{}, fmt.Errorf("ensure tag: commit: %w", err)
	}

	return model.Tag{ID: id, Name: name}, nil
}

// AppendTagEvent appends one add/remove row to the tag event log and
// returns its id. The task and tag must both exist.
func (s *Store) AppendTagEvent(ctx context.Context, ev model.TagEvent) (int64, error) {
	if !model.ValidTagEventKinds[ev.Kind] {
		return 0, fmt.Errorf("append tag event: unknown kind %q", ev.Kind)
	}

	exists, err := s.taskExists(ctx, ev.TaskID)
	if err != nil {
		return 0, fmt.Errorf("append tag event: %w", err)
	}
	if !exists {
		return 0, NewUnknownTaskError(ev.TaskID)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO task_tag_events (task_id, tag_id, kind, at)
		VALUES (?, ?, ?, ?)
	`,
		int64(ev.TaskID),
		ev.TagID,
		string(ev.Kind),
		model.FormatTime(ev.At),
	)
	if err != nil {
		return 0, fmt.Errorf("append tag event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append tag event: last insert id: %w", err)
	}

	return id, nil
}

// nullIfEmpty maps "" to NULL so optional text columns stay NULL for
// organic events.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
