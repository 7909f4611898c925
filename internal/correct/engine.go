package correct

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chronolog/chronolog/internal/model"
	"github.com/chronolog/chronolog/internal/store"
	"github.com/chronolog/chronolog/internal/view"
)

// DefaultMaxRunning bounds how long an interval may run before the
// auto-cutoff repair closes it. Overridable via WithMaxRunning.
const DefaultMaxRunning = 8 * time.Hour

// Correction records one synthetic row the engine appended. It is a
// report, not an error: the write that exposed the anomaly still
// succeeds, and callers observe corrections through this value and the
// log.
type Correction struct {
	Anomaly     view.Anomaly `json:"anomaly"`
	EventID     int64        `json:"event_id"`
	RepairToken string       `json:"repair_token"`
}

// Engine reconciles anomalous event sequences by appending synthetic
// correction rows; it never rewrites history.
//
// Repairs, per anomaly:
//   - duplicate start: synthetic stop at the superseding start's time,
//     reason implicit_stop, referencing the prior start
//   - overrun: synthetic stop at start + max running duration, reason
//     auto_cutoff, referencing the start
//   - orphan stop: flag-only - an annotation referencing the stop with
//     reason orphan_stop; no backfilled start is invented
//
// Every correction appended in one repair pass shares a repair token,
// so a pass's rows can be audited as a unit.
type Engine struct {
	store      *store.Store
	now        func() time.Time
	tokens     TokenGenerator
	maxRunning time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxRunning sets the auto-cutoff threshold. Zero or negative
// disables overrun detection entirely.
func WithMaxRunning(d time.Duration) Option {
	return func(e *Engine) {
		e.maxRunning = d
	}
}

// WithNow overrides the wall clock. Tests use this to pin "now".
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTokenGenerator overrides the repair-token source. Tests use
// FixedGenerator for deterministic tokens.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = g
	}
}

// New creates a correction engine over the given store.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:      s,
		now:        time.Now,
		tokens:     UUIDv7Generator{},
		maxRunning: DefaultMaxRunning,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RepairTask runs the detection scan over one task's event log and
// appends a correction row for each anomaly found. Returns the
// corrections applied, empty when the log is clean. Detection and
// repair are separate steps: the scan is pure (view.Anomalies), and
// each repair is one ordinary append.
func (e *Engine) RepairTask(ctx context.Context, taskID model.TaskID) ([]Correction, error) {
	events, err := e.store.TimeEvents(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("repair task %d: %w", taskID, err)
	}

	anomalies := view.Anomalies(events, e.now(), e.maxRunning)
	if len(anomalies) == 0 {
		return nil, nil
	}

	token := e.tokens.Generate()
	corrections := make([]Correction, 0, len(anomalies))

	for _, a := range anomalies {
		ev, err := syntheticEvent(a, token)
		if err != nil {
			return corrections, fmt.Errorf("repair task %d: %w", taskID, err)
		}

		id, err := e.store.AppendTimeEvent(ctx, ev)
		if err != nil {
			return corrections, fmt.Errorf("repair task %d: append correction: %w", taskID, err)
		}

		slog.Info("anomaly corrected",
			"kind", string(a.Kind),
			"task_id", int64(a.TaskID),
			"event_id", id,
			"reason", string(ev.Reason),
			"repair_token", token,
		)

		corrections = append(corrections, Correction{
			Anomaly:     a,
			EventID:     id,
			RepairToken: token,
		})
	}

	return corrections, nil
}

// RepairAll repairs every task in the store. Used by the CLI repair
// command and suitable for opportunistic runs at open time.
func (e *Engine) RepairAll(ctx context.Context) ([]Correction, error) {
	taskIDs, err := e.store.TaskIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("repair all: %w", err)
	}

	all := []Correction{}
	for _, id := range taskIDs {
		corrections, err := e.RepairTask(ctx, id)
		if err != nil {
			return all, err
		}
		all = append(all, corrections...)
	}
	return all, nil
}

// syntheticEvent maps an anomaly to the correction row to append.
func syntheticEvent(a view.Anomaly, token string) (model.TimeEvent, error) {
	switch a.Kind {
	case view.AnomalyDuplicateStart:
		startID := a.StartEventID
		return model.TimeEvent{
			TaskID:       a.TaskID,
			Kind:         model.EventStop,
			At:           a.At,
			StartEventID: &startID,
			Reason:       model.ReasonImplicitStop,
			RepairToken:  token,
		}, nil

	case view.AnomalyOverrun:
		startID := a.StartEventID
		return model.TimeEvent{
			TaskID:       a.TaskID,
			Kind:         model.EventStop,
			At:           a.At,
			StartEventID: &startID,
			Reason:       model.ReasonAutoCutoff,
			RepairToken:  token,
		}, nil

	case view.AnomalyOrphanStop:
		stopID := a.StopEventID
		return model.TimeEvent{
			TaskID:       a.TaskID,
			Kind:         model.EventAnnotate,
			At:           a.At,
			StartEventID: &stopID,
			Payload:      "stop event has no matching start",
			Reason:       model.ReasonOrphanStop,
			RepairToken:  token,
		}, nil
	}

	return model.TimeEvent{}, fmt.Errorf("unknown anomaly kind %q", a.Kind)
}
