package model

import "time"

// Status is the lifecycle state carried by every version row.
// An entity is never deleted; archiving appends a new version with
// StatusArchived, restoring appends one with StatusActive.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// ValidStatuses defines the allowed status values.
var ValidStatuses = map[Status]bool{
	StatusActive:   true,
	StatusArchived: true,
}

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, ValidStatuses[st]
}

// ProjectID identifies a project. Assigned once, never reused.
type ProjectID int64

// TaskID identifies a task. Assigned once, never reused.
type TaskID int64

// ProjectVersion is one immutable attribute snapshot of a project.
//
// (ProjectID, Version) is unique and versions for one project form a
// dense sequence 1..N. EffectiveAt may lie in the past or future
// relative to insertion time (backfill).
type ProjectVersion struct {
	ID          int64     `json:"id"`
	ProjectID   ProjectID `json:"project_id"`
	Version     int64     `json:"version"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	EffectiveAt time.Time `json:"effective_at"`
}

// TaskVersion is one immutable attribute snapshot of a task.
// Tasks additionally reference their parent project; moving a task to
// another project is just a new version with a different ProjectID.
type TaskVersion struct {
	ID          int64     `json:"id"`
	TaskID      TaskID    `json:"task_id"`
	Version     int64     `json:"version"`
	ProjectID   ProjectID `json:"project_id"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	EffectiveAt time.Time `json:"effective_at"`
}

// EventKind classifies time events.
type EventKind string

const (
	EventStart    EventKind = "start"
	EventStop     EventKind = "stop"
	EventAnnotate EventKind = "annotate"
)

// ValidEventKinds defines the allowed time-event kinds.
var ValidEventKinds = map[EventKind]bool{
	EventStart:    true,
	EventStop:     true,
	EventAnnotate: true,
}

// Reason tags a synthetic event appended by the correction engine.
// Organic events carry no reason.
type Reason string

const (
	// ReasonImplicitStop marks a synthetic stop inserted because a new
	// start arrived while an interval was still open.
	ReasonImplicitStop Reason = "implicit_stop"

	// ReasonAutoCutoff marks a synthetic stop inserted because an
	// interval exceeded the configured maximum running duration.
	ReasonAutoCutoff Reason = "auto_cutoff"

	// ReasonOrphanStop marks an annotation flagging a stop event that
	// has no preceding unmatched start.
	ReasonOrphanStop Reason = "orphan_stop"
)

// TimeEvent is one row of the append-only time-entry event log.
//
// Events for a task are totally ordered by (At, ID); ID breaks ties
// between events sharing a timestamp. StartEventID back-references the
// start event a stop or annotation belongs to, when known.
type TimeEvent struct {
	ID           int64     `json:"id"`
	TaskID       TaskID    `json:"task_id"`
	Kind         EventKind `json:"kind"`
	At           time.Time `json:"at"`
	StartEventID *int64    `json:"start_event_id,omitempty"`
	Payload      string    `json:"payload,omitempty"`
	Reason       Reason    `json:"reason,omitempty"`
	RepairToken  string    `json:"repair_token,omitempty"`
}

// Synthetic reports whether the event was inserted by the correction
// engine rather than recorded from a caller.
func (e TimeEvent) Synthetic() bool {
	return e.Reason != ""
}

// TagEventKind classifies tag events.
type TagEventKind string

const (
	TagAdd    TagEventKind = "add"
	TagRemove TagEventKind = "remove"
)

// ValidTagEventKinds defines the allowed tag-event kinds.
var ValidTagEventKinds = map[TagEventKind]bool{
	TagAdd:    true,
	TagRemove: true,
}

// TagEvent is one row of the append-only tag event log. A (task, tag)
// pair is currently tagged iff its latest event by (At, ID) is an add.
type TagEvent struct {
	ID     int64        `json:"id"`
	TaskID TaskID       `json:"task_id"`
	TagID  int64        `json:"tag_id"`
	Kind   TagEventKind `json:"kind"`
	At     time.Time    `json:"at"`
}

// Tag is an immutable dictionary entry, unique by normalized name.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Interval is a derived time span for a task, produced by pairing a
// start event with its closing stop. A running interval has nil EndAt
// and nil DurationSeconds.
type Interval struct {
	TaskID          TaskID     `json:"task_id"`
	StartEventID    int64      `json:"start_event_id"`
	StartAt         time.Time  `json:"start_at"`
	EndAt           *time.Time `json:"end_at"`
	DurationSeconds *int64     `json:"duration_seconds"`

	// EndReason is set when the interval was closed by a synthetic
	// stop ("implicit_stop", "auto_cutoff"), or when the view derived
	// the end from the next start with no stop row present yet
	// ("implicit_stop").
	EndReason Reason `json:"end_reason,omitempty"`

	// Notes collects annotation payloads attached to the interval's
	// start event, in canonical event order.
	Notes []string `json:"notes,omitempty"`
}

// Running reports whether the interval is still open.
func (iv Interval) Running() bool {
	return iv.EndAt == nil
}
