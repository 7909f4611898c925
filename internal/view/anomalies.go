package view

import (
	"time"

	"github.com/chronolog/chronolog/internal/model"
)

// AnomalyKind classifies event-log anomalies.
type AnomalyKind string

const (
	// AnomalyDuplicateStart is a start following another start with no
	// intervening stop. Repair: synthetic stop at the second start's
	// time, reason implicit_stop, referencing the first start.
	AnomalyDuplicateStart AnomalyKind = "duplicate_start"

	// AnomalyOrphanStop is a stop with no preceding unmatched start.
	// Repair policy: flag it with an annotation (reason orphan_stop);
	// history is never guessed at with backfilled starts.
	AnomalyOrphanStop AnomalyKind = "orphan_stop"

	// AnomalyOverrun is a start left running beyond the configured
	// maximum duration. Repair: synthetic stop at start + max,
	// reason auto_cutoff.
	AnomalyOverrun AnomalyKind = "overrun"
)

// Anomaly describes one detected defect in a task's event sequence,
// with everything the correction engine needs to append the repair row.
type Anomaly struct {
	Kind   AnomalyKind  `json:"kind"`
	TaskID model.TaskID `json:"task_id"`

	// StartEventID is the start event left unclosed
	// (duplicate_start, overrun).
	StartEventID int64 `json:"start_event_id,omitempty"`

	// StopEventID is the offending stop event (orphan_stop).
	StopEventID int64 `json:"stop_event_id,omitempty"`

	// At is the timestamp the repair row should carry: the superseding
	// start's time (duplicate_start), the stop's own time
	// (orphan_stop), or start + max duration (overrun).
	At time.Time `json:"at"`
}

// Anomalies runs the single forward detection pass over one task's
// event log. Already-repaired anomalies are not reported again: a
// duplicate start whose synthetic stop row exists is clean, and an
// orphan stop already flagged by an orphan_stop annotation is clean.
//
// now bounds overrun detection; maxRunning <= 0 disables it.
func Anomalies(events []model.TimeEvent, now time.Time, maxRunning time.Duration) []Anomaly {
	ordered := sortedEvents(events)

	// Starts closed by an explicit stop row, and stops already flagged.
	closedByStop := map[int64]bool{}
	flaggedStops := map[int64]bool{}
	seenStarts := map[int64]bool{}
	for _, ev := range ordered {
		switch ev.Kind {
		case model.EventStop:
			if ev.StartEventID != nil {
				closedByStop[*ev.StartEventID] = true
			}
		case model.EventAnnotate:
			if ev.Reason == model.ReasonOrphanStop && ev.StartEventID != nil {
				flaggedStops[*ev.StartEventID] = true
			}
		}
	}

	anomalies := []Anomaly{}
	var open *model.TimeEvent

	for i := range ordered {
		ev := ordered[i]
		switch ev.Kind {
		case model.EventStart:
			seenStarts[ev.ID] = true
			if open != nil && !closedByStop[open.ID] {
				anomalies = append(anomalies, Anomaly{
					Kind:         AnomalyDuplicateStart,
					TaskID:       ev.TaskID,
					StartEventID: open.ID,
					At:           ev.At,
				})
			}
			open = &ordered[i]

		case model.EventStop:
			switch {
			case open != nil && (ev.StartEventID == nil || *ev.StartEventID == open.ID):
				open = nil
			case ev.StartEventID != nil && seenStarts[*ev.StartEventID]:
				// Stop for an earlier start already closed by a newer
				// start; this is a materialized implicit stop, not an
				// orphan.
			case !flaggedStops[ev.ID]:
				anomalies = append(anomalies, Anomaly{
					Kind:        AnomalyOrphanStop,
					TaskID:      ev.TaskID,
					StopEventID: ev.ID,
					At:          ev.At,
				})
			}
		}
	}

	if open != nil && maxRunning > 0 {
		cutoff := open.At.Add(maxRunning)
		if now.After(cutoff) {
			anomalies = append(anomalies, Anomaly{
				Kind:         AnomalyOverrun,
				TaskID:       open.TaskID,
				StartEventID: open.ID,
				At:           cutoff,
			})
		}
	}

	return anomalies
}
