package view

import (
	"sort"
	"time"

	"github.com/chronolog/chronolog/internal/model"
)

// Intervals pairs start events with their closing stops for a single
// task's event log, producing intervals in start order.
//
// Pairing rule per start S: the interval ends at
//  1. the earliest stop after S (canonical order) that belongs to S -
//     a stop either carrying S's id as backref or carrying none; else
//  2. the next start's timestamp (an implicit stop); else
//  3. never - the interval is still running (nil end, nil duration).
//
// A stop whose backref names an already-closed start is the synthetic
// materialization of a close the fold already derived (rule 2) and is
// skipped, so the view is stable whether or not the correction engine
// has run. Orphan stops (nothing open, no matching start) are ignored
// here; Anomalies reports them.
//
// The input may be in any order; the fold first imposes the canonical
// (at, id) order, so backfilled history folds identically to live
// appends. Durations are whole seconds.
func Intervals(events []model.TimeEvent) []model.Interval {
	ordered := sortedEvents(events)

	var (
		out    []model.Interval
		open   *model.Interval
		closed = map[int64]bool{}     // start ids whose interval is complete
		notes  = map[int64][]string{} // start id -> annotation payloads
	)

	closeOpen := func(end time.Time, reason model.Reason) {
		endAt := end
		dur := int64(endAt.Sub(open.StartAt) / time.Second)
		open.EndAt = &endAt
		open.DurationSeconds = &dur
		open.EndReason = reason
		closed[open.StartEventID] = true
		out = append(out, *open)
		open = nil
	}

	for _, ev := range ordered {
		switch ev.Kind {
		case model.EventStart:
			if open != nil {
				// Implicit stop: the next start closes the open interval
				// at its own timestamp, whether or not the synthetic stop
				// row has been materialized yet.
				closeOpen(ev.At, model.ReasonImplicitStop)
			}
			open = &model.Interval{
				TaskID:       ev.TaskID,
				StartEventID: ev.ID,
				StartAt:      ev.At,
			}

		case model.EventStop:
			if ev.StartEventID != nil && closed[*ev.StartEventID] {
				// Materialized correction for a close already derived.
				continue
			}
			if open == nil {
				// Orphan stop; surfaced by Anomalies, not paired here.
				continue
			}
			if ev.StartEventID != nil && *ev.StartEventID != open.StartEventID {
				continue
			}
			closeOpen(ev.At, ev.Reason)

		case model.EventAnnotate:
			if ev.Reason == model.ReasonOrphanStop {
				// Flag annotation for an orphan stop, not an interval note.
				continue
			}
			switch {
			case ev.StartEventID != nil:
				notes[*ev.StartEventID] = append(notes[*ev.StartEventID], ev.Payload)
			case open != nil:
				notes[open.StartEventID] = append(notes[open.StartEventID], ev.Payload)
			}
		}
	}

	if open != nil {
		out = append(out, *open)
	}

	for i := range out {
		out[i].Notes = notes[out[i].StartEventID]
	}

	return out
}

// IntervalsByTask groups a multi-task event stream by task and pairs
// each task's log independently. Results are ordered by task id, then
// start order.
func IntervalsByTask(events []model.TimeEvent) []model.Interval {
	byTask := map[model.TaskID][]model.TimeEvent{}
	for _, ev := range events {
		byTask[ev.TaskID] = append(byTask[ev.TaskID], ev)
	}

	ids := make([]model.TaskID, 0, len(byTask))
	for id := range byTask {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []model.Interval{}
	for _, id := range ids {
		out = append(out, Intervals(byTask[id])...)
	}
	return out
}

// TotalDuration sums the whole-second durations of all closed
// intervals. Running intervals contribute nothing.
func TotalDuration(intervals []model.Interval) int64 {
	var total int64
	for _, iv := range intervals {
		if iv.DurationSeconds != nil {
			total += *iv.DurationSeconds
		}
	}
	return total
}

// Running returns the open intervals, in start order.
func Running(intervals []model.Interval) []model.Interval {
	open := []model.Interval{}
	for _, iv := range intervals {
		if iv.Running() {
			open = append(open, iv)
		}
	}
	return open
}

// Overlapping returns the intervals that intersect [from, to). An open
// interval overlaps whenever it starts before to.
func Overlapping(intervals []model.Interval, from, to time.Time) []model.Interval {
	out := []model.Interval{}
	for _, iv := range intervals {
		if !iv.StartAt.Before(to) {
			continue
		}
		if iv.EndAt != nil && !iv.EndAt.After(from) {
			continue
		}
		out = append(out, iv)
	}
	return out
}

// sortedEvents returns a copy of events in canonical (at, id) order.
func sortedEvents(events []model.TimeEvent) []model.TimeEvent {
	ordered := make([]model.TimeEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return model.CompareEvents(ordered[i].At, ordered[i].ID, ordered[j].At, ordered[j].ID) < 0
	})
	return ordered
}
