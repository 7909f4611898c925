package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/chronolog/chronolog/internal/model"
	"github.com/chronolog/chronolog/internal/view"
)

// StartResult reports a started timer together with the implicit stops
// that were appended to make room for it.
type StartResult struct {
	StartEventID int64             `json:"start_event_id"`
	Stopped      []model.TimeEvent `json:"stopped,omitempty"`
}

// Start begins tracking time on a task.
//
// At most one interval runs across the whole store at a time (a person
// does one thing at once): any interval still open - on this task or
// any other - is closed first with a synthetic implicit_stop at the
// new start's time, referencing its start event. The corrections are
// appended before the start is recorded, reported in the result, and
// logged; they never fail the start.
func (s *Service) Start(ctx context.Context, taskID model.TaskID, at time.Time) (StartResult, error) {
	if _, err := s.Task(ctx, taskID); err != nil {
		return StartResult{}, err
	}
	at = s.at(at)

	events, err := s.store.AllTimeEvents(ctx)
	if err != nil {
		return StartResult{}, fmt.Errorf("start: %w", err)
	}

	result := StartResult{}
	token := ""

	for _, open := range view.Running(view.IntervalsByTask(events)) {
		if token == "" {
			token = s.tokens.Generate()
		}
		startID := open.StartEventID
		stop := model.TimeEvent{
			TaskID:       open.TaskID,
			Kind:         model.EventStop,
			At:           at,
			StartEventID: &startID,
			Reason:       model.ReasonImplicitStop,
			RepairToken:  token,
		}
		id, err := s.store.AppendTimeEvent(ctx, stop)
		if err != nil {
			return StartResult{}, fmt.Errorf("start: implicit stop: %w", err)
		}
		stop.ID = id
		result.Stopped = append(result.Stopped, stop)

		slog.Info("anomaly corrected",
			"kind", "running_interval_superseded",
			"task_id", int64(open.TaskID),
			"event_id", id,
			"reason", string(model.ReasonImplicitStop),
			"repair_token", token,
		)
	}

	startID, err := s.store.AppendTimeEvent(ctx, model.TimeEvent{
		TaskID: taskID,
		Kind:   model.EventStart,
		At:     at,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("start: %w", err)
	}
	result.StartEventID = startID

	return result, nil
}

// Stop ends the task's running interval, if any. Returns the stop
// event and true, or false when nothing was running (not an error).
func (s *Service) Stop(ctx context.Context, taskID model.TaskID, at time.Time) (model.TimeEvent, bool, error) {
	if _, err := s.Task(ctx, taskID); err != nil {
		return model.TimeEvent{}, false, err
	}

	open, ok, err := s.runningInterval(ctx, taskID)
	if err != nil {
		return model.TimeEvent{}, false, err
	}
	if !ok {
		return model.TimeEvent{}, false, nil
	}

	startID := open.StartEventID
	stop := model.TimeEvent{
		TaskID:       taskID,
		Kind:         model.EventStop,
		At:           s.at(at),
		StartEventID: &startID,
	}
	id, err := s.store.AppendTimeEvent(ctx, stop)
	if err != nil {
		return model.TimeEvent{}, false, fmt.Errorf("stop: %w", err)
	}
	stop.ID = id
	return stop, true, nil
}

// StopAll ends every running interval in the store. Returns the stop
// events appended, oldest start first.
func (s *Service) StopAll(ctx context.Context, at time.Time) ([]model.TimeEvent, error) {
	events, err := s.store.AllTimeEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("stop all: %w", err)
	}
	at = s.at(at)

	stops := []model.TimeEvent{}
	for _, open := range view.Running(view.IntervalsByTask(events)) {
		startID := open.StartEventID
		stop := model.TimeEvent{
			TaskID:       open.TaskID,
			Kind:         model.EventStop,
			At:           at,
			StartEventID: &startID,
		}
		id, err := s.store.AppendTimeEvent(ctx, stop)
		if err != nil {
			return stops, fmt.Errorf("stop all: %w", err)
		}
		stop.ID = id
		stops = append(stops, stop)
	}
	return stops, nil
}

// Annotate attaches a note to a task's event log. When startEventID is
// nil the note attaches to the running interval, if any.
func (s *Service) Annotate(ctx context.Context, taskID model.TaskID, note string, at time.Time, startEventID *int64) (int64, error) {
	if _, err := s.Task(ctx, taskID); err != nil {
		return 0, err
	}
	return s.store.AppendTimeEvent(ctx, model.TimeEvent{
		TaskID:       taskID,
		Kind:         model.EventAnnotate,
		At:           s.at(at),
		StartEventID: startEventID,
		Payload:      note,
	})
}

// AddManualEntry records a closed historical interval: a start at
// start, a stop at end referencing it, and optionally a note. The
// entry must be well-formed (start before end) and must not overlap
// any existing interval for the task.
func (s *Service) AddManualEntry(ctx context.Context, taskID model.TaskID, start, end time.Time, note string) (model.Interval, error) {
	if _, err := s.Task(ctx, taskID); err != nil {
		return model.Interval{}, err
	}
	if !start.Before(end) {
		return model.Interval{}, fmt.Errorf("add manual entry: start must be before end")
	}

	intervals, err := s.Intervals(ctx, taskID)
	if err != nil {
		return model.Interval{}, err
	}
	if overlapping := view.Overlapping(intervals, start, end); len(overlapping) > 0 {
		return model.Interval{}, fmt.Errorf("add manual entry: overlaps %d existing interval(s)", len(overlapping))
	}

	startID, err := s.store.AppendTimeEvent(ctx, model.TimeEvent{
		TaskID: taskID,
		Kind:   model.EventStart,
		At:     start,
	})
	if err != nil {
		return model.Interval{}, fmt.Errorf("add manual entry: %w", err)
	}

	if _, err := s.store.AppendTimeEvent(ctx, model.TimeEvent{
		TaskID:       taskID,
		Kind:         model.EventStop,
		At:           end,
		StartEventID: &startID,
	}); err != nil {
		return model.Interval{}, fmt.Errorf("add manual entry: %w", err)
	}

	if note != "" {
		if _, err := s.store.AppendTimeEvent(ctx, model.TimeEvent{
			TaskID:       taskID,
			Kind:         model.EventAnnotate,
			At:           end,
			StartEventID: &startID,
			Payload:      note,
		}); err != nil {
			return model.Interval{}, fmt.Errorf("add manual entry: %w", err)
		}
	}

	intervals, err = s.Intervals(ctx, taskID)
	if err != nil {
		return model.Interval{}, err
	}
	for _, iv := range intervals {
		if iv.StartEventID == startID {
			return iv, nil
		}
	}
	return model.Interval{}, fmt.Errorf("add manual entry: interval not derivable after append")
}

// Intervals returns the task's derived intervals in start order.
func (s *Service) Intervals(ctx context.Context, taskID model.TaskID) ([]model.Interval, error) {
	if _, err := s.Task(ctx, taskID); err != nil {
		return nil, err
	}
	events, err := s.store.TimeEvents(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return view.Intervals(events), nil
}

// ProjectIntervals returns intervals for every task currently under
// the project, grouped by task.
func (s *Service) ProjectIntervals(ctx context.Context, projectID model.ProjectID) ([]model.Interval, error) {
	if _, err := s.Project(ctx, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.Tasks(ctx, "", projectID)
	if err != nil {
		return nil, err
	}

	out := []model.Interval{}
	for _, tv := range tasks {
		events, err := s.store.TimeEvents(ctx, tv.TaskID)
		if err != nil {
			return nil, err
		}
		out = append(out, view.Intervals(events)...)
	}
	return out, nil
}

// IntervalsInPeriod returns every interval starting within [from, to],
// across all tasks, most recent start first.
func (s *Service) IntervalsInPeriod(ctx context.Context, from, to time.Time) ([]model.Interval, error) {
	events, err := s.store.AllTimeEvents(ctx)
	if err != nil {
		return nil, err
	}

	out := []model.Interval{}
	for _, iv := range view.IntervalsByTask(events) {
		if iv.StartAt.Before(from) || iv.StartAt.After(to) {
			continue
		}
		out = append(out, iv)
	}
	sortByStartDesc(out)
	return out, nil
}

// RecentIntervals returns up to limit intervals across all tasks, most
// recent start first.
func (s *Service) RecentIntervals(ctx context.Context, limit int) ([]model.Interval, error) {
	events, err := s.store.AllTimeEvents(ctx)
	if err != nil {
		return nil, err
	}

	out := view.IntervalsByTask(events)
	sortByStartDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TaskDuration sums the task's closed interval durations in seconds.
func (s *Service) TaskDuration(ctx context.Context, taskID model.TaskID) (int64, error) {
	intervals, err := s.Intervals(ctx, taskID)
	if err != nil {
		return 0, err
	}
	return view.TotalDuration(intervals), nil
}

// ProjectDuration sums closed interval durations across the project's
// current tasks, in seconds.
func (s *Service) ProjectDuration(ctx context.Context, projectID model.ProjectID) (int64, error) {
	intervals, err := s.ProjectIntervals(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return view.TotalDuration(intervals), nil
}

// RunningTask returns the task whose interval is currently open, if
// any. With the exclusive-timer discipline there is at most one; if
// backfilled history left several open, the most recently started wins.
func (s *Service) RunningTask(ctx context.Context) (model.TaskID, bool, error) {
	events, err := s.store.AllTimeEvents(ctx)
	if err != nil {
		return 0, false, err
	}

	open := view.Running(view.IntervalsByTask(events))
	if len(open) == 0 {
		return 0, false, nil
	}
	best := open[0]
	for _, iv := range open[1:] {
		if model.CompareEvents(iv.StartAt, iv.StartEventID, best.StartAt, best.StartEventID) > 0 {
			best = iv
		}
	}
	return best.TaskID, true, nil
}

// IsRunning reports whether the task has an open interval.
func (s *Service) IsRunning(ctx context.Context, taskID model.TaskID) (bool, error) {
	_, ok, err := s.runningInterval(ctx, taskID)
	return ok, err
}

func (s *Service) runningInterval(ctx context.Context, taskID model.TaskID) (model.Interval, bool, error) {
	events, err := s.store.TimeEvents(ctx, taskID)
	if err != nil {
		return model.Interval{}, false, err
	}
	open := view.Running(view.Intervals(events))
	if len(open) == 0 {
		return model.Interval{}, false, nil
	}
	// Pairing leaves at most one open interval per task.
	return open[len(open)-1], true, nil
}

func sortByStartDesc(intervals []model.Interval) {
	sort.SliceStable(intervals, func(i, j int) bool {
		return model.CompareEvents(intervals[i].StartAt, intervals[i].StartEventID,
			intervals[j].StartAt, intervals[j].StartEventID) > 0
	})
}
