package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronolog/chronolog/internal/model"
)

func at(hhmm string) time.Time {
	ts, err := time.Parse(time.RFC3339, "2026-01-02T"+hhmm+":00Z")
	if err != nil {
		panic(err)
	}
	return ts
}

func start(id int64, task model.TaskID, ts time.Time) model.TimeEvent {
	return model.TimeEvent{ID: id, TaskID: task, Kind: model.EventStart, At: ts}
}

func stop(id int64, task model.TaskID, ts time.Time, startID int64) model.TimeEvent {
	return model.TimeEvent{ID: id, TaskID: task, Kind: model.EventStop, At: ts, StartEventID: &startID}
}

func TestIntervals_SimplePair(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		stop(2, 1, at("09:45"), 1),
	}

	intervals := Intervals(events)
	require.Len(t, intervals, 1)
	assert.Equal(t, int64(1), intervals[0].StartEventID)
	require.NotNil(t, intervals[0].DurationSeconds)
	assert.Equal(t, int64(2700), *intervals[0].DurationSeconds)
	assert.Equal(t, model.Reason(""), intervals[0].EndReason)
}

func TestIntervals_RunningInterval(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
	}

	intervals := Intervals(events)
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Running())
	assert.Nil(t, intervals[0].EndAt)
	assert.Nil(t, intervals[0].DurationSeconds)
}

func TestIntervals_ImplicitStopFromNextStart(t *testing.T) {
	// Start at 09:00, start again at 09:30 with no stop between: the
	// first interval is exactly 1800s with reason implicit_stop, the
	// second is running.
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		start(2, 1, at("09:30")),
	}

	intervals := Intervals(events)
	require.Len(t, intervals, 2)

	first := intervals[0]
	require.NotNil(t, first.DurationSeconds)
	assert.Equal(t, int64(1800), *first.DurationSeconds)
	assert.Equal(t, model.ReasonImplicitStop, first.EndReason)
	assert.True(t, first.EndAt.Equal(at("09:30")))

	assert.True(t, intervals[1].Running())
}

func TestIntervals_StableAfterCorrectionMaterialized(t *testing.T) {
	// The same double start, after the correction engine appended the
	// synthetic stop row. The derived intervals must be identical.
	organic := []model.TimeEvent{
		start(1, 1, at("09:00")),
		start(2, 1, at("09:30")),
	}
	repaired := append([]model.TimeEvent{}, organic...)
	synthetic := stop(3, 1, at("09:30"), 1)
	synthetic.Reason = model.ReasonImplicitStop
	synthetic.RepairToken = "repair-1"
	repaired = append(repaired, synthetic)

	before := Intervals(organic)
	after := Intervals(repaired)

	require.Len(t, after, 2)
	assert.Equal(t, before[0].StartEventID, after[0].StartEventID)
	assert.Equal(t, *before[0].DurationSeconds, *after[0].DurationSeconds)
	assert.Equal(t, before[0].EndReason, after[0].EndReason)
	assert.True(t, after[1].Running())
}

func TestIntervals_OrphanStopIgnored(t *testing.T) {
	events := []model.TimeEvent{
		stop(1, 1, at("09:00"), 99),
		start(2, 1, at("10:00")),
		stop(3, 1, at("10:30"), 2),
	}

	intervals := Intervals(events)
	require.Len(t, intervals, 1)
	assert.Equal(t, int64(2), intervals[0].StartEventID)
	assert.Equal(t, int64(1800), *intervals[0].DurationSeconds)
}

func TestIntervals_BackfillFoldsLikeLive(t *testing.T) {
	// Events arriving out of insertion order fold identically once the
	// canonical (at, id) order is imposed.
	live := []model.TimeEvent{
		start(1, 1, at("09:00")),
		stop(2, 1, at("09:30"), 1),
		start(3, 1, at("10:00")),
		stop(4, 1, at("11:00"), 3),
	}
	shuffled := []model.TimeEvent{live[3], live[0], live[2], live[1]}

	assert.Equal(t, Intervals(live), Intervals(shuffled))
}

func TestIntervals_NotesAttachToStart(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		{ID: 2, TaskID: 1, Kind: model.EventAnnotate, At: at("09:10"), Payload: "standup"},
		stop(3, 1, at("09:30"), 1),
	}

	intervals := Intervals(events)
	require.Len(t, intervals, 1)
	assert.Equal(t, []string{"standup"}, intervals[0].Notes)
}

func TestIntervals_SyntheticStopCarriesReason(t *testing.T) {
	cutoffStop := stop(2, 1, at("17:00"), 1)
	cutoffStop.Reason = model.ReasonAutoCutoff
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		cutoffStop,
	}

	intervals := Intervals(events)
	require.Len(t, intervals, 1)
	assert.Equal(t, model.ReasonAutoCutoff, intervals[0].EndReason)
	assert.Equal(t, int64(8*3600), *intervals[0].DurationSeconds)
}

func TestIntervalsByTask_GroupsIndependently(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		start(2, 2, at("09:10")),
		stop(3, 1, at("09:30"), 1),
	}

	intervals := IntervalsByTask(events)
	require.Len(t, intervals, 2)
	assert.Equal(t, model.TaskID(1), intervals[0].TaskID)
	assert.False(t, intervals[0].Running())
	assert.Equal(t, model.TaskID(2), intervals[1].TaskID)
	assert.True(t, intervals[1].Running())
}

func TestTotalDuration_SkipsRunning(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		stop(2, 1, at("09:30"), 1),
		start(3, 1, at("10:00")),
	}

	assert.Equal(t, int64(1800), TotalDuration(Intervals(events)))
}

func TestOverlapping(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		stop(2, 1, at("10:00"), 1),
		start(3, 1, at("11:00")),
	}
	intervals := Intervals(events)

	// Fully before the closed interval.
	assert.Empty(t, Overlapping(intervals, at("08:00"), at("09:00")))
	// Touching the closed interval's interior.
	assert.Len(t, Overlapping(intervals, at("09:30"), at("09:45")), 1)
	// The open interval overlaps anything after its start.
	assert.Len(t, Overlapping(intervals, at("12:00"), at("13:00")), 1)
}
