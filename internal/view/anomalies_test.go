package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronolog/chronolog/internal/model"
)

const maxRunning = 8 * time.Hour

func TestAnomalies_CleanLog(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		stop(2, 1, at("09:30"), 1),
	}

	assert.Empty(t, Anomalies(events, at("10:00"), maxRunning))
}

func TestAnomalies_DuplicateStart(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		start(2, 1, at("09:30")),
	}

	got := Anomalies(events, at("10:00"), maxRunning)
	require.Len(t, got, 1)
	assert.Equal(t, AnomalyDuplicateStart, got[0].Kind)
	assert.Equal(t, int64(1), got[0].StartEventID)
	// The repair row belongs at the superseding start's time.
	assert.True(t, got[0].At.Equal(at("09:30")))
}

func TestAnomalies_DuplicateStart_NotReportedOnceRepaired(t *testing.T) {
	synthetic := stop(3, 1, at("09:30"), 1)
	synthetic.Reason = model.ReasonImplicitStop
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
		start(2, 1, at("09:30")),
		synthetic,
	}

	assert.Empty(t, Anomalies(events, at("10:00"), maxRunning))
}

func TestAnomalies_OrphanStop(t *testing.T) {
	events := []model.TimeEvent{
		stop(1, 1, at("09:00"), 99),
	}

	got := Anomalies(events, at("10:00"), maxRunning)
	require.Len(t, got, 1)
	assert.Equal(t, AnomalyOrphanStop, got[0].Kind)
	assert.Equal(t, int64(1), got[0].StopEventID)
	assert.True(t, got[0].At.Equal(at("09:00")))
}

func TestAnomalies_OrphanStop_NotReportedOnceFlagged(t *testing.T) {
	stopID := int64(1)
	events := []model.TimeEvent{
		stop(1, 1, at("09:00"), 99),
		{ID: 2, TaskID: 1, Kind: model.EventAnnotate, At: at("09:00"),
			StartEventID: &stopID, Reason: model.ReasonOrphanStop},
	}

	assert.Empty(t, Anomalies(events, at("10:00"), maxRunning))
}

func TestAnomalies_Overrun(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
	}

	// 8h after 09:00 is 17:00; at 18:00 the interval has overrun.
	got := Anomalies(events, at("18:00"), maxRunning)
	require.Len(t, got, 1)
	assert.Equal(t, AnomalyOverrun, got[0].Kind)
	assert.Equal(t, int64(1), got[0].StartEventID)
	assert.True(t, got[0].At.Equal(at("17:00")))
}

func TestAnomalies_Overrun_WithinBudget(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
	}

	assert.Empty(t, Anomalies(events, at("16:00"), maxRunning))
}

func TestAnomalies_Overrun_DisabledWhenZero(t *testing.T) {
	events := []model.TimeEvent{
		start(1, 1, at("09:00")),
	}

	assert.Empty(t, Anomalies(events, at("23:00"), 0))
}

func TestAnomalies_MixedLog(t *testing.T) {
	events := []model.TimeEvent{
		stop(1, 1, at("08:00"), 99), // orphan
		start(2, 1, at("09:00")),
		start(3, 1, at("09:30")), // duplicate, leaves 3 open
	}

	got := Anomalies(events, at("10:00"), maxRunning)
	require.Len(t, got, 2)
	assert.Equal(t, AnomalyOrphanStop, got[0].Kind)
	assert.Equal(t, AnomalyDuplicateStart, got[1].Kind)
}
