package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronolog/chronolog/internal/model"
)

var (
	day1 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	day2 = time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	day3 = time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)
)

func pv(id int64, project model.ProjectID, version int64, name string, status model.Status, at time.Time) model.ProjectVersion {
	return model.ProjectVersion{ID: id, ProjectID: project, Version: version, Name: name, Status: status, EffectiveAt: at}
}

func TestCurrentProject_MaximalRowWins(t *testing.T) {
	versions := []model.ProjectVersion{
		pv(1, 1, 1, "old", model.StatusActive, day1),
		pv(2, 1, 2, "new", model.StatusActive, day2),
	}

	cur, ok := CurrentProject(versions)
	require.True(t, ok)
	assert.Equal(t, "new", cur.Name)
	assert.Equal(t, int64(2), cur.Version)
}

func TestCurrentProject_EffectiveAtDominatesVersion(t *testing.T) {
	// A later version backfilled with an earlier effective_at loses to
	// an older version whose effective_at is later.
	versions := []model.ProjectVersion{
		pv(1, 1, 1, "later-effective", model.StatusActive, day2),
		pv(2, 1, 2, "backfilled", model.StatusActive, day1),
	}

	cur, ok := CurrentProject(versions)
	require.True(t, ok)
	assert.Equal(t, "later-effective", cur.Name)
}

func TestCurrentProject_VersionBreaksEffectiveAtTie(t *testing.T) {
	versions := []model.ProjectVersion{
		pv(1, 1, 1, "v1", model.StatusActive, day1),
		pv(2, 1, 2, "v2", model.StatusActive, day1),
	}

	cur, ok := CurrentProject(versions)
	require.True(t, ok)
	assert.Equal(t, "v2", cur.Name)
}

func TestCurrentProject_InputOrderIrrelevant(t *testing.T) {
	a := []model.ProjectVersion{
		pv(1, 1, 1, "v1", model.StatusActive, day1),
		pv(2, 1, 2, "v2", model.StatusArchived, day2),
		pv(3, 1, 3, "v3", model.StatusActive, day3),
	}
	b := []model.ProjectVersion{a[2], a[0], a[1]}

	curA, ok := CurrentProject(a)
	require.True(t, ok)
	curB, ok := CurrentProject(b)
	require.True(t, ok)
	assert.Equal(t, curA, curB)
}

func TestCurrentProject_Empty(t *testing.T) {
	_, ok := CurrentProject(nil)
	assert.False(t, ok)
}

func TestCurrentProjects_StatusFiltersCurrentRowOnly(t *testing.T) {
	versions := []model.ProjectVersion{
		// Project 1: archived, then restored. Currently active.
		pv(1, 1, 1, "p1", model.StatusActive, day1),
		pv(2, 1, 2, "p1", model.StatusArchived, day2),
		pv(3, 1, 3, "p1", model.StatusActive, day3),
		// Project 2: currently archived.
		pv(4, 2, 1, "p2", model.StatusActive, day1),
		pv(5, 2, 2, "p2", model.StatusArchived, day2),
	}

	active := CurrentProjects(versions, model.StatusActive)
	require.Len(t, active, 1)
	assert.Equal(t, model.ProjectID(1), active[0].ProjectID)
	assert.Equal(t, int64(3), active[0].Version)

	archived := CurrentProjects(versions, model.StatusArchived)
	require.Len(t, archived, 1)
	assert.Equal(t, model.ProjectID(2), archived[0].ProjectID)

	all := CurrentProjects(versions, "")
	assert.Len(t, all, 2)
}

func TestCurrentTasks_ProjectFilter(t *testing.T) {
	tvs := []model.TaskVersion{
		{ID: 1, TaskID: 1, Version: 1, ProjectID: 1, Name: "t1", Status: model.StatusActive, EffectiveAt: day1},
		{ID: 2, TaskID: 2, Version: 1, ProjectID: 2, Name: "t2", Status: model.StatusActive, EffectiveAt: day1},
		// Task 1 moved to project 2.
		{ID: 3, TaskID: 1, Version: 2, ProjectID: 2, Name: "t1", Status: model.StatusActive, EffectiveAt: day2},
	}

	inP1 := CurrentTasks(tvs, "", 1)
	assert.Empty(t, inP1)

	inP2 := CurrentTasks(tvs, "", 2)
	require.Len(t, inP2, 2)
	assert.Equal(t, model.TaskID(1), inP2[0].TaskID)
	assert.Equal(t, model.TaskID(2), inP2[1].TaskID)
}
