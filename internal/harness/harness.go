// Package harness runs end-to-end scenarios against a real store and
// captures deterministic snapshots for golden comparison. Scenarios
// pin every timestamp and use fixed repair tokens, so the same steps
// always produce byte-identical snapshots.
package harness

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chronolog/chronolog/internal/correct"
	"github.com/chronolog/chronolog/internal/model"
	"github.com/chronolog/chronolog/internal/store"
	"github.com/chronolog/chronolog/internal/testutil"
	"github.com/chronolog/chronolog/internal/tracking"
	"github.com/chronolog/chronolog/internal/view"
)

// Base is the scenario epoch. Steps state times relative to it.
var Base = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

// App bundles the store, service, and correction engine a scenario
// runs against, and records corrections applied along the way.
type App struct {
	Store   *store.Store
	Service *tracking.Service
	Engine  *correct.Engine

	Corrections []correct.Correction
}

// Repair runs a full repair pass and records its corrections in the
// snapshot.
func (a *App) Repair(ctx context.Context) error {
	corrections, err := a.Engine.RepairAll(ctx)
	if err != nil {
		return err
	}
	a.Corrections = append(a.Corrections, corrections...)
	return nil
}

// Step is one scenario action.
type Step func(ctx context.Context, app *App) error

// Scenario is a named sequence of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Run executes the scenario against a fresh store and returns the
// derived snapshot.
func Run(t *testing.T, scenario Scenario) *Snapshot {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(filepath.Join(t.TempDir(), scenario.Name+".db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewClock(Base, time.Minute)
	engine := correct.New(s,
		correct.WithNow(clock.Current),
		correct.WithTokenGenerator(&correct.FixedGenerator{}),
	)
	app := &App{
		Store:   s,
		Engine:  engine,
		Service: tracking.New(s, engine,
			tracking.WithNow(clock.Now),
			tracking.WithTokenGenerator(&correct.FixedGenerator{}),
		),
	}

	for i, step := range scenario.Steps {
		if err := step(ctx, app); err != nil {
			t.Fatalf("scenario %s: step %d: %v", scenario.Name, i, err)
		}
	}

	return snapshot(t, ctx, scenario.Name, app)
}

// snapshot derives the full observable state of the store: current
// projects and tasks, all intervals, per-task tag sets, and the
// corrections recorded during the run.
func snapshot(t *testing.T, ctx context.Context, name string, app *App) *Snapshot {
	t.Helper()

	projects, err := app.Service.Projects(ctx, "")
	if err != nil {
		t.Fatalf("snapshot projects: %v", err)
	}
	tasks, err := app.Service.Tasks(ctx, "", 0)
	if err != nil {
		t.Fatalf("snapshot tasks: %v", err)
	}
	events, err := app.Store.AllTimeEvents(ctx)
	if err != nil {
		t.Fatalf("snapshot events: %v", err)
	}

	taskTags := []TaskTags{}
	for _, tv := range tasks {
		tags, err := app.Service.CurrentTags(ctx, tv.TaskID)
		if err != nil {
			t.Fatalf("snapshot tags: %v", err)
		}
		names := []string{}
		for _, tag := range tags {
			names = append(names, tag.Name)
		}
		taskTags = append(taskTags, TaskTags{TaskID: tv.TaskID, Tags: names})
	}

	return &Snapshot{
		Scenario:    name,
		Projects:    projects,
		Tasks:       tasks,
		Intervals:   view.IntervalsByTask(events),
		TaskTags:    taskTags,
		Corrections: app.Corrections,
	}
}

// TaskTags is a task's current tag set, names resolved.
type TaskTags struct {
	TaskID model.TaskID `json:"task_id"`
	Tags   []string     `json:"tags"`
}

// Snapshot is the canonical serialization of everything a scenario
// can observe.
type Snapshot struct {
	Scenario    string                 `json:"scenario"`
	Projects    []model.ProjectVersion `json:"projects"`
	Tasks       []model.TaskVersion    `json:"tasks"`
	Intervals   []model.Interval       `json:"intervals"`
	TaskTags    []TaskTags             `json:"task_tags"`
	Corrections []correct.Correction   `json:"corrections,omitempty"`
}
