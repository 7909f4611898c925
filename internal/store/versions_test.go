package store

import (
	"context"
	"sync"
	"testing"

	"github.com/chronolog/chronolog/internal/model"
)

func TestAppendProjectVersion_DenseSequence(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	at := testTime(t, "2026-01-02T09:00:00Z")

	id, err := s.AllocateProject(ctx)
	if err != nil {
		t.Fatalf("AllocateProject() error = %v", err)
	}

	for want := int64(1); want <= 5; want++ {
		pv, err := s.AppendProjectVersion(ctx, id, "proj", model.StatusActive, at)
		if err != nil {
			t.Fatalf("AppendProjectVersion() error = %v", err)
		}
		if pv.Version != want {
			t.Errorf("version = %d, want %d", pv.Version, want)
		}
	}
}

func TestAppendProjectVersion_UnknownProject(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.AppendProjectVersion(ctx, 42, "ghost", model.StatusActive,
		testTime(t, "2026-01-02T09:00:00Z"))
	if !IsInvalidTransition(err) {
		t.Errorf("error = %v, want INVALID_TRANSITION", err)
	}
}

func TestAppendProjectVersion_NormalizesName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.AllocateProject(ctx)
	if err != nil {
		t.Fatalf("AllocateProject() error = %v", err)
	}

	pv, err := s.AppendProjectVersion(ctx, id, "  Café  ",
		model.StatusActive, testTime(t, "2026-01-02T09:00:00Z"))
	if err != nil {
		t.Fatalf("AppendProjectVersion() error = %v", err)
	}
	if pv.Name != "Café" {
		t.Errorf("name = %q, want NFC-normalized trimmed form", pv.Name)
	}
}

func TestAppendProjectVersion_ConcurrentWritersStayDense(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.AllocateProject(ctx)
	if err != nil {
		t.Fatalf("AllocateProject() error = %v", err)
	}

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AppendProjectVersion(ctx, id, "proj", model.StatusActive,
				testTime(t, "2026-01-02T09:00:00Z"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent append error = %v", err)
		}
	}

	// All writers succeeded: versions must be exactly 1..writers with
	// no gaps and no duplicates.
	versions, err := s.ProjectVersions(ctx, id)
	if err != nil {
		t.Fatalf("ProjectVersions() error = %v", err)
	}
	if len(versions) != writers {
		t.Fatalf("got %d versions, want %d", len(versions), writers)
	}
	seen := map[int64]bool{}
	for _, v := range versions {
		if seen[v.Version] {
			t.Errorf("duplicate version %d", v.Version)
		}
		seen[v.Version] = true
	}
	for want := int64(1); want <= writers; want++ {
		if !seen[want] {
			t.Errorf("missing version %d", want)
		}
	}
}

func TestAppendTaskVersion_RequiresParentProject(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	at := testTime(t, "2026-01-02T09:00:00Z")

	tid, err := s.AllocateTask(ctx)
	if err != nil {
		t.Fatalf("AllocateTask() error = %v", err)
	}

	_, err = s.AppendTaskVersion(ctx, tid, 42, "task", model.StatusActive, at)
	if !IsInvalidTransition(err) {
		t.Errorf("error = %v, want INVALID_TRANSITION for unknown project", err)
	}

	pid, err := s.AllocateProject(ctx)
	if err != nil {
		t.Fatalf("AllocateProject() error = %v", err)
	}
	tv, err := s.AppendTaskVersion(ctx, tid, pid, "task", model.StatusActive, at)
	if err != nil {
		t.Fatalf("AppendTaskVersion() error = %v", err)
	}
	if tv.Version != 1 || tv.ProjectID != pid {
		t.Errorf("got version %d project %d, want version 1 project %d", tv.Version, tv.ProjectID, pid)
	}
}

func TestAppendVersions_AppendOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.AllocateProject(ctx)
	if err != nil {
		t.Fatalf("AllocateProject() error = %v", err)
	}

	if _, err := s.AppendProjectVersion(ctx, id, "before", model.StatusActive,
		testTime(t, "2026-01-02T09:00:00Z")); err != nil {
		t.Fatalf("AppendProjectVersion() error = %v", err)
	}
	if _, err := s.AppendProjectVersion(ctx, id, "after", model.StatusArchived,
		testTime(t, "2026-01-02T10:00:00Z")); err != nil {
		t.Fatalf("AppendProjectVersion() error = %v", err)
	}

	// Archiving appended a row; the original row is untouched.
	versions, err := s.ProjectVersions(ctx, id)
	if err != nil {
		t.Fatalf("ProjectVersions() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}
	if versions[0].Name != "before" || versions[0].Status != model.StatusActive {
		t.Errorf("first row mutated: %+v", versions[0])
	}
}

func TestProjectVersions_CanonicalOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.AllocateProject(ctx)
	if err != nil {
		t.Fatalf("AllocateProject() error = %v", err)
	}

	// Insert with descending effective_at; reads must come back in
	// (effective_at, version, id) order regardless.
	if _, err := s.AppendProjectVersion(ctx, id, "v1", model.StatusActive,
		testTime(t, "2026-01-02T12:00:00Z")); err != nil {
		t.Fatalf("AppendProjectVersion() error = %v", err)
	}
	if _, err := s.AppendProjectVersion(ctx, id, "v2-backfill", model.StatusActive,
		testTime(t, "2026-01-02T08:00:00Z")); err != nil {
		t.Fatalf("AppendProjectVersion() error = %v", err)
	}

	versions, err := s.ProjectVersions(ctx, id)
	if err != nil {
		t.Fatalf("ProjectVersions() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}
	if versions[0].Name != "v2-backfill" {
		t.Errorf("first row = %q, want the earlier effective_at", versions[0].Name)
	}
}

func TestLostRace_NonSQLiteError(t *testing.T) {
	if lostRace(context.Canceled) {
		t.Error("context.Canceled misclassified as a lost race")
	}
}
