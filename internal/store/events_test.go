package store

import (
	"context"
	"testing"

	"github.com/chronolog/chronolog/internal/model"
)

func createTestTask(t *testing.T, s *Store) model.TaskID {
	t.Helper()
	ctx := context.Background()

	pid, err := s.AllocateProject(ctx)
	if err != nil {
		t.Fatalf("AllocateProject() error = %v", err)
	}
	if _, err := s.AppendProjectVersion(ctx, pid, "proj", model.StatusActive,
		testTime(t, "2026-01-02T08:00:00Z")); err != nil {
		t.Fatalf("AppendProjectVersion() error = %v", err)
	}

	tid, err := s.AllocateTask(ctx)
	if err != nil {
		t.Fatalf("AllocateTask() error = %v", err)
	}
	if _, err := s.AppendTaskVersion(ctx, tid, pid, "task", model.StatusActive,
		testTime(t, "2026-01-02T08:00:00Z")); err != nil {
		t.Fatalf("AppendTaskVersion() error = %v", err)
	}
	return tid
}

func TestAppendTimeEvent_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	tid := createTestTask(t, s)

	startID, err := s.AppendTimeEvent(ctx, model.TimeEvent{
		TaskID: tid,
		Kind:   model.EventStart,
		At:     testTime(t, "2026-01-02T09:00:00Z"),
	})
	if err != nil {
		t.Fatalf("AppendTimeEvent(start) error = %v", err)
	}

	if _, err := s.AppendTimeEvent(ctx, model.TimeEvent{
		TaskID:       tid,
		Kind:         model.EventStop,
		At:           testTime(t, "2026-01-02T09:30:00Z"),
		StartEventID: &startID,
	}); err != nil {
		t.Fatalf("AppendTimeEvent(stop) error = %v", err)
	}

	events, err := s.TimeEvents(ctx, tid)
	if err != nil {
		t.Fatalf("TimeEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Kind != model.EventStart || events[1].Kind != model.EventStop {
		t.Errorf("events out of order: %v, %v", events[0].Kind, events[1].Kind)
	}
	if events[1].StartEventID == nil || *events[1].StartEventID != startID {
		t.Errorf("stop backref = %v, want %d", events[1].StartEventID, startID)
	}
	// Organic events carry no reason or token.
	if events[0].Synthetic() || events[1].Synthetic() {
		t.Error("organic events marked synthetic")
	}
}

func TestAppendTimeEvent_SyntheticFields(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	tid := createTestTask(t, s)

	startID, err := s.AppendTimeEvent(ctx, model.TimeEvent{
		TaskID: tid,
		Kind:   model.EventStart,
		At:     testTime(t, "2026-01-02T09:00:00Z"),
	})
	if err != nil {
		t.Fatalf("AppendTimeEvent(start) error = %v", err)
	}

	if _, err := s.AppendTimeEvent(ctx, model.TimeEvent{
		TaskID:       tid,
		Kind:         model.EventStop,
		At:           testTime(t, "2026-01-02T09:30:00Z"),
		StartEventID: &startID,
		Reason:       model.ReasonImplicitStop,
		RepairToken:  "repair-1",
	}); err != nil {
		t.Fatalf("AppendTimeEvent(synthetic stop) error = %v", err)
	}

	events, err := s.TimeEvents(ctx, tid)
	if err != nil {
		t.Fatalf("TimeEvents() error = %v", err)
	}
	got := events[1]
	if got.Reason != model.ReasonImplicitStop || got.RepairToken != "repair-1" {
		t.Errorf("synthetic fields = (%q, %q), want (implicit_stop, repair-1)", got.Reason, got.RepairToken)
	}
	if !got.Synthetic() {
		t.Error("Synthetic() = false for reasoned event")
	}
}

func TestAppendTimeEvent_UnknownTask(t *testing.T) {
	s := createTestStore(t)

	_, err := s.AppendTimeEvent(context.Background(), model.TimeEvent{
		TaskID: 42,
		Kind:   model.EventStart,
		At:     testTime(t, "2026-01-02T09:00:00Z"),
	})
	if !IsInvalidTransition(err) {
		t.Errorf("error = %v, want INVALID_TRANSITION", err)
	}
}

func TestAppendTimeEvent_UnknownKind(t *testing.T) {
	s := createTestStore(t)
	tid := createTestTask(t, s)

	_, err := s.AppendTimeEvent(context.Background(), model.TimeEvent{
		TaskID: tid,
		Kind:   "pause",
		At:     testTime(t, "2026-01-02T09:00:00Z"),
	})
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestEnsureTag_InsertThenReuse(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureTag(ctx, "deep-work")
	if err != nil {
		t.Fatalf("EnsureTag() error = %v", err)
	}
	second, err := s.EnsureTag(ctx, "deep-work")
	if err != nil {
		t.Fatalf("EnsureTag() second call error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %d vs %d", first.ID, second.ID)
	}
}

func TestEnsureTag_NormalizedUniqueness(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	nfc, err := s.EnsureTag(ctx, "café")
	if err != nil {
		t.Fatalf("EnsureTag() error = %v", err)
	}
	nfd, err := s.EnsureTag(ctx, " café ")
	if err != nil {
		t.Fatalf("EnsureTag() NFD form error = %v", err)
	}
	if nfc.ID != nfd.ID {
		t.Errorf("encodings produced distinct tags: %d vs %d", nfc.ID, nfd.ID)
	}
}

func TestEnsureTag_EmptyName(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.EnsureTag(context.Background(), "   "); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestAppendTagEvent_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	tid := createTestTask(t, s)

	tag, err := s.EnsureTag(ctx, "focus")
	if err != nil {
		t.Fatalf("EnsureTag() error = %v", err)
	}

	if _, err := s.AppendTagEvent(ctx, model.TagEvent{
		TaskID: tid,
		TagID:  tag.ID,
		Kind:   model.TagAdd,
		At:     testTime(t, "2026-01-02T09:00:00Z"),
	}); err != nil {
		t.Fatalf("AppendTagEvent() error = %v", err)
	}

	events, err := s.TagEvents(ctx, tid)
	if err != nil {
		t.Fatalf("TagEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d tag events, want 1", len(events))
	}
	if events[0].TagID != tag.ID || events[0].Kind != model.TagAdd {
		t.Errorf("tag event = %+v", events[0])
	}
}

func TestTimeEvents_TimestampTieOrderedByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	tid := createTestTask(t, s)

	at := testTime(t, "2026-01-02T09:00:00Z")
	first, err := s.AppendTimeEvent(ctx, model.TimeEvent{TaskID: tid, Kind: model.EventStart, At: at})
	if err != nil {
		t.Fatalf("AppendTimeEvent() error = %v", err)
	}
	second, err := s.AppendTimeEvent(ctx, model.TimeEvent{TaskID: tid, Kind: model.EventStop, At: at, StartEventID: &first})
	if err != nil {
		t.Fatalf("AppendTimeEvent() error = %v", err)
	}

	events, err := s.TimeEvents(ctx, tid)
	if err != nil {
		t.Fatalf("TimeEvents() error = %v", err)
	}
	if events[0].ID != first || events[1].ID != second {
		t.Errorf("tie not broken by id: got %d then %d", events[0].ID, events[1].ID)
	}
}
