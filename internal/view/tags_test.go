package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chronolog/chronolog/internal/model"
)

func tagEvent(id, tagID int64, kind model.TagEventKind, hhmm string) model.TagEvent {
	return model.TagEvent{ID: id, TaskID: 1, TagID: tagID, Kind: kind, At: at(hhmm)}
}

func TestCurrentTags_LatestEventWins(t *testing.T) {
	events := []model.TagEvent{
		tagEvent(1, 10, model.TagAdd, "09:00"),
		tagEvent(2, 20, model.TagAdd, "09:05"),
		tagEvent(3, 10, model.TagRemove, "09:10"),
	}

	assert.Equal(t, []int64{20}, CurrentTags(events))
}

func TestCurrentTags_RemoveThenReAdd(t *testing.T) {
	events := []model.TagEvent{
		tagEvent(1, 10, model.TagAdd, "09:00"),
		tagEvent(2, 10, model.TagRemove, "09:10"),
		tagEvent(3, 10, model.TagAdd, "09:20"),
	}

	assert.Equal(t, []int64{10}, CurrentTags(events))
}

func TestCurrentTags_RedundantEventsAreNoOps(t *testing.T) {
	events := []model.TagEvent{
		tagEvent(1, 10, model.TagAdd, "09:00"),
		tagEvent(2, 10, model.TagAdd, "09:05"),
		tagEvent(3, 20, model.TagRemove, "09:10"),
	}

	assert.Equal(t, []int64{10}, CurrentTags(events))
}

func TestCurrentTags_IDBreaksTimestampTie(t *testing.T) {
	// Add and remove at the same instant: the higher event id is the
	// later writer.
	events := []model.TagEvent{
		tagEvent(2, 10, model.TagRemove, "09:00"),
		tagEvent(1, 10, model.TagAdd, "09:00"),
	}

	assert.Empty(t, CurrentTags(events))
}

func TestCurrentTags_Empty(t *testing.T) {
	assert.Empty(t, CurrentTags(nil))
}
