package view

import (
	"sort"

	"github.com/chronolog/chronolog/internal/model"
)

// CurrentTags folds a task's tag event log into its current tag set: a
// tag is present iff the latest event for that (task, tag) pair by
// (at, id) is an add. Re-adding a present tag or re-removing an absent
// one is a no-op, and remove/re-add round trips need no deletion.
// Returns tag ids in ascending order.
func CurrentTags(events []model.TagEvent) []int64 {
	ordered := make([]model.TagEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return model.CompareEvents(ordered[i].At, ordered[i].ID, ordered[j].At, ordered[j].ID) < 0
	})

	// Last writer wins per tag; canonical order makes "last" unambiguous.
	latest := map[int64]model.TagEventKind{}
	for _, ev := range ordered {
		latest[ev.TagID] = ev.Kind
	}

	tags := []int64{}
	for tagID, kind := range latest {
		if kind == model.TagAdd {
			tags = append(tags, tagID)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
