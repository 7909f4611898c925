package tracking

import (
	"context"
	"time"

	"github.com/chronolog/chronolog/internal/model"
	"github.com/chronolog/chronolog/internal/view"
)

// Tag adds a tag to a task, creating the dictionary entry on first
// use. Adding an already-present tag appends another add event and
// changes nothing in the derived set.
func (s *Service) Tag(ctx context.Context, taskID model.TaskID, name string, at time.Time) (model.Tag, error) {
	if _, err := s.Task(ctx, taskID); err != nil {
		return model.Tag{}, err
	}

	tag, err := s.store.EnsureTag(ctx, name)
	if err != nil {
		return model.Tag{}, err
	}

	_, err = s.store.AppendTagEvent(ctx, model.TagEvent{
		TaskID: taskID,
		TagID:  tag.ID,
		Kind:   model.TagAdd,
		At:     s.at(at),
	})
	if err != nil {
		return model.Tag{}, err
	}
	return tag, nil
}

// Untag removes a tag from a task by appending a remove event. The
// add/remove history remains fully queryable.
func (s *Service) Untag(ctx context.Context, taskID model.TaskID, name string, at time.Time) (model.Tag, error) {
	if _, err := s.Task(ctx, taskID); err != nil {
		return model.Tag{}, err
	}

	tag, err := s.store.EnsureTag(ctx, name)
	if err != nil {
		return model.Tag{}, err
	}

	_, err = s.store.AppendTagEvent(ctx, model.TagEvent{
		TaskID: taskID,
		TagID:  tag.ID,
		Kind:   model.TagRemove,
		At:     s.at(at),
	})
	if err != nil {
		return model.Tag{}, err
	}
	return tag, nil
}

// CurrentTags returns the task's current tag set with names resolved,
// ordered by tag id.
func (s *Service) CurrentTags(ctx context.Context, taskID model.TaskID) ([]model.Tag, error) {
	if _, err := s.Task(ctx, taskID); err != nil {
		return nil, err
	}

	events, err := s.store.TagEvents(ctx, taskID)
	if err != nil {
		return nil, err
	}

	all, err := s.store.Tags(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(all))
	for _, t := range all {
		names[t.ID] = t.Name
	}

	tags := []model.Tag{}
	for _, id := range view.CurrentTags(events) {
		tags = append(tags, model.Tag{ID: id, Name: names[id]})
	}
	return tags, nil
}
