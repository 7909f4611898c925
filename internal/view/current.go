package view

import (
	"sort"

	"github.com/chronolog/chronolog/internal/model"
)

// CurrentProject folds a project's version rows down to its current
// state: the row maximizing (effective_at, version, id). Returns false
// if the slice is empty. Input order does not matter.
func CurrentProject(versions []model.ProjectVersion) (model.ProjectVersion, bool) {
	if len(versions) == 0 {
		return model.ProjectVersion{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if model.CompareVersions(v.EffectiveAt, v.Version, v.ID, best.EffectiveAt, best.Version, best.ID) > 0 {
			best = v
		}
	}
	return best, true
}

// CurrentTask folds a task's version rows down to its current state.
func CurrentTask(versions []model.TaskVersion) (model.TaskVersion, bool) {
	if len(versions) == 0 {
		return model.TaskVersion{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if model.CompareVersions(v.EffectiveAt, v.Version, v.ID, best.EffectiveAt, best.Version, best.ID) > 0 {
			best = v
		}
	}
	return best, true
}

// CurrentProjects folds a multi-project version stream into exactly
// one current row per project, ordered by project id. An empty status
// filter ("") keeps every project; otherwise only projects whose
// current status matches are returned. Archived history never leaks:
// the filter applies to the current row, not to any historical one.
func CurrentProjects(versions []model.ProjectVersion, status model.Status) []model.ProjectVersion {
	byProject := map[model.ProjectID][]model.ProjectVersion{}
	for _, v := range versions {
		byProject[v.ProjectID] = append(byProject[v.ProjectID], v)
	}

	ids := make([]model.ProjectID, 0, len(byProject))
	for id := range byProject {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	current := []model.ProjectVersion{}
	for _, id := range ids {
		cur, ok := CurrentProject(byProject[id])
		if !ok {
			continue
		}
		if status != "" && cur.Status != status {
			continue
		}
		current = append(current, cur)
	}
	return current
}

// CurrentTasks folds a multi-task version stream into one current row
// per task, ordered by task id, optionally filtered by current status
// and parent project (projectID 0 means any project).
func CurrentTasks(versions []model.TaskVersion, status model.Status, projectID model.ProjectID) []model.TaskVersion {
	byTask := map[model.TaskID][]model.TaskVersion{}
	for _, v := range versions {
		byTask[v.TaskID] = append(byTask[v.TaskID], v)
	}

	ids := make([]model.TaskID, 0, len(byTask))
	for id := range byTask {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	current := []model.TaskVersion{}
	for _, id := range ids {
		cur, ok := CurrentTask(byTask[id])
		if !ok {
			continue
		}
		if status != "" && cur.Status != status {
			continue
		}
		if projectID != 0 && cur.ProjectID != projectID {
			continue
		}
		current = append(current, cur)
	}
	return current
}
