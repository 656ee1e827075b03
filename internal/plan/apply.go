package plan

import (
	"context"
	"fmt"

	"github.com/affanhamid/editor/tracker/internal/tracker"
)

// Creator is the part of tracker.Service an import needs.
type Creator interface {
	CreateTask(ctx context.Context, projectID int64, in tracker.TaskInput, prerequisites []int64) (*tracker.Result, error)
	SetCompletion(ctx context.Context, projectID, taskID int64, completed bool) (*tracker.Result, error)
}

// Apply creates the plan's tasks in projectID in dependency order and
// returns the id assigned to each key. Tasks marked completed are completed
// after all tasks exist, prerequisites first. It stops at the first error;
// tasks created before it remain.
func Apply(ctx context.Context, c Creator, projectID int64, p *Plan) (map[string]int64, error) {
	ordered, err := p.Order()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(ordered))
	for _, t := range ordered {
		in := tracker.TaskInput{
			Title:       t.Title,
			Description: t.Description,
			Importance:  t.Importance,
		}
		if in.StartDate, err = ParseDate(t.StartDate); err != nil {
			return ids, fmt.Errorf("task %q: %w", t.Key, err)
		}
		if in.ExpectedCompletion, err = ParseDate(t.ExpectedCompletion); err != nil {
			return ids, fmt.Errorf("task %q: %w", t.Key, err)
		}

		deps := make([]int64, 0, len(t.DependsOn))
		for _, key := range t.DependsOn {
			deps = append(deps, ids[key])
		}
		res, err := c.CreateTask(ctx, projectID, in, deps)
		if err != nil {
			return ids, fmt.Errorf("task %q: %w", t.Key, err)
		}
		ids[t.Key] = res.Task.ID
	}

	for _, t := range ordered {
		if !t.Completed {
			continue
		}
		if _, err := c.SetCompletion(ctx, projectID, ids[t.Key], true); err != nil {
			return ids, fmt.Errorf("complete task %q: %w", t.Key, err)
		}
	}
	return ids, nil
}
