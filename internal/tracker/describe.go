package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/affanhamid/editor/tracker/internal/graph"
	"github.com/affanhamid/editor/tracker/internal/rules"
)

// Rejection is a rule violation rendered for the person who asked for the
// change. It unwraps to the underlying *rules.Error.
type Rejection struct {
	Message string
	Cause   error
}

func (r *Rejection) Error() string { return r.Message }

func (r *Rejection) Unwrap() error { return r.Cause }

// describe wraps a rule error with a message that names tasks by title.
// Other errors pass through unchanged.
func describe(err error, g *graph.Graph) error {
	var re *rules.Error
	if !errors.As(err, &re) {
		return err
	}
	return &Rejection{Message: Message(re, g), Cause: err}
}

// Message renders a rule error using task titles from g.
func Message(re *rules.Error, g *graph.Graph) string {
	switch re.Kind {
	case rules.SelfDependency:
		return "Task cannot depend on itself"
	case rules.InvalidReference:
		if len(re.Related) > 0 {
			return fmt.Sprintf("Invalid dependency task ID: %d", re.Related[0])
		}
		return fmt.Sprintf("Task %d does not exist in this project", re.TaskID)
	case rules.CircularDependency:
		return fmt.Sprintf("Cannot add dependency on %q - would create circular dependency", titles(g, re.Related))
	case rules.DependenciesUnmet:
		return "Cannot complete task. All dependency tasks must be completed first: " + titles(g, re.Related)
	case rules.CompletedDependentsExist:
		return "Cannot mark as incomplete. The following completed tasks depend on it: " + titles(g, re.Related)
	case rules.HasDependents:
		return "Cannot delete task. The following tasks depend on it: " + titles(g, re.Related)
	}
	return re.Error()
}

func titles(g *graph.Graph, ids []int64) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := g.Task(id); ok && t.Title != "" {
			names = append(names, t.Title)
		} else {
			names = append(names, fmt.Sprintf("#%d", id))
		}
	}
	return strings.Join(names, ", ")
}
