// Package rules enforces the task dependency rules on top of a
// graph.Graph: no self-dependency, no cross-project edges, no cycles, no
// completing a task before its prerequisites, no reopening a task that a
// completed task depends on, and no deleting a task that others depend on.
//
// Every operation validates first and mutates only on success, so a rejected
// call leaves the graph exactly as it was. The engine does no locking; the
// caller must hold exclusive access to the graph for the duration of a call.
package rules

import (
	"time"

	"github.com/affanhamid/editor/tracker/internal/graph"
	"github.com/google/uuid"
)

// Completion is the completion state a Change sets on its task.
type Completion struct {
	Completed   bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Change is the delta an accepted operation applied to the graph. The storage
// layer persists it as-is.
type Change struct {
	ID           uuid.UUID    `json:"id"`
	TaskID       int64        `json:"task_id"`
	Op           string       `json:"op"`
	AddedEdges   []graph.Edge `json:"added_edges,omitempty"`
	RemovedEdges []graph.Edge `json:"removed_edges,omitempty"`
	Completion   *Completion  `json:"completion,omitempty"`
	Deleted      bool         `json:"deleted,omitempty"`
}

// Empty reports whether the change leaves the graph untouched.
func (c *Change) Empty() bool {
	return len(c.AddedEdges) == 0 && len(c.RemovedEdges) == 0 && c.Completion == nil && !c.Deleted
}

// Operation names recorded on a Change.
const (
	OpProposeEdge   = "propose_edge"
	OpRemoveEdge    = "remove_edge"
	OpReplaceEdges  = "replace_edges"
	OpSetCompletion = "set_completion"
	OpDeleteTask    = "delete_task"
)

// Engine applies the dependency rules. Now is the clock used to stamp
// completion times.
type Engine struct {
	Now func() time.Time
}

// New returns an engine using the wall clock.
func New() *Engine {
	return &Engine{Now: time.Now}
}

// ProposeEdge adds dependent -> prerequisite after checking for
// self-reference, missing or cross-project tasks, and cycles.
func (e *Engine) ProposeEdge(g *graph.Graph, dependent, prerequisite int64) (*Change, error) {
	if err := checkCandidate(g, dependent, prerequisite); err != nil {
		return nil, err
	}

	change := &Change{TaskID: dependent, Op: OpProposeEdge}
	if g.HasEdge(dependent, prerequisite) {
		return change, nil
	}
	if err := g.AddEdge(dependent, prerequisite); err != nil {
		return nil, reject(InvalidReference, dependent, prerequisite)
	}
	change.AddedEdges = []graph.Edge{{Dependent: dependent, Prerequisite: prerequisite}}
	return change, nil
}

// RemoveEdge drops dependent -> prerequisite. Removing an absent edge succeeds
// with an empty change.
func (e *Engine) RemoveEdge(g *graph.Graph, dependent, prerequisite int64) (*Change, error) {
	if !g.Has(dependent) {
		return nil, reject(InvalidReference, dependent)
	}
	change := &Change{TaskID: dependent, Op: OpRemoveEdge}
	if !g.HasEdge(dependent, prerequisite) {
		return change, nil
	}
	g.RemoveEdge(dependent, prerequisite)
	change.RemovedEdges = []graph.Edge{{Dependent: dependent, Prerequisite: prerequisite}}
	return change, nil
}

// ReplaceEdges makes prerequisites the complete dependency set of taskID.
// The target set is validated as a whole before anything changes; if any
// candidate fails, the task keeps its current edges.
func (e *Engine) ReplaceEdges(g *graph.Graph, taskID int64, prerequisites []int64) (*Change, error) {
	if !g.Has(taskID) {
		return nil, reject(InvalidReference, taskID)
	}

	target := make(map[int64]bool, len(prerequisites))
	var ordered []int64
	for _, pre := range prerequisites {
		if target[pre] {
			continue
		}
		target[pre] = true
		ordered = append(ordered, pre)
	}

	// Every candidate edge starts at taskID and the path search stops when it
	// reaches taskID, so taskID's current outgoing edges never influence the
	// result. Checking against the live graph is the same as checking
	// against the graph with those edges cleared.
	for _, pre := range ordered {
		if err := checkCandidate(g, taskID, pre); err != nil {
			return nil, err
		}
	}

	change := &Change{TaskID: taskID, Op: OpReplaceEdges}
	for _, pre := range g.Outgoing(taskID) {
		if !target[pre] {
			change.RemovedEdges = append(change.RemovedEdges, graph.Edge{Dependent: taskID, Prerequisite: pre})
		}
	}
	for _, pre := range ordered {
		if !g.HasEdge(taskID, pre) {
			change.AddedEdges = append(change.AddedEdges, graph.Edge{Dependent: taskID, Prerequisite: pre})
		}
	}

	for _, edge := range change.RemovedEdges {
		g.RemoveEdge(edge.Dependent, edge.Prerequisite)
	}
	for _, edge := range change.AddedEdges {
		// references were checked above
		_ = g.AddEdge(edge.Dependent, edge.Prerequisite)
	}
	return change, nil
}

// SetCompletion moves a task between Incomplete and Complete. Completing
// requires every prerequisite to be complete; reopening requires that no
// completed task depends on it. Requesting the current state is a no-op.
func (e *Engine) SetCompletion(g *graph.Graph, taskID int64, completed bool) (*Change, error) {
	task, ok := g.Task(taskID)
	if !ok {
		return nil, reject(InvalidReference, taskID)
	}

	change := &Change{TaskID: taskID, Op: OpSetCompletion}
	if task.Completed == completed {
		return change, nil
	}

	if completed {
		var unmet []int64
		for _, pre := range g.Outgoing(taskID) {
			if t, _ := g.Task(pre); !t.Completed {
				unmet = append(unmet, pre)
			}
		}
		if len(unmet) > 0 {
			return nil, reject(DependenciesUnmet, taskID, unmet...)
		}
		now := e.now()
		g.SetCompletion(taskID, true, now)
		change.Completion = &Completion{Completed: true, CompletedAt: &now}
		return change, nil
	}

	var blocking []int64
	for _, dep := range g.Incoming(taskID) {
		if t, _ := g.Task(dep); t.Completed {
			blocking = append(blocking, dep)
		}
	}
	if len(blocking) > 0 {
		return nil, reject(CompletedDependentsExist, taskID, blocking...)
	}
	g.SetCompletion(taskID, false, time.Time{})
	change.Completion = &Completion{Completed: false}
	return change, nil
}

// DeleteTask removes a task nobody depends on, together with its own
// outgoing edges.
func (e *Engine) DeleteTask(g *graph.Graph, taskID int64) (*Change, error) {
	if !g.Has(taskID) {
		return nil, reject(InvalidReference, taskID)
	}
	if dependents := g.Incoming(taskID); len(dependents) > 0 {
		return nil, reject(HasDependents, taskID, dependents...)
	}

	change := &Change{TaskID: taskID, Op: OpDeleteTask, Deleted: true}
	for _, pre := range g.Outgoing(taskID) {
		change.RemovedEdges = append(change.RemovedEdges, graph.Edge{Dependent: taskID, Prerequisite: pre})
	}
	g.DeleteTask(taskID)
	return change, nil
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now().UTC()
}

// checkCandidate validates dependent -> prerequisite without touching g.
func checkCandidate(g *graph.Graph, dependent, prerequisite int64) error {
	if dependent == prerequisite {
		return reject(SelfDependency, dependent, prerequisite)
	}
	d, ok := g.Task(dependent)
	if !ok {
		return reject(InvalidReference, dependent)
	}
	p, ok := g.Task(prerequisite)
	if !ok || p.ProjectID != d.ProjectID {
		return reject(InvalidReference, dependent, prerequisite)
	}
	if g.PathExists(prerequisite, dependent) {
		return reject(CircularDependency, dependent, prerequisite)
	}
	return nil
}
