package graph

import "time"

// Task is a node in a project's dependency graph.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Edge means Dependent cannot complete until Prerequisite completes.
type Edge struct {
	Dependent    int64 `json:"task_id"`
	Prerequisite int64 `json:"depends_on_id"`
}

// Graph holds tasks and the dependency edges between them.
//
// Graph does no locking. Concurrent readers are fine; a writer must hold
// exclusive access for the duration of a mutation.
type Graph struct {
	tasks  map[int64]*Task
	out    map[int64]map[int64]struct{} // dependent -> prerequisites
	in     map[int64]map[int64]struct{} // prerequisite -> dependents
	nextID int64
}
