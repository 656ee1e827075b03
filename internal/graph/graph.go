package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidReference is returned when an edge names a missing task or
// joins tasks from different projects.
var ErrInvalidReference = errors.New("invalid task reference")

// ErrDuplicateTask is returned by Insert when the id is already present.
var ErrDuplicateTask = errors.New("duplicate task id")

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		tasks: make(map[int64]*Task),
		out:   make(map[int64]map[int64]struct{}),
		in:    make(map[int64]map[int64]struct{}),
	}
}

// AddTask creates an incomplete task with no edges and returns its id.
func (g *Graph) AddTask(projectID int64) int64 {
	g.nextID++
	for g.tasks[g.nextID] != nil {
		g.nextID++
	}
	g.tasks[g.nextID] = &Task{ID: g.nextID, ProjectID: projectID}
	return g.nextID
}

// Insert adds a task whose id was assigned elsewhere, e.g. by the database.
func (g *Graph) Insert(t Task) error {
	if _, ok := g.tasks[t.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateTask, t.ID)
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
	g.tasks[t.ID] = &t
	if t.ID > g.nextID {
		g.nextID = t.ID
	}
	return nil
}

// Task returns a copy of the task with the given id.
func (g *Graph) Task(id int64) (Task, bool) {
	t, ok := g.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Has reports whether the task exists.
func (g *Graph) Has(id int64) bool {
	_, ok := g.tasks[id]
	return ok
}

// Tasks returns every task ordered by id.
func (g *Graph) Tasks() []Task {
	tasks := make([]Task, 0, len(g.tasks))
	for _, t := range g.tasks {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Rename changes a task's title.
func (g *Graph) Rename(id int64, title string) error {
	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %d", ErrInvalidReference, id)
	}
	t.Title = title
	return nil
}

// SetCompletion records the completion state of a task. Dependency checks
// live in the rules package.
func (g *Graph) SetCompletion(id int64, completed bool, at time.Time) error {
	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %d", ErrInvalidReference, id)
	}
	t.Completed = completed
	if completed {
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	return nil
}

// AddEdge inserts dependent -> prerequisite. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(dependent, prerequisite int64) error {
	d, ok := g.tasks[dependent]
	if !ok {
		return fmt.Errorf("%w: task %d does not exist", ErrInvalidReference, dependent)
	}
	p, ok := g.tasks[prerequisite]
	if !ok {
		return fmt.Errorf("%w: task %d does not exist", ErrInvalidReference, prerequisite)
	}
	if d.ProjectID != p.ProjectID {
		return fmt.Errorf("%w: tasks %d and %d belong to different projects", ErrInvalidReference, dependent, prerequisite)
	}

	if g.out[dependent] == nil {
		g.out[dependent] = make(map[int64]struct{})
	}
	if g.in[prerequisite] == nil {
		g.in[prerequisite] = make(map[int64]struct{})
	}
	g.out[dependent][prerequisite] = struct{}{}
	g.in[prerequisite][dependent] = struct{}{}
	return nil
}

// RemoveEdge deletes dependent -> prerequisite if present.
func (g *Graph) RemoveEdge(dependent, prerequisite int64) {
	if set := g.out[dependent]; set != nil {
		delete(set, prerequisite)
		if len(set) == 0 {
			delete(g.out, dependent)
		}
	}
	if set := g.in[prerequisite]; set != nil {
		delete(set, dependent)
		if len(set) == 0 {
			delete(g.in, prerequisite)
		}
	}
}

// HasEdge reports whether dependent -> prerequisite exists.
func (g *Graph) HasEdge(dependent, prerequisite int64) bool {
	_, ok := g.out[dependent][prerequisite]
	return ok
}

// Outgoing returns the prerequisites of a task, sorted.
func (g *Graph) Outgoing(id int64) []int64 {
	return sortedKeys(g.out[id])
}

// Incoming returns the tasks that depend on id, sorted.
func (g *Graph) Incoming(id int64) []int64 {
	return sortedKeys(g.in[id])
}

// Edges returns every edge ordered by dependent, then prerequisite.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for dep, pres := range g.out {
		for pre := range pres {
			edges = append(edges, Edge{Dependent: dep, Prerequisite: pre})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Dependent != edges[j].Dependent {
			return edges[i].Dependent < edges[j].Dependent
		}
		return edges[i].Prerequisite < edges[j].Prerequisite
	})
	return edges
}

// DeleteTask removes a task and every edge touching it.
func (g *Graph) DeleteTask(id int64) {
	for pre := range g.out[id] {
		g.RemoveEdge(id, pre)
	}
	for dep := range g.in[id] {
		g.RemoveEdge(dep, id)
	}
	delete(g.tasks, id)
}

// PathExists reports whether to is reachable from `from` by following
// outgoing edges. The search never expands `to` itself.
func (g *Graph) PathExists(from, to int64) bool {
	if from == to {
		return true
	}
	visited := map[int64]bool{from: true}
	stack := []int64{from}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range g.out[node] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *Graph) DetectCycle() []int64 {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[int64]int)
	parent := make(map[int64]int64)

	var dfs func(node int64) []int64
	dfs = func(node int64) []int64 {
		color[node] = gray
		for _, next := range g.Outgoing(node) {
			if color[next] == gray {
				cycle := []int64{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, t := range g.Tasks() {
		if color[t.ID] == white {
			if cycle := dfs(t.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Completable reports whether every prerequisite of id is complete.
func (g *Graph) Completable(id int64) bool {
	for pre := range g.out[id] {
		if t := g.tasks[pre]; t == nil || !t.Completed {
			return false
		}
	}
	return true
}

// Ready returns incomplete tasks whose prerequisites are all complete.
func (g *Graph) Ready() []Task {
	var ready []Task
	for _, t := range g.Tasks() {
		if t.Completed {
			continue
		}
		if g.Completable(t.ID) {
			ready = append(ready, t)
		}
	}
	return ready
}

// Progress returns the rounded percentage of completed tasks in a project,
// or 0 when the project has no tasks.
func (g *Graph) Progress(projectID int64) int {
	var total, done int
	for _, t := range g.tasks {
		if t.ProjectID != projectID {
			continue
		}
		total++
		if t.Completed {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) * 100 / float64(total)))
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := New()
	c.nextID = g.nextID
	for id, t := range g.tasks {
		cp := *t
		if t.CompletedAt != nil {
			at := *t.CompletedAt
			cp.CompletedAt = &at
		}
		c.tasks[id] = &cp
	}
	for _, e := range g.Edges() {
		c.AddEdge(e.Dependent, e.Prerequisite)
	}
	return c
}

func sortedKeys(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
