package graph

import (
	"errors"
	"testing"
	"time"
)

func buildChain(t *testing.T) (*Graph, int64, int64, int64) {
	t.Helper()
	// c -> b -> a
	g := New()
	a := g.AddTask(1)
	b := g.AddTask(1)
	c := g.AddTask(1)
	if err := g.AddEdge(b, a); err != nil {
		t.Fatalf("add edge b->a: %v", err)
	}
	if err := g.AddEdge(c, b); err != nil {
		t.Fatalf("add edge c->b: %v", err)
	}
	return g, a, b, c
}

func TestAddTask_Isolated(t *testing.T) {
	g := New()
	id := g.AddTask(7)

	task, ok := g.Task(id)
	if !ok {
		t.Fatalf("expected task %d to exist", id)
	}
	if task.ProjectID != 7 || task.Completed || task.CompletedAt != nil {
		t.Fatalf("unexpected new task state: %+v", task)
	}
	if out := g.Outgoing(id); len(out) != 0 {
		t.Errorf("expected no outgoing edges, got %v", out)
	}
	if in := g.Incoming(id); len(in) != 0 {
		t.Errorf("expected no incoming edges, got %v", in)
	}
}

func TestAddTask_SkipsInsertedIDs(t *testing.T) {
	g := New()
	if err := g.Insert(Task{ID: 1, ProjectID: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	id := g.AddTask(1)
	if id != 2 {
		t.Fatalf("expected id 2, got %d", id)
	}
}

func TestInsert_Duplicate(t *testing.T) {
	g := New()
	g.Insert(Task{ID: 3, ProjectID: 1})
	err := g.Insert(Task{ID: 3, ProjectID: 1})
	if !errors.Is(err, ErrDuplicateTask) {
		t.Fatalf("expected ErrDuplicateTask, got %v", err)
	}
}

func TestAddEdge_Directions(t *testing.T) {
	g, a, b, c := buildChain(t)

	if out := g.Outgoing(b); len(out) != 1 || out[0] != a {
		t.Errorf("expected b to depend on [a], got %v", out)
	}
	if in := g.Incoming(b); len(in) != 1 || in[0] != c {
		t.Errorf("expected [c] to depend on b, got %v", in)
	}
	if !g.HasEdge(c, b) || g.HasEdge(b, c) {
		t.Error("edge direction mismatch")
	}
}

func TestAddEdge_Idempotent(t *testing.T) {
	g, a, b, _ := buildChain(t)
	if err := g.AddEdge(b, a); err != nil {
		t.Fatalf("re-adding edge: %v", err)
	}
	if n := len(g.Edges()); n != 2 {
		t.Fatalf("expected 2 edges, got %d", n)
	}
}

func TestAddEdge_InvalidReference(t *testing.T) {
	g := New()
	a := g.AddTask(1)
	other := g.AddTask(2)

	if err := g.AddEdge(a, 999); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("missing prerequisite: expected ErrInvalidReference, got %v", err)
	}
	if err := g.AddEdge(999, a); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("missing dependent: expected ErrInvalidReference, got %v", err)
	}
	if err := g.AddEdge(a, other); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("cross project: expected ErrInvalidReference, got %v", err)
	}
	if n := len(g.Edges()); n != 0 {
		t.Fatalf("expected no edges after failures, got %d", n)
	}
}

func TestRemoveEdge_RoundTrip(t *testing.T) {
	g, a, _, c := buildChain(t)
	before := g.Edges()

	if err := g.AddEdge(c, a); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	g.RemoveEdge(c, a)
	g.RemoveEdge(c, a) // absent: no-op

	after := g.Edges()
	if len(before) != len(after) {
		t.Fatalf("expected %v, got %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("expected %v, got %v", before, after)
		}
	}
}

func TestDeleteTask_RemovesEdges(t *testing.T) {
	g, a, b, c := buildChain(t)
	g.DeleteTask(b)

	if g.Has(b) {
		t.Fatal("expected b to be gone")
	}
	if in := g.Incoming(a); len(in) != 0 {
		t.Errorf("expected a to have no dependents, got %v", in)
	}
	if out := g.Outgoing(c); len(out) != 0 {
		t.Errorf("expected c to have no prerequisites, got %v", out)
	}
}

func TestPathExists(t *testing.T) {
	g, a, b, c := buildChain(t)

	if !g.PathExists(c, a) {
		t.Error("expected path c -> a")
	}
	if g.PathExists(a, c) {
		t.Error("expected no path a -> c")
	}
	if !g.PathExists(b, b) {
		t.Error("expected trivial path b -> b")
	}
}

func TestPathExists_Diamond(t *testing.T) {
	// layered diamonds: each layer has two tasks depending on both tasks of
	// the previous layer. Without a visited set this explodes.
	g := New()
	prev := []int64{g.AddTask(1), g.AddTask(1)}
	first := prev[0]
	for i := 0; i < 40; i++ {
		layer := []int64{g.AddTask(1), g.AddTask(1)}
		for _, d := range layer {
			for _, p := range prev {
				g.AddEdge(d, p)
			}
		}
		prev = layer
	}
	orphan := g.AddTask(1)

	if !g.PathExists(prev[0], first) {
		t.Error("expected path from top layer to bottom")
	}
	if g.PathExists(prev[0], orphan) {
		t.Error("expected no path to orphan")
	}
}

func TestDetectCycle(t *testing.T) {
	g, a, _, c := buildChain(t)
	if cycle := g.DetectCycle(); cycle != nil {
		t.Fatalf("expected acyclic graph, got cycle %v", cycle)
	}

	// the store itself does not refuse cycles
	if err := g.AddEdge(a, c); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	cycle := g.DetectCycle()
	if len(cycle) != 4 {
		t.Fatalf("expected cycle of 3 tasks plus closing node, got %v", cycle)
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("expected cycle to start and end on the same task, got %v", cycle)
	}
}

func TestReadyAndProgress(t *testing.T) {
	g, a, b, c := buildChain(t)

	ready := g.Ready()
	if len(ready) != 1 || ready[0].ID != a {
		t.Fatalf("expected only a ready, got %v", ready)
	}

	g.SetCompletion(a, true, time.Now())
	ready = g.Ready()
	if len(ready) != 1 || ready[0].ID != b {
		t.Fatalf("expected only b ready, got %v", ready)
	}
	if !g.Completable(b) || g.Completable(c) {
		t.Error("completability mismatch")
	}

	if p := g.Progress(1); p != 33 {
		t.Errorf("expected 33%% progress, got %d", p)
	}
	if p := g.Progress(42); p != 0 {
		t.Errorf("expected 0%% for empty project, got %d", p)
	}
}

func TestSetCompletion_ClearsTimestamp(t *testing.T) {
	g := New()
	id := g.AddTask(1)
	g.SetCompletion(id, true, time.Now())
	g.SetCompletion(id, false, time.Time{})

	task, _ := g.Task(id)
	if task.Completed || task.CompletedAt != nil {
		t.Fatalf("expected cleared completion, got %+v", task)
	}
}

func TestClone_Independent(t *testing.T) {
	g, a, _, c := buildChain(t)
	cp := g.Clone()

	cp.AddEdge(c, a)
	cp.SetCompletion(a, true, time.Now())

	if g.HasEdge(c, a) {
		t.Error("clone edge leaked into original")
	}
	if task, _ := g.Task(a); task.Completed {
		t.Error("clone completion leaked into original")
	}
}

func TestRename(t *testing.T) {
	g := New()
	id := g.AddTask(1)
	if err := g.Rename(id, "Write docs"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if task, _ := g.Task(id); task.Title != "Write docs" {
		t.Fatalf("expected new title, got %q", task.Title)
	}
	if err := g.Rename(id+1, "Nope"); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}
