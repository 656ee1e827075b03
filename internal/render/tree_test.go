package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/affanhamid/editor/tracker/internal/graph"
	"github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, task := range []graph.Task{
		{ID: 1, ProjectID: 7, Title: "Setup environment"},
		{ID: 2, ProjectID: 7, Title: "Design schema"},
		{ID: 3, ProjectID: 7, Title: "Implement auth"},
	} {
		if err := g.Insert(task); err != nil {
			t.Fatal(err)
		}
	}
	g.AddEdge(3, 1)
	g.AddEdge(3, 2)
	g.SetCompletion(1, true, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return g
}

func TestState(t *testing.T) {
	g := sampleGraph(t)
	want := map[int64]string{1: StateDone, 2: StateReady, 3: StateBlocked}
	for id, state := range want {
		task, _ := g.Task(id)
		if got := State(g, task); got != state {
			t.Errorf("task %d: expected %s, got %s", id, state, got)
		}
	}
}

func TestProject(t *testing.T) {
	var buf bytes.Buffer
	Project(&buf, "Launch", 7, sampleGraph(t), Options{})
	out := buf.String()

	for _, want := range []string{
		"Launch (3 tasks, 33% complete)",
		"[x] #1 Setup environment",
		"[ ] #2 Design schema",
		"[-] #3 Implement auth",
		"├─ needs #1 Setup environment",
		"└─ needs #2 Design schema",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProjectEmpty(t *testing.T) {
	var buf bytes.Buffer
	Project(&buf, "Empty", 1, graph.New(), Options{})
	if !strings.Contains(buf.String(), "no tasks yet") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestReady(t *testing.T) {
	var buf bytes.Buffer
	Ready(&buf, sampleGraph(t))
	if got := strings.TrimSpace(buf.String()); got != "#2 Design schema" {
		t.Fatalf("unexpected ready list %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Errorf("expected untouched, got %q", got)
	}
	styled := "\x1b[31mabcdef\x1b[0m"
	if got := truncate(styled, 2); got != "\x1b[31mab\x1b[0m" {
		t.Errorf("unexpected styled truncation %q", got)
	}
}

func TestTruncate_WideRunes(t *testing.T) {
	line := "  [ ] #7 設計レビューを行う"
	got := truncate(line, 12)
	if got != "  [ ] #7 設" {
		t.Errorf("expected cut before the column limit, got %q", got)
	}
	if w := ansi.StringWidth(got); w > 12 {
		t.Errorf("expected at most 12 columns, got %d", w)
	}
}
