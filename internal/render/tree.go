package render

import (
	"fmt"
	"io"

	"github.com/affanhamid/editor/tracker/internal/graph"
	"github.com/charmbracelet/x/ansi"
)

// Options controls project rendering.
type Options struct {
	// Width truncates each line to this many columns; 0 disables it.
	Width int
}

// State classifies a task as done, ready or blocked.
func State(g *graph.Graph, t graph.Task) string {
	switch {
	case t.Completed:
		return StateDone
	case g.Completable(t.ID):
		return StateReady
	default:
		return StateBlocked
	}
}

// Project writes a header with the completion percentage followed by every
// task and its direct prerequisites.
func Project(w io.Writer, name string, projectID int64, g *graph.Graph, opts Options) {
	tasks := g.Tasks()
	fmt.Fprintf(w, "%s %s\n", Bold(name), Dim(fmt.Sprintf("(%d tasks, %d%% complete)", len(tasks), g.Progress(projectID))))
	if len(tasks) == 0 {
		fmt.Fprintln(w, Dim("  no tasks yet"))
		return
	}

	for _, t := range tasks {
		line := fmt.Sprintf("  %s %s %s", stateLabel(State(g, t)), Cyan(fmt.Sprintf("#%d", t.ID)), t.Title)
		fmt.Fprintln(w, truncate(line, opts.Width))
		pres := g.Outgoing(t.ID)
		for i, pre := range pres {
			branch := "├─"
			if i == len(pres)-1 {
				branch = "└─"
			}
			title := fmt.Sprintf("#%d", pre)
			if p, ok := g.Task(pre); ok {
				title = fmt.Sprintf("#%d %s", p.ID, p.Title)
			}
			fmt.Fprintln(w, truncate(fmt.Sprintf("      %s %s %s", Dim(branch), Dim("needs"), title), opts.Width))
		}
	}
}

// Ready writes the tasks that can be started now.
func Ready(w io.Writer, g *graph.Graph) {
	ready := g.Ready()
	if len(ready) == 0 {
		fmt.Fprintln(w, Dim("nothing ready"))
		return
	}
	for _, t := range ready {
		fmt.Fprintf(w, "%s %s\n", Cyan(fmt.Sprintf("#%d", t.ID)), t.Title)
	}
}

// truncate cuts s to width terminal columns. ANSI escapes are kept and not
// counted; wide runes count double.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "")
}
