// Package monitor turns task and dependency change notifications into
// human-readable lines.
package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/affanhamid/editor/tracker/internal/render"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

// Filter restricts which notifications are printed. A zero ProjectID prints
// every project.
type Filter struct {
	ProjectID int64
}

func (f Filter) match(payload string) bool {
	if f.ProjectID == 0 {
		return true
	}
	project := gjson.Get(payload, "project_id")
	// Dependency rows removed by a task delete no longer resolve a project.
	if project.Type == gjson.Null {
		return true
	}
	return project.Int() == f.ProjectID
}

// HandleEvents prints notifications from in until ctx is cancelled or in is
// closed.
func HandleEvents(ctx context.Context, in <-chan db.Notification, w io.Writer, filter Filter) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-in:
			if !ok {
				return
			}
			line, ok := Format(n, filter)
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%s %s\n", render.Dim(time.Now().Format(time.TimeOnly)), line)
		}
	}
}

// Format renders one notification. It reports false for payloads that are
// malformed or filtered out.
func Format(n db.Notification, filter Filter) (string, bool) {
	if !gjson.Valid(n.Payload) {
		log.Warn("malformed notification", "channel", n.Channel, "payload", n.Payload)
		return "", false
	}
	if !filter.match(n.Payload) {
		return "", false
	}

	p := gjson.Parse(n.Payload)
	op := p.Get("op").String()
	switch n.Channel {
	case "task_updates":
		id := render.Cyan(fmt.Sprintf("#%d", p.Get("id").Int()))
		title := p.Get("title").String()
		switch op {
		case "INSERT":
			return fmt.Sprintf("%s %s %s", render.BoldGreen("created"), id, title), true
		case "DELETE":
			return fmt.Sprintf("%s %s %s", render.BoldRed("deleted"), id, title), true
		default:
			state := render.Yellow("open")
			if p.Get("is_completed").Bool() {
				state = render.Green("done")
			}
			return fmt.Sprintf("%s %s %s -> %s", render.Bold("updated"), id, title, state), true
		}

	case "dependency_updates":
		dep := render.Cyan(fmt.Sprintf("#%d", p.Get("task_id").Int()))
		pre := render.Cyan(fmt.Sprintf("#%d", p.Get("depends_on_id").Int()))
		if op == "DELETE" {
			return fmt.Sprintf("%s %s no longer needs %s", render.Red("unlinked"), dep, pre), true
		}
		return fmt.Sprintf("%s %s needs %s", render.Green("linked"), dep, pre), true
	}

	return fmt.Sprintf("%s %s", n.Channel, n.Payload), true
}
