package monitor

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestFormat(t *testing.T) {
	cases := []struct {
		n    db.Notification
		want string
	}{
		{
			db.Notification{Channel: "task_updates", Payload: `{"op":"INSERT","id":4,"project_id":1,"title":"Write docs","is_completed":false}`},
			"created #4 Write docs",
		},
		{
			db.Notification{Channel: "task_updates", Payload: `{"op":"UPDATE","id":4,"project_id":1,"title":"Write docs","is_completed":true}`},
			"updated #4 Write docs -> done",
		},
		{
			db.Notification{Channel: "task_updates", Payload: `{"op":"DELETE","id":4,"project_id":1,"title":"Write docs","is_completed":false}`},
			"deleted #4 Write docs",
		},
		{
			db.Notification{Channel: "dependency_updates", Payload: `{"op":"INSERT","project_id":1,"task_id":5,"depends_on_id":4}`},
			"linked #5 needs #4",
		},
		{
			db.Notification{Channel: "dependency_updates", Payload: `{"op":"DELETE","project_id":null,"task_id":5,"depends_on_id":4}`},
			"unlinked #5 no longer needs #4",
		},
	}
	for _, c := range cases {
		got, ok := Format(c.n, Filter{ProjectID: 1})
		if !ok {
			t.Errorf("%s: unexpectedly filtered", c.want)
			continue
		}
		if got != c.want {
			t.Errorf("expected %q, got %q", c.want, got)
		}
	}
}

func TestFormatFiltersOtherProjects(t *testing.T) {
	n := db.Notification{Channel: "task_updates", Payload: `{"op":"INSERT","id":1,"project_id":2,"title":"x"}`}
	if _, ok := Format(n, Filter{ProjectID: 1}); ok {
		t.Error("expected notification for project 2 to be filtered")
	}
	if _, ok := Format(n, Filter{}); !ok {
		t.Error("expected unfiltered notification to pass")
	}
	if _, ok := Format(db.Notification{Channel: "task_updates", Payload: "{"}, Filter{}); ok {
		t.Error("expected malformed payload to be dropped")
	}
}

func TestHandleEventsStopsOnClose(t *testing.T) {
	in := make(chan db.Notification, 2)
	in <- db.Notification{Channel: "dependency_updates", Payload: `{"op":"INSERT","project_id":1,"task_id":2,"depends_on_id":1}`}
	in <- db.Notification{Channel: "task_updates", Payload: `{"op":"INSERT","id":3,"project_id":9,"title":"elsewhere"}`}
	close(in)

	var buf bytes.Buffer
	HandleEvents(context.Background(), in, &buf, Filter{ProjectID: 1})

	out := buf.String()
	if !strings.Contains(out, "linked #2 needs #1") {
		t.Errorf("expected dependency line, got %q", out)
	}
	if strings.Contains(out, "elsewhere") {
		t.Errorf("expected other project filtered, got %q", out)
	}
}
