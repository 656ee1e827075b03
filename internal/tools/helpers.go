package tools

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/mark3labs/mcp-go/mcp"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: err.Error(),
			},
		},
		IsError: true,
	}
}

// idArg reads a required positive integer id.
func idArg(request mcp.CallToolRequest, key string) (int64, error) {
	id := int64(request.GetFloat(key, 0))
	if id <= 0 {
		return 0, fmt.Errorf("%s is required", key)
	}
	return id, nil
}

// idListArg reads an array of ids. A missing key yields nil; a present key
// always yields a non-nil slice. null is rejected rather than read as empty.
func idListArg(request mcp.CallToolRequest, key string) ([]int64, error) {
	raw, ok := request.GetArguments()[key]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok || items == nil {
		return nil, fmt.Errorf("%s must be an array of task ids", key)
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		var id int64
		switch v := item.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("%s: %v is not a task id", key, v)
			}
			id = int64(v)
		case int:
			id = int64(v)
		case int64:
			id = v
		default:
			return nil, fmt.Errorf("%s: %v is not a task id", key, item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ownedProject checks that the configured actor owns projectID.
func ownedProject(ctx context.Context, cfg *Config, projectID int64) (*db.Project, error) {
	user, err := cfg.Queries.UserByName(ctx, cfg.Actor)
	if err != nil {
		return nil, err
	}
	return cfg.Queries.OwnedProject(ctx, user.ID, projectID)
}

// taskProject resolves the project of a task and checks ownership.
func taskProject(ctx context.Context, cfg *Config, taskID int64) (int64, error) {
	projectID, err := cfg.Queries.TaskProject(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if _, err := ownedProject(ctx, cfg, projectID); err != nil {
		return 0, err
	}
	return projectID, nil
}

// dateArg reads an optional date given as YYYY-MM-DD or RFC 3339.
func dateArg(request mcp.CallToolRequest, key string) (*time.Time, error) {
	v := request.GetString(key, "")
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s: cannot parse %q as a date", key, v)
}
