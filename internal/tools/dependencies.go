package tools

import (
	"context"
	"fmt"

	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerDependencyTools(s *server.MCPServer, cfg *Config) {
	updateDependencies := mcp.NewTool("update_dependencies",
		mcp.WithDescription("Replace the full set of tasks a task depends on. Either every dependency is accepted or nothing changes."),
		mcp.WithNumber("task_id",
			mcp.Description("The dependent task ID"),
			mcp.Required(),
		),
		mcp.WithArray("depends_on",
			mcp.Description("IDs of the tasks it should depend on; empty clears all dependencies"),
			mcp.Required(),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)

	addDependency := mcp.NewTool("add_dependency",
		mcp.WithDescription("Make a task depend on another task in the same project. Rejected if it would create a circular dependency."),
		mcp.WithNumber("task_id",
			mcp.Description("The dependent task ID"),
			mcp.Required(),
		),
		mcp.WithNumber("depends_on_id",
			mcp.Description("The task that must be completed first"),
			mcp.Required(),
		),
	)

	removeDependency := mcp.NewTool("remove_dependency",
		mcp.WithDescription("Remove a dependency between two tasks."),
		mcp.WithNumber("task_id",
			mcp.Description("The dependent task ID"),
			mcp.Required(),
		),
		mcp.WithNumber("depends_on_id",
			mcp.Description("The prerequisite task ID"),
			mcp.Required(),
		),
	)

	s.AddTool(updateDependencies, makeUpdateDependenciesHandler(cfg))
	s.AddTool(addDependency, makeAddDependencyHandler(cfg))
	s.AddTool(removeDependency, makeRemoveDependencyHandler(cfg))
}

func makeUpdateDependenciesHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := idArg(request, "task_id")
		if err != nil {
			return errorResult(err), nil
		}
		if _, ok := request.GetArguments()["depends_on"]; !ok {
			return errorResult(fmt.Errorf("depends_on is required")), nil
		}
		deps, err := idListArg(request, "depends_on")
		if err != nil {
			return errorResult(err), nil
		}

		projectID, err := taskProject(ctx, cfg, taskID)
		if err != nil {
			return errorResult(err), nil
		}
		result, err := cfg.Service.UpdateDependencies(ctx, projectID, taskID, deps)
		if err != nil {
			return errorResult(err), nil
		}

		return textResult(db.ToJSON(result.Change)), nil
	}
}

func makeAddDependencyHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := idArg(request, "task_id")
		if err != nil {
			return errorResult(err), nil
		}
		prerequisite, err := idArg(request, "depends_on_id")
		if err != nil {
			return errorResult(err), nil
		}

		projectID, err := taskProject(ctx, cfg, taskID)
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := cfg.Service.AddDependency(ctx, projectID, taskID, prerequisite); err != nil {
			return errorResult(err), nil
		}

		return textResult(fmt.Sprintf("Task %d now depends on task %d", taskID, prerequisite)), nil
	}
}

func makeRemoveDependencyHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := idArg(request, "task_id")
		if err != nil {
			return errorResult(err), nil
		}
		prerequisite, err := idArg(request, "depends_on_id")
		if err != nil {
			return errorResult(err), nil
		}

		projectID, err := taskProject(ctx, cfg, taskID)
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := cfg.Service.RemoveDependency(ctx, projectID, taskID, prerequisite); err != nil {
			return errorResult(err), nil
		}

		return textResult(fmt.Sprintf("Task %d no longer depends on task %d", taskID, prerequisite)), nil
	}
}
