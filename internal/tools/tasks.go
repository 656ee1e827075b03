package tools

import (
	"context"
	"fmt"

	"github.com/affanhamid/editor/tracker/internal/tracker"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTaskTools(s *server.MCPServer, cfg *Config) {
	createTask := mcp.NewTool("create_task",
		mcp.WithDescription("Create a task in a project, optionally depending on existing tasks. Fails without creating anything if a dependency is invalid or would create a cycle."),
		mcp.WithNumber("project_id",
			mcp.Description("The project ID"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("Task title, at least 3 characters"),
			mcp.Required(),
		),
		mcp.WithString("description",
			mcp.Description("Task description"),
		),
		mcp.WithString("importance",
			mcp.Description("Task importance"),
			mcp.Enum(tracker.Importances...),
		),
		mcp.WithString("start_date",
			mcp.Description("Start date as YYYY-MM-DD; defaults to now"),
		),
		mcp.WithString("expected_completion_date",
			mcp.Description("Expected completion date as YYYY-MM-DD"),
		),
		mcp.WithArray("depends_on",
			mcp.Description("IDs of tasks in the same project that must be completed first"),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)

	setCompletion := mcp.NewTool("set_completion",
		mcp.WithDescription("Mark a task complete or incomplete. A task can only be completed once all of its dependencies are complete, and cannot be reopened while a completed task depends on it."),
		mcp.WithNumber("task_id",
			mcp.Description("The task ID"),
			mcp.Required(),
		),
		mcp.WithBoolean("completed",
			mcp.Description("true to complete, false to reopen"),
			mcp.Required(),
		),
	)

	deleteTask := mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. Fails if other tasks depend on it."),
		mcp.WithNumber("task_id",
			mcp.Description("The task ID"),
			mcp.Required(),
		),
	)

	updateTask := mcp.NewTool("update_task",
		mcp.WithDescription("Edit a task. Omitted fields keep their current value. When depends_on is given it replaces the full dependency set; either everything is accepted or nothing changes."),
		mcp.WithNumber("task_id",
			mcp.Description("The task ID"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("New title, at least 3 characters"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("importance",
			mcp.Description("New importance"),
			mcp.Enum(tracker.Importances...),
		),
		mcp.WithString("start_date",
			mcp.Description("New start date as YYYY-MM-DD"),
		),
		mcp.WithString("expected_completion_date",
			mcp.Description("New expected completion date as YYYY-MM-DD"),
		),
		mcp.WithArray("depends_on",
			mcp.Description("IDs of the tasks it should depend on; empty clears all dependencies"),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)

	s.AddTool(createTask, makeCreateTaskHandler(cfg))
	s.AddTool(updateTask, makeUpdateTaskHandler(cfg))
	s.AddTool(setCompletion, makeSetCompletionHandler(cfg))
	s.AddTool(deleteTask, makeDeleteTaskHandler(cfg))
}

func makeCreateTaskHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := idArg(request, "project_id")
		if err != nil {
			return errorResult(err), nil
		}
		deps, err := idListArg(request, "depends_on")
		if err != nil {
			return errorResult(err), nil
		}
		in := tracker.TaskInput{
			Title:       request.GetString("title", ""),
			Description: request.GetString("description", ""),
			Importance:  request.GetString("importance", ""),
		}
		if in.StartDate, err = dateArg(request, "start_date"); err != nil {
			return errorResult(err), nil
		}
		if in.ExpectedCompletion, err = dateArg(request, "expected_completion_date"); err != nil {
			return errorResult(err), nil
		}

		if _, err := ownedProject(ctx, cfg, projectID); err != nil {
			return errorResult(err), nil
		}
		result, err := cfg.Service.CreateTask(ctx, projectID, in, deps)
		if err != nil {
			return errorResult(err), nil
		}

		text := fmt.Sprintf("Created task %d: %s", result.Task.ID, result.Task.Title)
		if n := len(result.Change.AddedEdges); n > 0 {
			text += fmt.Sprintf(" (%d dependencies)", n)
		}
		return textResult(text), nil
	}
}

func makeUpdateTaskHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := idArg(request, "task_id")
		if err != nil {
			return errorResult(err), nil
		}
		deps, err := idListArg(request, "depends_on")
		if err != nil {
			return errorResult(err), nil
		}
		start, err := dateArg(request, "start_date")
		if err != nil {
			return errorResult(err), nil
		}
		due, err := dateArg(request, "expected_completion_date")
		if err != nil {
			return errorResult(err), nil
		}

		projectID, err := taskProject(ctx, cfg, taskID)
		if err != nil {
			return errorResult(err), nil
		}
		current, err := cfg.Queries.GetTask(ctx, taskID)
		if err != nil {
			return errorResult(err), nil
		}
		in := tracker.TaskInput{
			Title:              request.GetString("title", current.Title),
			Description:        request.GetString("description", current.Description),
			Importance:         request.GetString("importance", current.Importance),
			StartDate:          start,
			ExpectedCompletion: current.ExpectedCompletion,
		}
		if due != nil {
			in.ExpectedCompletion = due
		}

		result, err := cfg.Service.UpdateTask(ctx, projectID, taskID, in, deps)
		if err != nil {
			return errorResult(err), nil
		}

		return textResult(fmt.Sprintf("Updated task %d: %s", taskID, result.Task.Title)), nil
	}
}

func makeSetCompletionHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := idArg(request, "task_id")
		if err != nil {
			return errorResult(err), nil
		}
		if _, ok := request.GetArguments()["completed"]; !ok {
			return errorResult(fmt.Errorf("completed is required")), nil
		}
		completed := request.GetBool("completed", false)

		projectID, err := taskProject(ctx, cfg, taskID)
		if err != nil {
			return errorResult(err), nil
		}
		result, err := cfg.Service.SetCompletion(ctx, projectID, taskID, completed)
		if err != nil {
			return errorResult(err), nil
		}

		state := "incomplete"
		if result.Task.Completed {
			state = "complete"
		}
		return textResult(fmt.Sprintf("Task %d is %s", taskID, state)), nil
	}
}

func makeDeleteTaskHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := idArg(request, "task_id")
		if err != nil {
			return errorResult(err), nil
		}
		projectID, err := taskProject(ctx, cfg, taskID)
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := cfg.Service.DeleteTask(ctx, projectID, taskID); err != nil {
			return errorResult(err), nil
		}

		return textResult(fmt.Sprintf("Task %d deleted", taskID)), nil
	}
}
