package tools

import (
	"context"
	"fmt"

	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/affanhamid/editor/tracker/internal/graph"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ProjectView is the get_project payload.
type ProjectView struct {
	Project *db.Project     `json:"project"`
	Tasks   []db.TaskDetail `json:"tasks"`
	Edges   []graph.Edge    `json:"edges"`
	Ready   []int64         `json:"ready"`
}

func registerProjectTools(s *server.MCPServer, cfg *Config) {
	createProject := mcp.NewTool("create_project",
		mcp.WithDescription("Create a new project owned by you."),
		mcp.WithString("name",
			mcp.Description("Project name"),
			mcp.Required(),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about"),
		),
		mcp.WithString("deadline",
			mcp.Description("Deadline as YYYY-MM-DD"),
		),
	)

	listProjects := mcp.NewTool("list_projects",
		mcp.WithDescription("List your projects with task counts and completion percentage."),
	)

	getProject := mcp.NewTool("get_project",
		mcp.WithDescription("Get a project with its tasks, dependency edges and the tasks that are ready to start."),
		mcp.WithNumber("project_id",
			mcp.Description("The project ID"),
			mcp.Required(),
		),
	)

	deleteProject := mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project together with all of its tasks and dependencies."),
		mcp.WithNumber("project_id",
			mcp.Description("The project ID"),
			mcp.Required(),
		),
	)

	s.AddTool(createProject, makeCreateProjectHandler(cfg))
	s.AddTool(listProjects, makeListProjectsHandler(cfg))
	s.AddTool(getProject, makeGetProjectHandler(cfg))
	s.AddTool(deleteProject, makeDeleteProjectHandler(cfg))
}

func makeCreateProjectHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.GetString("name", "")
		if name == "" {
			return errorResult(fmt.Errorf("name is required")), nil
		}
		deadline, err := dateArg(request, "deadline")
		if err != nil {
			return errorResult(err), nil
		}

		user, err := cfg.Queries.UserByName(ctx, cfg.Actor)
		if err != nil {
			return errorResult(err), nil
		}
		project, err := cfg.Queries.CreateProject(ctx, user.ID, name, request.GetString("description", ""), deadline)
		if err != nil {
			return errorResult(err), nil
		}

		return textResult(db.ToJSON(project)), nil
	}
}

func makeListProjectsHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := cfg.Queries.UserByName(ctx, cfg.Actor)
		if err != nil {
			return errorResult(err), nil
		}
		projects, err := cfg.Queries.ListProjects(ctx, user.ID)
		if err != nil {
			return errorResult(err), nil
		}
		if projects == nil {
			projects = []db.Project{}
		}
		return textResult(db.ToJSON(projects)), nil
	}
}

func makeGetProjectHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := idArg(request, "project_id")
		if err != nil {
			return errorResult(err), nil
		}
		project, err := ownedProject(ctx, cfg, projectID)
		if err != nil {
			return errorResult(err), nil
		}

		view, err := loadProjectView(ctx, cfg, project)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(db.ToJSON(view)), nil
	}
}

func loadProjectView(ctx context.Context, cfg *Config, project *db.Project) (*ProjectView, error) {
	tasks, err := cfg.Queries.ListTasks(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	g, err := cfg.Service.Snapshot(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	view := &ProjectView{
		Project: project,
		Tasks:   tasks,
		Edges:   g.Edges(),
		Ready:   []int64{},
	}
	if view.Tasks == nil {
		view.Tasks = []db.TaskDetail{}
	}
	if view.Edges == nil {
		view.Edges = []graph.Edge{}
	}
	for _, t := range g.Ready() {
		view.Ready = append(view.Ready, t.ID)
	}
	return view, nil
}

func makeDeleteProjectHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := idArg(request, "project_id")
		if err != nil {
			return errorResult(err), nil
		}
		project, err := ownedProject(ctx, cfg, projectID)
		if err != nil {
			return errorResult(err), nil
		}
		if err := cfg.Queries.DeleteProject(ctx, projectID); err != nil {
			return errorResult(err), nil
		}

		return textResult(fmt.Sprintf("Project %q deleted", project.Name)), nil
	}
}
