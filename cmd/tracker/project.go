package main

import (
	"fmt"
	"time"

	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/affanhamid/editor/tracker/internal/render"
	"github.com/spf13/cobra"
)

func projectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create, list, show and delete projects",
	}
	cmd.AddCommand(projectCreateCmd(a))
	cmd.AddCommand(projectListCmd(a))
	cmd.AddCommand(projectShowCmd(a))
	cmd.AddCommand(projectDeleteCmd(a))
	return cmd
}

func projectCreateCmd(a *app) *cobra.Command {
	var description, deadline string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var due *time.Time
			if deadline != "" {
				t, err := time.Parse(time.DateOnly, deadline)
				if err != nil {
					return fmt.Errorf("invalid deadline %q: want YYYY-MM-DD", deadline)
				}
				due = &t
			}

			ctx := cmd.Context()
			user, err := a.user(ctx)
			if err != nil {
				return err
			}
			p, err := a.queries.CreateProject(ctx, user.ID, args[0], description, due)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", p.ID, p.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline as YYYY-MM-DD")
	return cmd
}

func projectListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := a.user(ctx)
			if err != nil {
				return err
			}
			projects, err := a.queries.ListProjects(ctx, user.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if projects == nil {
					projects = []db.Project{}
				}
				fmt.Fprintln(out, db.ToJSON(projects))
				return nil
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, render.Dim("no projects"))
				return nil
			}
			for _, p := range projects {
				line := fmt.Sprintf("%s %s %s", render.Cyan(fmt.Sprintf("%4d", p.ID)), render.Bold(p.Name),
					render.Dim(fmt.Sprintf("%d tasks, %d%% complete", p.TaskCount, p.Progress)))
				if p.Deadline != nil {
					line += render.Dim(", due " + p.Deadline.Format(time.DateOnly))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Machine-readable JSON output")
	return cmd
}

func projectShowCmd(a *app) *cobra.Command {
	var ready bool
	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project's tasks and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.project(ctx, projectID)
			if err != nil {
				return err
			}
			g, err := a.svc.Snapshot(ctx, projectID)
			if err != nil {
				return err
			}

			if ready {
				render.Ready(cmd.OutOrStdout(), g)
				return nil
			}
			render.Project(cmd.OutOrStdout(), p.Name, p.ID, g, render.Options{Width: termWidth()})
			return nil
		},
	}
	cmd.Flags().BoolVar(&ready, "ready", false, "Only list tasks that can be started now")
	return cmd
}

func projectDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project with all its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.project(ctx, projectID)
			if err != nil {
				return err
			}
			if err := a.queries.DeleteProject(ctx, projectID); err != nil {
				return err
			}
			a.logger.Info("project deleted", "project", projectID, "tasks", p.TaskCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d: %s\n", p.ID, p.Name)
			return nil
		},
	}
}
