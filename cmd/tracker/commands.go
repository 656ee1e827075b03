package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/affanhamid/editor/tracker/internal/monitor"
	"github.com/affanhamid/editor/tracker/internal/plan"
	"github.com/affanhamid/editor/tracker/internal/render"
	mcpserver "github.com/affanhamid/editor/tracker/internal/server"
	"github.com/affanhamid/editor/tracker/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if needed and apply schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := db.EnsureDatabase(ctx, a.cfg.DBURL); err != nil {
				return fmt.Errorf("ensure database: %w", err)
			}
			if err := a.open(ctx); err != nil {
				return err
			}
			if err := db.RunMigrations(ctx, a.pool); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			a.logger.Info("database ready")
			return nil
		},
	}
}

func userCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <username> <email>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			u, err := a.queries.CreateUser(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d: %s\n", u.ID, u.Username)
			return nil
		},
	})
	return cmd
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <plan.json>",
		Short: "Create a project and its tasks from a JSON plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := plan.Parse(data)
			if err != nil {
				return err
			}
			if _, err := p.Order(); err != nil {
				return err
			}
			deadline, err := plan.ParseDate(p.Project.Deadline)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			user, err := a.user(ctx)
			if err != nil {
				return err
			}
			project, err := a.queries.CreateProject(ctx, user.ID, p.Project.Name, p.Project.Description, deadline)
			if err != nil {
				return err
			}
			ids, err := plan.Apply(ctx, a.svc, project.ID, p)
			if err != nil {
				return fmt.Errorf("import into project %d (%d tasks created): %w", project.ID, len(ids), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s with %d tasks\n", project.ID, project.Name, len(ids))
			return nil
		},
	}
}

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracker tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			s := mcpserver.New(tools.NewConfig(a.cfg.Actor, a.queries, a.svc))
			a.logger.Info("serving MCP on stdio", "actor", a.cfg.Actor, "version", mcpserver.Version)
			if err := server.ServeStdio(s); err != nil {
				return fmt.Errorf("MCP server: %w", err)
			}
			return nil
		},
	}
}

func watchCmd(a *app) *cobra.Command {
	var projectID int64
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print task and dependency changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if projectID != 0 {
				if _, err := a.project(ctx, projectID); err != nil {
					return err
				}
			}

			events := make(chan db.Notification, 64)
			errCh := make(chan error, 1)
			go func() {
				errCh <- db.StartListener(ctx, a.cfg.DBURL, events)
			}()

			done := make(chan struct{})
			go func() {
				monitor.HandleEvents(ctx, events, cmd.OutOrStdout(), monitor.Filter{ProjectID: projectID})
				close(done)
			}()

			err := <-errCh
			stop()
			<-done
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "Only show changes to this project")
	return cmd
}

func logCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log <project-id>",
		Short: "Show recent changes to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = a.cfg.EventLimit
			}
			ctx := cmd.Context()
			if _, err := a.project(ctx, projectID); err != nil {
				return err
			}
			events, err := a.queries.RecentEvents(ctx, projectID, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, render.Dim("no changes yet"))
				return nil
			}
			for _, e := range events {
				fmt.Fprintf(out, "%s %s %-16s %s %s\n",
					render.Dim(e.CreatedAt.Local().Format(time.DateTime)),
					render.Dim(e.ID.String()[:8]),
					e.Op,
					render.Cyan(fmt.Sprintf("#%d", e.TaskID)),
					render.Dim(string(e.Detail)))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of changes to show (default from config)")
	return cmd
}
