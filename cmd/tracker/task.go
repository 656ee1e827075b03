package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/affanhamid/editor/tracker/internal/tracker"
	"github.com/spf13/cobra"
)

func taskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create tasks and manage their dependencies",
	}
	cmd.AddCommand(taskAddCmd(a))
	cmd.AddCommand(taskEditCmd(a))
	cmd.AddCommand(taskDepsCmd(a))
	cmd.AddCommand(taskLinkCmd(a))
	cmd.AddCommand(taskUnlinkCmd(a))
	cmd.AddCommand(taskCompletionCmd(a, "done", true))
	cmd.AddCommand(taskCompletionCmd(a, "reopen", false))
	cmd.AddCommand(taskRemoveCmd(a))
	return cmd
}

func parseDate(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", flag, value)
	}
	return &t, nil
}

func taskAddCmd(a *app) *cobra.Command {
	var (
		in       tracker.TaskInput
		start    string
		due      string
		depsFlag []int64
	)
	cmd := &cobra.Command{
		Use:   "add <project-id> <title>",
		Short: "Create a task, optionally depending on existing tasks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			in.Title = strings.Join(args[1:], " ")
			if in.StartDate, err = parseDate("start", start); err != nil {
				return err
			}
			if in.ExpectedCompletion, err = parseDate("due", due); err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := a.project(ctx, projectID); err != nil {
				return err
			}
			res, err := a.svc.CreateTask(ctx, projectID, in, depsFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", res.Task.ID, res.Task.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&in.Importance, "importance", "medium", "Importance: low, medium, high")
	cmd.Flags().StringVar(&start, "start", "", "Start date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&due, "due", "", "Expected completion date as YYYY-MM-DD")
	cmd.Flags().Int64SliceVar(&depsFlag, "deps", nil, "IDs of tasks this task depends on")
	return cmd
}

func taskEditCmd(a *app) *cobra.Command {
	var (
		title, description, importance string
		start, due                     string
		deps                           []int64
	)
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task; flags left out keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			startDate, err := parseDate("start", start)
			if err != nil {
				return err
			}
			dueDate, err := parseDate("due", due)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			projectID, err := a.taskProject(ctx, taskID)
			if err != nil {
				return err
			}
			current, err := a.queries.GetTask(ctx, taskID)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			in := tracker.TaskInput{
				Title:              current.Title,
				Description:        current.Description,
				Importance:         current.Importance,
				StartDate:          startDate,
				ExpectedCompletion: current.ExpectedCompletion,
			}
			if flags.Changed("title") {
				in.Title = title
			}
			if flags.Changed("description") {
				in.Description = description
			}
			if flags.Changed("importance") {
				in.Importance = importance
			}
			if dueDate != nil {
				in.ExpectedCompletion = dueDate
			}
			var prerequisites []int64
			if flags.Changed("deps") {
				prerequisites = append([]int64{}, deps...)
			}

			res, err := a.svc.UpdateTask(ctx, projectID, taskID, in, prerequisites)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s\n", taskID, res.Task.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&importance, "importance", "", "New importance: low, medium, high")
	cmd.Flags().StringVar(&start, "start", "", "New start date as YYYY-MM-DD")
	cmd.Flags().StringVar(&due, "due", "", "New expected completion date as YYYY-MM-DD")
	cmd.Flags().Int64SliceVar(&deps, "deps", nil, "Replace dependencies; --deps= clears them")
	return cmd
}

func taskDepsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deps <task-id> [depends-on-id...]",
		Short: "Replace the full dependency set of a task; no ids clears it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			deps, err := parseIDs(args[1:], "task")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			projectID, err := a.taskProject(ctx, taskID)
			if err != nil {
				return err
			}
			res, err := a.svc.UpdateDependencies(ctx, projectID, taskID, deps)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d: %d added, %d removed\n",
				taskID, len(res.Change.AddedEdges), len(res.Change.RemovedEdges))
			return nil
		},
	}
}

func taskLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link <task-id> <depends-on-id>",
		Short: "Make a task depend on another task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			projectID, err := a.taskProject(ctx, ids[0])
			if err != nil {
				return err
			}
			if _, err := a.svc.AddDependency(ctx, projectID, ids[0], ids[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d now depends on task %d\n", ids[0], ids[1])
			return nil
		},
	}
}

func taskUnlinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <task-id> <depends-on-id>",
		Short: "Remove a dependency between two tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			projectID, err := a.taskProject(ctx, ids[0])
			if err != nil {
				return err
			}
			if _, err := a.svc.RemoveDependency(ctx, projectID, ids[0], ids[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d no longer depends on task %d\n", ids[0], ids[1])
			return nil
		},
	}
}

func taskCompletionCmd(a *app, use string, completed bool) *cobra.Command {
	short := "Mark a task complete"
	if !completed {
		short = "Mark a task incomplete"
	}
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			projectID, err := a.taskProject(ctx, taskID)
			if err != nil {
				return err
			}
			res, err := a.svc.SetCompletion(ctx, projectID, taskID, completed)
			if err != nil {
				return err
			}
			state := "incomplete"
			if res.Task.Completed {
				state = "complete"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d is %s (project %d%% complete)\n",
				taskID, state, res.Graph.Progress(projectID))
			return nil
		},
	}
}

func taskRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task nothing depends on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			projectID, err := a.taskProject(ctx, taskID)
			if err != nil {
				return err
			}
			if _, err := a.svc.DeleteTask(ctx, projectID, taskID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", taskID)
			return nil
		},
	}
}
