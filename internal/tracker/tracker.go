// Package tracker runs dependency-graph mutations as transactions: lock the
// project, load its graph, let the rule engine validate and apply the
// request, then persist the resulting change.
package tracker

import (
	"context"
	"errors"

	"github.com/affanhamid/editor/tracker/internal/graph"
	"github.com/affanhamid/editor/tracker/internal/rules"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Change ops recorded by the service itself; the rest come from the rules
// package.
const (
	OpCreateTask = "create_task"
	OpUpdateTask = "update_task"
)

// Result is the outcome of an accepted mutation.
type Result struct {
	Change *rules.Change
	// Task is the task after the change; zero when it was deleted.
	Task graph.Task
	// Graph is the project graph after the change.
	Graph *graph.Graph
}

// Service is the entry point for every dependency-graph mutation.
type Service struct {
	store  Store
	engine *rules.Engine
	logger *log.Logger
}

// New creates a Service. A nil logger uses the default logger.
func New(store Store, engine *rules.Engine, logger *log.Logger) *Service {
	if engine == nil {
		engine = rules.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, engine: engine, logger: logger}
}

// CreateTask creates a task and gives it an initial dependency set. If any
// dependency is rejected the task is not created.
func (s *Service) CreateTask(ctx context.Context, projectID int64, in TaskInput, prerequisites []int64) (*Result, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	var result *Result
	err := s.store.WithProject(ctx, projectID, func(tx Tx) error {
		task, err := tx.InsertTask(ctx, projectID, in)
		if err != nil {
			return err
		}
		g, err := tx.LoadGraph(ctx, projectID)
		if err != nil {
			return err
		}
		change, err := s.engine.ReplaceEdges(g, task.ID, prerequisites)
		if err != nil {
			return describe(err, g)
		}
		change.Op = OpCreateTask
		change.ID = uuid.New()
		if err := tx.Apply(ctx, projectID, change); err != nil {
			return err
		}
		task, _ = g.Task(task.ID)
		result = &Result{Change: change, Task: task, Graph: g}
		return nil
	})
	if err != nil {
		s.logRejection("create task", projectID, 0, err)
		return nil, err
	}

	s.logger.Info("task created",
		"project", projectID, "task", result.Task.ID,
		"dependencies", len(result.Change.AddedEdges), "change", result.Change.ID)
	return result, nil
}

// UpdateTask rewrites a task's fields and replaces its dependencies in one
// transaction; a rejected dependency set leaves the fields untouched as well.
// A nil prerequisites keeps the current dependencies.
func (s *Service) UpdateTask(ctx context.Context, projectID, taskID int64, in TaskInput, prerequisites []int64) (*Result, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	var result *Result
	err := s.store.WithProject(ctx, projectID, func(tx Tx) error {
		if err := tx.UpdateTask(ctx, projectID, taskID, in); err != nil {
			return err
		}
		g, err := tx.LoadGraph(ctx, projectID)
		if err != nil {
			return err
		}
		if prerequisites == nil {
			prerequisites = g.Outgoing(taskID)
		}
		change, err := s.engine.ReplaceEdges(g, taskID, prerequisites)
		if err != nil {
			return describe(err, g)
		}
		change.Op = OpUpdateTask
		change.ID = uuid.New()
		if err := tx.Apply(ctx, projectID, change); err != nil {
			return err
		}
		task, _ := g.Task(taskID)
		result = &Result{Change: change, Task: task, Graph: g}
		return nil
	})
	if err != nil {
		s.logRejection("update task", projectID, taskID, err)
		return nil, err
	}

	s.logger.Info("task updated", "project", projectID, "task", taskID, "change", result.Change.ID)
	return result, nil
}

// UpdateDependencies replaces the full dependency set of a task.
func (s *Service) UpdateDependencies(ctx context.Context, projectID, taskID int64, prerequisites []int64) (*Result, error) {
	return s.mutate(ctx, projectID, taskID, "update dependencies", func(g *graph.Graph) (*rules.Change, error) {
		return s.engine.ReplaceEdges(g, taskID, prerequisites)
	})
}

// AddDependency makes taskID depend on prerequisite.
func (s *Service) AddDependency(ctx context.Context, projectID, taskID, prerequisite int64) (*Result, error) {
	return s.mutate(ctx, projectID, taskID, "add dependency", func(g *graph.Graph) (*rules.Change, error) {
		return s.engine.ProposeEdge(g, taskID, prerequisite)
	})
}

// RemoveDependency drops taskID's dependency on prerequisite.
func (s *Service) RemoveDependency(ctx context.Context, projectID, taskID, prerequisite int64) (*Result, error) {
	return s.mutate(ctx, projectID, taskID, "remove dependency", func(g *graph.Graph) (*rules.Change, error) {
		return s.engine.RemoveEdge(g, taskID, prerequisite)
	})
}

// SetCompletion marks a task complete or incomplete.
func (s *Service) SetCompletion(ctx context.Context, projectID, taskID int64, completed bool) (*Result, error) {
	return s.mutate(ctx, projectID, taskID, "set completion", func(g *graph.Graph) (*rules.Change, error) {
		return s.engine.SetCompletion(g, taskID, completed)
	})
}

// DeleteTask deletes a task that no other task depends on.
func (s *Service) DeleteTask(ctx context.Context, projectID, taskID int64) (*Result, error) {
	return s.mutate(ctx, projectID, taskID, "delete task", func(g *graph.Graph) (*rules.Change, error) {
		return s.engine.DeleteTask(g, taskID)
	})
}

// Snapshot returns the current graph of a project.
func (s *Service) Snapshot(ctx context.Context, projectID int64) (*graph.Graph, error) {
	return s.store.LoadGraph(ctx, projectID)
}

func (s *Service) mutate(ctx context.Context, projectID, taskID int64, what string, apply func(*graph.Graph) (*rules.Change, error)) (*Result, error) {
	var result *Result
	err := s.store.WithProject(ctx, projectID, func(tx Tx) error {
		g, err := tx.LoadGraph(ctx, projectID)
		if err != nil {
			return err
		}
		change, err := apply(g)
		if err != nil {
			return describe(err, g)
		}
		if !change.Empty() {
			change.ID = uuid.New()
			if err := tx.Apply(ctx, projectID, change); err != nil {
				return err
			}
		}
		task, _ := g.Task(taskID)
		result = &Result{Change: change, Task: task, Graph: g}
		return nil
	})
	if err != nil {
		s.logRejection(what, projectID, taskID, err)
		return nil, err
	}

	if result.Change.Empty() {
		s.logger.Debug(what+": nothing to change", "project", projectID, "task", taskID)
	} else {
		s.logger.Info(what, "project", projectID, "task", taskID, "change", result.Change.ID)
	}
	return result, nil
}

func (s *Service) logRejection(what string, projectID, taskID int64, err error) {
	if kind := rules.KindOf(err); kind != "" {
		s.logger.Warn(what+" rejected", "project", projectID, "task", taskID, "reason", kind)
		return
	}
	if errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrTaskNotFound) {
		s.logger.Warn(what+" rejected", "project", projectID, "task", taskID, "reason", err)
		return
	}
	s.logger.Error(what+" failed", "project", projectID, "task", taskID, "err", err)
}
