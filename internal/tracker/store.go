package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/affanhamid/editor/tracker/internal/graph"
	"github.com/affanhamid/editor/tracker/internal/rules"
)

var (
	// ErrProjectNotFound is returned when a project id does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

// Importance levels accepted for a task.
var Importances = []string{"low", "medium", "high"}

// TaskInput carries the descriptive fields of a new task.
type TaskInput struct {
	Title              string
	Description        string
	Importance         string
	StartDate          *time.Time
	ExpectedCompletion *time.Time
}

// Normalize trims the input, applies defaults and rejects unusable values.
func (in *TaskInput) Normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if len(in.Title) < 3 {
		return fmt.Errorf("task title must be at least 3 characters long")
	}
	if in.Importance == "" {
		in.Importance = "medium"
	}
	for _, level := range Importances {
		if in.Importance == level {
			return nil
		}
	}
	return fmt.Errorf("invalid importance level %q", in.Importance)
}

// Tx is the storage view of one project inside a write transaction.
type Tx interface {
	// LoadGraph returns the project's current graph, including writes made
	// earlier in this transaction.
	LoadGraph(ctx context.Context, projectID int64) (*graph.Graph, error)
	// InsertTask creates an incomplete task with no dependencies.
	InsertTask(ctx context.Context, projectID int64, in TaskInput) (graph.Task, error)
	// UpdateTask rewrites the descriptive fields of a task. A nil StartDate
	// keeps the current one.
	UpdateTask(ctx context.Context, projectID, taskID int64, in TaskInput) error
	// Apply persists an accepted change.
	Apply(ctx context.Context, projectID int64, change *rules.Change) error
}

// Store is the storage collaborator.
type Store interface {
	// WithProject runs fn in a transaction that holds the project's write
	// lock. The transaction commits only if fn returns nil.
	WithProject(ctx context.Context, projectID int64, fn func(Tx) error) error
	// LoadGraph reads a project's graph without taking the write lock.
	LoadGraph(ctx context.Context, projectID int64) (*graph.Graph, error)
}
