package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/affanhamid/editor/tracker/internal/graph"
	"github.com/affanhamid/editor/tracker/internal/rules"
	"github.com/affanhamid/editor/tracker/internal/tracker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCorruptGraph is returned when the stored dependencies of a project
// contain a cycle or an edge that leaves the project.
var ErrCorruptGraph = errors.New("stored dependency graph is corrupt")

// Queries is the Postgres store. It implements tracker.Store.
type Queries struct {
	Pool *pgxpool.Pool
}

var _ tracker.Store = (*Queries)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithProject runs fn in a transaction holding a row lock on the project, so
// concurrent mutations of one project are serialized.
func (q *Queries) WithProject(ctx context.Context, projectID int64, fn func(tracker.Tx) error) error {
	tx, err := q.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracker.ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("lock project %d: %w", projectID, err)
	}

	if err := fn(&projectTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadGraph reads a project's graph outside any write transaction. Tasks and
// edges are read from one repeatable-read snapshot so a concurrent commit
// cannot leave an edge without its task.
func (q *Queries) LoadGraph(ctx context.Context, projectID int64) (*graph.Graph, error) {
	tx, err := q.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("load graph: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	if !exists {
		return nil, tracker.ErrProjectNotFound
	}
	g, err := loadGraph(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("load graph: commit: %w", err)
	}
	return g, nil
}

type projectTx struct {
	tx pgx.Tx
}

func (p *projectTx) LoadGraph(ctx context.Context, projectID int64) (*graph.Graph, error) {
	return loadGraph(ctx, p.tx, projectID)
}

func (p *projectTx) InsertTask(ctx context.Context, projectID int64, in tracker.TaskInput) (graph.Task, error) {
	task := graph.Task{ProjectID: projectID, Title: in.Title}
	err := p.tx.QueryRow(ctx,
		`INSERT INTO tasks (project_id, title, description, importance, start_date, expected_completion_date)
		 VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()), $6)
		 RETURNING id`,
		projectID, in.Title, in.Description, in.Importance, in.StartDate, in.ExpectedCompletion,
	).Scan(&task.ID)
	if err != nil {
		return graph.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (p *projectTx) UpdateTask(ctx context.Context, projectID, taskID int64, in tracker.TaskInput) error {
	tag, err := p.tx.Exec(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, importance = $3,
		     start_date = COALESCE($4::timestamptz, start_date),
		     expected_completion_date = $5
		 WHERE id = $6 AND project_id = $7`,
		in.Title, in.Description, in.Importance, in.StartDate, in.ExpectedCompletion, taskID, projectID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", taskID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", tracker.ErrTaskNotFound, taskID)
	}
	return nil
}

func (p *projectTx) Apply(ctx context.Context, projectID int64, change *rules.Change) error {
	for _, e := range change.RemovedEdges {
		_, err := p.tx.Exec(ctx,
			`DELETE FROM task_dependencies WHERE task_id = $1 AND depends_on_id = $2`,
			e.Dependent, e.Prerequisite)
		if err != nil {
			return fmt.Errorf("delete dependency %d -> %d: %w", e.Dependent, e.Prerequisite, err)
		}
	}
	for _, e := range change.AddedEdges {
		_, err := p.tx.Exec(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			e.Dependent, e.Prerequisite)
		if err != nil {
			return fmt.Errorf("insert dependency %d -> %d: %w", e.Dependent, e.Prerequisite, err)
		}
	}
	if c := change.Completion; c != nil {
		_, err := p.tx.Exec(ctx,
			`UPDATE tasks SET is_completed = $1, completed_at = $2 WHERE id = $3 AND project_id = $4`,
			c.Completed, c.CompletedAt, change.TaskID, projectID)
		if err != nil {
			return fmt.Errorf("update completion of task %d: %w", change.TaskID, err)
		}
	}
	if change.Deleted {
		_, err := p.tx.Exec(ctx,
			`DELETE FROM tasks WHERE id = $1 AND project_id = $2`, change.TaskID, projectID)
		if err != nil {
			return fmt.Errorf("delete task %d: %w", change.TaskID, err)
		}
	}
	return recordEvent(ctx, p.tx, projectID, change)
}

func recordEvent(ctx context.Context, q querier, projectID int64, change *rules.Change) error {
	detail, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	_, err = q.Exec(ctx,
		`INSERT INTO task_events (id, project_id, task_id, op, detail) VALUES ($1, $2, $3, $4, $5)`,
		change.ID, projectID, change.TaskID, change.Op, detail)
	if err != nil {
		return fmt.Errorf("record change %s: %w", change.ID, err)
	}
	return nil
}

func loadGraph(ctx context.Context, q querier, projectID int64) (*graph.Graph, error) {
	rows, err := q.Query(ctx,
		`SELECT id, project_id, title, is_completed, completed_at
		 FROM tasks WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (graph.Task, error) {
		var t graph.Task
		err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Completed, &t.CompletedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	edgeRows, err := q.Query(ctx,
		`SELECT d.task_id, d.depends_on_id
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.task_id
		 WHERE t.project_id = $1
		 ORDER BY d.task_id, d.depends_on_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load dependencies: %w", err)
	}
	edges, err := pgx.CollectRows(edgeRows, func(row pgx.CollectableRow) (graph.Edge, error) {
		var e graph.Edge
		err := row.Scan(&e.Dependent, &e.Prerequisite)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("load dependencies: %w", err)
	}

	return buildGraph(tasks, edges)
}

// buildGraph assembles rows into a graph and refuses anything the rule engine
// could never have produced.
func buildGraph(tasks []graph.Task, edges []graph.Edge) (*graph.Graph, error) {
	g := graph.New()
	for _, t := range tasks {
		if err := g.Insert(t); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptGraph, err)
		}
	}
	for _, e := range edges {
		if e.Dependent == e.Prerequisite {
			return nil, fmt.Errorf("%w: task %d depends on itself", ErrCorruptGraph, e.Dependent)
		}
		if err := g.AddEdge(e.Dependent, e.Prerequisite); err != nil {
			return nil, fmt.Errorf("%w: edge %d -> %d: %v", ErrCorruptGraph, e.Dependent, e.Prerequisite, err)
		}
	}
	if cycle := g.DetectCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: cycle %v", ErrCorruptGraph, cycle)
	}
	return g, nil
}

// ToJSON renders v for tool and CLI output.
func ToJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal: %s"}`, err)
	}
	return string(b)
}
