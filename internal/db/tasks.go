package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/affanhamid/editor/tracker/internal/tracker"
	"github.com/jackc/pgx/v5"
)

// ErrTaskNotFound is returned when a task id does not exist.
var ErrTaskNotFound = tracker.ErrTaskNotFound

// TaskDetail is a task row with its descriptive fields and direct
// prerequisites.
type TaskDetail struct {
	ID                 int64      `json:"id"`
	ProjectID          int64      `json:"project_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Importance         string     `json:"importance"`
	StartDate          time.Time  `json:"start_date"`
	ExpectedCompletion *time.Time `json:"expected_completion_date,omitempty"`
	Completed          bool       `json:"is_completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	DependsOn          []int64    `json:"depends_on"`
}

const taskDetailQuery = `SELECT t.id, t.project_id, t.title, t.description, t.importance, t.start_date,
        t.expected_completion_date, t.is_completed, t.completed_at, t.created_at,
        COALESCE(array_agg(d.depends_on_id ORDER BY d.depends_on_id)
                 FILTER (WHERE d.depends_on_id IS NOT NULL), '{}')
 FROM tasks t
 LEFT JOIN task_dependencies d ON d.task_id = t.id`

func scanTaskDetail(row pgx.Row) (TaskDetail, error) {
	var t TaskDetail
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Importance, &t.StartDate,
		&t.ExpectedCompletion, &t.Completed, &t.CompletedAt, &t.CreatedAt, &t.DependsOn)
	return t, err
}

// GetTask returns one task with its prerequisites.
func (q *Queries) GetTask(ctx context.Context, taskID int64) (*TaskDetail, error) {
	t, err := scanTaskDetail(q.Pool.QueryRow(ctx, taskDetailQuery+`
		 WHERE t.id = $1
		 GROUP BY t.id`, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrTaskNotFound, taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("get_task: %w", err)
	}
	return &t, nil
}

// ListTasks returns the tasks of a project ordered by id.
func (q *Queries) ListTasks(ctx context.Context, projectID int64) ([]TaskDetail, error) {
	rows, err := q.Pool.Query(ctx, taskDetailQuery+`
		 WHERE t.project_id = $1
		 GROUP BY t.id
		 ORDER BY t.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list_tasks: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TaskDetail, error) {
		return scanTaskDetail(row)
	})
}

// TaskProject returns the project a task belongs to.
func (q *Queries) TaskProject(ctx context.Context, taskID int64) (int64, error) {
	var projectID int64
	err := q.Pool.QueryRow(ctx, `SELECT project_id FROM tasks WHERE id = $1`, taskID).Scan(&projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", ErrTaskNotFound, taskID)
	}
	if err != nil {
		return 0, fmt.Errorf("task_project: %w", err)
	}
	return projectID, nil
}
