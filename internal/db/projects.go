package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/affanhamid/editor/tracker/internal/tracker"
	"github.com/jackc/pgx/v5"
)

// ErrPermissionDenied is returned when a user touches a project they do not own.
var ErrPermissionDenied = errors.New("permission denied")

// Project is a stored project with its task counts. Progress is the rounded
// completion percentage, 0 when the project has no tasks.
type Project struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	TaskCount   int        `json:"task_count"`
	Completed   int        `json:"completed_count"`
	Progress    int        `json:"completion_percentage"`
}

const projectColumns = `p.id, p.user_id, p.name, p.description, p.deadline, p.created_at,
	COUNT(t.id), COUNT(t.id) FILTER (WHERE t.is_completed)`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Deadline, &p.CreatedAt,
		&p.TaskCount, &p.Completed)
	p.Progress = percent(p.Completed, p.TaskCount)
	return p, err
}

// percent rounds done/total to a whole percentage; an empty project is 0.
func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) * 100 / float64(total)))
}

// CreateProject inserts a project owned by userID.
func (q *Queries) CreateProject(ctx context.Context, userID int64, name, description string, deadline *time.Time) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	p := Project{UserID: userID, Name: name, Description: strings.TrimSpace(description), Deadline: deadline}
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO projects (user_id, name, description, deadline)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		userID, p.Name, p.Description, deadline,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create_project: %w", err)
	}
	return &p, nil
}

// GetProject returns one project with its task counts.
func (q *Queries) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	p, err := scanProject(q.Pool.QueryRow(ctx,
		`SELECT `+projectColumns+`
		 FROM projects p LEFT JOIN tasks t ON t.project_id = p.id
		 WHERE p.id = $1
		 GROUP BY p.id`, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tracker.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get_project: %w", err)
	}
	return &p, nil
}

// OwnedProject is GetProject restricted to the project's owner.
func (q *Queries) OwnedProject(ctx context.Context, userID, projectID int64) (*Project, error) {
	p, err := q.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return p, nil
}

// ListProjects returns a user's projects, newest first.
func (q *Queries) ListProjects(ctx context.Context, userID int64) ([]Project, error) {
	rows, err := q.Pool.Query(ctx,
		`SELECT `+projectColumns+`
		 FROM projects p LEFT JOIN tasks t ON t.project_id = p.id
		 WHERE p.user_id = $1
		 GROUP BY p.id
		 ORDER BY p.created_at DESC, p.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list_projects: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Project, error) {
		return scanProject(row)
	})
}

// DeleteProject removes a project; its tasks, dependencies and events go
// with it.
func (q *Queries) DeleteProject(ctx context.Context, projectID int64) error {
	tag, err := q.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("delete_project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tracker.ErrProjectNotFound
	}
	return nil
}
