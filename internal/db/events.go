package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ChangeEvent is a persisted record of one accepted change.
type ChangeEvent struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID int64           `json:"project_id"`
	TaskID    int64           `json:"task_id"`
	Op        string          `json:"op"`
	Detail    json.RawMessage `json:"detail"`
	CreatedAt time.Time       `json:"created_at"`
}

// RecentEvents fetches the most recent changes of a project, newest first.
func (q *Queries) RecentEvents(ctx context.Context, projectID int64, limit int) ([]ChangeEvent, error) {
	rows, err := q.Pool.Query(ctx, `
		SELECT id, project_id, task_id, op, detail::text, created_at
		FROM task_events
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent_events: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ChangeEvent, error) {
		var (
			e      ChangeEvent
			detail string
		)
		err := row.Scan(&e.ID, &e.ProjectID, &e.TaskID, &e.Op, &detail, &e.CreatedAt)
		e.Detail = json.RawMessage(detail)
		return e, err
	})
}
