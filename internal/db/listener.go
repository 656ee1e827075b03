package db

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
)

// Notification is a LISTEN/NOTIFY event from Postgres.
type Notification struct {
	Channel string
	Payload string
}

// ListenChannels are the channels the schema triggers publish on.
var ListenChannels = []string{
	"task_updates",
	"dependency_updates",
}

// StartListener opens a dedicated connection and listens on ListenChannels.
// Notifications are sent to out. Blocks until ctx is cancelled or the
// connection fails.
func StartListener(ctx context.Context, connStr string, out chan<- Notification) error {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return fmt.Errorf("listener connect: %w", err)
	}
	defer conn.Close(context.Background())

	for _, ch := range ListenChannels {
		if _, err := conn.Exec(ctx, "LISTEN "+ch); err != nil {
			return fmt.Errorf("listen %s: %w", ch, err)
		}
	}
	log.Debug("listening", "channels", ListenChannels)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		select {
		case out <- Notification{Channel: n.Channel, Payload: n.Payload}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
