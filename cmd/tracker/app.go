package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/affanhamid/editor/tracker/internal/config"
	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/affanhamid/editor/tracker/internal/rules"
	"github.com/affanhamid/editor/tracker/internal/tracker"
	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app carries what every subcommand needs. The database is opened lazily so
// commands that fail argument checks never connect.
type app struct {
	flags struct {
		config    string
		db        string
		actor     string
		logLevel  string
		logFormat string
	}

	cfg     *config.Config
	logger  *log.Logger
	pool    *pgxpool.Pool
	queries *db.Queries
	svc     *tracker.Service
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.flags.config)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBURL = a.flags.db
	}
	if flags.Changed("actor") {
		cfg.Actor = a.flags.actor
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout is reserved for command output and the MCP protocol.
	a.cfg = cfg
	a.logger = cfg.NewLogger(os.Stderr)
	log.SetDefault(a.logger)
	if cfg.File != "" {
		a.logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// open connects to Postgres and builds the tracker service.
func (a *app) open(ctx context.Context) error {
	if a.pool != nil {
		return nil
	}
	pool, err := db.NewPool(ctx, a.cfg.DBURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.pool = pool
	a.queries = &db.Queries{Pool: pool}
	a.svc = tracker.New(a.queries, rules.New(), a.logger)
	return nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

// user resolves the configured actor.
func (a *app) user(ctx context.Context) (*db.User, error) {
	if a.cfg.Actor == "" {
		return nil, fmt.Errorf("no actor configured: pass --actor or set TRACKER_ACTOR")
	}
	if err := a.open(ctx); err != nil {
		return nil, err
	}
	return a.queries.UserByName(ctx, a.cfg.Actor)
}

// project loads a project the actor owns.
func (a *app) project(ctx context.Context, projectID int64) (*db.Project, error) {
	user, err := a.user(ctx)
	if err != nil {
		return nil, err
	}
	return a.queries.OwnedProject(ctx, user.ID, projectID)
}

// taskProject resolves the project of a task the actor owns.
func (a *app) taskProject(ctx context.Context, taskID int64) (int64, error) {
	if err := a.open(ctx); err != nil {
		return 0, err
	}
	projectID, err := a.queries.TaskProject(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if _, err := a.project(ctx, projectID); err != nil {
		return 0, err
	}
	return projectID, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func parseIDs(args []string, what string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(s, what)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// termWidth returns the width of stdout, or 0 when it is not a terminal.
func termWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
