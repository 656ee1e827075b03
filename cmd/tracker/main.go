// Command tracker manages projects, tasks and the dependencies between them.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tracker",
		Short: "Track projects and the dependencies between their tasks",
		Long: `Tracker keeps projects and tasks in Postgres and enforces the dependency
rules between tasks: no cycles, no completing a task before the tasks it
depends on, no deleting a task that others still depend on.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { a.close() },
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.config, "config", "", "Config file (default tracker.toml, then $XDG_CONFIG_HOME/tracker/tracker.toml)")
	flags.StringVar(&a.flags.db, "db", "", "PostgreSQL connection string")
	flags.StringVar(&a.flags.actor, "actor", "", "Username to act as")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "Log format: text, json, logfmt")

	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(userCmd(a))
	rootCmd.AddCommand(projectCmd(a))
	rootCmd.AddCommand(taskCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(logCmd(a))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
