// Package commands holds the calshare command line.
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/app"
	"github.com/calshare/server/internal/infra/config"
	"github.com/calshare/server/internal/infra/migrate"
	"github.com/calshare/server/internal/shared/logger"
)

// Set at build time with -ldflags "-X ...".
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand creates the calshare root command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "calshare",
		Short:        "Calshare API server",
		Long:         "Calshare serves shared weekly calendars: members, invitations and weekly activities.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; real environment variables still apply.
			_ = godotenv.Load()
		},
	}

	root.AddCommand(NewServeCommand())
	root.AddCommand(NewMigrateCommand())
	root.AddCommand(NewVersionCommand())
	return root
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			application, cleanup, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			defer func() { _ = application.Logger().Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return application.Run(ctx)
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands.
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrator) error { return m.Up() })
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrator) error { return m.Down() })
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %t\n", version, dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the calshare version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "calshare %s\n", Version)
			fmt.Fprintf(out, "commit: %s\n", GitCommit)
			fmt.Fprintf(out, "built: %s\n", BuildDate)
		},
	}
}

func withMigrator(fn func(m *migrate.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.NewZapLogger(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m, err := migrate.Open(cfg.Database.DSN(), log.Named("migrate"))
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("close migrator", zap.Error(err))
		}
	}()

	return fn(m)
}
