package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"github.com/straye-as/crm-core/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

type migrator struct {
	dir string
}

func newRootCmd() *cobra.Command {
	m := &migrator{}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the CRM database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&m.dir, "dir", "./migrations", "Directory containing SQL migrations")

	cmd.AddCommand(
		m.upCmd(),
		m.downCmd(),
		m.statusCmd(),
		m.versionCmd(),
		m.createCmd(),
	)
	return cmd
}

// open loads the configuration and returns a verified connection with goose configured
func (m *migrator) open() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}
	return db, nil
}

func (m *migrator) withDB(fn func(db *sql.DB) error) error {
	db, err := m.open()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func (m *migrator) upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.withDB(func(db *sql.DB) error {
				if err := goose.Up(db, m.dir); err != nil {
					return fmt.Errorf("failed to run up migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
				return nil
			})
		},
	}
}

func (m *migrator) downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.withDB(func(db *sql.DB) error {
				if err := goose.Down(db, m.dir); err != nil {
					return fmt.Errorf("failed to run down migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully")
				return nil
			})
		},
	}
}

func (m *migrator) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.withDB(func(db *sql.DB) error {
				if err := goose.Status(db, m.dir); err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				return nil
			})
		},
	}
}

func (m *migrator) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.withDB(func(db *sql.DB) error {
				if err := goose.Version(db, m.dir); err != nil {
					return fmt.Errorf("failed to get version: %w", err)
				}
				return nil
			})
		},
	}
}

func (m *migrator) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// goose.Create only writes a file and never touches the connection
			if err := goose.Create(nil, m.dir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration created: %s\n", args[0])
			return nil
		},
	}
}
