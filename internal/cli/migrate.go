package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back or inspect the embedded goose migrations.`,
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(m *persistence.Migrator) error {
				return m.Down(cmd.Context(), steps)
			})
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(m *persistence.Migrator) error {
					return m.Up(cmd.Context())
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(m *persistence.Migrator) error {
					if err := m.Status(cmd.Context()); err != nil {
						return err
					}
					version, err := m.Version(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "current version: %d\n", version)
					return nil
				})
			},
		},
	)
	return cmd
}

func withMigrator(ctx context.Context, fn func(*persistence.Migrator) error) error {
	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()
	if err := env.requirePostgres(); err != nil {
		return err
	}

	migrator, err := persistence.NewMigrator(env.postgres.PoolHandle(), env.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := fn(migrator); err != nil {
		env.logger.Error("migration failed", zap.Error(err))
		return err
	}
	return nil
}
