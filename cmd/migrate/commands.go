package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/kindergarten-backend/internal/config"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd.Context(), func(r *migrate.Runner) error {
				return report(cmd, "Nothing to migrate.", r.Migrate)
			})
		},
	}
}

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Revert the latest batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd.Context(), func(r *migrate.Runner) error {
				return report(cmd, "Nothing to rollback.", r.Rollback)
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd.Context(), func(r *migrate.Runner) error {
				infos, err := r.Status(cmd.Context())
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), infos)
				return nil
			})
		},
	}
}

func newCreateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Write a new migration skeleton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, err := config.LoadMigrations()
				if err != nil {
					return err
				}
				dir = cfg.Dir
			}

			path, err := migrate.Create(dir, args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created migration: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory for the new file (default from config migrations.dir)")
	return cmd
}

type stepFunc func(ctx context.Context) ([]domain.MigrationResult, error)

// report runs step, prints each result, and returns errFailed when any
// item failed.
func report(cmd *cobra.Command, empty string, step stepFunc) error {
	results, err := step(cmd.Context())
	if err != nil {
		return err
	}
	if printResults(cmd.OutOrStdout(), results, empty) {
		return errFailed
	}
	return nil
}
