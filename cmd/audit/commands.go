package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/app"
	"github.com/heartmarshall/kindergarten-backend/internal/audit"
	"github.com/heartmarshall/kindergarten-backend/internal/config"
)

// withAudit loads config, connects and hands the audit service to fn.
func withAudit(ctx context.Context, fn func(*audit.Service, *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg.Log)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(app.NewServices(logger, pool, cfg).Audit, cfg)
}

func newVerifyCmd() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify checksums of committed records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAudit(cmd.Context(), func(svc *audit.Service, _ *config.Config) error {
				out := cmd.OutOrStdout()

				if id > 0 {
					res, err := svc.VerifyRecord(cmd.Context(), id)
					if err != nil {
						return err
					}
					return reportVerify(out, id, res)
				}

				sum, err := svc.VerifyAllPending(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Verified: %d, failed: %d\n", sum.Verified, sum.Failed)
				if sum.Failed > 0 {
					return errMismatch
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Verify a single record by id")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Mark pending records of crashed transactions as rolled back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAudit(cmd.Context(), func(svc *audit.Service, _ *config.Config) error {
				n, err := svc.AbandonStale(cmd.Context(), olderThan)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d stale pending records.\n", n)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age threshold (default from config audit.stale_pending_after)")
	return cmd
}

func newCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete verified records older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAudit(cmd.Context(), func(svc *audit.Service, cfg *config.Config) error {
				if days == 0 {
					days = cfg.Audit.RetentionDays
				}
				n, err := svc.CleanupOldTransactions(cmd.Context(), days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d verified records older than %d days.\n", n, days)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Days to keep (default from config audit.retention_days)")
	return cmd
}

// reportVerify prints the outcome for one record. Only a checksum mismatch
// is errMismatch; a missing or uncommitted record is errFailed.
func reportVerify(out io.Writer, id int64, res audit.VerifyOutcome) error {
	switch res {
	case audit.VerifyOK:
		fmt.Fprintf(out, "✓ record %d verified\n", id)
		return nil
	case audit.VerifyMismatch:
		fmt.Fprintf(out, "✗ record %d: checksum mismatch\n", id)
		return errMismatch
	default:
		fmt.Fprintf(out, "✗ record %d: %s\n", id, res)
		return errFailed
	}
}
