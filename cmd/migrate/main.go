// Command migrate applies, reverts and inspects the application's
// registered Go migrations, and scaffolds new ones.
//
// Usage:
//
//	migrate migrate          apply all pending migrations as one batch
//	migrate rollback         revert the latest batch
//	migrate status           list migrations and their state
//	migrate create <name>    write a new migration skeleton
//
// Exit codes: 0 = success, 1 = error or at least one failed migration.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/heartmarshall/kindergarten-backend/internal/migrations"
)

// errFailed signals that some migrations failed after their results were
// already printed.
var errFailed = errors.New("one or more migrations failed")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newRollbackCmd(),
		newStatusCmd(),
		newCreateCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
