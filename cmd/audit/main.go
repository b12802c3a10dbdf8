// Command audit maintains the transaction log: it verifies checksums of
// committed records, marks abandoned pending records as rolled back, and
// removes old verified records.
//
// Exit codes: 0 = success, 1 = error or at least one checksum mismatch.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	errMismatch = errors.New("checksum mismatch")
	errFailed   = errors.New("record not verifiable")
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "audit",
		Short:         "Maintain the transaction log",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newVerifyCmd(),
		newReconcileCmd(),
		newCleanupCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
