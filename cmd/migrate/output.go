package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

// printResults writes one ✓/✗ line per result and reports whether any
// failed.
func printResults(w io.Writer, results []domain.MigrationResult, empty string) bool {
	if len(results) == 0 {
		fmt.Fprintln(w, empty)
		return false
	}

	failed := false
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(w, "✓ %s: %s\n", r.Name, r.Message)
			continue
		}
		failed = true
		fmt.Fprintf(w, "✗ %s: %s\n", r.Name, r.Message)
	}
	return failed
}

func printStatus(w io.Writer, infos []domain.MigrationInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No migrations registered.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MIGRATION\tSTATE\tBATCH\tEXECUTED AT")
	for _, i := range infos {
		batch, at := "-", "-"
		if i.State == domain.MigrationStateExecuted {
			batch = fmt.Sprint(i.Batch)
			if i.ExecutedAt != nil {
				at = i.ExecutedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", i.Name, i.State, batch, at)
	}
	tw.Flush() //nolint:errcheck
}
