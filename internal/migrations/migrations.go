// Package migrations holds the application schema as registered Go migrations.
// Import it for side effects before running the migrate runner.
package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
)

// execAll runs statements in order and stops at the first error.
func execAll(ctx context.Context, q postgres.Querier, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
