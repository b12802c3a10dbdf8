package migrations_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres/migration"
	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
	_ "github.com/heartmarshall/kindergarten-backend/internal/migrations"
)

var appTables = []string{
	"categories", "tags", "groups", "boxes", "games", "materials", "game_tags", "calendar_events",
}

func TestRegistered_Names(t *testing.T) {
	t.Parallel()

	sorted := migrate.Registered().Sorted()
	require.Len(t, sorted, len(appTables))

	for i, m := range sorted {
		assert.True(t, strings.HasSuffix(m.Name, "_create_"+appTables[i]+"_table"), m.Name)
		assert.NotEmpty(t, migrate.Identifier(m.Name))
	}
}

func TestRunner_Integration_MigrateAndRollback(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	runner := migrate.NewRunner(logger, pool, migration.New(pool), postgres.NewTxManager(pool), migrate.Registered())

	results, err := runner.Migrate(ctx)
	require.NoError(t, err)
	require.Len(t, results, len(appTables))
	for _, r := range results {
		assert.True(t, r.OK(), "%s: %s", r.Name, r.Message)
	}

	for _, table := range appTables {
		assert.True(t, tableExists(t, pool, table), table)
	}

	status, err := runner.Status(ctx)
	require.NoError(t, err)
	for _, s := range status {
		assert.Equal(t, domain.MigrationStateExecuted, s.State)
		assert.Equal(t, 1, s.Batch)
	}

	results, err = runner.Rollback(ctx)
	require.NoError(t, err)
	require.Len(t, results, len(appTables))
	assert.True(t, strings.HasSuffix(results[0].Name, "calendar_events_table"))
	for _, r := range results {
		assert.True(t, r.OK(), "%s: %s", r.Name, r.Message)
	}

	for _, table := range appTables {
		assert.False(t, tableExists(t, pool, table), table)
	}
}

func tableExists(t *testing.T, q postgres.Querier, table string) bool {
	t.Helper()
	var exists bool
	err := q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`,
		table,
	).Scan(&exists)
	require.NoError(t, err)
	return exists
}
