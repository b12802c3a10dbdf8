package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("2024_01_01_000003_create_groups_table", upCreateGroupsTable, downCreateGroupsTable)
}

func upCreateGroupsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`CREATE TABLE groups (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT        NOT NULL,
			age_from   SMALLINT,
			age_to     SMALLINT,
			color      TEXT        NOT NULL DEFAULT '#0d6efd',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT groups_age_range_check CHECK (age_from IS NULL OR age_to IS NULL OR age_from <= age_to)
		)`,
	)
}

func downCreateGroupsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`DROP TABLE IF EXISTS groups`,
	)
}
