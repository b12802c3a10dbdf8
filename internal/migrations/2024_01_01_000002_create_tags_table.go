package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("2024_01_01_000002_create_tags_table", upCreateTagsTable, downCreateTagsTable)
}

func upCreateTagsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`CREATE TABLE tags (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT        NOT NULL,
			color      TEXT        NOT NULL DEFAULT '#6c757d',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT tags_name_key UNIQUE (name)
		)`,
	)
}

func downCreateTagsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`DROP TABLE IF EXISTS tags`,
	)
}
