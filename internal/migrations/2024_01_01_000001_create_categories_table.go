package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("2024_01_01_000001_create_categories_table", upCreateCategoriesTable, downCreateCategoriesTable)
}

func upCreateCategoriesTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`CREATE TABLE categories (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT        NOT NULL,
			description TEXT        NOT NULL DEFAULT '',
			sort_order  INTEGER     NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT categories_name_key UNIQUE (name)
		)`,
	)
}

func downCreateCategoriesTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`DROP TABLE IF EXISTS categories`,
	)
}
