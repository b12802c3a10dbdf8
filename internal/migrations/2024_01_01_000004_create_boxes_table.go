package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("2024_01_01_000004_create_boxes_table", upCreateBoxesTable, downCreateBoxesTable)
}

func upCreateBoxesTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`CREATE TABLE boxes (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT        NOT NULL,
			label       TEXT        NOT NULL DEFAULT '',
			location    TEXT        NOT NULL DEFAULT '',
			description TEXT        NOT NULL DEFAULT '',
			image_path  TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	)
}

func downCreateBoxesTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`DROP TABLE IF EXISTS boxes`,
	)
}
