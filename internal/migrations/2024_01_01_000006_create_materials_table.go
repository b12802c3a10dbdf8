package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("2024_01_01_000006_create_materials_table", upCreateMaterialsTable, downCreateMaterialsTable)
}

func upCreateMaterialsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`CREATE TABLE materials (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT        NOT NULL,
			description TEXT        NOT NULL DEFAULT '',
			box_id      BIGINT      REFERENCES boxes (id) ON DELETE SET NULL,
			quantity    INTEGER     NOT NULL DEFAULT 1 CHECK (quantity >= 0),
			image_path  TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX idx_materials_box ON materials (box_id)`,
	)
}

func downCreateMaterialsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`DROP TABLE IF EXISTS materials`,
	)
}
