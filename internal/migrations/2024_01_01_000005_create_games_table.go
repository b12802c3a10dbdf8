package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("2024_01_01_000005_create_games_table", upCreateGamesTable, downCreateGamesTable)
}

func upCreateGamesTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`CREATE TABLE games (
			id           BIGSERIAL PRIMARY KEY,
			name         TEXT        NOT NULL,
			description  TEXT        NOT NULL DEFAULT '',
			instructions TEXT        NOT NULL DEFAULT '',
			category_id  BIGINT      REFERENCES categories (id) ON DELETE SET NULL,
			box_id       BIGINT      REFERENCES boxes (id) ON DELETE SET NULL,
			min_age      SMALLINT,
			max_age      SMALLINT,
			min_players  SMALLINT,
			max_players  SMALLINT,
			duration_min INTEGER,
			image_path   TEXT,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX idx_games_category ON games (category_id)`,
		`CREATE INDEX idx_games_box ON games (box_id)`,
	)
}

func downCreateGamesTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`DROP TABLE IF EXISTS games`,
	)
}
