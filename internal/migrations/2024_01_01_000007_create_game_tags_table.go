package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("2024_01_01_000007_create_game_tags_table", upCreateGameTagsTable, downCreateGameTagsTable)
}

func upCreateGameTagsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`CREATE TABLE game_tags (
			game_id BIGINT NOT NULL REFERENCES games (id) ON DELETE CASCADE,
			tag_id  BIGINT NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
			PRIMARY KEY (game_id, tag_id)
		)`,
		`CREATE INDEX idx_game_tags_tag ON game_tags (tag_id)`,
	)
}

func downCreateGameTagsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`DROP TABLE IF EXISTS game_tags`,
	)
}
