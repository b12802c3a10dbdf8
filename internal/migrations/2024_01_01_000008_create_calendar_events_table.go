package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("2024_01_01_000008_create_calendar_events_table", upCreateCalendarEventsTable, downCreateCalendarEventsTable)
}

func upCreateCalendarEventsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`CREATE TABLE calendar_events (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT        NOT NULL,
			description TEXT        NOT NULL DEFAULT '',
			game_id     BIGINT      REFERENCES games (id) ON DELETE SET NULL,
			group_id    BIGINT      REFERENCES groups (id) ON DELETE SET NULL,
			starts_at   TIMESTAMPTZ NOT NULL,
			ends_at     TIMESTAMPTZ,
			all_day     BOOLEAN     NOT NULL DEFAULT false,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT calendar_events_range_check CHECK (ends_at IS NULL OR ends_at >= starts_at)
		)`,
		`CREATE INDEX idx_calendar_events_starts_at ON calendar_events (starts_at)`,
	)
}

func downCreateCalendarEventsTable(ctx context.Context, q postgres.Querier) error {
	return execAll(ctx, q,
		`DROP TABLE IF EXISTS calendar_events`,
	)
}
