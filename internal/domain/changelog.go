package domain

import "time"

// ChangelogEntry is a human-readable history row for one entity event.
type ChangelogEntry struct {
	ID         int64           `db:"id"`
	UserID     *int64          `db:"user_id"`
	EntityType string          `db:"entity_type"`
	EntityID   int64           `db:"entity_id"`
	EntityName string          `db:"entity_name"`
	Action     ChangelogAction `db:"action"`
	Changes    map[string]any  `db:"changes"`
	CreatedAt  time.Time       `db:"created_at"`
}

// FieldChange is the old/new pair of a single tracked field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangelogFilter narrows changelog counts. Zero values mean "any".
type ChangelogFilter struct {
	EntityType string
	EntityID   int64
	UserID     int64
	Action     ChangelogAction
}
