package domain

import "time"

// MigrationRecord marks a migration as applied in the given batch.
type MigrationRecord struct {
	ID         int64     `db:"id"`
	Name       string    `db:"migration"`
	Batch      int       `db:"batch"`
	ExecutedAt time.Time `db:"executed_at"`
}

// MigrationResult is the per-item outcome of migrate or rollback.
type MigrationResult struct {
	Name    string
	Status  MigrationStatus
	Message string
}

// OK reports whether the migration step succeeded.
func (r MigrationResult) OK() bool { return r.Status == MigrationStatusSuccess }

// MigrationInfo is one line of the status report.
type MigrationInfo struct {
	Name       string
	State      MigrationState
	Batch      int
	ExecutedAt *time.Time
}
