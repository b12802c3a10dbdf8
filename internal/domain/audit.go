package domain

import (
	"encoding/json"
	"time"
)

// AuditRecord is one checksum-protected entry of the transaction log.
type AuditRecord struct {
	ID            int64           `db:"id"`
	TransactionID string          `db:"transaction_id"`
	UserID        *int64          `db:"user_id"`
	EntityType    string          `db:"entity_type"`
	EntityID      *int64          `db:"entity_id"`
	Operation     AuditOperation  `db:"operation"`
	DataBefore    json.RawMessage `db:"data_before"`
	DataAfter     json.RawMessage `db:"data_after"`
	Checksum      string          `db:"checksum"`
	Status        AuditStatus     `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	VerifiedAt    *time.Time      `db:"verified_at"`
}

// AuditStatistics summarises the transaction log.
type AuditStatistics struct {
	Total       int64
	ByStatus    map[AuditStatus]int64
	ByOperation map[AuditOperation]int64
	Today       int64
}
