package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

type checksumInput struct {
	EntityType string          `json:"entity_type"`
	EntityID   *int64          `json:"entity_id"`
	Operation  string          `json:"operation"`
	DataBefore json.RawMessage `json:"data_before"`
	DataAfter  json.RawMessage `json:"data_after"`
	Timestamp  string          `json:"timestamp"`
}

// CalculateChecksum returns the hex SHA-256 of the canonical JSON encoding
// of the record fields. at is normalised to UTC microseconds, the precision
// PostgreSQL stores, so a checksum computed at write time can be recomputed
// from the persisted row.
func CalculateChecksum(
	entityType string,
	entityID *int64,
	op domain.AuditOperation,
	before, after json.RawMessage,
	at time.Time,
) (string, error) {
	b, err := Canonicalize(before)
	if err != nil {
		return "", fmt.Errorf("audit: checksum data_before: %w", err)
	}
	a, err := Canonicalize(after)
	if err != nil {
		return "", fmt.Errorf("audit: checksum data_after: %w", err)
	}

	payload, err := json.Marshal(checksumInput{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  string(op),
		DataBefore: b,
		DataAfter:  a,
		Timestamp:  normalizeTime(at).Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("audit: checksum encode: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Canonicalize re-encodes a JSON document with sorted object keys and no
// insignificant whitespace. Empty input and JSON null yield nil.
func Canonicalize(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// snapshot encodes v as canonical JSON. nil stays nil.
func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return Canonicalize(raw)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Canonicalize(raw)
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
