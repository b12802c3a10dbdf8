package changelog

import (
	"fmt"
	"strconv"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

// GetChanges compares the tracked fields of two snapshots and returns the
// ones that differ. Values are compared by their string form, so 1 and "1"
// are equal and a missing field equals "" and false.
func GetChanges(before, after map[string]any, fields []string) map[string]domain.FieldChange {
	changes := make(map[string]domain.FieldChange)
	for _, f := range fields {
		o, n := before[f], after[f]
		if stringify(o) == stringify(n) {
			continue
		}
		changes[f] = domain.FieldChange{Old: o, New: n}
	}
	return changes
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
