package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newTransactionID returns "txn_<unix-micro hex>_<16 random hex>_<8 hex digest>".
// The prefix sorts by creation time; the random part comes from a v4 UUID.
func newTransactionID(now time.Time) (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("audit: transaction id: %w", err)
	}

	prefix := strconv.FormatInt(now.UnixMicro(), 16)
	random := strings.ReplaceAll(u.String(), "-", "")[:16]
	sum := sha256.Sum256([]byte(prefix + random))

	return "txn_" + prefix + "_" + random + "_" + hex.EncodeToString(sum[:4]), nil
}
