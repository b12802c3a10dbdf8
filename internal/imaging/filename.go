package imaging

import (
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	fullDir  = "full"
	thumbDir = "thumbs"
	ext      = ".webp"
)

// newFilename returns "<unix seconds>_<16 hex chars>".
func newFilename(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("%d_%s", now.Unix(), hex.EncodeToString(id[8:]))
}

// sanitizeEntityType lowercases t and keeps only [a-z0-9_-].
func sanitizeEntityType(t string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(t)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func relPaths(entityType, name string) (full, thumb string) {
	return path.Join(entityType, fullDir, name+ext), path.Join(entityType, thumbDir, name+ext)
}

// thumbOf maps a full-size relative path to its thumbnail.
func thumbOf(p string) string {
	return strings.Replace(p, "/"+fullDir+"/", "/"+thumbDir+"/", 1)
}
