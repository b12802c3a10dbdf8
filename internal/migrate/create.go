package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
	"unicode"
)

// TimestampFormat prefixes generated migration names so they sort by creation time.
const TimestampFormat = "2006_01_02_150405"

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

var skeleton = template.Must(template.New("migration").Parse(`package migrations

import (
	"context"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

func init() {
	migrate.Register("{{.Name}}", up{{.Ident}}, down{{.Ident}})
}

func up{{.Ident}}(ctx context.Context, q postgres.Querier) error {
	return nil
}

func down{{.Ident}}(ctx context.Context, q postgres.Querier) error {
	return nil
}
`))

// SanitizeName drops every character outside [a-zA-Z0-9_].
func SanitizeName(name string) string {
	return invalidNameChars.ReplaceAllString(name, "")
}

// Create writes a migration skeleton into dir and returns its path. The file
// name is the sanitized name prefixed with now formatted as TimestampFormat.
func Create(dir, name string, now time.Time) (string, error) {
	clean := SanitizeName(name)
	if clean == "" {
		return "", errors.New("migrate: migration name is empty after sanitizing")
	}

	full := now.Format(TimestampFormat) + "_" + clean
	ident := Identifier(full)
	if ident == "" {
		return "", fmt.Errorf("migrate: cannot derive identifier from %q", full)
	}

	var buf bytes.Buffer
	if err := skeleton.Execute(&buf, struct{ Name, Ident string }{Name: full, Ident: ident}); err != nil {
		return "", fmt.Errorf("migrate: render skeleton: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("migrate: format skeleton: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("migrate: create dir: %w", err)
	}

	path := filepath.Join(dir, full+".go")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("migrate: create file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(src); err != nil {
		return "", fmt.Errorf("migrate: write file: %w", err)
	}
	return path, nil
}

// Identifier converts a migration name into a CamelCase Go identifier.
// A leading date/sequence prefix of four numeric tokens is dropped:
// "2024_01_15_000001_create_games" becomes "CreateGames".
func Identifier(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) > 4 && allNumeric(parts[:4]) {
		parts = parts[4:]
	}

	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}

	ident := b.String()
	if ident != "" && unicode.IsDigit([]rune(ident)[0]) {
		ident = "M" + ident
	}
	return ident
}

func allNumeric(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
