package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s: statements run against postgres only; keep pkg/db/models in step
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<name>.sql. The version is the later of now and one
// past the newest existing migration, so files always sort after the schema
// they build on.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	existing, err := ListDir(dir)
	if err != nil {
		return "", err
	}
	version, err := ParseVersion(now.UTC().Format("20060102150405"))
	if err != nil {
		return "", err
	}
	for _, m := range existing {
		if m.Name == safe {
			return "", fmt.Errorf("migration named %q already exists: %s", safe, m.Path)
		}
		if m.Version >= version {
			version = nextVersion(m.Version)
		}
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, safe))
	if err := os.WriteFile(fullpath, []byte(fmt.Sprintf(migrationTemplate, safe)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

// nextVersion advances a YYYYMMDDHHMMSS version by one second.
func nextVersion(v int64) int64 {
	t, err := time.Parse("20060102150405", strconv.FormatInt(v, 10))
	if err != nil {
		return v + 1
	}
	next, _ := strconv.ParseInt(t.Add(time.Second).Format("20060102150405"), 10, 64)
	return next
}
