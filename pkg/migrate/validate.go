package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const versionLen = 14

var sqlFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// inventoryTables must each be created by some migration in the directory.
var inventoryTables = []string{"containers", "categories", "size_options", "items"}

// Migration is one versioned SQL file.
type Migration struct {
	Version int64
	Name    string
	Path    string
}

// ListDir returns the SQL migrations in dir ordered by version. Badly named
// files and repeated versions or names are errors.
func ListDir(dir string) ([]Migration, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	byVersion := map[int64]string{}
	byName := map[string]string{}
	out := []Migration{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version, err := ParseVersion(m[1])
		if err != nil {
			return nil, err
		}
		if prev, ok := byVersion[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d in %q and %q", version, prev, name)
		}
		if prev, ok := byName[m[2]]; ok {
			return nil, fmt.Errorf("duplicate migration name %q in %q and %q", m[2], prev, name)
		}
		byVersion[version] = name
		byName[m[2]] = name
		out = append(out, Migration{Version: version, Name: m[2], Path: filepath.Join(dir, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// ValidateDir checks filenames, goose section markers, and that the set of
// migrations creates every inventory table.
func ValidateDir(dir string) error {
	migrations, err := ListDir(dir)
	if err != nil {
		return err
	}

	created := map[string]bool{}
	for _, m := range migrations {
		b, err := os.ReadFile(m.Path)
		if err != nil {
			return fmt.Errorf("read file %q: %w", m.Path, err)
		}
		txt := string(b)
		up := strings.Index(txt, "-- +goose Up")
		down := strings.Index(txt, "-- +goose Down")
		switch {
		case up < 0:
			return fmt.Errorf("migration %q missing \"-- +goose Up\"", filepath.Base(m.Path))
		case down < 0:
			return fmt.Errorf("migration %q missing \"-- +goose Down\"", filepath.Base(m.Path))
		case down < up:
			return fmt.Errorf("migration %q has Down before Up", filepath.Base(m.Path))
		}
		upSQL := strings.ToLower(txt[up:down])
		for _, table := range inventoryTables {
			if strings.Contains(upSQL, "create table if not exists "+table+" ") ||
				strings.Contains(upSQL, "create table "+table+" ") {
				created[table] = true
			}
		}
	}

	missing := []string{}
	for _, table := range inventoryTables {
		if !created[table] {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no migration creates tables: %s", strings.Join(missing, ", "))
	}
	return nil
}
