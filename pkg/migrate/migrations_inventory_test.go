package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/gridstock/pkg/migrate"
)

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_inventory_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no inventory migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS containers",
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS size_options",
		"CREATE TABLE IF NOT EXISTS items",
		"grid_config JSONB NOT NULL",
		"FOREIGN KEY (container_id) REFERENCES containers(id) ON DELETE CASCADE",
		"FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL",
		"CONSTRAINT categories_name_key UNIQUE (name)",
		"CONSTRAINT size_options_name_key UNIQUE (name)",
		"CREATE INDEX IF NOT EXISTS items_container_position_idx",
		"DROP TABLE IF EXISTS items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}
