// Package testutil opens throwaway sqlite databases carrying the full schema.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/gridstock/pkg/db"
	"github.com/angelmondragon/gridstock/pkg/db/models"
	"github.com/angelmondragon/gridstock/pkg/migrate"
	"github.com/angelmondragon/gridstock/pkg/types"
)

// OpenDB returns an isolated in-memory database with foreign keys enabled.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.AutoMigrate(context.Background(), nil, db.Wrap(conn)); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// OpenClient wraps OpenDB in a db.Client for services that run transactions.
func OpenClient(t testing.TB) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := OpenDB(t)
	return db.Wrap(conn), conn
}

func MustCreateContainer(t testing.TB, conn *gorm.DB, name string, rows ...types.Row) models.Container {
	t.Helper()
	if len(rows) == 0 {
		rows = []types.Row{types.CellsRow(3)}
	}
	container := models.Container{
		Name:       name,
		GridConfig: datatypes.NewJSONType(types.GridConfig{Rows: rows}),
	}
	if err := conn.Create(&container).Error; err != nil {
		t.Fatalf("create container %q: %v", name, err)
	}
	return container
}

func MustCreateCategory(t testing.TB, conn *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name, Color: "blue"}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return category
}

func MustCreateItem(t testing.TB, conn *gorm.DB, containerID int64, name string, row, column int) models.Item {
	t.Helper()
	item := models.Item{
		Name:        name,
		Quantity:    1,
		ContainerID: containerID,
		Position:    types.Position{Row: row, Column: column},
	}
	if err := conn.Omit("Category").Create(&item).Error; err != nil {
		t.Fatalf("create item %q: %v", name, err)
	}
	return item
}

func CountItems(t testing.TB, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := conn.Model(&models.Item{}).Count(&count).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	return count
}
