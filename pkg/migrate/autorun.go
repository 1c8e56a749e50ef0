package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gridstock/pkg/config"
	"github.com/angelmondragon/gridstock/pkg/db"
	"github.com/angelmondragon/gridstock/pkg/db/models"
	"github.com/angelmondragon/gridstock/pkg/logger"
)

// MaybeRunDev prepares the schema at boot. sqlite databases are always
// auto-migrated from the models; Postgres runs Goose migrations only in dev
// mode with the feature flag enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client.Driver() == config.DriverSQLite {
		return AutoMigrate(ctx, logg, client)
	}

	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	runner, err := NewRunner(client, DefaultDir)
	if err != nil {
		return err
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := runner.Up(ctx); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrate syncs the schema from the GORM models.
func AutoMigrate(ctx context.Context, logg *logger.Logger, client *db.Client) error {
	if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrating models: %w", err)
	}
	if err := client.DB().WithContext(ctx).Exec(itemPositionIndexSQL).Error; err != nil {
		return fmt.Errorf("creating item position index: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "schema auto-migrated")
	}
	return nil
}

const itemPositionIndexSQL = `CREATE INDEX IF NOT EXISTS items_container_position_idx
	ON items (container_id, position_row, position_column)`
