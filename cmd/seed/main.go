// Command seed inserts the default size options, skipping names that exist.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/gridstock/internal/app"
	"github.com/angelmondragon/gridstock/internal/sizeoptions"
	"github.com/angelmondragon/gridstock/pkg/config"
	"github.com/angelmondragon/gridstock/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	a, err := app.New(ctx, cfg, logg, app.Options{})
	if err != nil {
		logg.Error(ctx, "failed to bootstrap application", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logg.Error(ctx, "error closing resources", err)
		}
	}()

	created, err := a.Services.SizeOptions.EnsureDefaults(ctx, sizeoptions.Defaults)
	if err != nil {
		logg.Error(ctx, "seeding size options failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "created", created), "size options seeded")
}
