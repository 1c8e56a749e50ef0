// Command importer merges the items of an export or import document into the
// database, printing the summary as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/gridstock/internal/app"
	"github.com/angelmondragon/gridstock/internal/transfer"
	"github.com/angelmondragon/gridstock/pkg/config"
	"github.com/angelmondragon/gridstock/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "importer"})
	_ = godotenv.Load()

	file := flag.String("file", "", "path to the JSON document, - for stdin")
	export := flag.String("export", "", "write a full snapshot to this path instead of importing")
	flag.Parse()

	if (*file == "") == (*export == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -export is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "importer",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	a, err := app.New(ctx, cfg, logg, app.Options{})
	requireResource(ctx, logg, "app", err)
	defer func() {
		if err := a.Close(); err != nil {
			logg.Error(ctx, "error closing resources", err)
		}
	}()

	if *export != "" {
		if err := writeSnapshot(ctx, a.Services.Exporter, *export); err != nil {
			logg.Error(ctx, "export failed", err)
			os.Exit(1)
		}
		return
	}

	result, err := runImport(ctx, a.Services.Importer, *file)
	if err != nil {
		logg.Error(ctx, "import failed", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	if result.Summary.Failed > 0 {
		os.Exit(3)
	}
}

func runImport(ctx context.Context, engine *transfer.Engine, path string) (transfer.Result, error) {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return transfer.Result{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}
	records, err := transfer.ParsePayload(in)
	if err != nil {
		return transfer.Result{}, err
	}
	return engine.Import(ctx, records, transfer.SourceCLI)
}

func writeSnapshot(ctx context.Context, exporter *transfer.Exporter, path string) error {
	snap, err := exporter.Export(ctx)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, payload, 0o644)
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "bootstrap failed", err)
	os.Exit(1)
}
