package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/gridstock/internal/categories"
	"github.com/angelmondragon/gridstock/internal/containers"
	"github.com/angelmondragon/gridstock/internal/items"
	"github.com/angelmondragon/gridstock/internal/sizeoptions"
)

const SnapshotVersion = "1.0"

// Snapshot is a full, read-only export. Its items embed their category, which
// the importer folds back into categoryId.
type Snapshot struct {
	Version     string                      `json:"version"`
	ExportDate  string                      `json:"exportDate"`
	Containers  []containers.ContainerDTO   `json:"containers"`
	Categories  []categories.CategoryDTO    `json:"categories"`
	SizeOptions []sizeoptions.SizeOptionDTO `json:"sizeOptions"`
	Items       []items.ItemDTO             `json:"items"`
}

type ExporterParams struct {
	Containers  containers.Service
	Categories  categories.Service
	SizeOptions sizeoptions.Service
	Items       items.Service
	Now         func() time.Time
}

type Exporter struct {
	containers  containers.Service
	categories  categories.Service
	sizeOptions sizeoptions.Service
	items       items.Service
	now         func() time.Time
}

func NewExporter(params ExporterParams) (*Exporter, error) {
	if params.Containers == nil || params.Categories == nil || params.SizeOptions == nil || params.Items == nil {
		return nil, fmt.Errorf("exporter requires container, category, size option and item services")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Exporter{
		containers:  params.Containers,
		categories:  params.Categories,
		sizeOptions: params.SizeOptions,
		items:       params.Items,
		now:         now,
	}, nil
}

func (e *Exporter) Export(ctx context.Context) (Snapshot, error) {
	containerRows, err := e.containers.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	categoryRows, err := e.categories.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	sizeRows, err := e.sizeOptions.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	itemRows, err := e.items.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Version:     SnapshotVersion,
		ExportDate:  e.now().UTC().Format(time.RFC3339),
		Containers:  containerRows,
		Categories:  categoryRows,
		SizeOptions: sizeRows,
		Items:       itemRows,
	}, nil
}
