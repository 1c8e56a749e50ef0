package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/gridstock/internal/items"
	"github.com/angelmondragon/gridstock/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
	"github.com/angelmondragon/gridstock/pkg/logger"
	"github.com/angelmondragon/gridstock/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Import sources label the duration histogram.
const (
	SourceHTTP = "http"
	SourceCLI  = "cli"
)

type outcome int

const (
	outcomeImported outcome = iota
	outcomeUpdated
)

type Summary struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// Result is the import response body.
type Result struct {
	Success bool     `json:"success"`
	Summary Summary  `json:"summary"`
	Errors  []string `json:"errors,omitempty"`
}

type EngineParams struct {
	Items      items.Repository
	Tx         txRunner
	Logger     *logger.Logger
	Metrics    *metrics.ImportMetrics
	MaxRecords int
}

// Engine reconciles imported item records against the store, one record at a
// time and in input order, so later records observe earlier writes.
type Engine struct {
	items      items.Repository
	tx         txRunner
	logg       *logger.Logger
	metrics    *metrics.ImportMetrics
	maxRecords int
}

func NewEngine(params EngineParams) (*Engine, error) {
	if params.Items == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Engine{
		items:      params.Items,
		tx:         params.Tx,
		logg:       logg,
		metrics:    params.Metrics,
		maxRecords: params.MaxRecords,
	}, nil
}

// Import runs a batch. Per-record failures are collected into the result;
// only an oversized batch is rejected as a whole.
func (e *Engine) Import(ctx context.Context, records []json.RawMessage, source string) (Result, error) {
	if e.maxRecords > 0 && len(records) > e.maxRecords {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "too many items in import").
			WithDetails(map[string]any{"items": fmt.Sprintf("at most %d records per import", e.maxRecords)})
	}

	started := time.Now()
	res := Result{Success: true, Summary: Summary{Total: len(records)}}

	for i, raw := range records {
		rec, err := decodeRecord(raw)
		label := rec.label(i)
		if err == nil {
			rec.normalize()
			var out outcome
			out, err = e.reconcile(ctx, rec)
			if err == nil {
				switch out {
				case outcomeImported:
					res.Summary.Imported++
				case outcomeUpdated:
					res.Summary.Updated++
				}
				continue
			}
		}

		res.Summary.Failed++
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", label, err.Error()))
		failCtx := e.logg.WithFields(ctx, map[string]any{"record_index": i, "record_label": label, "reason": err.Error()})
		e.logg.Warn(failCtx, "import.record_failed")
	}

	e.metrics.AddOutcome(metrics.OutcomeImported, res.Summary.Imported)
	e.metrics.AddOutcome(metrics.OutcomeUpdated, res.Summary.Updated)
	e.metrics.AddOutcome(metrics.OutcomeFailed, res.Summary.Failed)
	e.metrics.ObserveDuration(source, time.Since(started))

	doneCtx := e.logg.WithFields(ctx, map[string]any{
		"source":   source,
		"imported": res.Summary.Imported,
		"updated":  res.Summary.Updated,
		"failed":   res.Summary.Failed,
		"total":    res.Summary.Total,
	})
	e.logg.Info(doneCtx, "import.completed")
	return res, nil
}

// reconcile applies one record inside its own transaction.
func (e *Engine) reconcile(ctx context.Context, rec record) (outcome, error) {
	var out outcome
	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := e.items.WithTx(tx)

		occupant, err := e.occupant(ctx, repo, rec)
		if err != nil {
			return err
		}

		if rec.ID != nil {
			existing, err := repo.FindByID(ctx, *rec.ID)
			switch {
			case err == nil:
				// explicit ids update in place without a collision check
				if err := rec.applyTo(existing); err != nil {
					return err
				}
				if _, err := repo.Update(ctx, existing); err != nil {
					return err
				}
				out = outcomeUpdated
				return nil
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			if occupant != nil && occupant.ID != *rec.ID {
				if _, err := repo.Delete(ctx, occupant.ID); err != nil {
					return err
				}
			}
			return e.create(ctx, repo, rec, &out)
		}

		if occupant != nil {
			if err := rec.applyTo(occupant); err != nil {
				return err
			}
			if _, err := repo.Update(ctx, occupant); err != nil {
				return err
			}
			out = outcomeUpdated
			return nil
		}
		return e.create(ctx, repo, rec, &out)
	})
	return out, err
}

func (e *Engine) create(ctx context.Context, repo items.Repository, rec record, out *outcome) error {
	item, err := rec.newItem()
	if err != nil {
		return err
	}
	if _, err := repo.Create(ctx, item); err != nil {
		return err
	}
	*out = outcomeImported
	return nil
}

func (e *Engine) occupant(ctx context.Context, repo items.Repository, rec record) (*models.Item, error) {
	containerID, pos, ok := rec.cell()
	if !ok {
		return nil, nil
	}
	item, err := repo.FindAtPosition(ctx, containerID, pos)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}
