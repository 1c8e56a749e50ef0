package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/angelmondragon/gridstock/api/responses"
	"github.com/angelmondragon/gridstock/internal/transfer"
	"github.com/angelmondragon/gridstock/pkg/logger"
)

type snapshotExporter interface {
	Export(ctx context.Context) (transfer.Snapshot, error)
}

type batchImporter interface {
	Import(ctx context.Context, records []json.RawMessage, source string) (transfer.Result, error)
}

// ExportInventory writes the full snapshot as a downloadable JSON document.
func ExportInventory(exp snapshotExporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := exp.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="gridstock-export-%s.json"`, snap.ExportDate[:10]))
		responses.WriteJSON(w, http.StatusOK, snap)
	}
}

// ImportInventory merges the items of an uploaded document. Per-record
// failures are reported in the body of a 200 response.
func ImportInventory(imp batchImporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := transfer.ParsePayload(http.MaxBytesReader(w, r.Body, transfer.MaxPayloadBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := imp.Import(r.Context(), records, transfer.SourceHTTP)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}
