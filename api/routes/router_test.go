package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gridstock/internal/categories"
	"github.com/angelmondragon/gridstock/internal/containers"
	"github.com/angelmondragon/gridstock/internal/items"
	"github.com/angelmondragon/gridstock/internal/sizeoptions"
	"github.com/angelmondragon/gridstock/internal/testutil"
	"github.com/angelmondragon/gridstock/internal/transfer"
	"github.com/angelmondragon/gridstock/pkg/config"
	"github.com/angelmondragon/gridstock/pkg/logger"
	"github.com/angelmondragon/gridstock/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		Import: config.ImportConfig{
			MaxRecords:      100,
			RateLimitWindow: time.Minute,
			RateLimit:       10,
			IdempotencyTTL:  time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	client, conn := testutil.OpenClient(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := prometheus.NewRegistry()

	containerSvc, err := containers.NewService(containers.NewRepository(conn), client)
	require.NoError(t, err)
	categorySvc, err := categories.NewService(categories.NewRepository(conn), client)
	require.NoError(t, err)
	sizeSvc, err := sizeoptions.NewService(sizeoptions.NewRepository(conn))
	require.NoError(t, err)
	itemRepo := items.NewRepository(conn)
	itemSvc, err := items.NewService(itemRepo, client)
	require.NoError(t, err)
	exporter, err := transfer.NewExporter(transfer.ExporterParams{
		Containers:  containerSvc,
		Categories:  categorySvc,
		SizeOptions: sizeSvc,
		Items:       itemSvc,
	})
	require.NoError(t, err)
	engine, err := transfer.NewEngine(transfer.EngineParams{
		Items:      itemRepo,
		Tx:         client,
		Logger:     logg,
		Metrics:    metrics.NewImportMetrics(reg),
		MaxRecords: 100,
	})
	require.NoError(t, err)

	return NewRouter(testConfig(), logg, client, nil, Services{
		Containers:  containerSvc,
		Categories:  categorySvc,
		SizeOptions: sizeSvc,
		Items:       itemSvc,
		Exporter:    exporter,
		Importer:    engine,
	}, Observability{Gatherer: reg, HTTP: metrics.NewHTTPMetrics(reg)})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Error.Code
}

func TestHealthRoutes(t *testing.T) {
	h := newTestRouter(t)

	live := do(t, h, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, live.Code)
	assert.Equal(t, config.AppEnvDev, live.Header().Get("X-Gridstock-Env"))

	ready := do(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, ready.Code, ready.Body.String())
}

func TestHealthReadyReportsDatabaseFailure(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	h := NewRouter(testConfig(), logg, stubPinger{err: io.ErrUnexpectedEOF}, nil, Services{}, Observability{})

	rec := do(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestContainerAndItemLifecycle(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/containers",
		`{"name":"Drawer","gridConfig":{"rows":[{"columns":2},{"isDivider":true},{"columns":1}]}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	container := decodeData[containers.ContainerDTO](t, rec)
	require.NotZero(t, container.ID)
	cid := itoa(container.ID)

	rec = do(t, h, http.MethodPost, "/api/items",
		`{"name":"Hex Key","containerId":`+cid+`,"position":{"row":1,"column":0}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decodeData[items.ItemDTO](t, rec)
	assert.Equal(t, 1, item.Quantity)

	rec = do(t, h, http.MethodPost, "/api/items",
		`{"name":"Allen Key","containerId":`+cid+`,"position":{"row":1,"column":0}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/items",
		`{"name":"Out","containerId":`+cid+`,"position":{"row":1,"column":5}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/containers/"+cid+"/cell?row=1&column=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	at := decodeData[*items.ItemDTO](t, rec)
	require.NotNil(t, at)
	assert.Equal(t, item.ID, at.ID)

	rec = do(t, h, http.MethodGet, "/api/containers/"+cid+"/cell?row=0&column=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData[*items.ItemDTO](t, rec))

	rec = do(t, h, http.MethodPost, "/api/items/"+itoa(item.ID)+"/move", `{"position":{"row":0,"column":1}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/containers/"+cid+"/grid", "")
	require.Equal(t, http.StatusOK, rec.Code)
	grid := decodeData[items.GridView](t, rec)
	require.Len(t, grid.Rows, 3)
	assert.True(t, grid.Rows[1].IsDivider)
	require.NotNil(t, grid.Rows[0].Cells[1].Item)
	assert.Equal(t, item.ID, grid.Rows[0].Cells[1].Item.ID)

	rec = do(t, h, http.MethodDelete, "/api/containers/"+cid, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/items/"+itoa(item.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestCategoryDeleteKeepsItems(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/containers", `{"name":"Box","gridConfig":{"rows":[{"columns":1}]}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cid := itoa(decodeData[containers.ContainerDTO](t, rec).ID)

	rec = do(t, h, http.MethodPost, "/api/categories", `{"name":"Tools","color":"red"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decodeData[categories.CategoryDTO](t, rec)

	rec = do(t, h, http.MethodPost, "/api/categories", `{"name":"Tools","color":"blue"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/items",
		`{"name":"Saw","categoryId":`+itoa(category.ID)+`,"containerId":`+cid+`,"position":{"row":0,"column":0}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decodeData[items.ItemDTO](t, rec)
	require.NotNil(t, item.Category)

	rec = do(t, h, http.MethodDelete, "/api/categories/"+itoa(category.ID), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/items/"+itoa(item.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	after := decodeData[items.ItemDTO](t, rec)
	assert.Nil(t, after.CategoryID)
	assert.Nil(t, after.Category)
}

func TestSizeOptionsOrdering(t *testing.T) {
	h := newTestRouter(t)

	for _, body := range []string{
		`{"name":"lg","label":"Large","sortOrder":2}`,
		`{"name":"sm","label":"Small"}`,
	} {
		rec := do(t, h, http.MethodPost, "/api/size-options", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/api/size-options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	options := decodeData[[]sizeoptions.SizeOptionDTO](t, rec)
	require.Len(t, options, 2)
	assert.Equal(t, "sm", options[0].Name)
	assert.Equal(t, 0, options[0].SortOrder)
}

func TestSearchRoute(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/containers", `{"name":"Shelf","gridConfig":{"rows":[{"columns":2}]}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cid := itoa(decodeData[containers.ContainerDTO](t, rec).ID)
	rec = do(t, h, http.MethodPost, "/api/items",
		`{"name":"Wire Stripper","information":"for 10-22 AWG","containerId":`+cid+`,"position":{"row":0,"column":0}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/search?q=STRIP", "")
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeData[[]items.SearchResultDTO](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "Shelf", results[0].ContainerName)

	rec = do(t, h, http.MethodGet, "/api/search?q=awg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]items.SearchResultDTO](t, rec))

	rec = do(t, h, http.MethodGet, "/api/search?q=awg&fields=name,information", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]items.SearchResultDTO](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/search?q=%20", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/search?q=x&fields=color", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	long := strings.Repeat("a", 200)
	rec = do(t, h, http.MethodPost, "/api/items",
		`{"name":"Tape","information":"`+long+`b","containerId":`+cid+`,"position":{"row":0,"column":1}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// overlong queries are rejected, never shortened into a looser match
	rec = do(t, h, http.MethodGet, "/api/search?fields=information&q="+long+"c", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	assert.Contains(t, rec.Body.String(), "at most 200 characters")

	rec = do(t, h, http.MethodGet, "/api/search?fields=information&q="+long, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]items.SearchResultDTO](t, rec), 1)
}

func TestExportThenImport(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/containers", `{"name":"Bin","gridConfig":{"rows":[{"columns":2}]}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cid := itoa(decodeData[containers.ContainerDTO](t, rec).ID)
	rec = do(t, h, http.MethodPost, "/api/items", `{"name":"Nut","value":0.1,"containerId":`+cid+`,"position":{"row":0,"column":0}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "gridstock-export-")
	var snap transfer.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "1.0", snap.Version)
	require.Len(t, snap.Items, 1)

	rec = do(t, h, http.MethodPost, "/api/import", rec.Body.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result transfer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, transfer.Summary{Updated: 1, Total: 1}, result.Summary)

	rec = do(t, h, http.MethodPost, "/api/import", `{"items":[{"name":"Washer","containerId":`+cid+`,"position":{"row":0,"column":1}},{"name":"Ghost","containerId":999,"position":{"row":0,"column":0}}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, transfer.Summary{Imported: 1, Failed: 1, Total: 2}, result.Summary)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Ghost: "))

	rec = do(t, h, http.MethodPost, "/api/import", `{"items":{"name":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodGet, "/api/items", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "gridstock_http_requests_total")
	assert.Contains(t, body, `route="/api/items`)
}

func TestRejectsBadIDs(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/items", `{"name":"x","bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
