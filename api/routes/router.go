package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gridstock/api/controllers"
	"github.com/angelmondragon/gridstock/api/middleware"
	"github.com/angelmondragon/gridstock/internal/categories"
	"github.com/angelmondragon/gridstock/internal/containers"
	"github.com/angelmondragon/gridstock/internal/items"
	"github.com/angelmondragon/gridstock/internal/sizeoptions"
	"github.com/angelmondragon/gridstock/internal/transfer"
	"github.com/angelmondragon/gridstock/pkg/config"
	"github.com/angelmondragon/gridstock/pkg/logger"
	"github.com/angelmondragon/gridstock/pkg/metrics"
	pkgredis "github.com/angelmondragon/gridstock/pkg/redis"
)

// Services groups the domain services mounted under /api.
type Services struct {
	Containers  containers.Service
	Categories  categories.Service
	SizeOptions sizeoptions.Service
	Items       items.Service
	Exporter    *transfer.Exporter
	Importer    *transfer.Engine
}

// Observability carries the metrics registry exposed on /metrics.
type Observability struct {
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics
}

// NewRouter builds the HTTP surface. redisClient may be nil, which disables
// idempotent replay and import rate limiting.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	svcs Services,
	obs Observability,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	if obs.HTTP != nil {
		r.Use(middleware.Metrics(obs.HTTP))
	}

	var (
		cachePinger controllers.Pinger
		idemStore   pkgredis.IdempotencyStore
		limiter     pkgredis.RateLimiter
	)
	if redisClient != nil {
		cachePinger = redisClient
		idemStore = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, dbP, cachePinger))
	})

	if obs.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	importPolicy := middleware.NewRateLimitPolicy("import", cfg.Import.RateLimitWindow, cfg.Import.RateLimit)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, cfg.Import.IdempotencyTTL, logg))

		r.Route("/containers", func(r chi.Router) {
			r.Get("/", controllers.ListContainers(svcs.Containers, logg))
			r.Post("/", controllers.CreateContainer(svcs.Containers, logg))
			r.Route("/{containerId}", func(r chi.Router) {
				r.Get("/", controllers.GetContainer(svcs.Containers, logg))
				r.Patch("/", controllers.UpdateContainer(svcs.Containers, logg))
				r.Delete("/", controllers.DeleteContainer(svcs.Containers, logg))
				r.Get("/items", controllers.ListContainerItems(svcs.Items, logg))
				r.Get("/grid", controllers.ContainerGrid(svcs.Items, logg))
				r.Get("/occupied", controllers.ContainerOccupiedCells(svcs.Items, logg))
				r.Get("/cell", controllers.ContainerCell(svcs.Items, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(svcs.Categories, logg))
			r.Post("/", controllers.CreateCategory(svcs.Categories, logg))
			r.Get("/{categoryId}", controllers.GetCategory(svcs.Categories, logg))
			r.Patch("/{categoryId}", controllers.UpdateCategory(svcs.Categories, logg))
			r.Delete("/{categoryId}", controllers.DeleteCategory(svcs.Categories, logg))
		})

		r.Route("/size-options", func(r chi.Router) {
			r.Get("/", controllers.ListSizeOptions(svcs.SizeOptions, logg))
			r.Post("/", controllers.CreateSizeOption(svcs.SizeOptions, logg))
			r.Get("/{sizeOptionId}", controllers.GetSizeOption(svcs.SizeOptions, logg))
			r.Patch("/{sizeOptionId}", controllers.UpdateSizeOption(svcs.SizeOptions, logg))
			r.Delete("/{sizeOptionId}", controllers.DeleteSizeOption(svcs.SizeOptions, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(svcs.Items, logg))
			r.Post("/", controllers.CreateItem(svcs.Items, logg))
			r.Get("/{itemId}", controllers.GetItem(svcs.Items, logg))
			r.Patch("/{itemId}", controllers.UpdateItem(svcs.Items, logg))
			r.Delete("/{itemId}", controllers.DeleteItem(svcs.Items, logg))
			r.Post("/{itemId}/move", controllers.MoveItem(svcs.Items, logg))
		})

		r.Get("/search", controllers.SearchItems(svcs.Items, logg))
		r.Get("/export", controllers.ExportInventory(svcs.Exporter, logg))
		r.With(middleware.RateLimit(importPolicy, limiter, logg)).
			Post("/import", controllers.ImportInventory(svcs.Importer, logg))
	})

	return r
}
