package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/smartlist-backend/api/controllers"
	"github.com/angelmondragon/smartlist-backend/api/middleware"
	"github.com/angelmondragon/smartlist-backend/internal/categories"
	"github.com/angelmondragon/smartlist-backend/internal/inventory"
	"github.com/angelmondragon/smartlist-backend/internal/shoppinglists"
	"github.com/angelmondragon/smartlist-backend/internal/users"
	"github.com/angelmondragon/smartlist-backend/pkg/config"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/smartlist-backend/pkg/redis"
)

// Deps collects everything the HTTP surface is built from.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	Idempotency   pkgredis.IdempotencyStore
	Gatherer      prometheus.Gatherer
	Settings      users.Service
	Categories    categories.Service
	Items         inventory.ItemService
	Coordinator   inventory.Coordinator
	ShoppingLists shoppinglists.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"database": d.DB,
			"redis":    d.Redis,
		}, logg))
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(d.Idempotency, cfg.Replenishment.IdempotencyTTL, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/users/me/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsGet(d.Settings, logg))
			r.Patch("/", controllers.SettingsUpdate(d.Settings, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(d.Categories, logg))
			r.Post("/", controllers.CategoryCreate(d.Categories, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(d.Categories, logg))
			r.Patch("/{categoryId}", controllers.CategoryRename(d.Categories, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(d.Categories, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(d.Items, logg))
			r.Post("/", controllers.ItemCreate(d.Items, logg))
			r.Get("/units", controllers.ItemUnits())
			r.Get("/{itemId}", controllers.ItemGet(d.Items, logg))
			r.Patch("/{itemId}", controllers.ItemUpdate(d.Items, logg))
			r.Delete("/{itemId}", controllers.ItemDelete(d.Items, logg))
			r.With(idempotent).Post("/{itemId}/stock", controllers.ItemAddStock(d.Items, logg))
		})

		r.Post("/inventory/refresh", controllers.InventoryRefresh(d.Coordinator, logg))

		r.Route("/shopping-lists", func(r chi.Router) {
			r.Get("/", controllers.ShoppingListHistory(d.ShoppingLists, logg))
			r.Get("/active", controllers.ShoppingListActive(d.ShoppingLists, logg))
			r.Get("/{listId}", controllers.ShoppingListGet(d.ShoppingLists, logg))
			r.With(idempotent).Post("/{listId}/finalize", controllers.ShoppingListFinalize(d.ShoppingLists, logg))
			r.Patch("/items/{entryId}", controllers.ShoppingListEntryUpdate(d.ShoppingLists, logg))
			r.Delete("/items/{entryId}", controllers.ShoppingListEntryDelete(d.ShoppingLists, logg))
		})
	})

	return r
}
