package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetparts/fleetparts-backend/api/controllers"
	"github.com/fleetparts/fleetparts-backend/api/middleware"
	"github.com/fleetparts/fleetparts-backend/internal/catalog"
	"github.com/fleetparts/fleetparts-backend/internal/ledger"
	"github.com/fleetparts/fleetparts-backend/internal/locations"
	"github.com/fleetparts/fleetparts-backend/internal/reports"
	"github.com/fleetparts/fleetparts-backend/internal/transfers"
	"github.com/fleetparts/fleetparts-backend/pkg/auth/session"
	"github.com/fleetparts/fleetparts-backend/pkg/config"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
	pkgredis "github.com/fleetparts/fleetparts-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	sessionChecker session.AccessSessionChecker,
	catalogService catalog.Service,
	ledgerService ledger.Service,
	locationsService locations.Service,
	transfersService transfers.Service,
	reportsService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	manageStock := middleware.RequireRole(logg, enums.MemberRoleManager.String(), enums.MemberRoleAdmin.String())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(catalogService, logg))
			r.Get("/{itemId}", controllers.ItemGet(catalogService, logg))
			r.With(manageStock).Post("/", controllers.ItemCreate(catalogService, logg))
			r.With(manageStock).Patch("/{itemId}", controllers.ItemUpdate(catalogService, logg))
			r.With(manageStock).Post("/{itemId}/deactivate", controllers.ItemDeactivate(catalogService, logg))
			r.With(manageStock).Post("/{itemId}/reactivate", controllers.ItemReactivate(catalogService, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", controllers.StockList(ledgerService, logg))
			r.With(manageStock).Post("/", controllers.StockCreate(ledgerService, logg))
			r.With(manageStock).Post("/{entryId}/adjust", controllers.StockAdjust(ledgerService, logg))
			r.With(manageStock).Delete("/{entryId}", controllers.StockDelete(ledgerService, logg))
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.WarehouseList(locationsService, logg))
			r.With(manageStock).Post("/", controllers.WarehouseCreate(locationsService, logg))
			r.With(manageStock).Delete("/{warehouseId}", controllers.WarehouseDelete(locationsService, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(locationsService, logg))
			r.With(manageStock).Post("/", controllers.VehicleCreate(locationsService, logg))
			r.With(manageStock).Put("/{vehicleId}/operator", controllers.VehicleAssignOperator(locationsService, logg))
			r.With(manageStock).Delete("/{vehicleId}", controllers.VehicleDelete(locationsService, logg))
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Get("/log", controllers.TransferLog(transfersService, logg))
			r.Get("/{transferId}", controllers.TransferDetail(transfersService, logg))
			r.With(manageStock).Post("/", controllers.TransferCreate(transfersService, logg))
			r.Post("/{transferId}/accept", controllers.TransferAccept(transfersService, logg))
			r.Post("/{transferId}/reject", controllers.TransferReject(transfersService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/low-stock", controllers.LowStockReport(reportsService, logg))
			r.Get("/location-value", controllers.LocationValueReport(reportsService, logg))
			r.Get("/top-locations", controllers.TopLocationsReport(reportsService, locationsService, logg))
			r.Get("/items", controllers.ItemsReport(reportsService, logg))
		})
	})

	return r
}
