package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger       *inventory.LedgerUseCase
	Reservations *inventory.ReservationUseCase
	Adjustments  *inventory.AdjustmentUseCase
	Alerts       *inventory.AlertUseCase
	Settings     *inventory.SettingsUseCase
	ProductUC    *usecase.ProductUseCase
	StoreUC      *usecase.StoreUseCase
	APIKeys      []string
	RateLimiter  RateLimiter // nil desactiva el límite
	JWTSecret    string
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// API pública de canales: clave opaca + límite por canal
	public := api.Group("/public/v1", APIKeyMiddleware(deps.APIKeys, log), RateLimitMiddleware(deps.RateLimiter, log))
	publicHandler := NewPublicHandler(deps.Reservations, deps.ProductUC, log)
	public.Get("/availability/:product_id", publicHandler.CheckAvailability)
	public.Get("/products", publicHandler.ListProducts)
	public.Post("/reservations", publicHandler.CreateReservation)
	public.Post("/reservations/:id/confirm", publicHandler.ConfirmSale)
	public.Post("/reservations/:id/cancel", publicHandler.CancelReservation)

	// Panel (requiere Bearer Token)
	admin := api.Group("/admin", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)
	warehouse := RequireRole(RoleAdmin, RoleBodeguero)
	sales := RequireRole(RoleAdmin, RoleVendedor)
	adminOnly := RequireRole(RoleAdmin)

	batchHandler := NewBatchHandler(deps.Ledger, log)
	admin.Post("/batches", warehouse, batchHandler.Create)
	admin.Get("/batches", anyRole, batchHandler.List)
	admin.Get("/batches/:id", anyRole, batchHandler.GetByID)
	admin.Get("/batches/:id/trace", anyRole, batchHandler.Trace)

	adjustmentHandler := NewAdjustmentHandler(deps.Adjustments, log)
	admin.Post("/adjustments", warehouse, adjustmentHandler.Create)
	admin.Get("/adjustments", anyRole, adjustmentHandler.List)

	movementHandler := NewMovementHandler(deps.Ledger, log)
	admin.Get("/movements", anyRole, movementHandler.List)
	admin.Get("/movements/export", anyRole, movementHandler.Export)
	admin.Get("/movements/:id", anyRole, movementHandler.GetByID)
	admin.Post("/sales", sales, movementHandler.RegisterSale)
	admin.Post("/transfers", warehouse, movementHandler.Transfer)

	storeHandler := NewStoreHandler(deps.StoreUC, deps.ProductUC, deps.Settings, log)
	admin.Get("/stores", anyRole, storeHandler.List)
	admin.Put("/stores/:id", adminOnly, storeHandler.Upsert)
	admin.Put("/stores/:id/settings", adminOnly, storeHandler.UpdateSettings)
	admin.Put("/stock/:product_id/:store_id/thresholds", warehouse, storeHandler.SetThresholds)
	admin.Put("/products/:id", adminOnly, storeHandler.UpsertProduct)

	alertHandler := NewAlertHandler(deps.Alerts, log)
	admin.Get("/alerts/low-stock", anyRole, alertHandler.LowStock)
	admin.Get("/alerts/expiry", anyRole, alertHandler.Expiry)
}
