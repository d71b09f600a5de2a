package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jhoicas/inventory-ledger/docs"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/fiscal"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
	infranats "github.com/jhoicas/inventory-ledger/internal/infrastructure/nats"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventory-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/inventory-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// @title        Inventory Ledger API
// @version      1.0
// @description  Libro de inventario por lotes, reservas con TTL y panel administrativo.
// @BasePath     /
// @securityDefinitions.apikey  ApiKey
// @in                          header
// @name                        X-API-Key
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run arma y sirve la aplicación; los recursos abiertos se cierran al retornar.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistencia: PostgreSQL en producción, memoria para desarrollo local.
	var (
		tx    inventory.TxRunner
		repos inventory.Repos
	)
	switch cfg.DB.Driver {
	case "memory":
		db := memory.New()
		tx, repos = memory.NewTxRunner(db), db.Repos()
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migración del esquema: %w", err)
			}
			log.Info().Msg("esquema aplicado")
		}
		tx, repos = postgres.NewTxRunner(pool, log), postgres.NewRepos(pool)
	}

	// Eventos de inventario hacia NATS (opcional).
	var events inventory.EventPublisher = inventory.NopPublisher{}
	if cfg.NATS.Enabled() {
		nc, err := infranats.Connect(cfg.NATS, log)
		if err != nil {
			return fmt.Errorf("conexión a NATS: %w", err)
		}
		defer nc.Drain()
		events = infranats.NewPublisher(nc, cfg.NATS.SubjectPrefix, log)
	}

	// Límite por canal de la API pública (opcional).
	var limiter httpRouter.RateLimiter
	if cfg.Redis.Enabled() {
		client, err := infraredis.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer client.Close()
		limiter = infraredis.NewRateLimiter(client, "ratelimit:public", cfg.PublicAPI.RateLimit, cfg.PublicAPI.RateWindow())
	}
	if len(cfg.PublicAPI.Keys) == 0 {
		log.Warn().Msg("PUBLIC_API_KEYS vacío: la API pública rechazará todas las peticiones")
	}

	// Emisor fiscal para ventas de mostrador (opcional).
	var notifier inventory.FiscalNotifier
	if cfg.Fiscal.Enabled() {
		notifier = fiscal.NewHTTPNotifier(cfg.Fiscal)
	}

	deps := inventory.Deps{
		Tx:     tx,
		Repos:  repos,
		Events: events,
		Fiscal: notifier,
		Settings: inventory.Settings{
			ReservationTTL: cfg.Reservation.TTL(),
			MinNotesLength: cfg.Inventory.MinNotesLength,
			DefaultStoreID: cfg.Inventory.DefaultStoreID,
		},
	}
	ledgerUC := inventory.NewLedgerUseCase(deps)
	reservationUC := inventory.NewReservationUseCase(deps)
	adjustmentUC := inventory.NewAdjustmentUseCase(deps)
	alertUC := inventory.NewAlertUseCase(deps)
	settingsUC := inventory.NewSettingsUseCase(deps)
	productUC := usecase.NewProductUseCase(repos.Products, repos.Stores, repos.Stocks, repos.Reservations, nil)
	storeUC := usecase.NewStoreUseCase(repos.Stores)

	sweeper := inventory.NewExpirySweeper(reservationUC, log, cfg.Reservation.SweepInterval(), cfg.Reservation.SweepBatch)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventory Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:       ledgerUC,
		Reservations: reservationUC,
		Adjustments:  adjustmentUC,
		Alerts:       alertUC,
		Settings:     settingsUC,
		ProductUC:    productUC,
		StoreUC:      storeUC,
		APIKeys:      cfg.PublicAPI.Keys,
		RateLimiter:  limiter,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servicio finalizado con error")
		return err
	}
	log.Info().Msg("aplicación detenida")
	return nil
}
