package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	deps := inventory.Deps{Logger: log.Component("inventory")}

	switch cfg.Ledger.Store {
	case "memory":
		store := memory.NewStore()
		deps.TxRunner = store
		deps.DocumentRepo = store.Documents()
		deps.StockRepo = store.Stock()
		deps.MovementRepo = store.Movements()
		deps.WarehouseRepo = store.Warehouses()
		deps.ItemRepo = store.Items()
		deps.SequenceRepo = store.Sequences()
		deps.RateRepo = store.ExchangeRate()
		log.Warn().Msg("ledger en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		deps.TxRunner = postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout, cfg.Ledger.StatementTimeout)
		deps.DocumentRepo = postgres.NewDocumentRepository(pool)
		deps.StockRepo = postgres.NewStockRepository(pool)
		deps.MovementRepo = postgres.NewStockMovementRepository(pool)
		deps.WarehouseRepo = postgres.NewWarehouseRepository(pool)
		deps.ItemRepo = postgres.NewItemRepository(pool)
		deps.SequenceRepo = postgres.NewSequenceRepository(pool)
		deps.RateRepo = postgres.NewExchangeRateRepository(pool)
	}

	// Caché de resúmenes: opcional, sin REDIS_ADDR se consulta siempre la BD.
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, caché desactivado")
		} else {
			deps.Cache = cache.NewStockSummaryCache(client, cfg.Redis.SummaryTTL)
		}
	}

	documentUC := inventory.NewDocumentUseCase(deps)
	catalogUC := inventory.NewCatalogUseCase(deps.WarehouseRepo, deps.ItemRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	httpRouter.Router(app, httpRouter.RouterDeps{DocumentUC: documentUC, CatalogUC: catalogUC})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
