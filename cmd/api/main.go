package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/domain/uom"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/idgen"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// demoCompanyID empresa de los datos sembrados con STORE_DRIVER=memory.
const demoCompanyID = "demo-company"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	deps, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer closeStore()

	seq, err := idgen.New(cfg.Ledger.NodeID)
	if err != nil {
		log.Fatal().Err(err).Msg("generador de secuencia")
	}
	deps.Sequence = seq
	deps.Logger = log.Component("ledger")
	deps.DefaultCostBasis = entity.CostBasis(cfg.Ledger.DefaultCostBasis)
	ledger := inventory.NewLedger(deps)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledger,
		AppName:   cfg.App.Name,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log.Component("http"),
	})

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

// buildStore arma los repositorios del libro según STORE_DRIVER.
func buildStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (inventory.LedgerDeps, func(), error) {
	if cfg.Store.Driver == config.StoreMemory {
		store := memory.New()
		memory.SeedDemo(store, demoCompanyID)
		log.Warn().Str("company_id", demoCompanyID).Msg("almacenamiento en memoria con datos de demostración")
		catalog, err := loadCatalog(ctx, store.Uom(), log)
		if err != nil {
			return inventory.LedgerDeps{}, nil, err
		}
		return inventory.LedgerDeps{
			TxRunner:   store,
			Products:   store.Products(),
			Stock:      store.Stock(),
			Sites:      store.Sites(),
			Uom:        store.Uom(),
			Movements:  store.Movements(),
			CostEvents: store.CostEvents(),
			Converter:  uom.NewConverter(catalog),
		}, func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return inventory.LedgerDeps{}, nil, err
	}
	uomRepo := postgres.NewUomRepository(pool)
	catalog, err := loadCatalog(ctx, uomRepo, log)
	if err != nil {
		pool.Close()
		return inventory.LedgerDeps{}, nil, err
	}
	return inventory.LedgerDeps{
		TxRunner:   postgres.NewTxRunner(pool),
		Products:   postgres.NewProductRepository(pool),
		Stock:      postgres.NewStockRepository(pool),
		Sites:      postgres.NewSiteRepository(pool),
		Uom:        uomRepo,
		Movements:  postgres.NewMovementRepository(pool),
		CostEvents: postgres.NewProductCostEventRepository(pool),
		Converter:  uom.NewConverter(catalog),
	}, pool.Close, nil
}

// loadCatalog catálogo de unidades desde el almacenamiento; vacío usa las unidades sembradas.
func loadCatalog(ctx context.Context, repo repository.UomRepository, log *logger.Logger) (*uom.Catalog, error) {
	units, err := repo.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		log.Warn().Msg("catálogo de unidades vacío, se usan las unidades sembradas")
		units = uom.DefaultUnits()
	}
	return uom.NewCatalog(units)
}
