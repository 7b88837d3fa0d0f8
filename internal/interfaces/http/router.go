package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.Ledger
	AppName   string
	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "app": deps.AppName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	supervisor := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Libro de movimientos
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Logger)
	invGroup.Post("/receipts", inventoryHandler.RecordReceipt)
	invGroup.Post("/withdrawals", inventoryHandler.RecordWithdrawal)
	invGroup.Post("/transfers", inventoryHandler.RecordTransfer)
	invGroup.Post("/production/consume", inventoryHandler.ConsumeBatch)
	invGroup.Post("/adjustments", supervisor, inventoryHandler.RecordAdjustment)
	invGroup.Post("/counts", supervisor, inventoryHandler.RecordCount)
	invGroup.Post("/snapshots/rebuild", supervisor, inventoryHandler.RebuildSnapshot)
	invGroup.Get("/allocation-plan", inventoryHandler.PlanAllocation)
	invGroup.Get("/products/:id/movements", inventoryHandler.ListMovements)
	invGroup.Get("/products/:id/cost-events", inventoryHandler.ListCostEvents)

	// Unidades de medida
	uomGroup := protected.Group("/uom")
	uomHandler := NewUomHandler(deps.Ledger.Converter(), deps.Logger)
	uomGroup.Get("/convert", uomHandler.Convert)
	uomGroup.Get("/units", uomHandler.ListUnits)
}
