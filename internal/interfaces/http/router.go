package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DocumentUC *inventory.DocumentUseCase
	CatalogUC  *inventory.CatalogUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	documents := api.Group("/documents")
	documentHandler := NewDocumentHandler(deps.DocumentUC)
	documents.Post("/", documentHandler.Create)
	documents.Get("/:id", documentHandler.GetByID)
	documents.Post("/:id/transition", documentHandler.Transition)

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.DocumentUC)
	stock.Get("/", stockHandler.Summary)
	stock.Get("/movements", stockHandler.Movements)

	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", catalogHandler.CreateWarehouse)
	warehouses.Get("/", catalogHandler.ListWarehouses)
	warehouses.Get("/:id", catalogHandler.GetWarehouse)

	items := api.Group("/items")
	items.Post("/", catalogHandler.CreateItem)
	items.Get("/", catalogHandler.ListItems)
	items.Get("/:id", catalogHandler.GetItem)

	rateHandler := NewExchangeRateHandler(deps.DocumentUC)
	api.Get("/exchange-rate", rateHandler.Get)
	api.Put("/exchange-rate", rateHandler.Update)
}
