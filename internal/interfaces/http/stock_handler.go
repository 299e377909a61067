package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// StockHandler consultas de saldos y del diario de movimientos.
type StockHandler struct {
	uc *inventory.DocumentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.DocumentUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Summary godoc
// @Summary      Resumen de stock por artículo o por bodega
// @Tags         stock
// @Produce      json
// @Param        item_id       query  int  false  "Artículo (excluye warehouse_id)"
// @Param        warehouse_id  query  int  false  "Bodega (excluye item_id)"
// @Param        limit         query  int  false  "Límite"  default(20)
// @Param        offset        query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.StockSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) Summary(c *fiber.Ctx) error {
	f := inventory.StockSummaryFilter{
		ItemID:      int64(c.QueryInt("item_id", 0)),
		WarehouseID: int64(c.QueryInt("warehouse_id", 0)),
		Page:        dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
	}
	out, err := h.uc.GetStockSummary(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Diario de movimientos de stock
// @Tags         stock
// @Produce      json
// @Param        item_id       query  int     false  "Artículo"
// @Param        warehouse_id  query  int     false  "Bodega"
// @Param        document_id   query  int     false  "Documento"
// @Param        from          query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockMovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	f := repository.MovementFilter{
		ItemID:      int64(c.QueryInt("item_id", 0)),
		WarehouseID: int64(c.QueryInt("warehouse_id", 0)),
		DocumentID:  int64(c.QueryInt("document_id", 0)),
		Limit:       c.QueryInt("limit", 20),
		Offset:      c.QueryInt("offset", 0),
	}
	var err error
	if f.From, err = parseDate(c.Query("from"), false); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"})
	}
	if f.To, err = parseDate(c.Query("to"), true); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"})
	}
	out, err := h.uc.ListMovements(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// parseDate acepta RFC3339 o YYYY-MM-DD. Con endOfDay, una fecha sin hora cubre el día completo.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
