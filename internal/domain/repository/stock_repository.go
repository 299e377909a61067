package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository define el puerto para consultar/actualizar stock por bodega+artículo.
// Dentro de una transacción, GetForUpdate bloquea la fila hasta el Commit/Rollback.
type StockRepository interface {
	// Get devuelve el saldo actual; cantidad 0 si la fila no existe (no la crea).
	Get(ctx context.Context, warehouseID, itemID int64) (*entity.StockBalance, error)
	// GetForUpdate crea la fila en 0 si no existe y la bloquea (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, warehouseID, itemID int64) (*entity.StockBalance, error)
	// SetQuantity fija la cantidad de una fila previamente bloqueada.
	SetQuantity(ctx context.Context, warehouseID, itemID int64, quantity decimal.Decimal) error
	ListByItem(ctx context.Context, itemID int64) ([]*entity.StockSummaryRow, error)
	ListByWarehouse(ctx context.Context, warehouseID int64, limit, offset int) ([]*entity.StockSummaryRow, error)
}
