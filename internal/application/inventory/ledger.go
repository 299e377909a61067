package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockLedger es el único punto que modifica saldos. Un saldo nunca queda negativo:
// si el delta lo dejaría bajo cero se rechaza sin tocar la fila.
type StockLedger struct {
	stockRepo repository.StockRepository
}

// NewStockLedger construye el ledger. stockRepo se usa solo para lecturas fuera de transacción.
func NewStockLedger(stockRepo repository.StockRepository) *StockLedger {
	return &StockLedger{stockRepo: stockRepo}
}

// GetAvailable devuelve el saldo de (bodega, artículo); 0 si nunca se ha movido.
func (l *StockLedger) GetAvailable(ctx context.Context, warehouseID, itemID int64) (decimal.Decimal, error) {
	bal, err := l.stockRepo.Get(ctx, warehouseID, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	if bal == nil {
		return decimal.Zero, nil
	}
	return bal.Quantity, nil
}

// Apply suma delta al saldo usando stockRepo (atado a la transacción del llamador).
// Bloquea la fila (GetForUpdate), la crea en 0 si no existe y devuelve el nuevo saldo.
// El faltante de InsufficientStockError lleva ItemName vacío: el ledger solo conoce IDs y
// DocumentStateMachine lo completa desde las líneas del documento.
func (l *StockLedger) Apply(ctx context.Context, stockRepo repository.StockRepository, warehouseID, itemID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: delta cero para artículo %d en bodega %d", domain.ErrInvalidInput, itemID, warehouseID)
	}
	bal, err := stockRepo.GetForUpdate(ctx, warehouseID, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	next := bal.Quantity.Add(delta)
	if next.GreaterThan(entity.MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: saldo del artículo %d en bodega %d excede %s", domain.ErrInvalidInput, itemID, warehouseID, entity.MaxAmount)
	}
	if next.IsNegative() {
		return decimal.Zero, &domain.InsufficientStockError{
			WarehouseID: warehouseID,
			Shortages: []domain.Shortage{{
				ItemID:    itemID,
				Requested: delta.Neg(),
				Available: bal.Quantity,
			}},
		}
	}
	if err := stockRepo.SetQuantity(ctx, warehouseID, itemID, next); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}
