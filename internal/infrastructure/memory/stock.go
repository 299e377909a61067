package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo saldos por (bodega, artículo).
type StockRepo struct {
	view *txView
}

// Get saldo visible; cantidad 0 si no existe.
func (r *StockRepo) Get(_ context.Context, warehouseID, itemID int64) (*entity.StockBalance, error) {
	b, ok := r.view.getStock(stockKey{warehouseID, itemID})
	if !ok {
		return &entity.StockBalance{WarehouseID: warehouseID, ItemID: itemID, Quantity: decimal.Zero}, nil
	}
	return &b, nil
}

// GetForUpdate crea la fila en 0 si no existe. El bloqueo lo da la serialización de Store.Run.
func (r *StockRepo) GetForUpdate(ctx context.Context, warehouseID, itemID int64) (*entity.StockBalance, error) {
	if !r.view.inTx() {
		return nil, fmt.Errorf("%w: GetForUpdate requiere transacción", domain.ErrPersistence)
	}
	k := stockKey{warehouseID, itemID}
	b, ok := r.view.getStock(k)
	if !ok {
		b = entity.StockBalance{WarehouseID: warehouseID, ItemID: itemID, Quantity: decimal.Zero, UpdatedAt: r.view.store.now().UTC()}
		r.view.stock[k] = b
	}
	return &b, nil
}

// SetQuantity fija la cantidad. Rechaza negativos igual que el CHECK de la tabla.
func (r *StockRepo) SetQuantity(ctx context.Context, warehouseID, itemID int64, quantity decimal.Decimal) error {
	if !r.view.inTx() {
		return r.view.store.autocommit(func(tx *txView) error {
			return (&StockRepo{view: tx}).SetQuantity(ctx, warehouseID, itemID, quantity)
		})
	}
	if quantity.IsNegative() {
		return &domain.PersistenceError{Op: "set stock", Err: fmt.Errorf("cantidad negativa %s", quantity)}
	}
	r.view.stock[stockKey{warehouseID, itemID}] = entity.StockBalance{
		WarehouseID: warehouseID,
		ItemID:      itemID,
		Quantity:    quantity,
		UpdatedAt:   r.view.store.now().UTC(),
	}
	return nil
}

// ListByItem saldos del artículo en todas las bodegas.
func (r *StockRepo) ListByItem(_ context.Context, itemID int64) ([]*entity.StockSummaryRow, error) {
	rows := r.view.snapshotStock(func(k stockKey) bool { return k.itemID == itemID })
	return r.summary(rows), nil
}

// ListByWarehouse saldos de todos los artículos de la bodega.
func (r *StockRepo) ListByWarehouse(_ context.Context, warehouseID int64, limit, offset int) ([]*entity.StockSummaryRow, error) {
	rows := r.view.snapshotStock(func(k stockKey) bool { return k.warehouseID == warehouseID })
	return r.summary(window(rows, limit, offset)), nil
}

func (r *StockRepo) summary(rows []entity.StockBalance) []*entity.StockSummaryRow {
	s := r.view.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.StockSummaryRow, 0, len(rows))
	for _, b := range rows {
		row := &entity.StockSummaryRow{
			WarehouseID: b.WarehouseID,
			ItemID:      b.ItemID,
			Quantity:    b.Quantity,
			UpdatedAt:   b.UpdatedAt,
		}
		if wh, ok := s.warehouses[b.WarehouseID]; ok {
			row.WarehouseName = wh.Name
		}
		if it, ok := s.items[b.ItemID]; ok {
			row.ItemName = it.Name
		}
		out = append(out, row)
	}
	return out
}
