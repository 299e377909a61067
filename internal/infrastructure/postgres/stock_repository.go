package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el saldo actual; cantidad 0 si la fila no existe.
func (r *StockRepo) Get(ctx context.Context, warehouseID, itemID int64) (*entity.StockBalance, error) {
	query := `
		SELECT warehouse_id, item_id, quantity, updated_at
		FROM stock WHERE warehouse_id = $1 AND item_id = $2`
	var s entity.StockBalance
	err := r.q.QueryRow(ctx, query, warehouseID, itemID).Scan(
		&s.WarehouseID, &s.ItemID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{WarehouseID: warehouseID, ItemID: itemID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate crea la fila en 0 si no existe y la bloquea (SELECT FOR UPDATE).
// El INSERT ... ON CONFLICT DO NOTHING evita la carrera de dos transacciones creando la misma fila.
func (r *StockRepo) GetForUpdate(ctx context.Context, warehouseID, itemID int64) (*entity.StockBalance, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO stock (warehouse_id, item_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (warehouse_id, item_id) DO NOTHING`, warehouseID, itemID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `
		SELECT warehouse_id, item_id, quantity, updated_at
		FROM stock WHERE warehouse_id = $1 AND item_id = $2
		FOR UPDATE`
	var s entity.StockBalance
	err := r.q.QueryRow(ctx, query, warehouseID, itemID).Scan(
		&s.WarehouseID, &s.ItemID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lock stock: %w", err)
	}
	return &s, nil
}

// SetQuantity fija la cantidad. El CHECK (quantity >= 0) de la tabla respalda al ledger.
func (r *StockRepo) SetQuantity(ctx context.Context, warehouseID, itemID int64, quantity decimal.Decimal) error {
	query := `
		INSERT INTO stock (warehouse_id, item_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (warehouse_id, item_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, warehouseID, itemID, quantity); err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

// ListByItem saldos del artículo en todas las bodegas.
func (r *StockRepo) ListByItem(ctx context.Context, itemID int64) ([]*entity.StockSummaryRow, error) {
	query := `
		SELECT s.warehouse_id, w.name, s.item_id, i.name, s.quantity, s.updated_at
		FROM stock s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN items i ON i.id = s.item_id
		WHERE s.item_id = $1
		ORDER BY s.warehouse_id`
	return r.list(ctx, query, itemID)
}

// ListByWarehouse saldos de todos los artículos de la bodega (paginado).
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID int64, limit, offset int) ([]*entity.StockSummaryRow, error) {
	query := `
		SELECT s.warehouse_id, w.name, s.item_id, i.name, s.quantity, s.updated_at
		FROM stock s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN items i ON i.id = s.item_id
		WHERE s.warehouse_id = $1
		ORDER BY s.item_id
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, warehouseID, limit, offset)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockSummaryRow, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockSummaryRow
	for rows.Next() {
		var s entity.StockSummaryRow
		if err := rows.Scan(&s.WarehouseID, &s.WarehouseName, &s.ItemID, &s.ItemName, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
