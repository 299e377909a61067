package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ValidationResult resultado de validar disponibilidad en una bodega.
type ValidationResult struct {
	WarehouseID int64
	Shortages   []domain.Shortage
}

// OK indica que todas las líneas tienen stock suficiente.
func (r ValidationResult) OK() bool { return len(r.Shortages) == 0 }

// Err devuelve *domain.InsufficientStockError con todos los faltantes, o nil.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return &domain.InsufficientStockError{WarehouseID: r.WarehouseID, Shortages: r.Shortages}
}

// StockValidator comprueba que una bodega tenga stock para un conjunto de líneas.
// Solo lee; no modifica saldos.
type StockValidator struct{}

// NewStockValidator construye el validador.
func NewStockValidator() *StockValidator {
	return &StockValidator{}
}

// Validate suma las cantidades por artículo (líneas repetidas cuentan juntas) y compara
// contra el saldo actual. Reporta todos los faltantes, no solo el primero.
// Para que el resultado siga vigente al aplicar, el llamador debe tener las filas bloqueadas.
func (v *StockValidator) Validate(ctx context.Context, stockRepo repository.StockRepository, warehouseID int64, lines []entity.LineItem) (ValidationResult, error) {
	result := ValidationResult{WarehouseID: warehouseID}

	order := make([]int64, 0, len(lines))
	requested := make(map[int64]decimal.Decimal, len(lines))
	names := make(map[int64]string, len(lines))
	for _, l := range lines {
		if _, seen := requested[l.ItemID]; !seen {
			order = append(order, l.ItemID)
			names[l.ItemID] = l.ItemName
		}
		requested[l.ItemID] = requested[l.ItemID].Add(l.Amount)
	}

	for _, itemID := range order {
		available := decimal.Zero
		bal, err := stockRepo.Get(ctx, warehouseID, itemID)
		if err != nil {
			return result, err
		}
		if bal != nil {
			available = bal.Quantity
		}
		if available.LessThan(requested[itemID]) {
			result.Shortages = append(result.Shortages, domain.Shortage{
				ItemID:    itemID,
				ItemName:  names[itemID],
				Requested: requested[itemID],
				Available: available,
			})
		}
	}
	return result, nil
}
