package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance stock disponible de un artículo en una bodega.
// Se crea en 0 al primer uso y solo se modifica vía StockLedger.Apply.
type StockBalance struct {
	WarehouseID int64
	ItemID      int64
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// StockSummaryRow fila del resumen de stock (con nombres para lectura).
type StockSummaryRow struct {
	WarehouseID   int64
	WarehouseName string
	ItemID        int64
	ItemName      string
	Quantity      decimal.Decimal
	UpdatedAt     time.Time
}
