package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovement registro del diario de inventario: una fila por cada delta aplicado al ledger.
// TransactionID agrupa las filas de una misma transición.
type StockMovement struct {
	ID            string
	TransactionID string
	DocumentID    int64
	DocumentKind  DocumentKind
	DocumentCode  string
	WarehouseID   int64
	ItemID        int64
	Quantity      decimal.Decimal // positivo entrada, negativo salida
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}
