package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        int64
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item artículo del catálogo. El stock se maneja por bodega en StockBalance.
type Item struct {
	ID        int64
	Code      string
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExchangeRate tasa de cambio vigente (fila única).
type ExchangeRate struct {
	Rate      decimal.Decimal // 4 decimales
	UpdatedAt time.Time
}
