package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalanceResponse saldo de un artículo en una bodega.
type StockBalanceResponse struct {
	WarehouseID   int64           `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	ItemID        int64           `json:"item_id"`
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StockSummaryResponse resumen de stock por artículo o por bodega.
type StockSummaryResponse struct {
	ItemID      int64                  `json:"item_id,omitempty"`
	WarehouseID int64                  `json:"warehouse_id,omitempty"`
	Total       decimal.Decimal        `json:"total"`
	Balances    []StockBalanceResponse `json:"balances"`
	Page        *PageResponse          `json:"page,omitempty"`
}

// StockMovementResponse fila del diario de movimientos.
type StockMovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	DocumentID    int64           `json:"document_id"`
	DocumentKind  string          `json:"document_kind"`
	DocumentCode  string          `json:"document_code"`
	WarehouseID   int64           `json:"warehouse_id"`
	ItemID        int64           `json:"item_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StockMovementListResponse lista paginada de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ExchangeRateRequest body para PUT /api/exchange-rate.
type ExchangeRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// ExchangeRateResponse tasa vigente.
type ExchangeRateResponse struct {
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}
