package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest línea en el body de creación de documento.
type LineItemRequest struct {
	ItemID    int64           `json:"item_id"`
	Amount    decimal.Decimal `json:"amount"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateDocumentRequest body para POST /api/documents.
// warehouse_id es destino en entradas y origen en traslados.
type CreateDocumentRequest struct {
	Kind                   string            `json:"kind"`
	WarehouseID            int64             `json:"warehouse_id"`
	DestinationWarehouseID int64             `json:"destination_warehouse_id,omitempty"`
	AdjustmentType         string            `json:"adjustment_type,omitempty"`
	Notes                  string            `json:"notes,omitempty"`
	Items                  []LineItemRequest `json:"items"`
}

// TransitionRequest body para POST /api/documents/:id/transition.
type TransitionRequest struct {
	Status string `json:"status"`
}

// LineItemResponse línea de documento.
type LineItemResponse struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Amount    decimal.Decimal `json:"amount"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal,omitempty"`
}

// TotalsResponse totales de factura: neto y convertido con la tasa vigente.
type TotalsResponse struct {
	NetTotal       decimal.Decimal `json:"net_total"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	ConvertedTotal decimal.Decimal `json:"converted_total"`
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID                     int64              `json:"id"`
	Kind                   string             `json:"kind"`
	Code                   string             `json:"code"`
	Status                 string             `json:"status"`
	WarehouseID            int64              `json:"warehouse_id"`
	DestinationWarehouseID int64              `json:"destination_warehouse_id,omitempty"`
	AdjustmentType         string             `json:"adjustment_type,omitempty"`
	Notes                  string             `json:"notes,omitempty"`
	Items                  []LineItemResponse `json:"items"`
	Totals                 *TotalsResponse    `json:"totals,omitempty"`
	AppliedAt              *time.Time         `json:"applied_at,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}
