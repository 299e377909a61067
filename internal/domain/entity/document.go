package entity

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// DocumentKind tipo de documento que mueve inventario.
type DocumentKind string

const (
	KindEntry      DocumentKind = "entry"      // entrada
	KindInvoice    DocumentKind = "invoice"    // factura (salida al pagar)
	KindAdjustment DocumentKind = "adjustment" // ajuste manual +/-
	KindTransfer   DocumentKind = "transfer"   // traslado entre bodegas
)

// Kinds lista los tipos soportados en orden estable.
var Kinds = []DocumentKind{KindEntry, KindInvoice, KindAdjustment, KindTransfer}

// Valid indica si el tipo es conocido.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindEntry, KindInvoice, KindAdjustment, KindTransfer:
		return true
	}
	return false
}

// Prefix prefijo del código del documento (ej: FV-00000001).
func (k DocumentKind) Prefix() string {
	switch k {
	case KindEntry:
		return "EN"
	case KindInvoice:
		return "FV"
	case KindAdjustment:
		return "AJ"
	case KindTransfer:
		return "TR"
	}
	return ""
}

// Reversible indica si Applied -> Pending está soportado.
// Las entradas son de una sola vía.
func (k DocumentKind) Reversible() bool {
	return k != KindEntry
}

// DocumentStatus estado unificado para todos los tipos de documento.
type DocumentStatus string

const (
	StatusPending DocumentStatus = "pending"
	StatusApplied DocumentStatus = "applied"
)

// Valid indica si el estado es conocido.
func (s DocumentStatus) Valid() bool {
	return s == StatusPending || s == StatusApplied
}

// AdjustmentType dirección de un ajuste.
type AdjustmentType string

const (
	AdjustmentIncrease AdjustmentType = "increase"
	AdjustmentDecrease AdjustmentType = "decrease"
)

// Effect estrategia de efecto sobre el ledger al aplicar un documento.
type Effect int

const (
	EffectIncrement Effect = iota + 1 // suma en la bodega del documento
	EffectDecrement                   // resta en la bodega del documento
	EffectMove                        // resta en origen y suma en destino
)

func (e Effect) String() string {
	switch e {
	case EffectIncrement:
		return "increment"
	case EffectDecrement:
		return "decrement"
	case EffectMove:
		return "move"
	}
	return "unknown"
}

// MaxAmount mayor valor que cabe en NUMERIC(14,2): tope de cantidades, precios y saldos.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// LineItem línea de un documento. Inmutable una vez aplicado el documento.
type LineItem struct {
	ID         int64
	DocumentID int64
	Position   int
	ItemID     int64
	ItemName   string          // solo lectura (JOIN con items)
	Amount     decimal.Decimal // > 0, máximo 2 decimales
	UnitPrice  decimal.Decimal // solo facturas
}

// Subtotal amount * unit_price.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Amount.Mul(l.UnitPrice)
}

// Document cabecera común a entradas, facturas, ajustes y traslados.
// WarehouseID es la bodega destino en entradas y la bodega origen en traslados.
type Document struct {
	ID                     int64
	Kind                   DocumentKind
	Code                   string
	Status                 DocumentStatus
	WarehouseID            int64
	DestinationWarehouseID int64 // solo traslados
	AdjustmentType         AdjustmentType
	Notes                  string
	Lines                  []LineItem
	AppliedAt              *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Effect devuelve la estrategia de ledger según el tipo.
func (d *Document) Effect() Effect {
	switch d.Kind {
	case KindEntry:
		return EffectIncrement
	case KindInvoice:
		return EffectDecrement
	case KindAdjustment:
		if d.AdjustmentType == AdjustmentDecrease {
			return EffectDecrement
		}
		return EffectIncrement
	case KindTransfer:
		return EffectMove
	}
	return 0
}

// WarehouseIDs bodegas referenciadas por el documento.
func (d *Document) WarehouseIDs() []int64 {
	if d.Kind == KindTransfer {
		return []int64{d.WarehouseID, d.DestinationWarehouseID}
	}
	return []int64{d.WarehouseID}
}

// Validate verifica la cabecera y las líneas antes de persistir.
func (d *Document) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, d.Kind)
	}
	if d.WarehouseID <= 0 {
		return fmt.Errorf("%w: warehouse_id requerido", domain.ErrInvalidInput)
	}
	switch d.Kind {
	case KindTransfer:
		if d.DestinationWarehouseID <= 0 {
			return fmt.Errorf("%w: destination_warehouse_id requerido", domain.ErrInvalidInput)
		}
		if d.DestinationWarehouseID == d.WarehouseID {
			return fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
		}
	case KindAdjustment:
		if d.AdjustmentType != AdjustmentIncrease && d.AdjustmentType != AdjustmentDecrease {
			return fmt.Errorf("%w: adjustment_type debe ser increase o decrease", domain.ErrInvalidInput)
		}
	}
	for i, l := range d.Lines {
		if l.ItemID <= 0 {
			return fmt.Errorf("%w: línea %d sin item_id", domain.ErrInvalidInput, i+1)
		}
		if !l.Amount.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: línea %d cantidad debe ser mayor que cero", domain.ErrInvalidInput, i+1)
		}
		if !l.Amount.Equal(l.Amount.Round(2)) {
			return fmt.Errorf("%w: línea %d cantidad admite máximo 2 decimales", domain.ErrInvalidInput, i+1)
		}
		if l.Amount.GreaterThan(MaxAmount) {
			return fmt.Errorf("%w: línea %d cantidad excede %s", domain.ErrInvalidInput, i+1, MaxAmount)
		}
		if l.UnitPrice.LessThan(decimal.Zero) {
			return fmt.Errorf("%w: línea %d precio negativo", domain.ErrInvalidInput, i+1)
		}
		if l.UnitPrice.GreaterThan(MaxAmount) {
			return fmt.Errorf("%w: línea %d precio excede %s", domain.ErrInvalidInput, i+1, MaxAmount)
		}
	}
	for _, leg := range d.Legs(StatusApplied) {
		if leg.Delta.Abs().GreaterThan(MaxAmount) {
			return fmt.Errorf("%w: cantidad total del artículo %d excede %s", domain.ErrInvalidInput, leg.ItemID, MaxAmount)
		}
	}
	return nil
}

// NetTotal suma de subtotales de las líneas (redondeado a 2 decimales).
func (d *Document) NetTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// StockLeg delta firmado sobre un saldo (bodega, artículo).
type StockLeg struct {
	WarehouseID int64
	ItemID      int64
	Delta       decimal.Decimal
}

// Legs calcula los deltas de la transición hacia target, agregados por (bodega, artículo)
// y ordenados por (warehouse_id, item_id). El orden fijo es el orden de bloqueo de filas.
func (d *Document) Legs(target DocumentStatus) []StockLeg {
	sign := decimal.NewFromInt(1)
	if target == StatusPending {
		sign = sign.Neg()
	}

	type key struct{ wh, item int64 }
	acc := make(map[key]decimal.Decimal)
	add := func(wh, item int64, delta decimal.Decimal) {
		k := key{wh, item}
		acc[k] = acc[k].Add(delta)
	}

	effect := d.Effect()
	for _, l := range d.Lines {
		amount := l.Amount.Mul(sign)
		switch effect {
		case EffectIncrement:
			add(d.WarehouseID, l.ItemID, amount)
		case EffectDecrement:
			add(d.WarehouseID, l.ItemID, amount.Neg())
		case EffectMove:
			add(d.WarehouseID, l.ItemID, amount.Neg())
			add(d.DestinationWarehouseID, l.ItemID, amount)
		}
	}

	legs := make([]StockLeg, 0, len(acc))
	for k, delta := range acc {
		if delta.IsZero() {
			continue
		}
		legs = append(legs, StockLeg{WarehouseID: k.wh, ItemID: k.item, Delta: delta})
	}
	sort.Slice(legs, func(i, j int) bool {
		if legs[i].WarehouseID != legs[j].WarehouseID {
			return legs[i].WarehouseID < legs[j].WarehouseID
		}
		return legs[i].ItemID < legs[j].ItemID
	})
	return legs
}

// DecreasedWarehouse bodega cuyo stock disminuye en la transición hacia target, si existe.
func (d *Document) DecreasedWarehouse(target DocumentStatus) (int64, bool) {
	applying := target == StatusApplied
	switch d.Effect() {
	case EffectIncrement:
		if !applying {
			return d.WarehouseID, true
		}
	case EffectDecrement:
		if applying {
			return d.WarehouseID, true
		}
	case EffectMove:
		if applying {
			return d.WarehouseID, true
		}
		return d.DestinationWarehouseID, true
	}
	return 0, false
}
