package entity_test

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func legsAsStrings(legs []entity.StockLeg) [][3]string {
	out := make([][3]string, 0, len(legs))
	for _, l := range legs {
		out = append(out, [3]string{
			strconv.FormatInt(l.WarehouseID, 10),
			strconv.FormatInt(l.ItemID, 10),
			l.Delta.String(),
		})
	}
	return out
}

func TestDocument_Effect(t *testing.T) {
	tests := []struct {
		doc  entity.Document
		want entity.Effect
	}{
		{entity.Document{Kind: entity.KindEntry}, entity.EffectIncrement},
		{entity.Document{Kind: entity.KindInvoice}, entity.EffectDecrement},
		{entity.Document{Kind: entity.KindAdjustment, AdjustmentType: entity.AdjustmentIncrease}, entity.EffectIncrement},
		{entity.Document{Kind: entity.KindAdjustment, AdjustmentType: entity.AdjustmentDecrease}, entity.EffectDecrement},
		{entity.Document{Kind: entity.KindTransfer}, entity.EffectMove},
	}
	for _, tt := range tests {
		t.Run(string(tt.doc.Kind)+"/"+tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.Effect())
		})
	}
}

func TestDocument_LegsAgregaYOrdena(t *testing.T) {
	doc := entity.Document{
		Kind:                   entity.KindTransfer,
		WarehouseID:            5,
		DestinationWarehouseID: 2,
		Lines: []entity.LineItem{
			{ItemID: 9, Amount: d("1.5")},
			{ItemID: 3, Amount: d("2")},
			{ItemID: 9, Amount: d("0.5")},
		},
	}

	applied := legsAsStrings(doc.Legs(entity.StatusApplied))
	assert.Equal(t, [][3]string{
		{"2", "3", "2"},
		{"2", "9", "2"},
		{"5", "3", "-2"},
		{"5", "9", "-2"},
	}, applied)

	reverted := legsAsStrings(doc.Legs(entity.StatusPending))
	assert.Equal(t, [][3]string{
		{"2", "3", "-2"},
		{"2", "9", "-2"},
		{"5", "3", "2"},
		{"5", "9", "2"},
	}, reverted)
}

func TestDocument_DecreasedWarehouse(t *testing.T) {
	tr := entity.Document{Kind: entity.KindTransfer, WarehouseID: 1, DestinationWarehouseID: 2}
	wh, ok := tr.DecreasedWarehouse(entity.StatusApplied)
	require.True(t, ok)
	assert.Equal(t, int64(1), wh)
	wh, ok = tr.DecreasedWarehouse(entity.StatusPending)
	require.True(t, ok)
	assert.Equal(t, int64(2), wh)

	entry := entity.Document{Kind: entity.KindEntry, WarehouseID: 1}
	_, ok = entry.DecreasedWarehouse(entity.StatusApplied)
	assert.False(t, ok, "aplicar una entrada no descuenta stock")

	inv := entity.Document{Kind: entity.KindInvoice, WarehouseID: 3}
	_, ok = inv.DecreasedWarehouse(entity.StatusPending)
	assert.False(t, ok, "despagar una factura solo devuelve stock")
}

func TestDocument_Validate(t *testing.T) {
	ok := entity.Document{
		Kind:        entity.KindInvoice,
		WarehouseID: 1,
		Lines:       []entity.LineItem{{ItemID: 1, Amount: d("1.25"), UnitPrice: d("10")}},
	}
	require.NoError(t, ok.Validate())
	assert.True(t, ok.NetTotal().Equal(d("12.5")))

	bad := ok
	bad.Lines = []entity.LineItem{{ItemID: 1, Amount: d("-1")}}
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidInput)

	bad.Lines = []entity.LineItem{{ItemID: 1, Amount: d("1"), UnitPrice: d("-0.01")}}
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidInput)
}

func TestDocument_ValidateTopeNumeric(t *testing.T) {
	doc := entity.Document{Kind: entity.KindEntry, WarehouseID: 1}

	doc.Lines = []entity.LineItem{{ItemID: 1, Amount: entity.MaxAmount}}
	require.NoError(t, doc.Validate(), "el máximo de NUMERIC(14,2) es válido")

	tests := []struct {
		name  string
		lines []entity.LineItem
	}{
		{"cantidad 1e12", []entity.LineItem{{ItemID: 1, Amount: d("1000000000000")}}},
		{"precio 1e12", []entity.LineItem{{ItemID: 1, Amount: d("1"), UnitPrice: d("1000000000000")}}},
		{"líneas repetidas suman más del tope", []entity.LineItem{
			{ItemID: 1, Amount: d("600000000000")},
			{ItemID: 1, Amount: d("600000000000")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc.Lines = tt.lines
			assert.ErrorIs(t, doc.Validate(), domain.ErrInvalidInput)
		})
	}
}

func TestDocumentKind_PrefijoYReversa(t *testing.T) {
	for _, k := range entity.Kinds {
		assert.Len(t, k.Prefix(), 2)
	}
	assert.False(t, entity.KindEntry.Reversible())
	assert.True(t, entity.KindInvoice.Reversible())
	assert.False(t, entity.DocumentKind("x").Valid())
}
