package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// StockLedger
// ──────────────────────────────────────────────────────────────────────────────

func TestStockLedger_Apply(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger(store.Stock())
	ctx := context.Background()

	err := store.Run(ctx, func(_ repository.DocumentRepository, stockRepo repository.StockRepository, _ repository.StockMovementRepository) error {
		bal, err := ledger.Apply(ctx, stockRepo, 1, 1, dec("10"))
		require.NoError(t, err)
		assert.True(t, bal.Equal(dec("10")))

		bal, err = ledger.Apply(ctx, stockRepo, 1, 1, dec("-10"))
		require.NoError(t, err)
		assert.True(t, bal.IsZero(), "llegar exactamente a cero es válido")

		_, err = ledger.Apply(ctx, stockRepo, 1, 1, dec("-0.01"))
		var ise *domain.InsufficientStockError
		require.ErrorAs(t, err, &ise)
		assert.Equal(t, "0.01", ise.Shortages[0].Requested.String())

		_, err = ledger.Apply(ctx, stockRepo, 1, 1, dec("0"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		return nil
	})
	require.NoError(t, err)

	bal, err := ledger.GetAvailable(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestStockLedger_RollbackDescartaCambios(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger(store.Stock())
	ctx := context.Background()
	boom := errors.New("falla simulada")

	err := store.Run(ctx, func(_ repository.DocumentRepository, stockRepo repository.StockRepository, _ repository.StockMovementRepository) error {
		if _, err := ledger.Apply(ctx, stockRepo, 1, 1, dec("5")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	bal, err := ledger.GetAvailable(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestStockLedger_SaldoNoExcedeNumeric(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger(store.Stock())
	ctx := context.Background()

	err := store.Run(ctx, func(_ repository.DocumentRepository, stockRepo repository.StockRepository, _ repository.StockMovementRepository) error {
		bal, err := ledger.Apply(ctx, stockRepo, 1, 1, entity.MaxAmount)
		require.NoError(t, err)
		assert.True(t, bal.Equal(entity.MaxAmount))

		_, err = ledger.Apply(ctx, stockRepo, 1, 1, dec("0.01"))
		return err
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	bal, err := ledger.GetAvailable(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, bal.IsZero(), "la transacción completa se descarta")
}

func TestStockLedger_FaltanteRecibeNombreDesdeLineas(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewStockLedger(store.Stock())
	ctx := context.Background()
	lines := []entity.LineItem{{ItemID: 1, ItemName: "Tornillo", Amount: dec("3")}}

	err := store.Run(ctx, func(_ repository.DocumentRepository, stockRepo repository.StockRepository, _ repository.StockMovementRepository) error {
		_, err := ledger.Apply(ctx, stockRepo, 1, 1, dec("-3"))
		return inventory.WithItemNames(err, lines)
	})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortages, 1)
	assert.Equal(t, int64(1), ise.Shortages[0].ItemID)
	assert.Equal(t, "Tornillo", ise.Shortages[0].ItemName)
	assert.True(t, ise.Shortages[0].Requested.Equal(dec("3")))
	assert.True(t, ise.Shortages[0].Available.IsZero())

	other := errors.New("otra falla")
	assert.Equal(t, other, inventory.WithItemNames(other, lines))
}

// ──────────────────────────────────────────────────────────────────────────────
// StockValidator
// ──────────────────────────────────────────────────────────────────────────────

func TestStockValidator_Validate(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Stock().SetQuantity(ctx, 1, 1, dec("5")))
	require.NoError(t, store.Stock().SetQuantity(ctx, 1, 2, dec("5")))

	v := inventory.NewStockValidator()
	tests := []struct {
		name      string
		lines     []entity.LineItem
		shortages []int64
	}{
		{"alcanza justo", []entity.LineItem{{ItemID: 1, Amount: dec("5")}}, nil},
		{"líneas repetidas se suman", []entity.LineItem{{ItemID: 1, Amount: dec("3")}, {ItemID: 1, Amount: dec("3")}}, []int64{1}},
		{"artículo sin saldo", []entity.LineItem{{ItemID: 3, Amount: dec("1")}}, []int64{3}},
		{"varios faltantes", []entity.LineItem{{ItemID: 2, Amount: dec("6")}, {ItemID: 3, Amount: dec("1")}}, []int64{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate(ctx, store.Stock(), 1, tt.lines)
			require.NoError(t, err)
			got := make([]int64, 0, len(res.Shortages))
			for _, s := range res.Shortages {
				got = append(got, s.ItemID)
			}
			if tt.shortages == nil {
				assert.True(t, res.OK())
				assert.NoError(t, res.Err())
				return
			}
			assert.Equal(t, tt.shortages, got)
			assert.ErrorIs(t, res.Err(), domain.ErrInsufficientStock)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CodeGenerator
// ──────────────────────────────────────────────────────────────────────────────

func TestCodeGenerator_Next(t *testing.T) {
	gen := inventory.NewCodeGenerator(memory.NewStore().Sequences())
	ctx := context.Background()

	code, err := gen.Next(ctx, "FV")
	require.NoError(t, err)
	assert.Equal(t, "FV-00000001", code)

	code, err = gen.Next(ctx, "FV")
	require.NoError(t, err)
	assert.Equal(t, "FV-00000002", code)

	code, err = gen.Next(ctx, "TR")
	require.NoError(t, err)
	assert.Equal(t, "TR-00000001", code, "cada prefijo tiene su secuencia")

	_, err = gen.Next(ctx, "fv")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCodeGenerator_Concurrente(t *testing.T) {
	gen := inventory.NewCodeGenerator(memory.NewStore().Sequences())
	const n = 200

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := gen.Next(context.Background(), "EN")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[code] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "AJ-00000042", inventory.FormatCode("AJ", 42))
	assert.Equal(t, "EN-123456789", inventory.FormatCode("EN", 123456789))
}

// ──────────────────────────────────────────────────────────────────────────────
// ExchangeRateStore
// ──────────────────────────────────────────────────────────────────────────────

func TestExchangeRateStore(t *testing.T) {
	rates := inventory.NewExchangeRateStore(memory.NewStore().ExchangeRate())
	ctx := context.Background()

	cur, err := rates.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0000", cur.Rate.StringFixed(4), "tasa inicial")

	for _, bad := range []string{"0", "-1", "0.00001"} {
		_, err := rates.Update(ctx, dec(bad))
		var ire *domain.InvalidRateError
		require.ErrorAs(t, err, &ire, "tasa %s", bad)
	}

	updated, err := rates.Update(ctx, dec("3950.5"))
	require.NoError(t, err)
	assert.Equal(t, "3950.5000", updated.Rate.StringFixed(4))

	converted, rate, err := rates.Convert(ctx, dec("2"))
	require.NoError(t, err)
	assert.True(t, rate.Equal(dec("3950.5")))
	assert.True(t, converted.Equal(dec("7901")))
}
