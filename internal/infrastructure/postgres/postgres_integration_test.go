package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test (requieren TEST_DATABASE_URL; se omiten si no está definido)
// ──────────────────────────────────────────────────────────────────────────────

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido; se omiten tests de PostgreSQL")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	if err != nil {
		t.Skipf("PostgreSQL no disponible: %v", err)
	}
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

type pgFixture struct {
	uc   *inventory.DocumentUseCase
	pool *pgxpool.Pool
	w1   int64
	w2   int64
	item int64
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	pool := setupPool(t)
	ctx := context.Background()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	warehouses := postgres.NewWarehouseRepository(pool)
	items := postgres.NewItemRepository(pool)
	w1 := &entity.Warehouse{Code: "W1-" + suffix[len(suffix)-12:], Name: "Principal"}
	w2 := &entity.Warehouse{Code: "W2-" + suffix[len(suffix)-12:], Name: "Norte"}
	require.NoError(t, warehouses.Create(ctx, w1))
	require.NoError(t, warehouses.Create(ctx, w2))
	it := &entity.Item{Code: "IT-" + suffix, Name: "Tornillo", Price: decimal.RequireFromString("2.50")}
	require.NoError(t, items.Create(ctx, it))

	uc := inventory.NewDocumentUseCase(inventory.Deps{
		TxRunner:      postgres.NewTxRunner(pool, 2*time.Second, 5*time.Second),
		DocumentRepo:  postgres.NewDocumentRepository(pool),
		StockRepo:     postgres.NewStockRepository(pool),
		MovementRepo:  postgres.NewStockMovementRepository(pool),
		WarehouseRepo: warehouses,
		ItemRepo:      items,
		SequenceRepo:  postgres.NewSequenceRepository(pool),
		RateRepo:      postgres.NewExchangeRateRepository(pool),
	})
	return &pgFixture{uc: uc, pool: pool, w1: w1.ID, w2: w2.ID, item: it.ID}
}

func (f *pgFixture) doc(t *testing.T, kind string, wh int64, qty string) *dto.DocumentResponse {
	t.Helper()
	d, err := f.uc.CreateDocument(context.Background(), dto.CreateDocumentRequest{
		Kind:        kind,
		WarehouseID: wh,
		Items:       []dto.LineItemRequest{{ItemID: f.item, Amount: decimal.RequireFromString(qty)}},
	})
	require.NoError(t, err)
	return d
}

func (f *pgFixture) balance(t *testing.T, wh int64) decimal.Decimal {
	t.Helper()
	bal, err := postgres.NewStockRepository(f.pool).Get(context.Background(), wh, f.item)
	require.NoError(t, err)
	return bal.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_EntradaYFacturaRoundTrip(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	entry := f.doc(t, "entry", f.w1, "30")
	_, err := f.uc.TransitionDocument(ctx, entry.ID, "applied")
	require.NoError(t, err)
	assert.True(t, f.balance(t, f.w1).Equal(decimal.NewFromInt(30)))

	inv := f.doc(t, "invoice", f.w1, "50")
	_, err = f.uc.TransitionDocument(ctx, inv.ID, "applied")
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "50.00", ise.Shortages[0].Requested.StringFixed(2))
	assert.Equal(t, "30.00", ise.Shortages[0].Available.StringFixed(2))

	small := f.doc(t, "invoice", f.w1, "12.5")
	_, err = f.uc.TransitionDocument(ctx, small.ID, "applied")
	require.NoError(t, err)
	assert.True(t, f.balance(t, f.w1).Equal(decimal.RequireFromString("17.5")))
	_, err = f.uc.TransitionDocument(ctx, small.ID, "pending")
	require.NoError(t, err)
	assert.True(t, f.balance(t, f.w1).Equal(decimal.NewFromInt(30)))

	got, err := f.uc.GetDocument(ctx, small.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "Tornillo", got.Items[0].ItemName)
}

func TestPostgres_SalidasConcurrentes(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	entry := f.doc(t, "entry", f.w1, "10")
	_, err := f.uc.TransitionDocument(ctx, entry.ID, "applied")
	require.NoError(t, err)

	a := f.doc(t, "invoice", f.w1, "7")
	b := f.doc(t, "invoice", f.w1, "6")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = f.uc.TransitionDocument(ctx, id, "applied")
		}(i, id)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.False(t, f.balance(t, f.w1).IsNegative())
}

func TestPostgres_TrasladoAtomico(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	entry := f.doc(t, "entry", f.w1, "50")
	_, err := f.uc.TransitionDocument(ctx, entry.ID, "applied")
	require.NoError(t, err)

	tr, err := f.uc.CreateDocument(ctx, dto.CreateDocumentRequest{
		Kind:                   "transfer",
		WarehouseID:            f.w1,
		DestinationWarehouseID: f.w2,
		Items:                  []dto.LineItemRequest{{ItemID: f.item, Amount: decimal.NewFromInt(20)}},
	})
	require.NoError(t, err)
	_, err = f.uc.TransitionDocument(ctx, tr.ID, "applied")
	require.NoError(t, err)
	assert.True(t, f.balance(t, f.w1).Equal(decimal.NewFromInt(30)))
	assert.True(t, f.balance(t, f.w2).Equal(decimal.NewFromInt(20)))
}

func TestPostgres_SecuenciaSinRepetidos(t *testing.T) {
	pool := setupPool(t)
	seq := postgres.NewSequenceRepository(pool)
	ctx := context.Background()

	a, err := seq.Next(ctx, "AJ")
	require.NoError(t, err)
	b, err := seq.Next(ctx, "AJ")
	require.NoError(t, err)
	assert.Greater(t, b, a)

	_, err = seq.Next(ctx, "ZZ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
