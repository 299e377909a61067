package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct{ warehouseID, itemID int64 }

// Store implementación en memoria de todos los repositorios, para desarrollo y tests.
// Las transacciones se serializan con txMu (un solo escritor a la vez); los cambios de una
// transacción viven en un overlay y se vuelcan al estado base solo si fn no devuelve error.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	warehouses map[int64]*entity.Warehouse
	items      map[int64]*entity.Item
	stock      map[stockKey]entity.StockBalance
	docs       map[int64]*entity.Document
	movements  []*entity.StockMovement
	rate       *entity.ExchangeRate

	lastWarehouseID int64
	lastItemID      int64
	lastDocID       int64
	lastLineID      int64

	seqMu sync.Mutex
	seqs  map[string]int64

	now func() time.Time
}

// NewStore crea un store vacío con la tasa de cambio inicial en 1.0000.
func NewStore() *Store {
	now := time.Now().UTC()
	return &Store{
		warehouses: make(map[int64]*entity.Warehouse),
		items:      make(map[int64]*entity.Item),
		stock:      make(map[stockKey]entity.StockBalance),
		docs:       make(map[int64]*entity.Document),
		rate:       &entity.ExchangeRate{Rate: decimal.NewFromInt(1), UpdatedAt: now},
		seqs:       make(map[string]int64),
		now:        time.Now,
	}
}

// Run ejecuta fn con repositorios atados a un overlay. Commit si fn devuelve nil; si no,
// el overlay se descarta y el estado queda como antes.
func (s *Store) Run(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.newTx()
	if err := fn(&DocumentRepo{view: tx}, &StockRepo{view: tx}, &MovementRepo{view: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *Store) newTx() *txView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &txView{
		store:     s,
		stock:     make(map[stockKey]entity.StockBalance),
		docs:      make(map[int64]*entity.Document),
		lastDocID: s.lastDocID,
		lastLine:  s.lastLineID,
	}
}

func (s *Store) commit(tx *txView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range tx.stock {
		s.stock[k] = v
	}
	for id, d := range tx.docs {
		s.docs[id] = d
	}
	s.movements = append(s.movements, tx.movements...)
	s.lastDocID = tx.lastDocID
	s.lastLineID = tx.lastLine
}

// Documents repositorio de documentos fuera de transacción (lecturas).
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{view: s.readView()} }

// Stock repositorio de saldos fuera de transacción (lecturas).
func (s *Store) Stock() *StockRepo { return &StockRepo{view: s.readView()} }

// Movements repositorio del diario fuera de transacción (lecturas).
func (s *Store) Movements() *MovementRepo { return &MovementRepo{view: s.readView()} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{store: s} }

// Items repositorio de artículos.
func (s *Store) Items() *ItemRepo { return &ItemRepo{store: s} }

// Sequences secuencias por prefijo.
func (s *Store) Sequences() *SequenceRepo { return &SequenceRepo{store: s} }

// ExchangeRate repositorio de la tasa vigente.
func (s *Store) ExchangeRate() *ExchangeRateRepo { return &ExchangeRateRepo{store: s} }

// readView vista sin overlay; las escrituras a través de ella se confirman de inmediato
// tomando txMu, igual que una sentencia en autocommit.
func (s *Store) readView() *txView {
	return &txView{store: s}
}

// txView estado visible para una transacción: overlay propio sobre el estado base.
// Con overlay nil (readView) lee el base bajo mu.RLock.
type txView struct {
	store     *Store
	stock     map[stockKey]entity.StockBalance
	docs      map[int64]*entity.Document
	movements []*entity.StockMovement
	lastDocID int64
	lastLine  int64
}

func (v *txView) inTx() bool { return v.stock != nil }

func (v *txView) getStock(k stockKey) (entity.StockBalance, bool) {
	if v.inTx() {
		if b, ok := v.stock[k]; ok {
			return b, true
		}
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	b, ok := v.store.stock[k]
	return b, ok
}

func (v *txView) getDoc(id int64) *entity.Document {
	if v.inTx() {
		if d, ok := v.docs[id]; ok {
			return d
		}
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return v.store.docs[id]
}

// snapshotStock saldos visibles (base + overlay) ordenados por bodega y artículo.
func (v *txView) snapshotStock(match func(stockKey) bool) []entity.StockBalance {
	v.store.mu.RLock()
	merged := make(map[stockKey]entity.StockBalance, len(v.store.stock))
	for k, b := range v.store.stock {
		if match(k) {
			merged[k] = b
		}
	}
	v.store.mu.RUnlock()
	for k, b := range v.stock {
		if match(k) {
			merged[k] = b
		}
	}
	out := make([]entity.StockBalance, 0, len(merged))
	for _, b := range merged {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseID != out[j].WarehouseID {
			return out[i].WarehouseID < out[j].WarehouseID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// autocommit ejecuta una escritura suelta como transacción propia.
func (s *Store) autocommit(fn func(tx *txView) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	tx := s.newTx()
	if err := fn(tx); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func cloneDoc(d *entity.Document) *entity.Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Lines = append([]entity.LineItem(nil), d.Lines...)
	if d.AppliedAt != nil {
		at := *d.AppliedAt
		c.AppliedAt = &at
	}
	return &c
}
