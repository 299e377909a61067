package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository    = (*WarehouseRepo)(nil)
	_ repository.ItemRepository         = (*ItemRepo)(nil)
	_ repository.SequenceRepository     = (*SequenceRepo)(nil)
	_ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)
)

// WarehouseRepo bodegas.
type WarehouseRepo struct {
	store *Store
}

// Create asigna ID; el código debe ser único.
func (r *WarehouseRepo) Create(_ context.Context, wh *entity.Warehouse) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.warehouses {
		if wh.Code != "" && w.Code == wh.Code {
			return fmt.Errorf("%w: bodega con código %s", domain.ErrDuplicate, wh.Code)
		}
	}
	s.lastWarehouseID++
	wh.ID = s.lastWarehouseID
	now := s.now().UTC()
	wh.CreatedAt, wh.UpdatedAt = now, now
	c := *wh
	s.warehouses[wh.ID] = &c
	return nil
}

// GetByID nil, nil si no existe.
func (r *WarehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	wh, ok := s.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *wh
	return &c, nil
}

// List bodegas ordenadas por ID.
func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*entity.Warehouse, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		c := *w
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return window(list, limit, offset), nil
}

// ItemRepo artículos del catálogo.
type ItemRepo struct {
	store *Store
}

// Create asigna ID; el código debe ser único.
func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if item.Code != "" && it.Code == item.Code {
			return fmt.Errorf("%w: artículo con código %s", domain.ErrDuplicate, item.Code)
		}
	}
	s.lastItemID++
	item.ID = s.lastItemID
	now := s.now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	c := *item
	s.items[item.ID] = &c
	return nil
}

// GetByID nil, nil si no existe.
func (r *ItemRepo) GetByID(_ context.Context, id int64) (*entity.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	c := *it
	return &c, nil
}

// GetByIDs artículos existentes indexados por ID.
func (r *ItemRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]*entity.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]*entity.Item, len(ids))
	for _, id := range ids {
		if it, ok := s.items[id]; ok {
			c := *it
			out[id] = &c
		}
	}
	return out, nil
}

// List artículos ordenados por ID.
func (r *ItemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*entity.Item, 0, len(s.items))
	for _, it := range s.items {
		c := *it
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return window(list, limit, offset), nil
}

// SequenceRepo contadores por prefijo. No participan de las transacciones: un número
// entregado no se devuelve aunque el documento no llegue a guardarse.
type SequenceRepo struct {
	store *Store
}

// Next incrementa y devuelve el contador del prefijo.
func (r *SequenceRepo) Next(_ context.Context, prefix string) (int64, error) {
	s := r.store
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.seqs[prefix]++
	return s.seqs[prefix], nil
}

// ExchangeRateRepo tasa vigente.
type ExchangeRateRepo struct {
	store *Store
}

// Get devuelve una copia de la tasa.
func (r *ExchangeRateRepo) Get(_ context.Context) (*entity.ExchangeRate, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rate == nil {
		return nil, nil
	}
	c := *s.rate
	return &c, nil
}

// Set reemplaza la tasa.
func (r *ExchangeRateRepo) Set(_ context.Context, rate *entity.ExchangeRate) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *rate
	s.rate = &c
	return nil
}

// window aplica limit/offset sobre una lista ya ordenada. limit <= 0 devuelve todo.
func window[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	if offset > 0 {
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
