package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.DocumentRepository      = (*DocumentRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
)

// DocumentRepo documentos con sus líneas.
type DocumentRepo struct {
	view *txView
}

// Create asigna IDs a cabecera y líneas y guarda una copia.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if !r.view.inTx() {
		return r.view.store.autocommit(func(tx *txView) error {
			return (&DocumentRepo{view: tx}).Create(ctx, doc)
		})
	}
	r.view.lastDocID++
	doc.ID = r.view.lastDocID
	for i := range doc.Lines {
		r.view.lastLine++
		doc.Lines[i].ID = r.view.lastLine
		doc.Lines[i].DocumentID = doc.ID
	}
	r.view.docs[doc.ID] = cloneDoc(doc)
	return nil
}

// GetByID nil, nil si no existe.
func (r *DocumentRepo) GetByID(_ context.Context, id int64) (*entity.Document, error) {
	return cloneDoc(r.view.getDoc(id)), nil
}

// GetForUpdate igual que GetByID; el bloqueo lo da Store.Run.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

// UpdateStatus cambia el estado si el actual es from.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id int64, from, to entity.DocumentStatus, at time.Time) error {
	if !r.view.inTx() {
		return r.view.store.autocommit(func(tx *txView) error {
			return (&DocumentRepo{view: tx}).UpdateStatus(ctx, id, from, to, at)
		})
	}
	cur := r.view.getDoc(id)
	if cur == nil {
		return &domain.NotFoundError{Resource: "documento", ID: id}
	}
	if cur.Status != from {
		return fmt.Errorf("%w: documento %d está en %s, se esperaba %s", domain.ErrConflict, id, cur.Status, from)
	}
	next := cloneDoc(cur)
	next.Status = to
	next.UpdatedAt = at
	if to == entity.StatusApplied {
		applied := at
		next.AppliedAt = &applied
	} else {
		next.AppliedAt = nil
	}
	r.view.docs[id] = next
	return nil
}

// MovementRepo diario de movimientos (solo inserción).
type MovementRepo struct {
	view *txView
}

// Create agrega la fila al diario.
func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if !r.view.inTx() {
		return r.view.store.autocommit(func(tx *txView) error {
			return (&MovementRepo{view: tx}).Create(ctx, m)
		})
	}
	c := *m
	r.view.movements = append(r.view.movements, &c)
	return nil
}

// List filtra el diario confirmado, del más reciente al más antiguo.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	s := r.view.store
	s.mu.RLock()
	all := make([]*entity.StockMovement, 0, len(s.movements))
	for i := len(s.movements) - 1; i >= 0; i-- {
		all = append(all, s.movements[i])
	}
	s.mu.RUnlock()

	out := make([]*entity.StockMovement, 0)
	for _, m := range all {
		if f.ItemID > 0 && m.ItemID != f.ItemID {
			continue
		}
		if f.WarehouseID > 0 && m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.DocumentID > 0 && m.DocumentID != f.DocumentID {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, f.Limit, f.Offset), nil
}
