package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para artículos del catálogo.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id int64) (*entity.Item, error)
	// GetByIDs devuelve los artículos encontrados indexados por ID (los faltantes no aparecen).
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Item, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
}
