package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Los errores de dominio se devuelven intactos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// SummaryCache caché de resúmenes de stock. scope identifica el artículo o la bodega
// ("item:7", "warehouse:3"); field distingue páginas dentro del mismo scope.
// Cada scope lleva una generación que Invalidate incrementa: Set solo escribe si la
// generación sigue siendo la leída con Generation antes de consultar el store.
type SummaryCache interface {
	Get(ctx context.Context, scope, field string) (*dto.StockSummaryResponse, bool, error)
	Generation(ctx context.Context, scope string) (int64, error)
	Set(ctx context.Context, scope, field string, generation int64, summary *dto.StockSummaryResponse) error
	Invalidate(ctx context.Context, scopes ...string) error
}
