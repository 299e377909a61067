package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ExchangeRateRepository fila única con la tasa de cambio vigente.
type ExchangeRateRepository interface {
	Get(ctx context.Context) (*entity.ExchangeRate, error)
	Set(ctx context.Context, rate *entity.ExchangeRate) error
}
