package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)

// ExchangeRateRepo fila única (id = 1) de exchange_rate.
type ExchangeRateRepo struct {
	q Querier
}

// NewExchangeRateRepository construye el adaptador.
func NewExchangeRateRepository(q Querier) *ExchangeRateRepo {
	return &ExchangeRateRepo{q: q}
}

// Get devuelve la tasa vigente; nil, nil si la fila no existe.
func (r *ExchangeRateRepo) Get(ctx context.Context) (*entity.ExchangeRate, error) {
	var er entity.ExchangeRate
	err := r.q.QueryRow(ctx, `SELECT rate, updated_at FROM exchange_rate WHERE id = 1`).Scan(&er.Rate, &er.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exchange rate: %w", err)
	}
	return &er, nil
}

// Set reemplaza la tasa (upsert de la fila única).
func (r *ExchangeRateRepo) Set(ctx context.Context, rate *entity.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rate (id, rate, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, rate.Rate, rate.UpdatedAt); err != nil {
		return fmt.Errorf("set exchange rate: %w", err)
	}
	return nil
}
