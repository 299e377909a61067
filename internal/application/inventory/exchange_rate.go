package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ExchangeRateStore guarda la tasa de cambio vigente (un solo valor global, 4 decimales).
// La usan los totales de factura.
type ExchangeRateStore struct {
	repo repository.ExchangeRateRepository
	now  func() time.Time
}

// NewExchangeRateStore construye el store.
func NewExchangeRateStore(repo repository.ExchangeRateRepository) *ExchangeRateStore {
	return &ExchangeRateStore{repo: repo, now: time.Now}
}

// Current devuelve la tasa vigente.
func (s *ExchangeRateStore) Current(ctx context.Context) (*entity.ExchangeRate, error) {
	rate, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, fmt.Errorf("%w: tasa de cambio no configurada", domain.ErrNotFound)
	}
	return rate, nil
}

// Update reemplaza la tasa. Rechaza valores <= 0 con *domain.InvalidRateError.
func (s *ExchangeRateStore) Update(ctx context.Context, rate decimal.Decimal) (*entity.ExchangeRate, error) {
	if !rate.IsPositive() {
		return nil, &domain.InvalidRateError{Rate: rate}
	}
	er := &entity.ExchangeRate{Rate: rate.Round(4), UpdatedAt: s.now().UTC()}
	if er.Rate.IsZero() {
		return nil, &domain.InvalidRateError{Rate: rate}
	}
	if err := s.repo.Set(ctx, er); err != nil {
		return nil, err
	}
	return er, nil
}

// Convert multiplica amount por la tasa vigente (resultado a 2 decimales).
func (s *ExchangeRateStore) Convert(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	rate, err := s.Current(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return amount.Mul(rate.Rate).Round(2), rate.Rate, nil
}
