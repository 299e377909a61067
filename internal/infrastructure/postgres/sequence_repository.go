package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// sequences prefijo -> secuencia PostgreSQL. Solo se aceptan prefijos conocidos.
var sequences = map[string]string{
	"EN": "code_seq_en",
	"FV": "code_seq_fv",
	"AJ": "code_seq_aj",
	"TR": "code_seq_tr",
}

// SequenceRepo números de documento vía nextval. nextval no participa del Rollback,
// por eso un número nunca se repite (puede haber huecos).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next devuelve el siguiente número del prefijo.
func (r *SequenceRepo) Next(ctx context.Context, prefix string) (int64, error) {
	seq, ok := sequences[prefix]
	if !ok {
		return 0, fmt.Errorf("%w: prefijo sin secuencia %q", domain.ErrInvalidInput, prefix)
	}
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval($1::regclass)`, seq).Scan(&n); err != nil {
		return 0, persistenceError("nextval "+seq, err)
	}
	return n, nil
}
