package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para documentos y sus líneas (cascada).
type DocumentRepository interface {
	// Create persiste cabecera y líneas; asigna doc.ID y los IDs de línea.
	Create(ctx context.Context, doc *entity.Document) error
	// GetByID devuelve el documento con sus líneas; nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Document, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Document, error)
	// UpdateStatus cambia el estado solo si el actual es from; domain.ErrConflict si no.
	UpdateStatus(ctx context.Context, id int64, from, to entity.DocumentStatus, at time.Time) error
}
