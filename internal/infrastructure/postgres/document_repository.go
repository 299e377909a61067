package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
// Cabecera en documents y líneas en document_lines (ON DELETE CASCADE).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, kind, code, status, warehouse_id, COALESCE(destination_warehouse_id, 0),
	COALESCE(adjustment_type, ''), COALESCE(notes, ''), applied_at, created_at, updated_at`

// Create persiste cabecera y líneas; asigna los IDs.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (kind, code, status, warehouse_id, destination_warehouse_id, adjustment_type, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		doc.Kind, doc.Code, doc.Status, doc.WarehouseID, nullIfZero(doc.DestinationWarehouseID),
		nullIfEmpty(string(doc.AdjustmentType)), nullIfEmpty(doc.Notes), doc.CreatedAt, doc.UpdatedAt,
	).Scan(&doc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %s", domain.ErrDuplicate, doc.Code)
		}
		return fmt.Errorf("insert document: %w", err)
	}

	lineQuery := `
		INSERT INTO document_lines (document_id, position, item_id, amount, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range doc.Lines {
		l := &doc.Lines[i]
		l.DocumentID = doc.ID
		if err := r.q.QueryRow(ctx, lineQuery, doc.ID, l.Position, l.ItemID, l.Amount, l.UnitPrice).Scan(&l.ID); err != nil {
			return fmt.Errorf("insert document line: %w", err)
		}
	}
	return nil
}

// GetByID devuelve el documento con sus líneas; nil, nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
// Dos transiciones del mismo documento quedan serializadas aquí.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id)
}

func (r *DocumentRepo) get(ctx context.Context, query string, id int64) (*entity.Document, error) {
	var d entity.Document
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Kind, &d.Code, &d.Status, &d.WarehouseID, &d.DestinationWarehouseID,
		&d.AdjustmentType, &d.Notes, &d.AppliedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	lines, err := r.lines(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Lines = lines
	return &d, nil
}

func (r *DocumentRepo) lines(ctx context.Context, documentID int64) ([]entity.LineItem, error) {
	query := `
		SELECT l.id, l.document_id, l.position, l.item_id, i.name, l.amount, l.unit_price
		FROM document_lines l
		JOIN items i ON i.id = l.item_id
		WHERE l.document_id = $1
		ORDER BY l.position`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()

	var out []entity.LineItem
	for rows.Next() {
		var l entity.LineItem
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Position, &l.ItemID, &l.ItemName, &l.Amount, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateStatus cambia el estado solo si el actual es from.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id int64, from, to entity.DocumentStatus, at time.Time) error {
	var appliedAt *time.Time
	if to == entity.StatusApplied {
		appliedAt = &at
	}
	query := `
		UPDATE documents
		SET status = $3, applied_at = $4, updated_at = $5
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query, id, from, to, appliedAt, at)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: documento %d no está en %s", domain.ErrConflict, id, from)
	}
	return nil
}
