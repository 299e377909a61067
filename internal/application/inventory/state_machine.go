package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TransitionResult documento tras la transición y las filas de diario escritas.
type TransitionResult struct {
	Document      *entity.Document
	From          entity.DocumentStatus
	TransactionID string
	Movements     []*entity.StockMovement
}

// DocumentStateMachine aplica y revierte documentos sobre el ledger.
// Un solo motor para los cuatro tipos: el tipo solo decide el efecto (Document.Effect).
// Cada transición corre en una transacción: bloqueo del documento, bloqueo de saldos en
// orden (bodega, artículo), validación, deltas, diario y cambio de estado. Si algo falla
// no queda ningún cambio.
type DocumentStateMachine struct {
	txRunner  TxRunner
	ledger    *StockLedger
	validator *StockValidator
	now       func() time.Time
}

// NewDocumentStateMachine construye la máquina de estados.
func NewDocumentStateMachine(txRunner TxRunner, ledger *StockLedger, validator *StockValidator) *DocumentStateMachine {
	return &DocumentStateMachine{
		txRunner:  txRunner,
		ledger:    ledger,
		validator: validator,
		now:       time.Now,
	}
}

// Transition mueve el documento id al estado target.
// Errores: *domain.NotFoundError, *domain.InvalidTransitionError, *domain.InsufficientStockError,
// *domain.PersistenceError.
func (m *DocumentStateMachine) Transition(ctx context.Context, id int64, target entity.DocumentStatus) (*TransitionResult, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, target)
	}

	var result *TransitionResult
	err := m.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		doc, err := docRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return &domain.NotFoundError{Resource: "documento", ID: id}
		}
		if err := checkTransition(doc, target); err != nil {
			return err
		}

		legs := doc.Legs(target)
		for _, leg := range legs {
			if _, err := stockRepo.GetForUpdate(ctx, leg.WarehouseID, leg.ItemID); err != nil {
				return err
			}
		}

		if whID, ok := doc.DecreasedWarehouse(target); ok {
			res, err := m.validator.Validate(ctx, stockRepo, whID, doc.Lines)
			if err != nil {
				return err
			}
			if !res.OK() {
				return res.Err()
			}
		}

		now := m.now().UTC()
		txID := uuid.New().String()
		movements := make([]*entity.StockMovement, 0, len(legs))
		for _, leg := range legs {
			balance, err := m.ledger.Apply(ctx, stockRepo, leg.WarehouseID, leg.ItemID, leg.Delta)
			if err != nil {
				return withItemNames(err, doc.Lines)
			}
			mov := &entity.StockMovement{
				ID:            uuid.New().String(),
				TransactionID: txID,
				DocumentID:    doc.ID,
				DocumentKind:  doc.Kind,
				DocumentCode:  doc.Code,
				WarehouseID:   leg.WarehouseID,
				ItemID:        leg.ItemID,
				Quantity:      leg.Delta,
				BalanceAfter:  balance,
				CreatedAt:     now,
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
			movements = append(movements, mov)
		}

		from := doc.Status
		if err := docRepo.UpdateStatus(ctx, doc.ID, from, target, now); err != nil {
			return err
		}
		doc.Status = target
		doc.UpdatedAt = now
		if target == entity.StatusApplied {
			doc.AppliedAt = &now
		} else {
			doc.AppliedAt = nil
		}
		result = &TransitionResult{Document: doc, From: from, TransactionID: txID, Movements: movements}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func checkTransition(doc *entity.Document, target entity.DocumentStatus) error {
	reject := func(reason string) error {
		return &domain.InvalidTransitionError{
			DocumentID: doc.ID,
			From:       string(doc.Status),
			To:         string(target),
			Reason:     reason,
		}
	}
	if doc.Status == target {
		return reject("el documento ya está en ese estado")
	}
	if target == entity.StatusApplied && len(doc.Lines) == 0 {
		return reject("el documento no tiene líneas")
	}
	if target == entity.StatusPending && !doc.Kind.Reversible() {
		return reject(fmt.Sprintf("los documentos de tipo %s no se pueden revertir", doc.Kind))
	}
	return nil
}

// withItemNames completa Shortage.ItemName desde las líneas del documento cuando el
// faltante viene del ledger, que solo conoce IDs.
func withItemNames(err error, lines []entity.LineItem) error {
	var ise *domain.InsufficientStockError
	if !errors.As(err, &ise) {
		return err
	}
	names := make(map[int64]string, len(lines))
	for _, l := range lines {
		if l.ItemName != "" {
			names[l.ItemID] = l.ItemName
		}
	}
	for i := range ise.Shortages {
		if ise.Shortages[i].ItemName == "" {
			ise.Shortages[i].ItemName = names[ise.Shortages[i].ItemID]
		}
	}
	return err
}
