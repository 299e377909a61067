package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrInvalidRate       = errors.New("tasa de cambio inválida")
	ErrPersistence       = errors.New("error de persistencia")
)

// Shortage describe el faltante de un artículo en una bodega.
type Shortage struct {
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// Deficit devuelve requested - available.
func (s Shortage) Deficit() decimal.Decimal {
	return s.Requested.Sub(s.Available)
}

// InsufficientStockError lleva la lista de faltantes por artículo.
// Es recuperable: el llamador puede reintentar tras reabastecer o editar el documento.
type InsufficientStockError struct {
	WarehouseID int64
	Shortages   []Shortage
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortages) == 0 {
		return fmt.Sprintf("%s en bodega %d", ErrInsufficientStock, e.WarehouseID)
	}
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("artículo %d: solicitado %s, disponible %s",
			s.ItemID, s.Requested.StringFixed(2), s.Available.StringFixed(2)))
	}
	return fmt.Sprintf("%s en bodega %d (%s)", ErrInsufficientStock, e.WarehouseID, strings.Join(parts, "; "))
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidTransitionError transición no-op, documento vacío o reversa no soportada.
type InvalidTransitionError struct {
	DocumentID int64
	From       string
	To         string
	Reason     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: documento %d %s -> %s: %s", ErrInvalidTransition, e.DocumentID, e.From, e.To, e.Reason)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// NotFoundError documento, bodega o artículo referenciado inexistente.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %d", ErrNotFound, e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidRateError tasa de cambio no positiva.
type InvalidRateError struct {
	Rate decimal.Decimal
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("%s: %s (debe ser mayor que cero)", ErrInvalidRate, e.Rate.String())
}

func (e *InvalidRateError) Is(target error) bool { return target == ErrInvalidRate }

// PersistenceError falla de transacción o bloqueo. Retryable indica timeouts de lock,
// deadlocks o fallas de serialización; el núcleo nunca reintenta por su cuenta.
type PersistenceError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// IsRetryable indica si el error es temporal y la operación puede reintentarse.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
