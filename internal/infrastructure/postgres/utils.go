package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isRetryable timeouts de lock o de sentencia, deadlocks y fallas de serialización.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
		return true
	}
	return false
}

// isDomainError errores que ya vienen tipados desde el núcleo y deben llegar intactos al llamador.
func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrInsufficientStock,
		domain.ErrInvalidTransition,
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrInvalidRate,
		domain.ErrConflict,
		domain.ErrDuplicate,
		domain.ErrPersistence,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// persistenceError envuelve fallas de la BD como *domain.PersistenceError.
func persistenceError(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err, Retryable: isRetryable(err)}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZero(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
