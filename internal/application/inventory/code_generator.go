package inventory

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var prefixPattern = regexp.MustCompile(`^[A-Z]{2,5}$`)

// CodeGenerator asigna códigos legibles {PREFIJO}-{8 dígitos}. Cada prefijo tiene su propia
// secuencia atómica, así dos llamadas concurrentes nunca obtienen el mismo número.
// Un número consumido por una transacción que luego falla no se reutiliza (puede haber huecos).
type CodeGenerator struct {
	seqRepo repository.SequenceRepository
}

// NewCodeGenerator construye el generador.
func NewCodeGenerator(seqRepo repository.SequenceRepository) *CodeGenerator {
	return &CodeGenerator{seqRepo: seqRepo}
}

// Next devuelve el siguiente código para prefix (ej: "FV-00000001").
func (g *CodeGenerator) Next(ctx context.Context, prefix string) (string, error) {
	if !prefixPattern.MatchString(prefix) {
		return "", fmt.Errorf("%w: prefijo %q", domain.ErrInvalidInput, prefix)
	}
	n, err := g.seqRepo.Next(ctx, prefix)
	if err != nil {
		return "", err
	}
	return FormatCode(prefix, n), nil
}

// FormatCode arma el código con el número rellenado a 8 dígitos.
func FormatCode(prefix string, n int64) string {
	return fmt.Sprintf("%s-%08d", prefix, n)
}
