package repository

import "context"

// SequenceRepository entrega números de un identificador autoincremental durable por prefijo.
// Nunca repite un valor, aun si la transacción que lo pidió hace Rollback (puede dejar huecos).
type SequenceRepository interface {
	Next(ctx context.Context, prefix string) (int64, error)
}
