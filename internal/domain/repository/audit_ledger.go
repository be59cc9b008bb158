package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// AuditLedger define el puerto del libro de auditoría. Es estrictamente
// aditivo: la interfaz no expone update ni delete, de modo que la
// inmutabilidad queda garantizada en el tipo y no por convención.
type AuditLedger interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	// ListByUnit devuelve las entradas de una unidad, más recientes primero.
	ListByUnit(ctx context.Context, unitID string) ([]*entity.AuditEntry, error)
	// ListAll devuelve el libro completo paginado, más recientes primero.
	ListAll(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error)
}
