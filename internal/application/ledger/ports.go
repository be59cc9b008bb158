package ledger

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa transacción. Es la garantía de atomicidad de
// los lotes: o se aplican todos los ítems (escrituras + asientos de
// auditoría) o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		unitRepo repository.StockUnitRepository,
		auditRepo repository.AuditLedger,
		lpnRepo repository.LPNAllocator,
	) error) error
}
