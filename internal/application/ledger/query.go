package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/kardex-api/internal/domain/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// QueryUseCase acceso de solo lectura para los callers externos (formularios,
// reportes). Opera sobre repositorios atados al pool, sin transacción.
type QueryUseCase struct {
	unitRepo  repository.StockUnitRepository
	auditRepo repository.AuditLedger
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(unitRepo repository.StockUnitRepository, auditRepo repository.AuditLedger) *QueryUseCase {
	return &QueryUseCase{unitRepo: unitRepo, auditRepo: auditRepo}
}

// ListUnits devuelve todas las unidades de stock.
func (uc *QueryUseCase) ListUnits(ctx context.Context) ([]*entity.StockUnit, error) {
	return uc.unitRepo.ListAll(ctx)
}

// GetUnit devuelve una unidad por LPN o domain.ErrNotFound.
func (uc *QueryUseCase) GetUnit(ctx context.Context, id string) (*entity.StockUnit, error) {
	unit, err := uc.unitRepo.GetByID(ctx, domledger.NormalizeID(id))
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("unidad %s: %w", id, domain.ErrNotFound)
	}
	return unit, nil
}

// AuditByUnit devuelve el historial de auditoría de una unidad,
// más reciente primero.
func (uc *QueryUseCase) AuditByUnit(ctx context.Context, unitID string) ([]*entity.AuditEntry, error) {
	return uc.auditRepo.ListByUnit(ctx, domledger.NormalizeID(unitID))
}

// AuditAll devuelve el libro completo paginado, más reciente primero.
func (uc *QueryUseCase) AuditAll(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.auditRepo.ListAll(ctx, limit, offset)
}
