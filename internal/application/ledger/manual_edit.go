package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/kardex-api/internal/domain/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ManualEditInput edición administrativa directa de una unidad. Version es
// obligatoria: el caller debe presentar la versión que leyó.
type ManualEditInput struct {
	ID           string
	Version      int64
	MaterialCode string
	Name         string
	Category     string
	Brand        string
	Supplier     string
	Lot          string
	SourceDoc    string
	UnitCost     decimal.Decimal
	Width        decimal.Decimal
	Quantity     decimal.Decimal
	Zone         string
	Level        string
	StandardQty  decimal.Decimal
	MinThreshold decimal.Decimal
	Notes        string
}

// UpdateUnit aplica una edición manual con verificación de versión y deja
// un asiento MANUAL_EDIT cuyo delta refleja el cambio de saldo.
func (uc *BatchUseCase) UpdateUnit(ctx context.Context, input ManualEditInput, actor entity.Actor) error {
	id := domledger.NormalizeID(input.ID)
	if id == "" {
		return fmt.Errorf("identificador requerido: %w", domain.ErrInvalidInput)
	}
	if input.Version <= 0 {
		return fmt.Errorf("versión leída requerida: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.MaterialCode) == "" {
		return fmt.Errorf("código de material requerido: %w", domain.ErrInvalidInput)
	}
	if input.Quantity.LessThan(decimal.Zero) {
		return fmt.Errorf("la cantidad no puede ser negativa: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		unitRepo repository.StockUnitRepository,
		auditRepo repository.AuditLedger,
		_ repository.LPNAllocator,
	) error {
		unit, err := unitRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if unit == nil {
			return fmt.Errorf("unidad %s: %w", id, domain.ErrNotFound)
		}
		if input.Version != unit.Version {
			return fmt.Errorf("unidad %s: %w", id, domain.ErrConflict)
		}
		prior := unit.Quantity

		unit.MaterialCode = strings.TrimSpace(input.MaterialCode)
		unit.Name = strings.TrimSpace(input.Name)
		unit.Category = strings.TrimSpace(input.Category)
		unit.Brand = strings.TrimSpace(input.Brand)
		unit.Supplier = strings.TrimSpace(input.Supplier)
		unit.Lot = strings.TrimSpace(input.Lot)
		unit.SourceDoc = strings.TrimSpace(input.SourceDoc)
		unit.UnitCost = input.UnitCost
		unit.Width = input.Width
		unit.Quantity = input.Quantity
		unit.Zone = strings.TrimSpace(input.Zone)
		unit.Level = strings.TrimSpace(input.Level)
		unit.StandardQty = input.StandardQty
		unit.MinThreshold = input.MinThreshold
		unit.Notes = strings.TrimSpace(input.Notes)
		unit.Status = domledger.ComputeStatus(unit.Quantity, unit.StandardQty)
		unit.Responsible = actor.Name
		unit.UpdatedAt = now

		if err := unitRepo.Update(ctx, unit, input.Version); err != nil {
			return err
		}
		entry := &entity.AuditEntry{
			Timestamp:     now,
			Actor:         actor,
			Action:        entity.ActionManualEdit,
			MaterialCode:  unit.MaterialCode,
			UnitID:        unit.ID,
			Lot:           unit.Lot,
			QuantityDelta: unit.Quantity.Sub(prior),
			Value:         unit.Quantity.Sub(prior).Mul(unit.UnitCost),
			Narrative:     fmt.Sprintf("edición manual de %s", unit.ID),
		}
		if err := auditRepo.Append(ctx, entry); err != nil {
			return fmt.Errorf("asentar edición %s: %w", unit.ID, err)
		}
		return nil
	})
}
