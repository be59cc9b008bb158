package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/kardex-api/internal/domain/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Motivos de salida admitidos y su acción de auditoría.
var withdrawalActions = map[string]string{
	"SALE":       entity.ActionWithdrawalSale,
	"EXCHANGE":   entity.ActionWithdrawalExchange,
	"DAMAGE":     entity.ActionWithdrawalDamage,
	"ADJUSTMENT": entity.ActionWithdrawalAdjustment,
	"AUDIT":      entity.ActionWithdrawalAudit,
}

// WithdrawalItem ítem de una salida. Version es la versión que el caller
// leyó; cero omite la verificación optimista (clientes legados).
type WithdrawalItem struct {
	UnitID       string
	Quantity     decimal.Decimal
	Reason       string // SALE | EXCHANGE | DAMAGE | ADJUSTMENT | AUDIT
	Version      int64
	DocumentRef  string
	Counterparty string
	Notes        string
}

// ProcessWithdrawalBatch descuenta cantidades de unidades existentes.
// Valida el lote completo antes de escribir; la transacción bloquea las
// filas en orden de identificador (evita interbloqueos entre lotes
// concurrentes), verifica saldo y versión de cada unidad y asienta una
// entrada de auditoría por ítem. Saldo insuficiente en cualquier ítem
// revierte el lote entero y deja el store intacto.
func (uc *BatchUseCase) ProcessWithdrawalBatch(ctx context.Context, items []WithdrawalItem, actor entity.Actor) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("lote de salida vacío: %w", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		id := domledger.NormalizeID(it.UnitID)
		if id == "" {
			return nil, fmt.Errorf("ítem %d: identificador de unidad requerido: %w", i+1, domain.ErrInvalidInput)
		}
		if !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("ítem %d: la cantidad debe ser mayor que cero: %w", i+1, domain.ErrInvalidInput)
		}
		if _, ok := withdrawalActions[it.Reason]; !ok {
			return nil, fmt.Errorf("ítem %d: motivo de salida %q desconocido: %w", i+1, it.Reason, domain.ErrInvalidInput)
		}
		if seen[id] {
			return nil, fmt.Errorf("ítem %d: la unidad %s aparece más de una vez en el lote: %w", i+1, id, domain.ErrDuplicate)
		}
		seen[id] = true
	}

	// Orden estable de bloqueo de filas.
	ordered := make([]WithdrawalItem, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(a, b int) bool {
		return domledger.NormalizeID(ordered[a].UnitID) < domledger.NormalizeID(ordered[b].UnitID)
	})

	now := time.Now()
	result := &BatchResult{}

	err := uc.txRunner.Run(ctx, func(
		unitRepo repository.StockUnitRepository,
		auditRepo repository.AuditLedger,
		_ repository.LPNAllocator,
	) error {
		for _, it := range ordered {
			id := domledger.NormalizeID(it.UnitID)
			unit, err := unitRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if unit == nil {
				return fmt.Errorf("unidad %s: %w", id, domain.ErrNotFound)
			}
			if it.Version != 0 && it.Version != unit.Version {
				return fmt.Errorf("unidad %s: %w", id, domain.ErrConflict)
			}
			remaining := unit.Quantity.Sub(it.Quantity)
			if remaining.LessThan(domledger.Epsilon.Neg()) {
				return fmt.Errorf("unidad %s: saldo %s, solicitado %s: %w",
					id, unit.Quantity.String(), it.Quantity.String(), domain.ErrInsufficientStock)
			}
			if remaining.LessThan(decimal.Zero) {
				remaining = decimal.Zero
			}

			lockedVersion := unit.Version
			unit.Quantity = remaining
			if remaining.LessThanOrEqual(domledger.Epsilon) {
				unit.Status = entity.StatusDepleted
			} else {
				unit.Status = entity.StatusOpen
			}
			unit.UpdatedAt = now
			if err := unitRepo.Update(ctx, unit, lockedVersion); err != nil {
				return err
			}

			entry := &entity.AuditEntry{
				Timestamp:     now,
				Actor:         actor,
				Action:        withdrawalActions[it.Reason],
				MaterialCode:  unit.MaterialCode,
				UnitID:        unit.ID,
				Lot:           unit.Lot,
				QuantityDelta: it.Quantity.Neg(),
				Value:         it.Quantity.Neg().Mul(unit.UnitCost),
				Narrative:     fmt.Sprintf("salida %s: %s de %s", it.Reason, it.Quantity.String(), unit.ID),
				DocumentRef:   it.DocumentRef,
				Category:      unit.Category,
				Reason:        it.Reason,
				Counterparty:  it.Counterparty,
			}
			if it.Notes != "" {
				entry.Narrative = entry.Narrative + "; " + it.Notes
			}
			if err := auditRepo.Append(ctx, entry); err != nil {
				return fmt.Errorf("asentar salida %s: %w", unit.ID, err)
			}
			result.UnitIDs = append(result.UnitIDs, unit.ID)
		}
		result.Processed = len(ordered)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
