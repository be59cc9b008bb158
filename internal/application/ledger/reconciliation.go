package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/kardex-api/internal/domain/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ReconciliationUseCase calcula y confirma conciliaciones de inventario:
// compara un snapshot de estado deseado contra el store actual y aplica las
// diferencias como un solo lote atómico.
type ReconciliationUseCase struct {
	txRunner TxRunner
	unitRepo repository.StockUnitRepository // lectura fuera de transacción (preview)
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(txRunner TxRunner, unitRepo repository.StockUnitRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{txRunner: txRunner, unitRepo: unitRepo}
}

// Preview lee el store actual y clasifica cada fila del snapshot
// (NEW/CHANGED/DELETED/UNCHANGED). No escribe nada.
func (uc *ReconciliationUseCase) Preview(ctx context.Context, snapshot []domledger.SnapshotRow) ([]domledger.ReconciliationRow, error) {
	current, err := uc.unitRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return domledger.ComputeDiff(snapshot, current)
}

// Commit aplica las filas clasificadas: NEW como altas (BULK_CREATE),
// CHANGED como updates verificados por versión (BULK_UPDATE con los campos
// modificados), DELETED como borrados físicos (BULK_DELETE con delta igual
// al saldo perdido, para que el libro siga reconstruyendo el saldo).
// UNCHANGED se omite por completo. Todo en una transacción.
func (uc *ReconciliationUseCase) Commit(ctx context.Context, rows []domledger.ReconciliationRow, actor entity.Actor) (*BatchResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("conciliación sin filas: %w", domain.ErrInvalidInput)
	}

	var newRows, changedRows, deletedRows []domledger.ReconciliationRow
	for i, row := range rows {
		switch row.Class {
		case domledger.ClassNew:
			newRows = append(newRows, row)
		case domledger.ClassChanged:
			changedRows = append(changedRows, row)
		case domledger.ClassDeleted:
			deletedRows = append(deletedRows, row)
		case domledger.ClassUnchanged:
			// sin escritura y sin asiento
		default:
			return nil, fmt.Errorf("fila %d: clasificación %q desconocida: %w", i+1, row.Class, domain.ErrInvalidInput)
		}
	}

	// Bloqueo de filas en orden de identificador.
	sort.Slice(changedRows, func(a, b int) bool { return changedRows[a].Unit.ID < changedRows[b].Unit.ID })
	sort.Slice(deletedRows, func(a, b int) bool { return deletedRows[a].Unit.ID < deletedRows[b].Unit.ID })

	now := time.Now()
	result := &BatchResult{}

	err := uc.txRunner.Run(ctx, func(
		unitRepo repository.StockUnitRepository,
		auditRepo repository.AuditLedger,
		lpnRepo repository.LPNAllocator,
	) error {
		for _, row := range changedRows {
			unit, err := unitRepo.GetForUpdate(ctx, row.Unit.ID)
			if err != nil {
				return err
			}
			if unit == nil {
				return fmt.Errorf("unidad %s: %w", row.Unit.ID, domain.ErrNotFound)
			}
			if row.Unit.Version != 0 && row.Unit.Version != unit.Version {
				return fmt.Errorf("unidad %s: %w", unit.ID, domain.ErrConflict)
			}
			prior := unit.Quantity
			updated := row.Unit
			updated.Version = unit.Version
			updated.CreatedAt = unit.CreatedAt
			updated.UpdatedAt = now
			if err := unitRepo.Update(ctx, &updated, unit.Version); err != nil {
				return err
			}
			entry := &entity.AuditEntry{
				Timestamp:     now,
				Actor:         actor,
				Action:        entity.ActionBulkUpdate,
				MaterialCode:  updated.MaterialCode,
				UnitID:        updated.ID,
				Lot:           updated.Lot,
				QuantityDelta: updated.Quantity.Sub(prior),
				Value:         updated.Quantity.Sub(prior).Mul(updated.UnitCost),
				Narrative:     "conciliación: campos modificados: " + strings.Join(row.ChangedFields, ", "),
			}
			if err := auditRepo.Append(ctx, entry); err != nil {
				return fmt.Errorf("asentar conciliación %s: %w", updated.ID, err)
			}
			result.UnitIDs = append(result.UnitIDs, updated.ID)
			result.Processed++
		}

		for _, row := range deletedRows {
			unit, err := unitRepo.GetForUpdate(ctx, row.Unit.ID)
			if err != nil {
				return err
			}
			if unit == nil {
				return fmt.Errorf("unidad %s: %w", row.Unit.ID, domain.ErrNotFound)
			}
			if row.Unit.Version != 0 && row.Unit.Version != unit.Version {
				return fmt.Errorf("unidad %s: %w", unit.ID, domain.ErrConflict)
			}
			if err := unitRepo.DeleteByID(ctx, unit.ID); err != nil {
				return err
			}
			// El delta negativo del saldo previo conserva la invariante:
			// suma de deltas de la unidad = 0 tras el borrado.
			entry := &entity.AuditEntry{
				Timestamp:     now,
				Actor:         actor,
				Action:        entity.ActionBulkDelete,
				MaterialCode:  unit.MaterialCode,
				UnitID:        unit.ID,
				Lot:           unit.Lot,
				QuantityDelta: unit.Quantity.Neg(),
				Value:         unit.Quantity.Neg().Mul(unit.UnitCost),
				Narrative:     fmt.Sprintf("conciliación: unidad %s eliminada con saldo %s", unit.ID, unit.Quantity.String()),
			}
			if err := auditRepo.Append(ctx, entry); err != nil {
				return fmt.Errorf("asentar borrado %s: %w", unit.ID, err)
			}
			result.UnitIDs = append(result.UnitIDs, unit.ID)
			result.Processed++
		}

		if len(newRows) > 0 {
			units := make([]*entity.StockUnit, 0, len(newRows))
			for _, row := range newRows {
				unit := row.Unit
				if unit.ID == "" {
					next, err := lpnRepo.Next(ctx)
					if err != nil {
						return fmt.Errorf("asignar LPN en conciliación: %w", err)
					}
					unit.ID = next
				} else {
					existing, err := unitRepo.GetByID(ctx, unit.ID)
					if err != nil {
						return err
					}
					if existing != nil {
						return fmt.Errorf("la unidad %s ya existe: %w", unit.ID, domain.ErrDuplicate)
					}
				}
				unit.Responsible = actor.Name
				unit.Version = 1
				unit.CreatedAt = now
				unit.UpdatedAt = now
				units = append(units, &unit)
			}
			if err := unitRepo.UpsertMany(ctx, units); err != nil {
				return err
			}
			for _, u := range units {
				entry := &entity.AuditEntry{
					Timestamp:     now,
					Actor:         actor,
					Action:        entity.ActionBulkCreate,
					MaterialCode:  u.MaterialCode,
					UnitID:        u.ID,
					Lot:           u.Lot,
					QuantityDelta: u.Quantity,
					Value:         u.Quantity.Mul(u.UnitCost),
					Narrative:     fmt.Sprintf("conciliación: unidad %s creada con saldo %s", u.ID, u.Quantity.String()),
					DocumentRef:   u.SourceDoc,
					Category:      u.Category,
				}
				if err := auditRepo.Append(ctx, entry); err != nil {
					return fmt.Errorf("asentar alta %s: %w", u.ID, err)
				}
				result.UnitIDs = append(result.UnitIDs, u.ID)
				result.Processed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
