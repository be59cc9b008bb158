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

// BatchUseCase orquesta las mutaciones por lote del libro de stock: entrada,
// salida, confirmación de conciliación y edición manual. Es el único
// componente que muta el store, y siempre lo hace junto con el libro de
// auditoría dentro de una misma transacción.
type BatchUseCase struct {
	txRunner TxRunner
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(txRunner TxRunner) *BatchUseCase {
	return &BatchUseCase{txRunner: txRunner}
}

// BatchResult resultado explícito de un lote aplicado con éxito.
type BatchResult struct {
	Processed int
	UnitIDs   []string
}

// InboundItem ítem de una entrada de mercancía. Si ID viene vacío se asigna
// un LPN nuevo; si viene informado debe tener forma de LPN y no existir.
type InboundItem struct {
	ID            string
	MaterialCode  string
	Name          string
	Category      string
	Brand         string
	Supplier      string
	Lot           string
	SourceDoc     string
	UnitCost      decimal.Decimal
	Width         decimal.Decimal
	Quantity      decimal.Decimal
	Zone          string
	Level         string
	StandardQty   decimal.Decimal
	MinThreshold  decimal.Decimal
	Notes         string
	InboundReason string
}

// ProcessInboundBatch registra una entrada de mercancía. Valida el lote
// completo antes de cualquier escritura; después aplica, en una sola
// transacción, el alta de todas las unidades y un asiento ENTRY_REGISTERED
// por cada una. Cualquier fallo revierte el lote entero.
func (uc *BatchUseCase) ProcessInboundBatch(ctx context.Context, items []InboundItem, actor entity.Actor) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("lote de entrada vacío: %w", domain.ErrInvalidInput)
	}
	explicit := make(map[string]bool, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.MaterialCode) == "" {
			return nil, fmt.Errorf("ítem %d: código de material requerido: %w", i+1, domain.ErrInvalidInput)
		}
		if !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("ítem %d: la cantidad debe ser mayor que cero: %w", i+1, domain.ErrInvalidInput)
		}
		if strings.TrimSpace(it.Lot) == "" {
			return nil, fmt.Errorf("ítem %d: lote requerido: %w", i+1, domain.ErrInvalidInput)
		}
		if strings.TrimSpace(it.SourceDoc) == "" {
			return nil, fmt.Errorf("ítem %d: documento de origen requerido: %w", i+1, domain.ErrInvalidInput)
		}
		if it.UnitCost.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("ítem %d: el costo unitario no puede ser negativo: %w", i+1, domain.ErrInvalidInput)
		}
		if id := domledger.NormalizeID(it.ID); id != "" {
			if !domledger.WellFormedLPN(id) {
				return nil, fmt.Errorf("ítem %d: identificador %q mal formado: %w", i+1, it.ID, domain.ErrInvalidInput)
			}
			if explicit[id] {
				return nil, fmt.Errorf("ítem %d: identificador %s repetido en el lote: %w", i+1, id, domain.ErrDuplicate)
			}
			explicit[id] = true
		}
	}

	now := time.Now()
	result := &BatchResult{}

	err := uc.txRunner.Run(ctx, func(
		unitRepo repository.StockUnitRepository,
		auditRepo repository.AuditLedger,
		lpnRepo repository.LPNAllocator,
	) error {
		units := make([]*entity.StockUnit, 0, len(items))
		for i, it := range items {
			id := domledger.NormalizeID(it.ID)
			if id == "" {
				next, err := lpnRepo.Next(ctx)
				if err != nil {
					return fmt.Errorf("asignar LPN (ítem %d): %w", i+1, err)
				}
				id = next
			} else {
				existing, err := unitRepo.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if existing != nil {
					return fmt.Errorf("la unidad %s ya existe: %w", id, domain.ErrDuplicate)
				}
			}
			units = append(units, &entity.StockUnit{
				ID:            id,
				MaterialCode:  strings.TrimSpace(it.MaterialCode),
				Name:          strings.TrimSpace(it.Name),
				Category:      strings.TrimSpace(it.Category),
				Brand:         strings.TrimSpace(it.Brand),
				Supplier:      strings.TrimSpace(it.Supplier),
				Lot:           strings.TrimSpace(it.Lot),
				SourceDoc:     strings.TrimSpace(it.SourceDoc),
				UnitCost:      it.UnitCost,
				Width:         it.Width,
				Quantity:      it.Quantity,
				Zone:          strings.TrimSpace(it.Zone),
				Level:         strings.TrimSpace(it.Level),
				Status:        domledger.ComputeStatus(it.Quantity, it.StandardQty),
				StandardQty:   it.StandardQty,
				MinThreshold:  it.MinThreshold,
				Notes:         strings.TrimSpace(it.Notes),
				InboundReason: strings.TrimSpace(it.InboundReason),
				Responsible:   actor.Name,
				Version:       1,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}

		if err := unitRepo.UpsertMany(ctx, units); err != nil {
			return err
		}
		for _, u := range units {
			entry := &entity.AuditEntry{
				Timestamp:     now,
				Actor:         actor,
				Action:        entity.ActionEntryRegistered,
				MaterialCode:  u.MaterialCode,
				UnitID:        u.ID,
				Lot:           u.Lot,
				QuantityDelta: u.Quantity,
				Value:         u.Quantity.Mul(u.UnitCost),
				Narrative:     fmt.Sprintf("entrada registrada: %s (%s)", u.Name, u.MaterialCode),
				DocumentRef:   u.SourceDoc,
				Category:      u.Category,
				Reason:        u.InboundReason,
			}
			if err := auditRepo.Append(ctx, entry); err != nil {
				return fmt.Errorf("asentar entrada %s: %w", u.ID, err)
			}
			result.UnitIDs = append(result.UnitIDs, u.ID)
		}
		result.Processed = len(units)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
