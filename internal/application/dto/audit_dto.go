package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// AuditEntryDTO representación JSON de un asiento del libro de auditoría.
type AuditEntryDTO struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	ActorName     string          `json:"actor_name"`
	ActorEmail    string          `json:"actor_email,omitempty"`
	ActorRole     string          `json:"actor_role,omitempty"`
	Action        string          `json:"action"`
	MaterialCode  string          `json:"material_code,omitempty"`
	UnitID        string          `json:"lpn,omitempty"`
	Lot           string          `json:"lot,omitempty"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	Value         decimal.Decimal `json:"value"`
	Narrative     string          `json:"narrative,omitempty"`
	DocumentRef   string          `json:"document_ref,omitempty"`
	Category      string          `json:"category,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Counterparty  string          `json:"counterparty,omitempty"`
}

// FromAuditEntry mapea la entidad al DTO.
func FromAuditEntry(e *entity.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:            e.ID,
		Timestamp:     e.Timestamp,
		ActorName:     e.Actor.Name,
		ActorEmail:    e.Actor.Email,
		ActorRole:     e.Actor.Role,
		Action:        e.Action,
		MaterialCode:  e.MaterialCode,
		UnitID:        e.UnitID,
		Lot:           e.Lot,
		QuantityDelta: e.QuantityDelta,
		Value:         e.Value,
		Narrative:     e.Narrative,
		DocumentRef:   e.DocumentRef,
		Category:      e.Category,
		Reason:        e.Reason,
		Counterparty:  e.Counterparty,
	}
}
