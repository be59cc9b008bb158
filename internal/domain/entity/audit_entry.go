package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de acción del libro de auditoría.
const (
	ActionEntryRegistered      = "ENTRY_REGISTERED"
	ActionWithdrawalSale       = "WITHDRAWAL_SALE"
	ActionWithdrawalExchange   = "WITHDRAWAL_EXCHANGE"
	ActionWithdrawalDamage     = "WITHDRAWAL_DAMAGE"
	ActionWithdrawalAdjustment = "WITHDRAWAL_ADJUSTMENT"
	ActionWithdrawalAudit      = "WITHDRAWAL_AUDIT"
	ActionBulkCreate           = "BULK_CREATE"
	ActionBulkUpdate           = "BULK_UPDATE"
	ActionBulkDelete           = "BULK_DELETE"
	ActionManualEdit           = "MANUAL_EDIT"
)

// AuditEntry es el registro inmutable de una acción sobre una unidad de
// stock. Se crea exactamente una vez por mutación y nunca se modifica ni se
// borra; la suma de los deltas firmados de una unidad reconstruye su saldo.
type AuditEntry struct {
	ID            string // uuid
	Timestamp     time.Time
	Actor         Actor
	Action        string
	MaterialCode  string
	UnitID        string // LPN de la unidad afectada
	Lot           string
	QuantityDelta decimal.Decimal // firmado: positivo entradas, negativo salidas
	Value         decimal.Decimal // valor monetario del delta
	Narrative     string
	DocumentRef   string // referencia a documento externo (opcional)
	Category      string
	Reason        string
	Counterparty  string
}
