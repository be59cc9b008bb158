package dto

import (
	"github.com/shopspring/decimal"

	domledger "github.com/jhoicas/kardex-api/internal/domain/ledger"
)

// SnapshotRowDTO fila del snapshot externo (importadores CSV/XLSX). Los
// exports antiguos del sistema usaban cabeceras en español, así que la
// lectura tolera ambos nombres; la escritura (respuestas) siempre usa el
// canónico.
type SnapshotRowDTO struct {
	LPN          string           `json:"lpn,omitempty"`
	LegacyID     string           `json:"codigo,omitempty"` // alias heredado de "lpn"
	MaterialCode string           `json:"material_code,omitempty"`
	LegacyMat    string           `json:"material,omitempty"` // alias heredado
	Name         string           `json:"name,omitempty"`
	LegacyName   string           `json:"nombre,omitempty"` // alias heredado
	Quantity     decimal.Decimal  `json:"quantity"`
	Zone         string           `json:"zone,omitempty"`
	Level        string           `json:"level,omitempty"`
	Category     string           `json:"category,omitempty"`
	Brand        string           `json:"brand,omitempty"`
	Supplier     string           `json:"supplier,omitempty"`
	Lot          string           `json:"lot,omitempty"`
	SourceDoc    string           `json:"source_doc,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	Width        *decimal.Decimal `json:"width,omitempty"`
	StandardQty  *decimal.Decimal `json:"standard_qty,omitempty"`
	MinThreshold *decimal.Decimal `json:"min_threshold,omitempty"`
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// ToSnapshotRow normaliza los alias y convierte al tipo de dominio.
func (d SnapshotRowDTO) ToSnapshotRow() domledger.SnapshotRow {
	return domledger.SnapshotRow{
		ID:           coalesce(d.LPN, d.LegacyID),
		MaterialCode: coalesce(d.MaterialCode, d.LegacyMat),
		Name:         coalesce(d.Name, d.LegacyName),
		Quantity:     d.Quantity,
		Zone:         d.Zone,
		Level:        d.Level,
		Category:     d.Category,
		Brand:        d.Brand,
		Supplier:     d.Supplier,
		Lot:          d.Lot,
		SourceDoc:    d.SourceDoc,
		Notes:        d.Notes,
		UnitCost:     d.UnitCost,
		Width:        d.Width,
		StandardQty:  d.StandardQty,
		MinThreshold: d.MinThreshold,
	}
}

// ReconciliationPreviewRequest body de POST /api/stock/reconciliation/preview.
type ReconciliationPreviewRequest struct {
	Rows []SnapshotRowDTO `json:"rows"`
}

// ToSnapshot convierte todas las filas al tipo de dominio.
func (r ReconciliationPreviewRequest) ToSnapshot() []domledger.SnapshotRow {
	rows := make([]domledger.SnapshotRow, 0, len(r.Rows))
	for _, d := range r.Rows {
		rows = append(rows, d.ToSnapshotRow())
	}
	return rows
}

// ReconciliationRowDTO fila clasificada del diff; viaja del preview al
// commit como datos planos (sin referencias vivas entre capas).
type ReconciliationRowDTO struct {
	Class         string          `json:"class"` // NEW | CHANGED | DELETED | UNCHANGED
	Unit          StockUnitDTO    `json:"unit"`
	ChangedFields []string        `json:"changed_fields,omitempty"`
	PriorQuantity decimal.Decimal `json:"prior_quantity,omitempty"`
}

// FromReconciliationRow mapea el resultado del diff al DTO.
func FromReconciliationRow(row domledger.ReconciliationRow) ReconciliationRowDTO {
	return ReconciliationRowDTO{
		Class:         row.Class,
		Unit:          FromStockUnit(&row.Unit),
		ChangedFields: row.ChangedFields,
		PriorQuantity: row.PriorQuantity,
	}
}

// ToReconciliationRow mapea el DTO al tipo de dominio.
func (d ReconciliationRowDTO) ToReconciliationRow() domledger.ReconciliationRow {
	return domledger.ReconciliationRow{
		Class:         d.Class,
		Unit:          d.Unit.ToEntity(),
		ChangedFields: d.ChangedFields,
		PriorQuantity: d.PriorQuantity,
	}
}

// ReconciliationCommitRequest body de POST /api/stock/reconciliation/commit.
type ReconciliationCommitRequest struct {
	Rows []ReconciliationRowDTO `json:"rows"`
}

// ToRows convierte todas las filas al tipo de dominio.
func (r ReconciliationCommitRequest) ToRows() []domledger.ReconciliationRow {
	rows := make([]domledger.ReconciliationRow, 0, len(r.Rows))
	for _, d := range r.Rows {
		rows = append(rows, d.ToReconciliationRow())
	}
	return rows
}
