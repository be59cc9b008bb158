package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// InboundItemRequest ítem del body de POST /api/stock/inbound.
type InboundItemRequest struct {
	LPN           string          `json:"lpn,omitempty"` // vacío = asignar
	MaterialCode  string          `json:"material_code"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	Supplier      string          `json:"supplier,omitempty"`
	Lot           string          `json:"lot"`
	SourceDoc     string          `json:"source_doc"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Width         decimal.Decimal `json:"width,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Zone          string          `json:"zone,omitempty"`
	Level         string          `json:"level,omitempty"`
	StandardQty   decimal.Decimal `json:"standard_qty,omitempty"`
	MinThreshold  decimal.Decimal `json:"min_threshold,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	InboundReason string          `json:"inbound_reason,omitempty"`
}

// InboundBatchRequest body de POST /api/stock/inbound.
type InboundBatchRequest struct {
	Items []InboundItemRequest `json:"items"`
}

// ToItems convierte el request al input del caso de uso.
func (r InboundBatchRequest) ToItems() []ledger.InboundItem {
	items := make([]ledger.InboundItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ledger.InboundItem{
			ID:            it.LPN,
			MaterialCode:  it.MaterialCode,
			Name:          it.Name,
			Category:      it.Category,
			Brand:         it.Brand,
			Supplier:      it.Supplier,
			Lot:           it.Lot,
			SourceDoc:     it.SourceDoc,
			UnitCost:      it.UnitCost,
			Width:         it.Width,
			Quantity:      it.Quantity,
			Zone:          it.Zone,
			Level:         it.Level,
			StandardQty:   it.StandardQty,
			MinThreshold:  it.MinThreshold,
			Notes:         it.Notes,
			InboundReason: it.InboundReason,
		})
	}
	return items
}

// WithdrawalItemRequest ítem del body de POST /api/stock/withdrawals.
type WithdrawalItemRequest struct {
	LPN          string          `json:"lpn"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason"` // SALE | EXCHANGE | DAMAGE | ADJUSTMENT | AUDIT
	Version      int64           `json:"version,omitempty"`
	DocumentRef  string          `json:"document_ref,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// WithdrawalBatchRequest body de POST /api/stock/withdrawals.
type WithdrawalBatchRequest struct {
	Items []WithdrawalItemRequest `json:"items"`
}

// ToItems convierte el request al input del caso de uso.
func (r WithdrawalBatchRequest) ToItems() []ledger.WithdrawalItem {
	items := make([]ledger.WithdrawalItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ledger.WithdrawalItem{
			UnitID:       it.LPN,
			Quantity:     it.Quantity,
			Reason:       it.Reason,
			Version:      it.Version,
			DocumentRef:  it.DocumentRef,
			Counterparty: it.Counterparty,
			Notes:        it.Notes,
		})
	}
	return items
}

// ManualEditRequest body de PUT /api/stock/units/:id.
type ManualEditRequest struct {
	Version      int64           `json:"version"`
	MaterialCode string          `json:"material_code"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Supplier     string          `json:"supplier,omitempty"`
	Lot          string          `json:"lot,omitempty"`
	SourceDoc    string          `json:"source_doc,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Width        decimal.Decimal `json:"width,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Zone         string          `json:"zone,omitempty"`
	Level        string          `json:"level,omitempty"`
	StandardQty  decimal.Decimal `json:"standard_qty,omitempty"`
	MinThreshold decimal.Decimal `json:"min_threshold,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// BatchResultResponse respuesta de los lotes aplicados con éxito.
type BatchResultResponse struct {
	Processed int      `json:"processed"`
	UnitIDs   []string `json:"unit_ids"`
}

// StockUnitDTO representación JSON de una unidad de stock. Se usa en
// respuestas y en el round-trip de conciliación (preview -> commit), por lo
// que incluye la versión optimista.
type StockUnitDTO struct {
	LPN           string          `json:"lpn"`
	MaterialCode  string          `json:"material_code"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	Supplier      string          `json:"supplier,omitempty"`
	Lot           string          `json:"lot,omitempty"`
	SourceDoc     string          `json:"source_doc,omitempty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Width         decimal.Decimal `json:"width,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Zone          string          `json:"zone,omitempty"`
	Level         string          `json:"level,omitempty"`
	Status        string          `json:"status"`
	StandardQty   decimal.Decimal `json:"standard_qty,omitempty"`
	MinThreshold  decimal.Decimal `json:"min_threshold,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	InboundReason string          `json:"inbound_reason,omitempty"`
	Responsible   string          `json:"responsible,omitempty"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

// FromStockUnit mapea la entidad al DTO.
func FromStockUnit(u *entity.StockUnit) StockUnitDTO {
	return StockUnitDTO{
		LPN:           u.ID,
		MaterialCode:  u.MaterialCode,
		Name:          u.Name,
		Category:      u.Category,
		Brand:         u.Brand,
		Supplier:      u.Supplier,
		Lot:           u.Lot,
		SourceDoc:     u.SourceDoc,
		UnitCost:      u.UnitCost,
		Width:         u.Width,
		Quantity:      u.Quantity,
		Zone:          u.Zone,
		Level:         u.Level,
		Status:        u.Status,
		StandardQty:   u.StandardQty,
		MinThreshold:  u.MinThreshold,
		Notes:         u.Notes,
		InboundReason: u.InboundReason,
		Responsible:   u.Responsible,
		Version:       u.Version,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// ToEntity mapea el DTO a la entidad (round-trip de conciliación).
func (d StockUnitDTO) ToEntity() entity.StockUnit {
	return entity.StockUnit{
		ID:            d.LPN,
		MaterialCode:  d.MaterialCode,
		Name:          d.Name,
		Category:      d.Category,
		Brand:         d.Brand,
		Supplier:      d.Supplier,
		Lot:           d.Lot,
		SourceDoc:     d.SourceDoc,
		UnitCost:      d.UnitCost,
		Width:         d.Width,
		Quantity:      d.Quantity,
		Zone:          d.Zone,
		Level:         d.Level,
		Status:        d.Status,
		StandardQty:   d.StandardQty,
		MinThreshold:  d.MinThreshold,
		Notes:         d.Notes,
		InboundReason: d.InboundReason,
		Responsible:   d.Responsible,
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
