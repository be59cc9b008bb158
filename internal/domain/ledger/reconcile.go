package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// Clasificación de una fila de conciliación.
const (
	ClassNew       = "NEW"
	ClassChanged   = "CHANGED"
	ClassDeleted   = "DELETED"
	ClassUnchanged = "UNCHANGED"
)

// Campos que participan en el diff campo a campo.
const (
	FieldMaterialCode = "material_code"
	FieldName         = "name"
	FieldQuantity     = "quantity"
	FieldZone         = "zone"
	FieldLevel        = "level"
)

// SnapshotRow es una fila del estado deseado suministrado externamente
// (importación de inventario físico). Los campos decimales opcionales son
// punteros: nil significa "no suministrado, conservar el valor actual".
type SnapshotRow struct {
	ID           string
	MaterialCode string
	Name         string
	Quantity     decimal.Decimal
	Zone         string
	Level        string

	// Opcionales: completan filas NEW o sobreescriben si vienen informados.
	Category      string
	Brand         string
	Supplier      string
	Lot           string
	SourceDoc     string
	Notes         string
	InboundReason string
	UnitCost      *decimal.Decimal
	Width         *decimal.Decimal
	StandardQty   *decimal.Decimal
	MinThreshold  *decimal.Decimal
}

// ReconciliationRow es el resultado transitorio de comparar una fila del
// snapshot contra el estado actual. No se persiste.
type ReconciliationRow struct {
	Class         string
	Unit          entity.StockUnit // candidato fusionado (el snapshot gana)
	ChangedFields []string         // solo para CHANGED
	PriorQuantity decimal.Decimal  // saldo previo (CHANGED y DELETED)
}

// NormalizeID normaliza un identificador: quita espacios y pasa a mayúsculas.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// normText normaliza texto libre para comparación: trim + Unicode NFC.
// Los exports de hojas de cálculo mezclan NFC y NFD en los acentos.
func normText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ComputeDiff compara el snapshot contra las unidades actuales y clasifica
// cada fila como NEW, CHANGED, DELETED o UNCHANGED. Es una función pura e
// idempotente: no toca la persistencia.
//
// Reglas:
//   - Identificadores normalizados (trim + mayúsculas).
//   - Fila sin identificador y sin código de material → error de validación
//     con el índice de la fila (no se descarta en silencio).
//   - Identificador duplicado dentro del snapshot → error de validación.
//   - Fila sin identificador pero con material → NEW (el LPN se asigna al
//     confirmar).
//   - Cantidades comparadas con tolerancia Epsilon; texto comparado tras
//     normalización NFC.
//
// Orden de salida: filas NEW/CHANGED/UNCHANGED en el orden del snapshot,
// seguidas de las DELETED ordenadas por identificador ascendente.
func ComputeDiff(snapshot []SnapshotRow, current []*entity.StockUnit) ([]ReconciliationRow, error) {
	byID := make(map[string]*entity.StockUnit, len(current))
	for _, u := range current {
		byID[NormalizeID(u.ID)] = u
	}

	seen := make(map[string]bool, len(snapshot))
	matched := make(map[string]bool, len(snapshot))
	out := make([]ReconciliationRow, 0, len(snapshot))

	for i, row := range snapshot {
		id := NormalizeID(row.ID)
		if id == "" && strings.TrimSpace(row.MaterialCode) == "" {
			return nil, fmt.Errorf("fila %d del snapshot sin identificador ni código de material: %w", i+1, domain.ErrInvalidInput)
		}
		if id != "" {
			if seen[id] {
				return nil, fmt.Errorf("identificador %s repetido en el snapshot (fila %d): %w", id, i+1, domain.ErrDuplicate)
			}
			seen[id] = true
		}

		existing := byID[id]
		if id == "" || existing == nil {
			unit := newUnitFromSnapshot(row, id)
			out = append(out, ReconciliationRow{Class: ClassNew, Unit: unit})
			continue
		}
		matched[id] = true

		merged, changed := mergeUnit(existing, row)
		if len(changed) == 0 {
			out = append(out, ReconciliationRow{Class: ClassUnchanged, Unit: merged, PriorQuantity: existing.Quantity})
			continue
		}
		out = append(out, ReconciliationRow{
			Class:         ClassChanged,
			Unit:          merged,
			ChangedFields: changed,
			PriorQuantity: existing.Quantity,
		})
	}

	// Unidades actuales que el snapshot no menciona → DELETED.
	deleted := make([]ReconciliationRow, 0)
	for key, u := range byID {
		if !matched[key] {
			deleted = append(deleted, ReconciliationRow{Class: ClassDeleted, Unit: *u, PriorQuantity: u.Quantity})
		}
	}
	sort.Slice(deleted, func(a, b int) bool { return deleted[a].Unit.ID < deleted[b].Unit.ID })

	return append(out, deleted...), nil
}

// newUnitFromSnapshot construye el candidato de una fila NEW aplicando
// valores por defecto a los campos que el snapshot omite.
func newUnitFromSnapshot(row SnapshotRow, id string) entity.StockUnit {
	u := entity.StockUnit{
		ID:            id,
		MaterialCode:  strings.TrimSpace(row.MaterialCode),
		Name:          strings.TrimSpace(row.Name),
		Category:      strings.TrimSpace(row.Category),
		Brand:         strings.TrimSpace(row.Brand),
		Supplier:      strings.TrimSpace(row.Supplier),
		Lot:           strings.TrimSpace(row.Lot),
		SourceDoc:     strings.TrimSpace(row.SourceDoc),
		Quantity:      row.Quantity,
		Zone:          strings.TrimSpace(row.Zone),
		Level:         strings.TrimSpace(row.Level),
		Notes:         strings.TrimSpace(row.Notes),
		InboundReason: strings.TrimSpace(row.InboundReason),
	}
	if row.UnitCost != nil {
		u.UnitCost = *row.UnitCost
	}
	if row.Width != nil {
		u.Width = *row.Width
	}
	if row.StandardQty != nil {
		u.StandardQty = *row.StandardQty
	}
	if row.MinThreshold != nil {
		u.MinThreshold = *row.MinThreshold
	}
	u.Status = ComputeStatus(u.Quantity, u.StandardQty)
	return u
}

// mergeUnit superpone la fila del snapshot sobre la unidad existente (el
// snapshot gana en conflicto; los campos omitidos conservan el valor actual)
// y devuelve la lista de campos del diff que difieren.
func mergeUnit(existing *entity.StockUnit, row SnapshotRow) (entity.StockUnit, []string) {
	merged := *existing
	var changed []string

	if mc := strings.TrimSpace(row.MaterialCode); mc != "" {
		if normText(mc) != normText(existing.MaterialCode) {
			changed = append(changed, FieldMaterialCode)
		}
		merged.MaterialCode = mc
	}
	if name := strings.TrimSpace(row.Name); name != "" {
		if normText(name) != normText(existing.Name) {
			changed = append(changed, FieldName)
		}
		merged.Name = name
	}
	if !QuantitiesEqual(row.Quantity, existing.Quantity) {
		changed = append(changed, FieldQuantity)
	}
	merged.Quantity = row.Quantity
	if zone := strings.TrimSpace(row.Zone); normText(zone) != normText(existing.Zone) {
		changed = append(changed, FieldZone)
	}
	merged.Zone = strings.TrimSpace(row.Zone)
	if level := strings.TrimSpace(row.Level); normText(level) != normText(existing.Level) {
		changed = append(changed, FieldLevel)
	}
	merged.Level = strings.TrimSpace(row.Level)

	// Campos fuera del diff: sobreescriben solo si vienen informados.
	if v := strings.TrimSpace(row.Category); v != "" {
		merged.Category = v
	}
	if v := strings.TrimSpace(row.Brand); v != "" {
		merged.Brand = v
	}
	if v := strings.TrimSpace(row.Supplier); v != "" {
		merged.Supplier = v
	}
	if v := strings.TrimSpace(row.Lot); v != "" {
		merged.Lot = v
	}
	if v := strings.TrimSpace(row.SourceDoc); v != "" {
		merged.SourceDoc = v
	}
	if v := strings.TrimSpace(row.Notes); v != "" {
		merged.Notes = v
	}
	if row.UnitCost != nil {
		merged.UnitCost = *row.UnitCost
	}
	if row.Width != nil {
		merged.Width = *row.Width
	}
	if row.StandardQty != nil {
		merged.StandardQty = *row.StandardQty
	}
	if row.MinThreshold != nil {
		merged.MinThreshold = *row.MinThreshold
	}

	merged.Status = ComputeStatus(merged.Quantity, merged.StandardQty)
	return merged, changed
}
