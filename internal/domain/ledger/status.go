package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// Epsilon es la tolerancia numérica para comparar cantidades continuas
// (metros lineales de tela con decimales de redondeo).
var Epsilon = decimal.NewFromFloat(0.001)

// ComputeStatus determina el estado de una unidad a partir de su cantidad
// restante y su cantidad estándar (servicio de dominio, puro).
// DEPLETED si la cantidad ≈ 0; CLOSED si alcanza o supera la estándar;
// OPEN en cualquier otro caso.
func ComputeStatus(quantity, standardQty decimal.Decimal) string {
	if quantity.LessThanOrEqual(Epsilon) {
		return entity.StatusDepleted
	}
	if standardQty.GreaterThan(decimal.Zero) && quantity.GreaterThanOrEqual(standardQty) {
		return entity.StatusClosed
	}
	return entity.StatusOpen
}

// QuantitiesEqual compara dos cantidades dentro de Epsilon.
func QuantitiesEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}
