package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de ciclo de vida de una unidad de stock.
const (
	StatusOpen     = "OPEN"     // cantidad por debajo de la estándar
	StatusClosed   = "CLOSED"   // cantidad igual o superior a la estándar
	StatusDepleted = "DEPLETED" // cantidad ≈ 0
)

// StockUnit representa un lote físico de material en una ubicación,
// identificado por un código tipo matrícula (LPN). La cantidad restante es
// el saldo autoritativo; nunca puede ser negativa.
type StockUnit struct {
	ID            string // LPN, único, asignado al crear, nunca reutilizado
	MaterialCode  string
	Name          string
	Category      string
	Brand         string
	Supplier      string
	Lot           string
	SourceDoc     string // remisión / documento de origen
	UnitCost      decimal.Decimal
	Width         decimal.Decimal // ancho nominal
	Quantity      decimal.Decimal // cantidad restante (saldo)
	Zone          string          // ubicación: zona (texto libre)
	Level         string          // ubicación: nivel (texto libre)
	Status        string          // OPEN | CLOSED | DEPLETED
	StandardQty   decimal.Decimal // cantidad estándar (informativa)
	MinThreshold  decimal.Decimal // mínimo de reposición (informativo)
	Notes         string
	InboundReason string
	Responsible   string
	Version       int64 // concurrencia optimista: se incrementa en cada update
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
