package repository

import "context"

// LPNAllocator emite identificadores de unidad (LPN) con unicidad
// garantizada. La implementación incrementa una secuencia en la misma
// transacción que persiste la unidad: si la transacción se revierte, el
// número no queda quemado para siempre pero tampoco se duplica.
type LPNAllocator interface {
	Next(ctx context.Context) (string, error)
}
