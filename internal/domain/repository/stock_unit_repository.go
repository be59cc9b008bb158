package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// StockUnitRepository define el puerto de persistencia para unidades de
// stock. No valida invariantes de negocio: eso es responsabilidad de los
// casos de uso, que lo consumen dentro de transacciones.
type StockUnitRepository interface {
	ListAll(ctx context.Context) ([]*entity.StockUnit, error)
	// GetByID devuelve nil, nil si la unidad no existe.
	GetByID(ctx context.Context, id string) (*entity.StockUnit, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.StockUnit, error)
	UpsertMany(ctx context.Context, units []*entity.StockUnit) error
	// Update escribe la unidad solo si la versión persistida coincide con
	// expectedVersion; devuelve domain.ErrConflict si no coincide y
	// domain.ErrNotFound si la fila ya no existe.
	Update(ctx context.Context, unit *entity.StockUnit, expectedVersion int64) error
	DeleteByID(ctx context.Context, id string) error
}
