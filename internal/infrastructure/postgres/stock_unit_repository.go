package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.StockUnitRepository = (*StockUnitRepo)(nil)

// StockUnitRepo implementación de StockUnitRepository sobre PostgreSQL
// (usable con pool o tx).
type StockUnitRepo struct {
	q Querier
}

// NewStockUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockUnitRepository(q Querier) *StockUnitRepo {
	return &StockUnitRepo{q: q}
}

// stockUnitRow es el DTO de fila: el backend histórico usó nombres de
// columna inconsistentes, así que el mapeo nombre-de-columna ↔ campo vive
// solo aquí y siempre se escribe la forma canónica.
type stockUnitRow struct {
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
	Status        string
	StandardQty   decimal.Decimal
	MinThreshold  decimal.Decimal
	Notes         string
	InboundReason string
	Responsible   string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Columnas canónicas; las variantes heredadas (p. ej. "ubicacion_zona",
// "codigoMaterial") se exponen como alias en la vista de compatibilidad de
// la BD, nunca en este código.
const stockUnitColumns = `
	id, material_code, name, category, brand, supplier, lot, source_doc,
	unit_cost, width, quantity, zone, level, status, standard_qty,
	min_threshold, notes, inbound_reason, responsible, version,
	created_at, updated_at`

func (r stockUnitRow) toEntity() *entity.StockUnit {
	return &entity.StockUnit{
		ID:            r.ID,
		MaterialCode:  r.MaterialCode,
		Name:          r.Name,
		Category:      r.Category,
		Brand:         r.Brand,
		Supplier:      r.Supplier,
		Lot:           r.Lot,
		SourceDoc:     r.SourceDoc,
		UnitCost:      r.UnitCost,
		Width:         r.Width,
		Quantity:      r.Quantity,
		Zone:          r.Zone,
		Level:         r.Level,
		Status:        r.Status,
		StandardQty:   r.StandardQty,
		MinThreshold:  r.MinThreshold,
		Notes:         r.Notes,
		InboundReason: r.InboundReason,
		Responsible:   r.Responsible,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func scanStockUnit(row pgx.Row) (*entity.StockUnit, error) {
	var u stockUnitRow
	err := row.Scan(
		&u.ID, &u.MaterialCode, &u.Name, &u.Category, &u.Brand, &u.Supplier,
		&u.Lot, &u.SourceDoc, &u.UnitCost, &u.Width, &u.Quantity, &u.Zone,
		&u.Level, &u.Status, &u.StandardQty, &u.MinThreshold, &u.Notes,
		&u.InboundReason, &u.Responsible, &u.Version, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u.toEntity(), nil
}

// ListAll devuelve todas las unidades ordenadas por identificador.
func (r *StockUnitRepo) ListAll(ctx context.Context) ([]*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + ` FROM stock_units ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock units: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockUnit
	for rows.Next() {
		u, err := scanStockUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock unit: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetByID obtiene una unidad por LPN. nil, nil si no existe.
func (r *StockUnitRepo) GetByID(ctx context.Context, id string) (*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + ` FROM stock_units WHERE id = $1`
	u, err := scanStockUnit(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock unit: %w", err)
	}
	return u, nil
}

// GetForUpdate obtiene la unidad y bloquea la fila (SELECT FOR UPDATE).
// nil, nil si no existe.
func (r *StockUnitRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockUnit, error) {
	query := `SELECT ` + stockUnitColumns + ` FROM stock_units WHERE id = $1 FOR UPDATE`
	u, err := scanStockUnit(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock unit for update: %w", err)
	}
	return u, nil
}

// UpsertMany inserta o actualiza unidades en bloque.
func (r *StockUnitRepo) UpsertMany(ctx context.Context, units []*entity.StockUnit) error {
	query := `
		INSERT INTO stock_units (` + stockUnitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (id) DO UPDATE SET
			material_code = EXCLUDED.material_code, name = EXCLUDED.name,
			category = EXCLUDED.category, brand = EXCLUDED.brand,
			supplier = EXCLUDED.supplier, lot = EXCLUDED.lot,
			source_doc = EXCLUDED.source_doc, unit_cost = EXCLUDED.unit_cost,
			width = EXCLUDED.width, quantity = EXCLUDED.quantity,
			zone = EXCLUDED.zone, level = EXCLUDED.level,
			status = EXCLUDED.status, standard_qty = EXCLUDED.standard_qty,
			min_threshold = EXCLUDED.min_threshold, notes = EXCLUDED.notes,
			inbound_reason = EXCLUDED.inbound_reason,
			responsible = EXCLUDED.responsible, version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`
	for _, u := range units {
		_, err := r.q.Exec(ctx, query,
			u.ID, u.MaterialCode, u.Name, u.Category, u.Brand, u.Supplier,
			u.Lot, u.SourceDoc, u.UnitCost, u.Width, u.Quantity, u.Zone,
			u.Level, u.Status, u.StandardQty, u.MinThreshold, u.Notes,
			u.InboundReason, u.Responsible, u.Version, u.CreatedAt, u.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("upsert stock unit %s: %w", u.ID, domain.ErrDuplicate)
			}
			return fmt.Errorf("upsert stock unit %s: %w", u.ID, err)
		}
	}
	return nil
}

// Update escribe la unidad con verificación optimista: solo si la versión
// persistida coincide con expectedVersion, incrementándola en uno.
func (r *StockUnitRepo) Update(ctx context.Context, unit *entity.StockUnit, expectedVersion int64) error {
	query := `
		UPDATE stock_units SET
			material_code = $2, name = $3, category = $4, brand = $5,
			supplier = $6, lot = $7, source_doc = $8, unit_cost = $9,
			width = $10, quantity = $11, zone = $12, level = $13,
			status = $14, standard_qty = $15, min_threshold = $16,
			notes = $17, inbound_reason = $18, responsible = $19,
			version = version + 1, updated_at = $20
		WHERE id = $1 AND version = $21`
	tag, err := r.q.Exec(ctx, query,
		unit.ID, unit.MaterialCode, unit.Name, unit.Category, unit.Brand,
		unit.Supplier, unit.Lot, unit.SourceDoc, unit.UnitCost, unit.Width,
		unit.Quantity, unit.Zone, unit.Level, unit.Status, unit.StandardQty,
		unit.MinThreshold, unit.Notes, unit.InboundReason, unit.Responsible,
		unit.UpdatedAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update stock unit %s: %w", unit.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distingue fila inexistente de versión obsoleta.
		existing, err := r.GetByID(ctx, unit.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("unidad %s: %w", unit.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("unidad %s: %w", unit.ID, domain.ErrConflict)
	}
	unit.Version = expectedVersion + 1
	return nil
}

// DeleteByID borra físicamente la unidad.
func (r *StockUnitRepo) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock unit %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unidad %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
