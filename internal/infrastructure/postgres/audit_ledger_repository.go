package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.AuditLedger = (*AuditLedgerRepo)(nil)

// AuditLedgerRepo implementación del libro de auditoría sobre PostgreSQL
// (usable con pool o tx). Solo inserta y consulta: la tabla audit_entries
// no recibe UPDATE ni DELETE desde esta aplicación.
type AuditLedgerRepo struct {
	q Querier
}

// NewAuditLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLedgerRepository(q Querier) *AuditLedgerRepo {
	return &AuditLedgerRepo{q: q}
}

const auditColumns = `
	id, ts, actor_name, actor_email, actor_role, action, material_code,
	unit_id, lot, quantity_delta, value, narrative, document_ref,
	category, reason, counterparty`

// Append persiste un asiento. Asigna uuid si el caller no trae ID.
func (r *AuditLedgerRepo) Append(ctx context.Context, entry *entity.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_entries (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.Timestamp, entry.Actor.Name, entry.Actor.Email,
		entry.Actor.Role, entry.Action, entry.MaterialCode, entry.UnitID,
		entry.Lot, entry.QuantityDelta, entry.Value, entry.Narrative,
		entry.DocumentRef, entry.Category, entry.Reason, entry.Counterparty,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func scanAuditEntries(rows pgx.Rows) ([]*entity.AuditEntry, error) {
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Actor.Name, &e.Actor.Email, &e.Actor.Role,
			&e.Action, &e.MaterialCode, &e.UnitID, &e.Lot, &e.QuantityDelta,
			&e.Value, &e.Narrative, &e.DocumentRef, &e.Category, &e.Reason,
			&e.Counterparty,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ListByUnit devuelve los asientos de una unidad, más recientes primero.
func (r *AuditLedgerRepo) ListByUnit(ctx context.Context, unitID string) ([]*entity.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_entries WHERE unit_id = $1 ORDER BY ts DESC`
	rows, err := r.q.Query(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("list audit by unit: %w", err)
	}
	return scanAuditEntries(rows)
}

// ListAll devuelve el libro paginado, más recientes primero.
func (r *AuditLedgerRepo) ListAll(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_entries ORDER BY ts DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return scanAuditEntries(rows)
}
