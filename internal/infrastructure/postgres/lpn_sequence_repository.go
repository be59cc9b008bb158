package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/config"
)

var _ repository.LPNAllocator = (*LPNSequenceRepo)(nil)

// LPNSequenceRepo asigna LPNs desde la tabla lpn_sequences con un
// UPDATE ... RETURNING atómico. Usado dentro de la transacción del lote:
// el incremento se revierte junto con el resto si el lote falla, y dos
// transacciones concurrentes nunca obtienen el mismo número (la fila de la
// secuencia queda bloqueada hasta el commit).
type LPNSequenceRepo struct {
	q   Querier
	cfg config.LPNConfig
}

// NewLPNSequenceRepository construye el asignador. Pasar pool o tx (Querier).
func NewLPNSequenceRepository(q Querier, cfg config.LPNConfig) *LPNSequenceRepo {
	return &LPNSequenceRepo{q: q, cfg: cfg}
}

// Next incrementa la secuencia y devuelve el LPN formateado:
// prefijo + número con relleno de ceros (p. ej. NZ-001042).
func (r *LPNSequenceRepo) Next(ctx context.Context) (string, error) {
	var lastNo int64
	err := r.q.QueryRow(ctx, `
		UPDATE lpn_sequences SET last_no = last_no + 1
		WHERE name = $1
		RETURNING last_no`, r.cfg.SequenceName).Scan(&lastNo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("secuencia LPN %q no inicializada", r.cfg.SequenceName)
		}
		return "", fmt.Errorf("next LPN: %w", err)
	}
	format := fmt.Sprintf("%s%%0%dd", r.cfg.Prefix, r.cfg.Padding)
	return fmt.Sprintf(format, lastNo), nil
}
