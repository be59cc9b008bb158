package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appledger "github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/config"
)

// Ensure TxRunner implements appledger.TxRunner.
var _ appledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es la
// pieza que hace atómicos los lotes: escritura de unidades, asientos de
// auditoría y consumo de la secuencia LPN comparten la misma transacción.
type TxRunner struct {
	pool *pgxpool.Pool
	lpn  config.LPNConfig
}

// NewTxRunner construye el runner con el pool y la configuración de LPN.
func NewTxRunner(pool *pgxpool.Pool, lpn config.LPNConfig) *TxRunner {
	return &TxRunner{pool: pool, lpn: lpn}
}

// Run inicia una transacción, ejecuta fn con repositorios atados a la tx y
// hace Commit o Rollback. La cancelación del contexto revierte todo sin
// dejar estado parcial.
func (r *TxRunner) Run(ctx context.Context, fn func(
	unitRepo repository.StockUnitRepository,
	auditRepo repository.AuditLedger,
	lpnRepo repository.LPNAllocator,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	unitRepo := NewStockUnitRepository(tx)
	auditRepo := NewAuditLedgerRepository(tx)
	lpnRepo := NewLPNSequenceRepository(tx, r.lpn)

	if err := fn(unitRepo, auditRepo, lpnRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
