package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domledger "github.com/jhoicas/kardex-api/internal/domain/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria: emulan el TxRunner de PostgreSQL con semántica real de
// commit/rollback (el callback trabaja sobre una copia; solo un retorno sin
// error la publica). Así los tests de atomicidad verifican exactamente el
// contrato "todo o nada" sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	units  map[string]*entity.StockUnit
	audit  []*entity.AuditEntry
	lastNo int64
}

func newMemState() *memState {
	return &memState{units: make(map[string]*entity.StockUnit)}
}

func (s *memState) clone() *memState {
	cp := &memState{
		units:  make(map[string]*entity.StockUnit, len(s.units)),
		audit:  append([]*entity.AuditEntry(nil), s.audit...),
		lastNo: s.lastNo,
	}
	for id, u := range s.units {
		dup := *u
		cp.units[id] = &dup
	}
	return cp
}

type memUnitRepo struct{ s *memState }

func (r *memUnitRepo) ListAll(_ context.Context) ([]*entity.StockUnit, error) {
	ids := make([]string, 0, len(r.s.units))
	for id := range r.s.units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*entity.StockUnit, 0, len(ids))
	for _, id := range ids {
		dup := *r.s.units[id]
		out = append(out, &dup)
	}
	return out, nil
}

func (r *memUnitRepo) GetByID(_ context.Context, id string) (*entity.StockUnit, error) {
	u, ok := r.s.units[id]
	if !ok {
		return nil, nil
	}
	dup := *u
	return &dup, nil
}

func (r *memUnitRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockUnit, error) {
	return r.GetByID(ctx, id)
}

func (r *memUnitRepo) UpsertMany(_ context.Context, units []*entity.StockUnit) error {
	for _, u := range units {
		dup := *u
		r.s.units[u.ID] = &dup
	}
	return nil
}

func (r *memUnitRepo) Update(_ context.Context, unit *entity.StockUnit, expectedVersion int64) error {
	existing, ok := r.s.units[unit.ID]
	if !ok {
		return fmt.Errorf("unidad %s: %w", unit.ID, domain.ErrNotFound)
	}
	if existing.Version != expectedVersion {
		return fmt.Errorf("unidad %s: %w", unit.ID, domain.ErrConflict)
	}
	dup := *unit
	dup.Version = expectedVersion + 1
	r.s.units[unit.ID] = &dup
	unit.Version = dup.Version
	return nil
}

func (r *memUnitRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.s.units[id]; !ok {
		return fmt.Errorf("unidad %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.units, id)
	return nil
}

type memAuditRepo struct {
	s          *memState
	failAppend bool
}

func (r *memAuditRepo) Append(_ context.Context, entry *entity.AuditEntry) error {
	if r.failAppend {
		return errors.New("append audit entry: conexión perdida")
	}
	dup := *entry
	if dup.ID == "" {
		dup.ID = fmt.Sprintf("audit-%04d", len(r.s.audit)+1)
	}
	r.s.audit = append(r.s.audit, &dup)
	return nil
}

func (r *memAuditRepo) ListByUnit(_ context.Context, unitID string) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		if r.s.audit[i].UnitID == unitID {
			out = append(out, r.s.audit[i])
		}
	}
	return out, nil
}

func (r *memAuditRepo) ListAll(_ context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		out = append(out, r.s.audit[i])
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memLPN struct{ s *memState }

func (r *memLPN) Next(_ context.Context) (string, error) {
	r.s.lastNo++
	return fmt.Sprintf("NZ-%06d", r.s.lastNo), nil
}

type memTxRunner struct {
	state      *memState
	failAppend bool
}

func (r *memTxRunner) Run(_ context.Context, fn func(
	unitRepo repository.StockUnitRepository,
	auditRepo repository.AuditLedger,
	lpnRepo repository.LPNAllocator,
) error) error {
	tx := r.state.clone()
	err := fn(&memUnitRepo{s: tx}, &memAuditRepo{s: tx, failAppend: r.failAppend}, &memLPN{s: tx})
	if err != nil {
		return err // rollback: la copia se descarta
	}
	*r.state = *tx // commit
	return nil
}

var testActor = entity.Actor{Name: "Jhoana Castillo", Email: "jhoana@kardex.test", Role: "bodeguera"}

func seedUnit(s *memState, id string, qty, standard float64) {
	s.units[id] = &entity.StockUnit{
		ID:           id,
		MaterialCode: "MAT-01",
		Name:         "Lino crudo",
		Lot:          "L-77",
		SourceDoc:    "REM-100",
		UnitCost:     decimal.NewFromFloat(2.5),
		Quantity:     decimal.NewFromFloat(qty),
		StandardQty:  decimal.NewFromFloat(standard),
		Status:       domledger.ComputeStatus(decimal.NewFromFloat(qty), decimal.NewFromFloat(standard)),
		Version:      1,
	}
}

func inboundItem(material string, qty float64) appledger.InboundItem {
	return appledger.InboundItem{
		MaterialCode: material,
		Name:         "Tela " + material,
		Lot:          "L-01",
		SourceDoc:    "REM-001",
		UnitCost:     decimal.NewFromFloat(3),
		Quantity:     decimal.NewFromFloat(qty),
		StandardQty:  decimal.NewFromFloat(50),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Entrada de mercancía
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessInboundBatch_AsignaLPNYAsientaUnaVezPorUnidad(t *testing.T) {
	state := newMemState()
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	result, err := uc.ProcessInboundBatch(context.Background(),
		[]appledger.InboundItem{inboundItem("MAT-01", 30), inboundItem("MAT-02", 80)}, testActor)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, []string{"NZ-000001", "NZ-000002"}, result.UnitIDs)

	require.Len(t, state.units, 2)
	assert.Equal(t, entity.StatusOpen, state.units["NZ-000001"].Status, "30 < 50 estándar")
	assert.Equal(t, entity.StatusClosed, state.units["NZ-000002"].Status, "80 >= 50 estándar")
	assert.Equal(t, int64(1), state.units["NZ-000001"].Version)

	// Exactamente un asiento por unidad, con delta igual al alta.
	require.Len(t, state.audit, 2)
	for i, id := range result.UnitIDs {
		entry := state.audit[i]
		assert.Equal(t, entity.ActionEntryRegistered, entry.Action)
		assert.Equal(t, id, entry.UnitID)
		assert.True(t, entry.QuantityDelta.Equal(state.units[id].Quantity),
			"el delta del asiento debe coincidir con el cambio de saldo")
		assert.Equal(t, testActor, entry.Actor)
	}
}

func TestProcessInboundBatch_ValidacionFallaItem3_NadaSeAplica(t *testing.T) {
	state := newMemState()
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	items := []appledger.InboundItem{
		inboundItem("MAT-01", 10),
		inboundItem("MAT-02", 20),
		inboundItem("MAT-03", 0), // inválido: cantidad cero
		inboundItem("MAT-04", 40),
		inboundItem("MAT-05", 50),
	}
	_, err := uc.ProcessInboundBatch(context.Background(), items, testActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "ítem 3")

	// Regresión de atomicidad: ni los ítems 1 y 2 quedaron confirmados.
	assert.Empty(t, state.units, "el store debe quedar exactamente como antes del lote")
	assert.Empty(t, state.audit)
}

func TestProcessInboundBatch_IdentificadorExplicitoDuplicado(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 10, 20)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	item := inboundItem("MAT-09", 5)
	item.ID = "NZ-1001"
	_, err := uc.ProcessInboundBatch(context.Background(), []appledger.InboundItem{item}, testActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, state.units, 1, "la colisión no debe tocar la unidad existente")
	assert.Empty(t, state.audit)
}

func TestProcessInboundBatch_IdentificadorMalFormado(t *testing.T) {
	uc := appledger.NewBatchUseCase(&memTxRunner{state: newMemState()})
	item := inboundItem("MAT-01", 5)
	item.ID = "123-XYZ"
	_, err := uc.ProcessInboundBatch(context.Background(), []appledger.InboundItem{item}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas
// ──────────────────────────────────────────────────────────────────────────────

func withdrawal(id string, qty float64, reason string) appledger.WithdrawalItem {
	return appledger.WithdrawalItem{UnitID: id, Quantity: decimal.NewFromFloat(qty), Reason: reason}
}

func TestProcessWithdrawalBatch_VentaParcial(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 10.0, 20.0)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	result, err := uc.ProcessWithdrawalBatch(context.Background(),
		[]appledger.WithdrawalItem{withdrawal("NZ-1001", 4.0, "SALE")}, testActor)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	u := state.units["NZ-1001"]
	assert.True(t, u.Quantity.Equal(decimal.NewFromFloat(6.0)), "10.00 - 4.00 = 6.00")
	assert.Equal(t, entity.StatusOpen, u.Status)
	assert.Equal(t, int64(2), u.Version, "la versión se incrementa en cada escritura")

	require.Len(t, state.audit, 1)
	entry := state.audit[0]
	assert.Equal(t, entity.ActionWithdrawalSale, entry.Action)
	assert.True(t, entry.QuantityDelta.Equal(decimal.NewFromFloat(-4.0)))
	assert.Equal(t, "SALE", entry.Reason)
}

func TestProcessWithdrawalBatch_SaldoInsuficiente_StoreIntacto(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 10.0, 20.0)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	_, err := uc.ProcessWithdrawalBatch(context.Background(),
		[]appledger.WithdrawalItem{withdrawal("NZ-1001", 20.0, "SALE")}, testActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	u := state.units["NZ-1001"]
	assert.True(t, u.Quantity.Equal(decimal.NewFromFloat(10.0)), "el saldo no debe cambiar")
	assert.Equal(t, int64(1), u.Version)
	assert.Empty(t, state.audit)
}

func TestProcessWithdrawalBatch_LoteAtomico(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 10.0, 20.0)
	seedUnit(state, "NZ-1002", 3.0, 20.0)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	// El primer ítem es válido; el segundo excede el saldo. Nada se aplica.
	_, err := uc.ProcessWithdrawalBatch(context.Background(), []appledger.WithdrawalItem{
		withdrawal("NZ-1001", 4.0, "SALE"),
		withdrawal("NZ-1002", 9.0, "DAMAGE"),
	}, testActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, state.units["NZ-1001"].Quantity.Equal(decimal.NewFromFloat(10.0)),
		"el ítem 1 tampoco debe quedar confirmado")
	assert.Empty(t, state.audit)
}

func TestProcessWithdrawalBatch_AgotaLaUnidad(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 5.0, 20.0)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	_, err := uc.ProcessWithdrawalBatch(context.Background(),
		[]appledger.WithdrawalItem{withdrawal("NZ-1001", 5.0, "AUDIT")}, testActor)
	require.NoError(t, err)

	u := state.units["NZ-1001"]
	assert.Equal(t, entity.StatusDepleted, u.Status)
	assert.True(t, u.Quantity.IsZero())
	assert.Equal(t, entity.ActionWithdrawalAudit, state.audit[0].Action)
}

func TestProcessWithdrawalBatch_VersionObsoleta_Conflict(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 10.0, 20.0)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	item := withdrawal("NZ-1001", 2.0, "SALE")
	item.Version = 5 // el caller leyó una versión que ya no existe
	_, err := uc.ProcessWithdrawalBatch(context.Background(), []appledger.WithdrawalItem{item}, testActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, state.units["NZ-1001"].Quantity.Equal(decimal.NewFromFloat(10.0)))
}

func TestProcessWithdrawalBatch_UnidadInexistente(t *testing.T) {
	uc := appledger.NewBatchUseCase(&memTxRunner{state: newMemState()})
	_, err := uc.ProcessWithdrawalBatch(context.Background(),
		[]appledger.WithdrawalItem{withdrawal("NZ-9999", 1.0, "SALE")}, testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessWithdrawalBatch_MotivoDesconocido(t *testing.T) {
	uc := appledger.NewBatchUseCase(&memTxRunner{state: newMemState()})
	_, err := uc.ProcessWithdrawalBatch(context.Background(),
		[]appledger.WithdrawalItem{withdrawal("NZ-1001", 1.0, "ROBO")}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcessWithdrawalBatch_FalloAlAsentar_AbortaTodo(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 10.0, 20.0)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state, failAppend: true})

	_, err := uc.ProcessWithdrawalBatch(context.Background(),
		[]appledger.WithdrawalItem{withdrawal("NZ-1001", 4.0, "SALE")}, testActor)
	require.Error(t, err, "una mutación jamás se confirma sin su asiento de auditoría")
	assert.True(t, state.units["NZ-1001"].Quantity.Equal(decimal.NewFromFloat(10.0)))
	assert.Empty(t, state.audit)
}

// El libro reconstruye el saldo: tras cualquier secuencia de lotes, la suma
// de deltas de una unidad es igual a su saldo, y el saldo nunca es negativo.
func TestSecuenciaDeLotes_SumaDeDeltasIgualASaldo(t *testing.T) {
	state := newMemState()
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})
	ctx := context.Background()

	_, err := uc.ProcessInboundBatch(ctx, []appledger.InboundItem{inboundItem("MAT-01", 10)}, testActor)
	require.NoError(t, err)
	id := "NZ-000001"

	_, err = uc.ProcessWithdrawalBatch(ctx, []appledger.WithdrawalItem{withdrawal(id, 3, "SALE")}, testActor)
	require.NoError(t, err)
	_, err = uc.ProcessWithdrawalBatch(ctx, []appledger.WithdrawalItem{withdrawal(id, 7, "EXCHANGE")}, testActor)
	require.NoError(t, err)

	// Un retiro más debe fallar: el saldo es cero.
	_, err = uc.ProcessWithdrawalBatch(ctx, []appledger.WithdrawalItem{withdrawal(id, 0.5, "SALE")}, testActor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	sum := decimal.Zero
	for _, e := range state.audit {
		if e.UnitID == id {
			sum = sum.Add(e.QuantityDelta)
		}
	}
	u := state.units[id]
	assert.True(t, sum.Equal(u.Quantity), "suma de deltas (%s) = saldo (%s)", sum, u.Quantity)
	assert.False(t, u.Quantity.IsNegative(), "el saldo nunca puede ser negativo")
	assert.Equal(t, entity.StatusDepleted, u.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestReconciliation_PreviewYCommit(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1000", 10.0, 20.0)
	seedUnit(state, "NZ-2000", 5.0, 20.0)
	seedUnit(state, "NZ-3000", 7.0, 20.0)
	runner := &memTxRunner{state: state}
	uc := appledger.NewReconciliationUseCase(runner, &memUnitRepo{s: state})
	ctx := context.Background()

	snapshot := []domledger.SnapshotRow{
		{ID: "NZ-1000", MaterialCode: "MAT-01", Name: "Lino crudo", Quantity: decimal.NewFromFloat(6.0)}, // CHANGED
		{ID: "NZ-2000", MaterialCode: "MAT-01", Name: "Lino crudo", Quantity: decimal.NewFromFloat(5.0)}, // UNCHANGED
		{MaterialCode: "MAT-09", Name: "Tul bordado", Quantity: decimal.NewFromFloat(3.0)},               // NEW sin LPN
		// NZ-3000 ausente → DELETED
	}
	rows, err := uc.Preview(ctx, snapshot)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	result, err := uc.Commit(ctx, rows, testActor)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed, "UNCHANGED no cuenta: ni escritura ni asiento")

	// CHANGED aplicado con incremento de versión.
	assert.True(t, state.units["NZ-1000"].Quantity.Equal(decimal.NewFromFloat(6.0)))
	assert.Equal(t, int64(2), state.units["NZ-1000"].Version)
	// DELETED: borrado físico.
	assert.NotContains(t, state.units, "NZ-3000")
	// NEW: LPN asignado por la secuencia.
	assert.Contains(t, state.units, "NZ-000001")

	actions := make(map[string]*entity.AuditEntry)
	for _, e := range state.audit {
		actions[e.Action] = e
	}
	require.Len(t, state.audit, 3, "un asiento por fila aplicada, ninguno para UNCHANGED")
	assert.True(t, actions[entity.ActionBulkUpdate].QuantityDelta.Equal(decimal.NewFromFloat(-4.0)))
	assert.Contains(t, actions[entity.ActionBulkUpdate].Narrative, domledger.FieldQuantity)
	assert.True(t, actions[entity.ActionBulkDelete].QuantityDelta.Equal(decimal.NewFromFloat(-7.0)),
		"el borrado asienta el saldo perdido para no romper la reconstrucción del libro")
	assert.True(t, actions[entity.ActionBulkCreate].QuantityDelta.Equal(decimal.NewFromFloat(3.0)))
}

func TestReconciliation_Commit_VersionObsoleta_NadaSeAplica(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1000", 10.0, 20.0)
	runner := &memTxRunner{state: state}
	uc := appledger.NewReconciliationUseCase(runner, &memUnitRepo{s: state})
	ctx := context.Background()

	rows, err := uc.Preview(ctx, []domledger.SnapshotRow{
		{ID: "NZ-1000", MaterialCode: "MAT-01", Name: "Lino crudo", Quantity: decimal.NewFromFloat(6.0)},
	})
	require.NoError(t, err)

	// Otro proceso modifica la unidad entre preview y commit.
	state.units["NZ-1000"].Version = 4

	_, err = uc.Commit(ctx, rows, testActor)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, state.units["NZ-1000"].Quantity.Equal(decimal.NewFromFloat(10.0)))
	assert.Empty(t, state.audit)
}

func TestReconciliation_Commit_ClaseDesconocida(t *testing.T) {
	uc := appledger.NewReconciliationUseCase(&memTxRunner{state: newMemState()}, &memUnitRepo{s: newMemState()})
	_, err := uc.Commit(context.Background(),
		[]domledger.ReconciliationRow{{Class: "MERGE"}}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición manual
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateUnit_EdicionManualConAsiento(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 10.0, 20.0)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	err := uc.UpdateUnit(context.Background(), appledger.ManualEditInput{
		ID:           "NZ-1001",
		Version:      1,
		MaterialCode: "MAT-01",
		Name:         "Lino crudo",
		UnitCost:     decimal.NewFromFloat(2.5),
		Quantity:     decimal.NewFromFloat(12.0),
		StandardQty:  decimal.NewFromFloat(20.0),
	}, testActor)
	require.NoError(t, err)

	u := state.units["NZ-1001"]
	assert.True(t, u.Quantity.Equal(decimal.NewFromFloat(12.0)))
	assert.Equal(t, int64(2), u.Version)

	require.Len(t, state.audit, 1)
	assert.Equal(t, entity.ActionManualEdit, state.audit[0].Action)
	assert.True(t, state.audit[0].QuantityDelta.Equal(decimal.NewFromFloat(2.0)),
		"el delta del asiento refleja el cambio de saldo de la edición")
}

func TestUpdateUnit_VersionIncorrecta_Conflict(t *testing.T) {
	state := newMemState()
	seedUnit(state, "NZ-1001", 10.0, 20.0)
	uc := appledger.NewBatchUseCase(&memTxRunner{state: state})

	err := uc.UpdateUnit(context.Background(), appledger.ManualEditInput{
		ID:           "NZ-1001",
		Version:      3,
		MaterialCode: "MAT-01",
		Quantity:     decimal.NewFromFloat(12.0),
	}, testActor)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, state.units["NZ-1001"].Quantity.Equal(decimal.NewFromFloat(10.0)))
}
