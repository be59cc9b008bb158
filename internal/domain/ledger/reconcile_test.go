package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func unit(id, material, name string, qty float64, zone, level string) *entity.StockUnit {
	return &entity.StockUnit{
		ID:           id,
		MaterialCode: material,
		Name:         name,
		Quantity:     decimal.NewFromFloat(qty),
		Zone:         zone,
		Level:        level,
		Status:       entity.StatusOpen,
		Version:      1,
	}
}

func row(id, material, name string, qty float64, zone, level string) ledger.SnapshotRow {
	return ledger.SnapshotRow{
		ID:           id,
		MaterialCode: material,
		Name:         name,
		Quantity:     decimal.NewFromFloat(qty),
		Zone:         zone,
		Level:        level,
	}
}

func classesOf(rows []ledger.ReconciliationRow) map[string]string {
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Unit.ID] = r.Class
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Clasificación
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeDiff_SnapshotIdentico_TodoUnchanged(t *testing.T) {
	current := []*entity.StockUnit{
		unit("NZ-2000", "MAT-01", "Lino crudo", 5.0, "A", "1"),
		unit("NZ-2001", "MAT-02", "Popelina", 12.5, "B", "2"),
	}
	snapshot := []ledger.SnapshotRow{
		row("NZ-2000", "MAT-01", "Lino crudo", 5.0, "A", "1"),
		row("NZ-2001", "MAT-02", "Popelina", 12.5, "B", "2"),
	}

	rows, err := ledger.ComputeDiff(snapshot, current)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, ledger.ClassUnchanged, r.Class,
			"un snapshot idéntico al store solo debe producir UNCHANGED")
		assert.Empty(t, r.ChangedFields)
	}
}

func TestComputeDiff_Idempotente(t *testing.T) {
	current := []*entity.StockUnit{
		unit("NZ-1000", "MAT-01", "Lino", 10, "A", "1"),
		unit("NZ-3000", "MAT-03", "Gabardina", 7, "C", "3"),
	}
	snapshot := []ledger.SnapshotRow{
		row("NZ-1000", "MAT-01", "Lino", 8, "A", "1"), // cantidad distinta
		row("", "MAT-09", "Dril nuevo", 4, "D", "1"),  // fila nueva sin LPN
	}

	first, err1 := ledger.ComputeDiff(snapshot, current)
	second, err2 := ledger.ComputeDiff(snapshot, current)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second, "el mismo input siempre debe producir el mismo diff")
}

func TestComputeDiff_UnidadAusenteDelSnapshot_Deleted(t *testing.T) {
	current := []*entity.StockUnit{unit("NZ-3000", "MAT-03", "Gabardina", 7, "C", "3")}

	rows, err := ledger.ComputeDiff(nil, current)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ledger.ClassDeleted, rows[0].Class)
	assert.Equal(t, "NZ-3000", rows[0].Unit.ID)
	assert.True(t, rows[0].PriorQuantity.Equal(decimal.NewFromInt(7)),
		"la fila DELETED debe conservar el saldo previo")
}

func TestComputeDiff_FilaSinMatch_New(t *testing.T) {
	rows, err := ledger.ComputeDiff(
		[]ledger.SnapshotRow{row("NZ-9000", "MAT-07", "Tul", 3, "E", "2")}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ledger.ClassNew, rows[0].Class)
	assert.Equal(t, "NZ-9000", rows[0].Unit.ID)
}

func TestComputeDiff_CamposModificados(t *testing.T) {
	current := []*entity.StockUnit{unit("NZ-1000", "MAT-01", "Lino", 10, "A", "1")}
	snapshot := []ledger.SnapshotRow{row("NZ-1000", "MAT-01", "Lino lavado", 8, "B", "1")}

	rows, err := ledger.ComputeDiff(snapshot, current)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ledger.ClassChanged, rows[0].Class)
	assert.ElementsMatch(t,
		[]string{ledger.FieldName, ledger.FieldQuantity, ledger.FieldZone},
		rows[0].ChangedFields)
	// El snapshot gana en el candidato fusionado.
	assert.Equal(t, "Lino lavado", rows[0].Unit.Name)
	assert.True(t, rows[0].Unit.Quantity.Equal(decimal.NewFromInt(8)))
	// La versión del store se conserva para la verificación optimista.
	assert.Equal(t, int64(1), rows[0].Unit.Version)
}

func TestComputeDiff_CantidadDentroDeEpsilon_Unchanged(t *testing.T) {
	current := []*entity.StockUnit{unit("NZ-1000", "MAT-01", "Lino", 10.0, "A", "1")}
	snapshot := []ledger.SnapshotRow{row("NZ-1000", "MAT-01", "Lino", 10.0005, "A", "1")}

	rows, err := ledger.ComputeDiff(snapshot, current)
	require.NoError(t, err)
	assert.Equal(t, ledger.ClassUnchanged, rows[0].Class,
		"diferencias menores a 0.001 no cuentan como cambio")
}

// ──────────────────────────────────────────────────────────────────────────────
// Normalización y validación
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeDiff_IdentificadorNormalizado(t *testing.T) {
	current := []*entity.StockUnit{unit("NZ-1000", "MAT-01", "Lino", 10, "A", "1")}
	snapshot := []ledger.SnapshotRow{row("  nz-1000 ", "MAT-01", "Lino", 10, "A", "1")}

	rows, err := ledger.ComputeDiff(snapshot, current)
	require.NoError(t, err)
	assert.Equal(t, ledger.ClassUnchanged, rows[0].Class,
		"el identificador se compara tras trim y mayúsculas")
}

func TestComputeDiff_NombreConAcentosNFD_Unchanged(t *testing.T) {
	// "Algodón" con la ó precompuesta (NFC) en el store y descompuesta
	// (o + combining acute, NFD) en el snapshot, como exportan algunas hojas.
	current := []*entity.StockUnit{unit("NZ-1000", "MAT-01", "Algodón", 10, "A", "1")}
	snapshot := []ledger.SnapshotRow{row("NZ-1000", "MAT-01", "Algodón", 10, "A", "1")}

	rows, err := ledger.ComputeDiff(snapshot, current)
	require.NoError(t, err)
	assert.Equal(t, ledger.ClassUnchanged, rows[0].Class,
		"la comparación de texto debe normalizar NFC antes de comparar")
}

func TestComputeDiff_FilaSinIdNiMaterial_Error(t *testing.T) {
	snapshot := []ledger.SnapshotRow{
		row("NZ-1000", "MAT-01", "Lino", 10, "A", "1"),
		{Quantity: decimal.NewFromInt(3)}, // fila 2: sin id y sin material
	}
	_, err := ledger.ComputeDiff(snapshot, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "fila 2", "el error debe señalar la fila problemática")
}

func TestComputeDiff_IdentificadorDuplicadoEnSnapshot_Error(t *testing.T) {
	snapshot := []ledger.SnapshotRow{
		row("NZ-1000", "MAT-01", "Lino", 10, "A", "1"),
		row("nz-1000", "MAT-01", "Lino", 12, "A", "1"), // mismo LPN tras normalizar
	}
	_, err := ledger.ComputeDiff(snapshot, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden de salida
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeDiff_DeletedAlFinalYOrdenadas(t *testing.T) {
	current := []*entity.StockUnit{
		unit("NZ-5000", "MAT-05", "Paño", 1, "A", "1"),
		unit("NZ-4000", "MAT-04", "Denim", 2, "A", "2"),
		unit("NZ-1000", "MAT-01", "Lino", 10, "A", "1"),
	}
	snapshot := []ledger.SnapshotRow{row("NZ-1000", "MAT-01", "Lino", 10, "A", "1")}

	rows, err := ledger.ComputeDiff(snapshot, current)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ledger.ClassUnchanged, rows[0].Class)
	assert.Equal(t, "NZ-4000", rows[1].Unit.ID, "las DELETED van al final, ordenadas por LPN")
	assert.Equal(t, "NZ-5000", rows[2].Unit.ID)
	assert.Equal(t, ledger.ClassDeleted, rows[1].Class)
	assert.Equal(t, ledger.ClassDeleted, rows[2].Class)
}

func TestComputeDiff_MixtoCompleto(t *testing.T) {
	current := []*entity.StockUnit{
		unit("NZ-1000", "MAT-01", "Lino", 10, "A", "1"),
		unit("NZ-3000", "MAT-03", "Gabardina", 7, "C", "3"),
	}
	snapshot := []ledger.SnapshotRow{
		row("NZ-1000", "MAT-01", "Lino", 6, "A", "1"),  // CHANGED
		row("NZ-9000", "MAT-09", "Tul", 3, "E", "2"),   // NEW
	}

	rows, err := ledger.ComputeDiff(snapshot, current)
	require.NoError(t, err)
	classes := classesOf(rows)
	assert.Equal(t, ledger.ClassChanged, classes["NZ-1000"])
	assert.Equal(t, ledger.ClassNew, classes["NZ-9000"])
	assert.Equal(t, ledger.ClassDeleted, classes["NZ-3000"])
}
