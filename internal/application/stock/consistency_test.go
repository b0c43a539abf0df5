package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// El invariante se sostiene a través de una secuencia de operaciones mixtas.
func TestConsistency_SecuenciaDeOperaciones(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "alcohol etílico")
	h.addWithdrawal("W")

	h.receive(t, "P", 10, "l1", date(2026, 1, 1), "rem-800")
	entryID := h.receive(t, "P", 5, "l2", date(2026, 6, 1), "rem-801")
	h.requireConsistent(t, "P")

	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 12}},
	})
	require.NoError(t, err)
	h.requireConsistent(t, "P")

	require.NoError(t, h.reversal.Reverse(context.Background(), detailID))
	h.requireConsistent(t, "P")

	nuevaCantidad := int64(3)
	require.NoError(t, h.entries.ReviseEntry(context.Background(), entryID, stock.EntryChanges{Quantity: &nuevaCantidad}))
	h.requireConsistent(t, "P")

	require.NoError(t, h.entries.RevokeEntry(context.Background(), entryID))
	h.requireConsistent(t, "P")
}

func TestCheckProduct_Inexistente(t *testing.T) {
	h := newHarness()
	_, err := h.consistency.CheckProduct(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckProduct_IDVacio(t *testing.T) {
	h := newHarness()
	_, err := h.consistency.CheckProduct(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un agregado corrupto no se oculta: el reporte lo marca inconsistente con
// ambos valores a la vista.
func TestCheckProduct_DetectaAgregadoCorrupto(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "vendas")
	h.receive(t, "P", 10, "l1", date(2026, 1, 1), "rem-810")

	// Corrupción simulada por fuera del motor
	h.store.products["P"].Stock = 99

	report, err := h.consistency.CheckProduct(context.Background(), "P")
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.Equal(t, int64(99), report.Stock)
	assert.Equal(t, int64(10), report.LotSum)
}

func TestCheckAll_ReportaTodosLosProductos(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "sano")
	h.addProduct("Q", "corrupto")
	h.addProduct("R", "sin lotes")

	h.receive(t, "P", 7, "lp", date(2026, 1, 1), "rem-820")
	h.receive(t, "Q", 4, "lq", date(2026, 1, 1), "rem-821")
	h.store.products["Q"].Stock = 1

	reports, err := h.consistency.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 3)

	byID := map[string]stock.ConsistencyReport{}
	for _, r := range reports {
		byID[r.ProductID] = r
	}
	assert.True(t, byID["P"].Consistent)
	assert.False(t, byID["Q"].Consistent)
	assert.True(t, byID["R"].Consistent, "un producto sin lotes con stock 0 está conciliado")
	assert.Equal(t, int64(0), byID["R"].LotSum)
}
