package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// El lote más próximo a vencer se agota primero; el siguiente cubre el resto.
func TestAllocate_FIFOPorVencimiento(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "alcohol en gel")
	h.addWithdrawal("W")

	// L1 vence antes que L2 aunque se recibió después
	e2 := h.receive(t, "P", 5, "l2", date(2024, 6, 1), "rem-002")
	e1 := h.receive(t, "P", 5, "l1", date(2024, 1, 1), "rem-001")

	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 7}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), h.lotOfEntry(t, e1).Quantity, "L1 (vence primero) debe quedar en 0")
	assert.Equal(t, int64(3), h.lotOfEntry(t, e2).Quantity, "L2 debe aportar solo las 2 unidades restantes")
	assert.Equal(t, int64(3), h.product(t, "P").Stock)
	h.requireConsistent(t, "P")

	// El desglose por lote queda persistido para la reversa
	lines := h.detailProductsOf(detailID)
	require.Len(t, lines, 1)
	debits, err := (&memWithdrawalRepo{s: h.store}).ListLotDebits(lines[0].ID)
	require.NoError(t, err)
	require.Len(t, debits, 2, "deben registrarse los dos lotes debitados")
}

// Con vencimientos iguales desempata el orden de creación del lote.
func TestAllocate_EmpateDeVencimientoDesempataPorCreacion(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "guantes de nitrilo")
	h.addWithdrawal("W")

	exp := date(2025, 3, 1)
	primero := h.receive(t, "P", 4, "la", exp, "rem-010")
	segundo := h.receive(t, "P", 4, "lb", exp, "rem-011")

	_, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), h.lotOfEntry(t, primero).Quantity, "el lote creado primero se consume primero")
	assert.Equal(t, int64(3), h.lotOfEntry(t, segundo).Quantity)
	h.requireConsistent(t, "P")
}

// Si a una línea no le alcanza el stock, el retiro completo se rechaza y
// ninguna línea deja mutación visible.
func TestAllocate_RechazoAtomicoMultilinea(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "barbijos")
	h.addProduct("Q", "jeringas")
	h.addWithdrawal("W")

	h.receive(t, "P", 10, "lp", date(2025, 1, 1), "rem-020")
	h.receive(t, "Q", 3, "lq", date(2025, 1, 1), "rem-021")

	_, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines: []stock.AllocationLine{
			{ProductID: "P", Quantity: 5},
			{ProductID: "Q", Quantity: 1000},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf, "el error debe identificar el producto")
	assert.Equal(t, "Q", insuf.ProductID)

	assert.Equal(t, int64(10), h.product(t, "P").Stock, "la línea de P no debe persistir")
	assert.Equal(t, int64(3), h.product(t, "Q").Stock)
	assert.Empty(t, h.store.details, "no debe quedar ningún detalle del retiro rechazado")
	assert.Empty(t, h.store.detailProducts)
	assert.Empty(t, h.store.lotDebits)
	h.requireConsistent(t, "P")
	h.requireConsistent(t, "Q")
}

// Cantidades cero o negativas se rechazan antes de tocar storage.
func TestAllocate_CantidadInvalidaRechazadaSinMutacion(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "gasas")
	h.addWithdrawal("W")
	h.receive(t, "P", 10, "lp", date(2025, 1, 1), "rem-030")

	for _, qty := range []int64{0, -1} {
		_, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
			WithdrawalID: "W",
			Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: qty}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad %d debe rechazarse", qty)
	}
	assert.Equal(t, int64(10), h.product(t, "P").Stock, "el stock no debe cambiar")
	assert.Empty(t, h.store.details)
}

func TestAllocate_SinLineasEsInvalido(t *testing.T) {
	h := newHarness()
	h.addWithdrawal("W")

	_, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{WithdrawalID: "W"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllocate_RetiroInexistente(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "algodón")
	h.receive(t, "P", 5, "lp", date(2025, 1, 1), "rem-040")

	_, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "no-existe",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(5), h.product(t, "P").Stock)
}

// El status se normaliza a minúsculas y el vacío queda en good.
func TestAllocate_NormalizaStatus(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "termómetros")
	h.addWithdrawal("W")
	h.receive(t, "P", 10, "lp", date(2025, 1, 1), "rem-050")

	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines: []stock.AllocationLine{
			{ProductID: "P", Quantity: 2, Status: "DAMAGED"},
			{ProductID: "P", Quantity: 1},
		},
	})
	require.NoError(t, err)

	statuses := map[string]bool{}
	for _, line := range h.detailProductsOf(detailID) {
		statuses[line.Status] = true
	}
	assert.True(t, statuses["damaged"])
	assert.True(t, statuses["good"])
}

// Sin importar el orden en que lleguen las líneas, los productos se bloquean
// en orden ascendente de id; así dos retiros concurrentes sobre los mismos
// productos nunca se interbloquean.
func TestAllocate_BloqueaProductosEnOrdenAscendente(t *testing.T) {
	h := newHarness()
	h.addProduct("A", "alcohol en gel")
	h.addProduct("B", "barbijos")
	h.addWithdrawal("W")
	h.receive(t, "A", 5, "la", date(2025, 1, 1), "rem-070")
	h.receive(t, "B", 5, "lb", date(2025, 1, 1), "rem-071")

	h.store.lockOrder = nil
	_, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines: []stock.AllocationLine{
			{ProductID: "B", Quantity: 1},
			{ProductID: "A", Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, h.store.lockOrder, "los productos deben bloquearse en orden de id")
	h.requireConsistent(t, "A")
	h.requireConsistent(t, "B")
}

// Varias líneas del mismo producto dentro de un retiro se sirven en orden.
func TestAllocate_DosLineasMismoProducto(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "suero fisiológico")
	h.addWithdrawal("W")
	h.receive(t, "P", 6, "lp", date(2025, 1, 1), "rem-060")

	_, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines: []stock.AllocationLine{
			{ProductID: "P", Quantity: 4},
			{ProductID: "P", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), h.product(t, "P").Stock)
	h.requireConsistent(t, "P")
}
