package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// Asignar y revertir de inmediato devuelve cada lote tocado y el agregado del
// producto exactamente a sus valores previos.
func TestReverse_RoundTripExacto(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "p")
	h.addWithdrawal("W")

	e1 := h.receive(t, "P", 5, "l1", date(2024, 1, 1), "rem-700")
	e2 := h.receive(t, "P", 5, "l2", date(2024, 6, 1), "rem-701")

	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 7}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), h.product(t, "P").Stock)

	require.NoError(t, h.reversal.Reverse(context.Background(), detailID))

	assert.Equal(t, int64(10), h.product(t, "P").Stock)
	assert.Equal(t, int64(5), h.lotOfEntry(t, e1).Quantity, "L1 vuelve exactamente a su valor previo")
	assert.Equal(t, int64(5), h.lotOfEntry(t, e2).Quantity, "L2 vuelve exactamente a su valor previo")
	assert.Empty(t, h.store.details, "el detalle revertido se elimina")
	assert.Empty(t, h.store.detailProducts)
	assert.Empty(t, h.store.lotDebits)
	h.requireConsistent(t, "P")
}

func TestReverse_DetalleInexistente(t *testing.T) {
	h := newHarness()
	err := h.reversal.Reverse(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Si el lote debitado fue eliminado después (ingreso revocado), la reversa
// acredita el monto al lote más próximo a vencer que quede.
func TestReverse_LoteEliminadoAcreditaAlMasViejo(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "p")
	h.addWithdrawal("W")

	e1 := h.receive(t, "P", 5, "l1", date(2024, 1, 1), "rem-710")
	e2 := h.receive(t, "P", 5, "l2", date(2024, 6, 1), "rem-711")

	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 5}},
	})
	require.NoError(t, err)

	// L1 quedó en 0; se revoca su ingreso y el lote desaparece
	require.NoError(t, h.entries.RevokeEntry(context.Background(), e1))
	require.Equal(t, int64(5), h.product(t, "P").Stock)

	require.NoError(t, h.reversal.Reverse(context.Background(), detailID))

	assert.Equal(t, int64(10), h.product(t, "P").Stock)
	l2 := h.lotOfEntry(t, e2)
	assert.Equal(t, int64(10), l2.Quantity, "el monto se acredita al lote más viejo restante")
	assert.Equal(t, int64(10), l2.ReceivedQuantity, "el máximo histórico del receptor acompaña el crédito")
	h.requireConsistent(t, "P")
}

// Sin ningún lote que pueda recibir la reversa, el libro quedó inconciliable.
func TestReverse_SinLotesEsFatal(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "p")
	h.addWithdrawal("W")

	e1 := h.receive(t, "P", 5, "l1", date(2024, 1, 1), "rem-720")
	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 5}},
	})
	require.NoError(t, err)
	require.NoError(t, h.entries.RevokeEntry(context.Background(), e1))

	err = h.reversal.Reverse(context.Background(), detailID)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
	assert.Contains(t, h.store.details, detailID, "la reversa fallida no debe eliminar el detalle")
	h.requireConsistent(t, "P")
}

// Restaurar por encima del máximo histórico del lote no se clampa: es una
// inconsistencia y se reporta como tal.
func TestReverse_SuperaMaximoHistoricoEsFatal(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "p")
	h.addWithdrawal("W")

	e1 := h.receive(t, "P", 5, "l1", date(2024, 1, 1), "rem-730")
	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 3}},
	})
	require.NoError(t, err)

	// Corrupción simulada: alguien repuso el lote por fuera del motor
	h.store.lots[h.store.entries[e1].LotID].Quantity = 4

	err = h.reversal.Reverse(context.Background(), detailID)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

// Reasignar con líneas nuevas reemplaza la asignación dentro de una sola
// transacción.
func TestReallocate_ReemplazaLineas(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "p")
	h.addProduct("Q", "q")
	h.addWithdrawal("W")

	h.receive(t, "P", 10, "lp", date(2025, 1, 1), "rem-740")
	h.receive(t, "Q", 10, "lq", date(2025, 1, 1), "rem-741")

	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 6}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(4), h.product(t, "P").Stock)

	notas := "Se corrige el destino del retiro"
	err = h.reversal.Reallocate(context.Background(), detailID, &notas,
		[]stock.AllocationLine{{ProductID: "Q", Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, int64(10), h.product(t, "P").Stock, "la asignación vieja se revierte completa")
	assert.Equal(t, int64(8), h.product(t, "Q").Stock)
	assert.Equal(t, "se corrige el destino del retiro", h.store.details[detailID].Notes)
	h.requireConsistent(t, "P")
	h.requireConsistent(t, "Q")
}

// Si la asignación nueva no alcanza, el rollback también deshace la reversa:
// la asignación original queda intacta.
func TestReallocate_FallaDejaAsignacionOriginalIntacta(t *testing.T) {
	h := newHarness()
	h.addProduct("P", "p")
	h.addProduct("Q", "q")
	h.addWithdrawal("W")

	e1 := h.receive(t, "P", 10, "lp", date(2025, 1, 1), "rem-750")
	h.receive(t, "Q", 3, "lq", date(2025, 1, 1), "rem-751")

	detailID, err := h.allocator.Allocate(context.Background(), stock.AllocateInput{
		WithdrawalID: "W",
		Lines:        []stock.AllocationLine{{ProductID: "P", Quantity: 6}},
	})
	require.NoError(t, err)

	err = h.reversal.Reallocate(context.Background(), detailID, nil,
		[]stock.AllocationLine{{ProductID: "Q", Quantity: 1000}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(4), h.product(t, "P").Stock, "la asignación original sigue vigente")
	assert.Equal(t, int64(4), h.lotOfEntry(t, e1).Quantity)
	assert.Equal(t, int64(3), h.product(t, "Q").Stock)
	lines := h.detailProductsOf(detailID)
	require.Len(t, lines, 1, "la línea original debe seguir persistida")
	assert.Equal(t, "P", lines[0].ProductID)
	assert.Equal(t, int64(6), lines[0].Quantity)
	h.requireConsistent(t, "P")
	h.requireConsistent(t, "Q")
}

func TestReallocate_LineasInvalidas(t *testing.T) {
	h := newHarness()
	err := h.reversal.Reallocate(context.Background(), "d", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = h.reversal.Reallocate(context.Background(), "d", nil,
		[]stock.AllocationLine{{ProductID: "P", Quantity: -2}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
