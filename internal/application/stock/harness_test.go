package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// harness arma el motor completo sobre el store en memoria.
type harness struct {
	store       *memStore
	entries     *stock.EntryUseCase
	allocator   *stock.AllocatorUseCase
	reversal    *stock.ReversalUseCase
	consistency *stock.ConsistencyUseCase
}

func newHarness() *harness {
	store := newMemStore()
	tx := &memTxRunner{store: store}
	return &harness{
		store:       store,
		entries:     stock.NewEntryUseCase(tx),
		allocator:   stock.NewAllocatorUseCase(tx),
		reversal:    stock.NewReversalUseCase(tx),
		consistency: stock.NewConsistencyUseCase(tx),
	}
}

func (h *harness) addProduct(id, name string) {
	h.store.products[id] = &entity.Product{ID: id, Name: name}
}

func (h *harness) addWithdrawal(id string) {
	h.store.withdrawals[id] = &entity.Withdrawal{ID: id, WithdrawalDate: time.Now()}
}

// receive registra un ingreso y devuelve su id; falla el test si el ingreso
// no se pudo registrar.
func (h *harness) receive(t *testing.T, productID string, qty int64, lotNumber string, exp time.Time, receipt string) string {
	t.Helper()
	entryID, err := h.entries.ReceiveStock(context.Background(), stock.ReceiveStockInput{
		ProductID:       productID,
		Quantity:        qty,
		LotNumber:       lotNumber,
		ExpirationDate:  exp,
		ReceiptCode:     receipt,
		DeliveryCompany: "transporte andino",
		AdminID:         "admin-1",
	})
	require.NoError(t, err, "el ingreso debe registrarse")
	return entryID
}

// product devuelve el estado actual del producto en el store.
func (h *harness) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, ok := h.store.products[id]
	require.True(t, ok, "el producto %s debe existir en el store", id)
	return p
}

// lotOfEntry devuelve el lote creado por un ingreso.
func (h *harness) lotOfEntry(t *testing.T, entryID string) *entity.Lot {
	t.Helper()
	e, ok := h.store.entries[entryID]
	require.True(t, ok, "el ingreso %s debe existir en el store", entryID)
	l, ok := h.store.lots[e.LotID]
	require.True(t, ok, "el lote %s debe existir en el store", e.LotID)
	return l
}

// requireConsistent verifica el invariante de conciliación:
// Product.Stock == suma de cantidades de sus lotes.
func (h *harness) requireConsistent(t *testing.T, productID string) {
	t.Helper()
	report, err := h.consistency.CheckProduct(context.Background(), productID)
	require.NoError(t, err)
	require.True(t, report.Consistent,
		"el stock del producto %s (%d) debe igualar la suma de sus lotes (%d)",
		productID, report.Stock, report.LotSum)
}

// detailProductsOf devuelve las líneas persistidas de un detalle.
func (h *harness) detailProductsOf(detailID string) []*entity.WithdrawalDetailProduct {
	var out []*entity.WithdrawalDetailProduct
	for _, p := range h.store.detailProducts {
		if p.DetailID == detailID {
			out = append(out, p)
		}
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
