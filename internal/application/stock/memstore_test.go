package stock_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// memStore es un doble de test del storage: implementa los cuatro puertos de
// repositorio sobre mapas en memoria y un TxRunner con semántica real de
// commit/rollback (snapshot antes de fn, restore si fn falla). Así las
// propiedades de atomicidad del motor se prueban sin PostgreSQL.
type memStore struct {
	products       map[string]*entity.Product
	lots           map[string]*entity.Lot
	entries        map[string]*entity.Entry
	withdrawals    map[string]*entity.Withdrawal
	details        map[string]*entity.WithdrawalDetail
	detailProducts map[string]*entity.WithdrawalDetailProduct
	lotDebits      map[string]*entity.LotDebit
	lotSeq         map[string]int // orden de creación de lotes (desempate FIFO)
	nextSeq        int
	lockOrder      []string // productos bloqueados vía GetForUpdate, en orden
}

func newMemStore() *memStore {
	return &memStore{
		products:       map[string]*entity.Product{},
		lots:           map[string]*entity.Lot{},
		entries:        map[string]*entity.Entry{},
		withdrawals:    map[string]*entity.Withdrawal{},
		details:        map[string]*entity.WithdrawalDetail{},
		detailProducts: map[string]*entity.WithdrawalDetailProduct{},
		lotDebits:      map[string]*entity.LotDebit{},
		lotSeq:         map[string]int{},
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.lots {
		l := *v
		c.lots[k] = &l
	}
	for k, v := range s.entries {
		e := *v
		c.entries[k] = &e
	}
	for k, v := range s.withdrawals {
		w := *v
		c.withdrawals[k] = &w
	}
	for k, v := range s.details {
		d := *v
		c.details[k] = &d
	}
	for k, v := range s.detailProducts {
		d := *v
		c.detailProducts[k] = &d
	}
	for k, v := range s.lotDebits {
		d := *v
		c.lotDebits[k] = &d
	}
	for k, v := range s.lotSeq {
		c.lotSeq[k] = v
	}
	c.nextSeq = s.nextSeq
	return c
}

// memTxRunner ejecuta fn contra el store vivo y restaura el snapshot si fn
// devuelve error: ninguna mutación parcial sobrevive a una transacción fallida.
type memTxRunner struct {
	store *memStore
}

func (r *memTxRunner) Run(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	entryRepo repository.EntryRepository,
	withdrawalRepo repository.WithdrawalRepository,
) error) error {
	snapshot := r.store.clone()
	err := fn(
		&memProductRepo{s: r.store},
		&memLotRepo{s: r.store},
		&memEntryRepo{s: r.store},
		&memWithdrawalRepo{s: r.store},
	)
	if err != nil {
		*r.store = *snapshot
		return err
	}
	return nil
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	r.s.lockOrder = append(r.s.lockOrder, id)
	return r.GetByID(id)
}

func (r *memProductRepo) Update(p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateStock(productID string, stock int64) error {
	if p, ok := r.s.products[productID]; ok {
		p.Stock = stock
	}
	return nil
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var all []*entity.Product
	for _, p := range r.s.products {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (r *memProductRepo) SearchByName(name string, limit, offset int) ([]*entity.Product, error) {
	var all []*entity.Product
	for _, p := range r.s.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			cp := *p
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (r *memProductRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

// ── LotRepository ─────────────────────────────────────────────────────────────

type memLotRepo struct{ s *memStore }

func (r *memLotRepo) Create(l *entity.Lot) error {
	cp := *l
	r.s.lots[l.ID] = &cp
	r.s.nextSeq++
	r.s.lotSeq[l.ID] = r.s.nextSeq
	return nil
}

func (r *memLotRepo) GetByID(id string) (*entity.Lot, error) {
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memLotRepo) GetForUpdate(id string) (*entity.Lot, error) {
	return r.GetByID(id)
}

// sortedByExpiration devuelve los lotes de un producto en el orden del
// recorrido FIFO: vencimiento ascendente, desempate por orden de creación.
func (r *memLotRepo) sortedByExpiration(productID string) []*entity.Lot {
	var lots []*entity.Lot
	for _, l := range r.s.lots {
		if l.ProductID == productID {
			cp := *l
			lots = append(lots, &cp)
		}
	}
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].ExpirationDate.Equal(lots[j].ExpirationDate) {
			return lots[i].ExpirationDate.Before(lots[j].ExpirationDate)
		}
		return r.s.lotSeq[lots[i].ID] < r.s.lotSeq[lots[j].ID]
	})
	return lots
}

func (r *memLotRepo) ListForAllocation(productID string) ([]*entity.Lot, error) {
	return r.sortedByExpiration(productID), nil
}

func (r *memLotRepo) OldestForUpdate(productID string) (*entity.Lot, error) {
	lots := r.sortedByExpiration(productID)
	if len(lots) == 0 {
		return nil, nil
	}
	return lots[0], nil
}

func (r *memLotRepo) UpdateQuantity(lotID string, quantity int64) error {
	if l, ok := r.s.lots[lotID]; ok {
		l.Quantity = quantity
	}
	return nil
}

func (r *memLotRepo) Reassign(lotID, productID string, quantity, receivedQuantity int64) error {
	if l, ok := r.s.lots[lotID]; ok {
		l.ProductID = productID
		l.Quantity = quantity
		l.ReceivedQuantity = receivedQuantity
	}
	return nil
}

func (r *memLotRepo) ListByProduct(productID string, limit, offset int) ([]*entity.Lot, error) {
	return page(r.sortedByExpiration(productID), limit, offset), nil
}

func (r *memLotRepo) ListExpiringBefore(cutoff time.Time, limit, offset int) ([]*entity.Lot, error) {
	var lots []*entity.Lot
	for _, l := range r.s.lots {
		if l.ExpirationDate.Before(cutoff) {
			cp := *l
			lots = append(lots, &cp)
		}
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].ExpirationDate.Before(lots[j].ExpirationDate) })
	return page(lots, limit, offset), nil
}

func (r *memLotRepo) SumQuantityByProduct(productID string) (int64, error) {
	var sum int64
	for _, l := range r.s.lots {
		if l.ProductID == productID {
			sum += l.Quantity
		}
	}
	return sum, nil
}

func (r *memLotRepo) Delete(id string) error {
	delete(r.s.lots, id)
	delete(r.s.lotSeq, id)
	return nil
}

// ── EntryRepository ───────────────────────────────────────────────────────────

type memEntryRepo struct{ s *memStore }

func (r *memEntryRepo) Create(e *entity.Entry) error {
	cp := *e
	r.s.entries[e.ID] = &cp
	return nil
}

func (r *memEntryRepo) GetByID(id string) (*entity.Entry, error) {
	e, ok := r.s.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memEntryRepo) FindDuplicate(productID, receiptCode, deliveryCompany string) (*entity.Entry, error) {
	for _, e := range r.s.entries {
		if e.ProductID == productID && e.ReceiptCode == receiptCode && e.DeliveryCompany == deliveryCompany {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memEntryRepo) Update(e *entity.Entry) error {
	cp := *e
	r.s.entries[e.ID] = &cp
	return nil
}

func (r *memEntryRepo) Delete(id string) error {
	delete(r.s.entries, id)
	return nil
}

func (r *memEntryRepo) List(limit, offset int) ([]*entity.Entry, error) {
	return page(r.filter(func(*entity.Entry) bool { return true }), limit, offset), nil
}

func (r *memEntryRepo) SearchByDeliveryCompany(deliveryCompany string, limit, offset int) ([]*entity.Entry, error) {
	return page(r.filter(func(e *entity.Entry) bool {
		return strings.Contains(e.DeliveryCompany, strings.ToLower(deliveryCompany))
	}), limit, offset), nil
}

func (r *memEntryRepo) SearchByDateRange(from, to time.Time, limit, offset int) ([]*entity.Entry, error) {
	return page(r.filter(func(e *entity.Entry) bool {
		return !e.EntryDate.Before(from) && !e.EntryDate.After(to)
	}), limit, offset), nil
}

func (r *memEntryRepo) SearchByStatus(status string, limit, offset int) ([]*entity.Entry, error) {
	return page(r.filter(func(e *entity.Entry) bool { return e.Status == strings.ToLower(status) }), limit, offset), nil
}

func (r *memEntryRepo) filter(keep func(*entity.Entry) bool) []*entity.Entry {
	var all []*entity.Entry
	for _, e := range r.s.entries {
		if keep(e) {
			cp := *e
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// ── WithdrawalRepository ──────────────────────────────────────────────────────

type memWithdrawalRepo struct{ s *memStore }

func (r *memWithdrawalRepo) Create(w *entity.Withdrawal) error {
	cp := *w
	r.s.withdrawals[w.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) GetByID(id string) (*entity.Withdrawal, error) {
	w, ok := r.s.withdrawals[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWithdrawalRepo) Update(w *entity.Withdrawal) error {
	cp := *w
	r.s.withdrawals[w.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) Delete(id string) error {
	delete(r.s.withdrawals, id)
	return nil
}

func (r *memWithdrawalRepo) List(limit, offset int) ([]*entity.Withdrawal, error) {
	return page(r.filter(func(*entity.Withdrawal) bool { return true }), limit, offset), nil
}

func (r *memWithdrawalRepo) SearchByDateRange(from, to time.Time, limit, offset int) ([]*entity.Withdrawal, error) {
	return page(r.filter(func(w *entity.Withdrawal) bool {
		return !w.WithdrawalDate.Before(from) && !w.WithdrawalDate.After(to)
	}), limit, offset), nil
}

func (r *memWithdrawalRepo) SearchByEmployee(employeeID string, limit, offset int) ([]*entity.Withdrawal, error) {
	return page(r.filter(func(w *entity.Withdrawal) bool { return w.EmployeeID == employeeID }), limit, offset), nil
}

func (r *memWithdrawalRepo) SearchByAdmin(adminID string, limit, offset int) ([]*entity.Withdrawal, error) {
	return page(r.filter(func(w *entity.Withdrawal) bool { return w.AdminID == adminID }), limit, offset), nil
}

func (r *memWithdrawalRepo) CountDetails(withdrawalID string) (int, error) {
	n := 0
	for _, d := range r.s.details {
		if d.WithdrawalID == withdrawalID {
			n++
		}
	}
	return n, nil
}

func (r *memWithdrawalRepo) filter(keep func(*entity.Withdrawal) bool) []*entity.Withdrawal {
	var all []*entity.Withdrawal
	for _, w := range r.s.withdrawals {
		if keep(w) {
			cp := *w
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (r *memWithdrawalRepo) CreateDetail(d *entity.WithdrawalDetail) error {
	cp := *d
	r.s.details[d.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) GetDetail(id string) (*entity.WithdrawalDetail, error) {
	d, ok := r.s.details[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memWithdrawalRepo) UpdateDetail(d *entity.WithdrawalDetail) error {
	cp := *d
	r.s.details[d.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) DeleteDetail(id string) error {
	delete(r.s.details, id)
	return nil
}

func (r *memWithdrawalRepo) ListDetailsByWithdrawal(withdrawalID string) ([]*entity.WithdrawalDetail, error) {
	var all []*entity.WithdrawalDetail
	for _, d := range r.s.details {
		if d.WithdrawalID == withdrawalID {
			cp := *d
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *memWithdrawalRepo) CreateDetailProduct(p *entity.WithdrawalDetailProduct) error {
	cp := *p
	r.s.detailProducts[p.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) ListDetailProducts(detailID string) ([]*entity.WithdrawalDetailProduct, error) {
	var all []*entity.WithdrawalDetailProduct
	for _, p := range r.s.detailProducts {
		if p.DetailID == detailID {
			cp := *p
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *memWithdrawalRepo) DeleteDetailProducts(detailID string) error {
	for id, p := range r.s.detailProducts {
		if p.DetailID == detailID {
			delete(r.s.detailProducts, id)
		}
	}
	return nil
}

func (r *memWithdrawalRepo) CreateLotDebit(d *entity.LotDebit) error {
	cp := *d
	r.s.lotDebits[d.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) ListLotDebits(detailProductID string) ([]*entity.LotDebit, error) {
	var all []*entity.LotDebit
	for _, d := range r.s.lotDebits {
		if d.DetailProductID == detailProductID {
			cp := *d
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *memWithdrawalRepo) DeleteLotDebits(detailProductID string) error {
	for id, d := range r.s.lotDebits {
		if d.DetailProductID == detailProductID {
			delete(r.s.lotDebits, id)
		}
	}
	return nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
