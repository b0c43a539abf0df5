package stock

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// AllocatorUseCase satisface retiros consumiendo lotes por orden de
// vencimiento (el más próximo a vencer primero). Todas las líneas de un
// retiro se asignan en una sola transacción: o entran todas o ninguna.
type AllocatorUseCase struct {
	txRunner TxRunner
}

// NewAllocatorUseCase construye el caso de uso.
func NewAllocatorUseCase(txRunner TxRunner) *AllocatorUseCase {
	return &AllocatorUseCase{txRunner: txRunner}
}

// AllocationLine una línea de retiro: producto y cantidad solicitada.
type AllocationLine struct {
	ProductID string
	Quantity  int64
	Status    string // good | damaged; vacío = good
}

// AllocateInput entrada para asignar un detalle de retiro.
type AllocateInput struct {
	WithdrawalID string
	Notes        string
	Lines        []AllocationLine
}

// Allocate crea un detalle de retiro y asigna todas sus líneas con la
// política FIFO-por-vencimiento. Devuelve el id del detalle creado. Si a
// cualquier línea no le alcanza el stock, se rechaza el retiro completo con
// InsufficientStockError y no queda ninguna mutación visible.
func (uc *AllocatorUseCase) Allocate(ctx context.Context, in AllocateInput) (string, error) {
	lines, err := normalizeLines(in.Lines)
	if err != nil {
		return "", err
	}
	if in.WithdrawalID == "" {
		return "", domain.ErrInvalidInput
	}

	detailID := uuid.New().String()
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		_ repository.EntryRepository,
		withdrawalRepo repository.WithdrawalRepository,
	) error {
		w, err := withdrawalRepo.GetByID(in.WithdrawalID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.ErrNotFound
		}
		detail := &entity.WithdrawalDetail{
			ID:           detailID,
			WithdrawalID: in.WithdrawalID,
			Notes:        strings.ToLower(strings.TrimSpace(in.Notes)),
			CreatedAt:    time.Now(),
		}
		if err := withdrawalRepo.CreateDetail(detail); err != nil {
			return err
		}
		for _, line := range lines {
			if err := allocateLine(productRepo, lotRepo, withdrawalRepo, detailID, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return detailID, nil
}

// normalizeLines valida y normaliza las líneas antes de abrir la transacción:
// cantidades positivas, producto presente, status en minúsculas (good por
// defecto). Las líneas quedan ordenadas por producto: todas las transacciones
// bloquean las filas de producto en el mismo orden y dos retiros concurrentes
// no se interbloquean.
func normalizeLines(lines []AllocationLine) ([]AllocationLine, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	out := make([]AllocationLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		status := strings.ToLower(strings.TrimSpace(line.Status))
		if status == "" {
			status = entity.LineStatusGood
		}
		out = append(out, AllocationLine{ProductID: line.ProductID, Quantity: line.Quantity, Status: status})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// allocateLine asigna una línea dentro de la transacción del caller: bloquea
// el producto, recorre sus lotes ordenados por vencimiento debitando cada uno
// hasta cubrir la cantidad, descuenta el agregado y persiste la línea con su
// desglose de débitos por lote. La comparten Allocate y Reallocate.
func allocateLine(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	withdrawalRepo repository.WithdrawalRepository,
	detailID string,
	line AllocationLine,
) error {
	product, err := productRepo.GetForUpdate(line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.Stock < line.Quantity {
		return &domain.InsufficientStockError{
			ProductID: product.ID,
			Requested: line.Quantity,
			Available: product.Stock,
		}
	}

	lots, err := lotRepo.ListForAllocation(product.ID)
	if err != nil {
		return err
	}

	remaining := line.Quantity
	type debit struct {
		lotID    string
		quantity int64
	}
	var debits []debit
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		if lot.Quantity == 0 {
			continue
		}
		take := min(remaining, lot.Quantity)
		if err := lotRepo.UpdateQuantity(lot.ID, lot.Quantity-take); err != nil {
			return err
		}
		debits = append(debits, debit{lotID: lot.ID, quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		// El agregado prometía stock que los lotes no tienen; la transacción
		// se revierte completa igual que con stock insuficiente.
		return &domain.InsufficientStockError{
			ProductID: product.ID,
			Requested: line.Quantity,
			Available: line.Quantity - remaining,
		}
	}

	if err := productRepo.UpdateStock(product.ID, product.Stock-line.Quantity); err != nil {
		return err
	}

	detailProduct := &entity.WithdrawalDetailProduct{
		ID:        uuid.New().String(),
		DetailID:  detailID,
		ProductID: product.ID,
		Quantity:  line.Quantity,
		Status:    line.Status,
	}
	if err := withdrawalRepo.CreateDetailProduct(detailProduct); err != nil {
		return err
	}
	for _, d := range debits {
		lotDebit := &entity.LotDebit{
			ID:              uuid.New().String(),
			DetailProductID: detailProduct.ID,
			LotID:           d.lotID,
			Quantity:        d.quantity,
		}
		if err := withdrawalRepo.CreateLotDebit(lotDebit); err != nil {
			return err
		}
	}
	return nil
}
