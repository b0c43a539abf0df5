package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ReversalUseCase deshace asignaciones previas: restaura las cantidades
// debitadas a los mismos lotes registrados al asignar y devuelve el agregado
// del producto a su valor anterior. Reallocate encadena reversa + asignación
// nueva en una sola transacción, así una reasignación fallida deja la
// asignación original intacta.
type ReversalUseCase struct {
	txRunner TxRunner
}

// NewReversalUseCase construye el caso de uso.
func NewReversalUseCase(txRunner TxRunner) *ReversalUseCase {
	return &ReversalUseCase{txRunner: txRunner}
}

// Reverse elimina un detalle de retiro restaurando cada lote debitado por el
// monto exacto registrado al asignar. Si un lote debitado ya no existe, el
// monto se acredita al lote más próximo a vencer que quede (aproximación); si
// el producto no tiene lotes, la reversa falla con ErrDataIntegrity.
func (uc *ReversalUseCase) Reverse(ctx context.Context, detailID string) error {
	if detailID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		_ repository.EntryRepository,
		withdrawalRepo repository.WithdrawalRepository,
	) error {
		detail, err := withdrawalRepo.GetDetail(detailID)
		if err != nil {
			return err
		}
		if detail == nil {
			return domain.ErrNotFound
		}
		if err := reverseDetailProducts(productRepo, lotRepo, withdrawalRepo, detailID); err != nil {
			return err
		}
		return withdrawalRepo.DeleteDetail(detailID)
	})
}

// Reallocate reemplaza las líneas de un detalle: reversa de la asignación
// vigente seguida de una asignación nueva, ambas en la misma transacción. Si
// la nueva asignación falla (p. ej. stock insuficiente), el rollback también
// deshace la reversa y la asignación original queda como estaba.
func (uc *ReversalUseCase) Reallocate(ctx context.Context, detailID string, notes *string, newLines []AllocationLine) error {
	if detailID == "" {
		return domain.ErrInvalidInput
	}
	lines, err := normalizeLines(newLines)
	if err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		_ repository.EntryRepository,
		withdrawalRepo repository.WithdrawalRepository,
	) error {
		detail, err := withdrawalRepo.GetDetail(detailID)
		if err != nil {
			return err
		}
		if detail == nil {
			return domain.ErrNotFound
		}
		if err := reverseDetailProducts(productRepo, lotRepo, withdrawalRepo, detailID); err != nil {
			return err
		}
		for _, line := range lines {
			if err := allocateLine(productRepo, lotRepo, withdrawalRepo, detailID, line); err != nil {
				return err
			}
		}
		if notes != nil {
			detail.Notes = strings.ToLower(strings.TrimSpace(*notes))
			return withdrawalRepo.UpdateDetail(detail)
		}
		return nil
	})
}

// reverseDetailProducts deshace todas las líneas de un detalle dentro de la
// transacción del caller: acredita los lotes debitados, repone el agregado y
// elimina las líneas con su desglose.
func reverseDetailProducts(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	withdrawalRepo repository.WithdrawalRepository,
	detailID string,
) error {
	detailProducts, err := withdrawalRepo.ListDetailProducts(detailID)
	if err != nil {
		return err
	}
	for _, dp := range detailProducts {
		product, err := productRepo.GetForUpdate(dp.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: el producto %s de la línea ya no existe", domain.ErrDataIntegrity, dp.ProductID)
		}

		debits, err := withdrawalRepo.ListLotDebits(dp.ID)
		if err != nil {
			return err
		}
		var restored int64
		for _, d := range debits {
			lot, err := lotRepo.GetForUpdate(d.LotID)
			if err != nil {
				return err
			}
			if lot == nil {
				// El lote debitado fue eliminado después (ingreso revocado):
				// se acredita al lote más viejo que quede del producto.
				if err := creditOldestLot(lotRepo, dp.ProductID, d.Quantity); err != nil {
					return err
				}
			} else {
				if lot.Quantity+d.Quantity > lot.ReceivedQuantity {
					return fmt.Errorf("%w: restaurar %d unidades al lote %s supera su máximo histórico (%d de %d)",
						domain.ErrDataIntegrity, d.Quantity, lot.ID, lot.Quantity+d.Quantity, lot.ReceivedQuantity)
				}
				if err := lotRepo.UpdateQuantity(lot.ID, lot.Quantity+d.Quantity); err != nil {
					return err
				}
			}
			restored += d.Quantity
		}
		if restored != dp.Quantity {
			return fmt.Errorf("%w: la línea %s retiró %d unidades pero el desglose por lote suma %d",
				domain.ErrDataIntegrity, dp.ID, dp.Quantity, restored)
		}

		if err := productRepo.UpdateStock(product.ID, product.Stock+dp.Quantity); err != nil {
			return err
		}
		if err := withdrawalRepo.DeleteLotDebits(dp.ID); err != nil {
			return err
		}
	}
	return withdrawalRepo.DeleteDetailProducts(detailID)
}

// creditOldestLot acredita cantidad al lote más próximo a vencer del
// producto. El lote receptor crece también en su máximo histórico: las
// unidades vuelven a existir de verdad, no es un clamp.
func creditOldestLot(lotRepo repository.LotRepository, productID string, quantity int64) error {
	oldest, err := lotRepo.OldestForUpdate(productID)
	if err != nil {
		return err
	}
	if oldest == nil {
		return fmt.Errorf("%w: el producto %s no tiene lotes para recibir la reversa", domain.ErrDataIntegrity, productID)
	}
	newQty := oldest.Quantity + quantity
	received := oldest.ReceivedQuantity
	if newQty > received {
		received = newQty
	}
	return lotRepo.Reassign(oldest.ID, productID, newQty, received)
}
