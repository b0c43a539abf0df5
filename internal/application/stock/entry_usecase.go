package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// EntryUseCase procesa ingresos de mercadería: cada alta crea un lote y suma
// al agregado del producto; modificar o eliminar un ingreso ajusta o revierte
// esa suma. Todo dentro de una transacción (TxRunner).
type EntryUseCase struct {
	txRunner TxRunner
}

// NewEntryUseCase construye el caso de uso.
func NewEntryUseCase(txRunner TxRunner) *EntryUseCase {
	return &EntryUseCase{txRunner: txRunner}
}

// ReceiveStockInput entrada para registrar un ingreso.
type ReceiveStockInput struct {
	ProductID       string
	Quantity        int64
	LotNumber       string
	ExpirationDate  time.Time
	ReceiptCode     string
	DeliveryCompany string
	EntryDate       time.Time
	Status          string
	AdminID         string
}

// EntryChanges campos modificables de un ingreso. Punteros nil = sin cambio.
type EntryChanges struct {
	ProductID       *string
	Quantity        *int64
	ReceiptCode     *string
	DeliveryCompany *string
	EntryDate       *time.Time
	Status          *string
}

// ReceiveStock registra un ingreso: crea el lote, crea el registro de ingreso
// e incrementa Product.Stock, todo en una transacción. Devuelve el id del
// ingreso. Rechaza con ErrConflict si ya existe un ingreso con la misma tupla
// (producto, remito, transportista).
func (uc *EntryUseCase) ReceiveStock(ctx context.Context, in ReceiveStockInput) (string, error) {
	// Validar antes de tocar storage
	if in.ProductID == "" || in.Quantity <= 0 || in.ExpirationDate.IsZero() {
		return "", domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.ReceiptCode) == "" || strings.TrimSpace(in.DeliveryCompany) == "" {
		return "", domain.ErrInvalidInput
	}

	// Texto libre en minúsculas, como el resto de los registros del almacén
	receiptCode := strings.ToLower(strings.TrimSpace(in.ReceiptCode))
	deliveryCompany := strings.ToLower(strings.TrimSpace(in.DeliveryCompany))
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = "received"
	}
	entryDate := in.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	entryID := uuid.New().String()
	now := time.Now()

	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.EntryRepository,
		_ repository.WithdrawalRepository,
	) error {
		// Bloquea la fila del producto para serializar con retiros concurrentes
		product, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		// Guarda anti doble carga del mismo remito
		dup, err := entryRepo.FindDuplicate(in.ProductID, receiptCode, deliveryCompany)
		if err != nil {
			return err
		}
		if dup != nil {
			return domain.ErrConflict
		}

		lot := &entity.Lot{
			ID:               uuid.New().String(),
			ProductID:        in.ProductID,
			LotNumber:        strings.ToLower(strings.TrimSpace(in.LotNumber)),
			ExpirationDate:   in.ExpirationDate,
			Quantity:         in.Quantity,
			ReceivedQuantity: in.Quantity,
			CreatedAt:        now,
		}
		if err := lotRepo.Create(lot); err != nil {
			return err
		}

		entry := &entity.Entry{
			ID:              entryID,
			ProductID:       in.ProductID,
			LotID:           lot.ID,
			Quantity:        in.Quantity,
			ReceiptCode:     receiptCode,
			DeliveryCompany: deliveryCompany,
			EntryDate:       entryDate,
			Status:          status,
			AdminID:         in.AdminID,
			CreatedAt:       now,
		}
		if err := entryRepo.Create(entry); err != nil {
			return err
		}

		return productRepo.UpdateStock(product.ID, product.Stock+in.Quantity)
	})
	if err != nil {
		return "", err
	}
	return entryID, nil
}

// ReviseEntry modifica un ingreso existente. Si cambia el producto, descuenta
// la cantidad vieja del producto anterior y suma la nueva al producto nuevo
// (el lote se reasigna); si solo cambia la cantidad, aplica el delta firmado
// al stock del producto y al lote vinculado. Todo en una transacción.
func (uc *EntryUseCase) ReviseEntry(ctx context.Context, entryID string, changes EntryChanges) error {
	if entryID == "" {
		return domain.ErrInvalidInput
	}
	if changes.Quantity != nil && *changes.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if changes.ProductID != nil && *changes.ProductID == "" {
		return domain.ErrInvalidInput
	}

	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.EntryRepository,
		_ repository.WithdrawalRepository,
	) error {
		entry, err := entryRepo.GetByID(entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}

		lot, err := lotRepo.GetForUpdate(entry.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: el lote %s del ingreso ya no existe", domain.ErrDataIntegrity, entry.LotID)
		}

		oldQty := entry.Quantity
		newQty := oldQty
		if changes.Quantity != nil {
			newQty = *changes.Quantity
		}

		if changes.ProductID != nil && *changes.ProductID != entry.ProductID {
			// Mover el ingreso de producto: el lote viaja con él. Solo es
			// reversible si nada consumió el lote todavía.
			if lot.Quantity != oldQty {
				return fmt.Errorf("%w: el lote %s ya fue consumido parcialmente, no se puede reasignar el ingreso",
					domain.ErrDataIntegrity, lot.ID)
			}
			oldProduct, err := productRepo.GetForUpdate(entry.ProductID)
			if err != nil {
				return err
			}
			if oldProduct == nil {
				return fmt.Errorf("%w: el producto %s del ingreso ya no existe", domain.ErrDataIntegrity, entry.ProductID)
			}
			newProduct, err := productRepo.GetForUpdate(*changes.ProductID)
			if err != nil {
				return err
			}
			if newProduct == nil {
				return domain.ErrNotFound
			}
			// Dos ajustes atómicos dentro de la misma transacción
			if err := productRepo.UpdateStock(oldProduct.ID, oldProduct.Stock-oldQty); err != nil {
				return err
			}
			if err := productRepo.UpdateStock(newProduct.ID, newProduct.Stock+newQty); err != nil {
				return err
			}
			if err := lotRepo.Reassign(lot.ID, newProduct.ID, newQty, newQty); err != nil {
				return err
			}
			entry.ProductID = newProduct.ID
		} else if newQty != oldQty {
			delta := newQty - oldQty
			if lot.Quantity+delta < 0 {
				return fmt.Errorf("%w: el lote %s tiene %d unidades y la corrección debe quitar %d",
					domain.ErrDataIntegrity, lot.ID, lot.Quantity, -delta)
			}
			product, err := productRepo.GetForUpdate(entry.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: el producto %s del ingreso ya no existe", domain.ErrDataIntegrity, entry.ProductID)
			}
			if err := productRepo.UpdateStock(product.ID, product.Stock+delta); err != nil {
				return err
			}
			if err := lotRepo.Reassign(lot.ID, lot.ProductID, lot.Quantity+delta, lot.ReceivedQuantity+delta); err != nil {
				return err
			}
		}

		entry.Quantity = newQty
		if changes.ReceiptCode != nil {
			entry.ReceiptCode = strings.ToLower(strings.TrimSpace(*changes.ReceiptCode))
		}
		if changes.DeliveryCompany != nil {
			entry.DeliveryCompany = strings.ToLower(strings.TrimSpace(*changes.DeliveryCompany))
		}
		if changes.EntryDate != nil {
			entry.EntryDate = *changes.EntryDate
		}
		if changes.Status != nil {
			entry.Status = strings.ToLower(strings.TrimSpace(*changes.Status))
		}
		return entryRepo.Update(entry)
	})
}

// RevokeEntry elimina un ingreso: descuenta Product.Stock por la cantidad del
// ingreso y elimina el lote vinculado. Si el lote ya no alcanza para la
// reversa completa es una falla de integridad (alguien asignó stock que esta
// eliminación contradice): se reporta como fatal, no se reintenta.
func (uc *EntryUseCase) RevokeEntry(ctx context.Context, entryID string) error {
	if entryID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.EntryRepository,
		_ repository.WithdrawalRepository,
	) error {
		entry, err := entryRepo.GetByID(entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		product, err := productRepo.GetForUpdate(entry.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: el producto %s del ingreso ya no existe", domain.ErrDataIntegrity, entry.ProductID)
		}
		lot, err := lotRepo.GetForUpdate(entry.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: el lote %s del ingreso ya no existe", domain.ErrDataIntegrity, entry.LotID)
		}
		if lot.Quantity < entry.Quantity {
			return fmt.Errorf("%w: el lote %s tiene %d unidades y la eliminación del ingreso requiere revertir %d",
				domain.ErrDataIntegrity, lot.ID, lot.Quantity, entry.Quantity)
		}
		// Se descuenta lo que el lote realmente aporta hoy al agregado (puede
		// superar la cantidad del ingreso si una reversa lo usó como destino).
		if err := productRepo.UpdateStock(product.ID, product.Stock-lot.Quantity); err != nil {
			return err
		}
		if err := entryRepo.Delete(entry.ID); err != nil {
			return err
		}
		return lotRepo.Delete(lot.ID)
	})
}
