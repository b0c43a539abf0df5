package repository

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes.
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	GetForUpdate(id string) (*entity.Lot, error)
	// ListForAllocation devuelve los lotes de un producto ordenados por fecha
	// de vencimiento ascendente (desempate: orden de creación, luego id) con
	// las filas bloqueadas. Es el recorrido FIFO-por-vencimiento del asignador.
	ListForAllocation(productID string) ([]*entity.Lot, error)
	// OldestForUpdate devuelve el lote más próximo a vencer de un producto con
	// la fila bloqueada, o nil si el producto no tiene lotes. Lo usa la reversa
	// cuando el lote debitado original ya no existe.
	OldestForUpdate(productID string) (*entity.Lot, error)
	UpdateQuantity(lotID string, quantity int64) error
	Reassign(lotID, productID string, quantity, receivedQuantity int64) error
	ListByProduct(productID string, limit, offset int) ([]*entity.Lot, error)
	ListExpiringBefore(cutoff time.Time, limit, offset int) ([]*entity.Lot, error)
	SumQuantityByProduct(productID string) (int64, error)
	Delete(id string) error
}
