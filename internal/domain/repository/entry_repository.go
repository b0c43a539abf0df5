package repository

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// EntryRepository define el puerto de persistencia para ingresos de mercadería.
type EntryRepository interface {
	Create(entry *entity.Entry) error
	GetByID(id string) (*entity.Entry, error)
	// FindDuplicate busca un ingreso con la misma tupla
	// (producto, remito, transportista); es la guarda anti doble carga.
	FindDuplicate(productID, receiptCode, deliveryCompany string) (*entity.Entry, error)
	Update(entry *entity.Entry) error
	Delete(id string) error
	List(limit, offset int) ([]*entity.Entry, error)
	SearchByDeliveryCompany(deliveryCompany string, limit, offset int) ([]*entity.Entry, error)
	SearchByDateRange(from, to time.Time, limit, offset int) ([]*entity.Entry, error)
	SearchByStatus(status string, limit, offset int) ([]*entity.Entry, error)
}
