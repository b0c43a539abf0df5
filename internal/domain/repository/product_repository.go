package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para productos.
// GetForUpdate bloquea la fila del producto; los casos de uso de stock lo
// llaman antes de tocar lotes para serializar retiros concurrentes.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	UpdateStock(productID string, stock int64) error
	List(limit, offset int) ([]*entity.Product, error)
	SearchByName(name string, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
