package entity

import "time"

// Product representa un producto del almacén.
// Stock es el agregado cacheado: siempre igual a la suma de las cantidades de
// sus lotes; lo mantienen únicamente los casos de uso de stock (ingresos,
// retiros y reversas), nunca las ediciones de catálogo.
type Product struct {
	ID           string
	Name         string
	Brand        string
	Manufacturer string
	Presentation string // ej. "caja x 12", "frasco 500ml"
	Stock        int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
