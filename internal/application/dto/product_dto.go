package dto

import "time"

// CreateProductRequest entrada para crear un producto. El stock inicia en 0 y
// solo se mueve vía ingresos y retiros.
type CreateProductRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Brand        string `json:"brand"`
	Manufacturer string `json:"manufacturer"`
	Presentation string `json:"presentation"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock).
type UpdateProductRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Brand        *string `json:"brand"`
	Manufacturer *string `json:"manufacturer"`
	Presentation *string `json:"presentation"`
}

// ProductResponse salida de un producto con su stock agregado.
type ProductResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Manufacturer string    `json:"manufacturer"`
	Presentation string    `json:"presentation"`
	Stock        int64     `json:"stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	LotNumber        string    `json:"lot_number"`
	ExpirationDate   time.Time `json:"expiration_date"`
	Quantity         int64     `json:"quantity"`
	ReceivedQuantity int64     `json:"received_quantity"`
	CreatedAt        time.Time `json:"created_at"`
}

// LotListResponse lista paginada de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}
