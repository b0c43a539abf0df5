package dto

import "time"

// ReceiveStockRequest entrada para registrar un ingreso de mercadería.
type ReceiveStockRequest struct {
	ProductID       string    `json:"product_id" validate:"required,uuid"`
	Quantity        int64     `json:"quantity" validate:"required,gt=0"`
	LotNumber       string    `json:"lot_number"`
	ExpirationDate  time.Time `json:"expiration_date" validate:"required"`
	ReceiptCode     string    `json:"receipt_code" validate:"required"`
	DeliveryCompany string    `json:"delivery_company" validate:"required"`
	EntryDate       time.Time `json:"entry_date"`
	Status          string    `json:"status"`
}

// ReviseEntryRequest entrada para corregir un ingreso; solo viajan los campos
// presentes.
type ReviseEntryRequest struct {
	ProductID       *string    `json:"product_id"`
	Quantity        *int64     `json:"quantity" validate:"omitempty,gt=0"`
	ReceiptCode     *string    `json:"receipt_code"`
	DeliveryCompany *string    `json:"delivery_company"`
	EntryDate       *time.Time `json:"entry_date"`
	Status          *string    `json:"status"`
}

// EntryResponse salida de un ingreso.
type EntryResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	LotID           string    `json:"lot_id"`
	Quantity        int64     `json:"quantity"`
	ReceiptCode     string    `json:"receipt_code"`
	DeliveryCompany string    `json:"delivery_company"`
	EntryDate       time.Time `json:"entry_date"`
	Status          string    `json:"status"`
	AdminID         string    `json:"admin_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// EntryListResponse lista paginada de ingresos.
type EntryListResponse struct {
	Items []EntryResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
