package entity

import "time"

// Entry representa un ingreso de mercadería. Cada ingreso crea exactamente un
// lote (1:1); eliminar el ingreso revierte el lote y el agregado del producto.
type Entry struct {
	ID              string
	ProductID       string
	LotID           string
	Quantity        int64
	ReceiptCode     string // código de remito, en minúsculas
	DeliveryCompany string // transportista, en minúsculas
	EntryDate       time.Time
	Status          string
	AdminID         string // admin que registró el ingreso
	CreatedAt       time.Time
}
