package dto

import "time"

// CreateWithdrawalRequest entrada para abrir un retiro.
type CreateWithdrawalRequest struct {
	EmployeeID     string    `json:"employee_id" validate:"required,uuid"`
	WithdrawalDate time.Time `json:"withdrawal_date"`
}

// UpdateWithdrawalRequest entrada para corregir la cabecera de un retiro;
// solo viajan los campos presentes.
type UpdateWithdrawalRequest struct {
	EmployeeID     *string    `json:"employee_id" validate:"omitempty,uuid"`
	WithdrawalDate *time.Time `json:"withdrawal_date"`
}

// WithdrawalResponse salida de un retiro.
type WithdrawalResponse struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	AdminID        string    `json:"admin_id"`
	WithdrawalDate time.Time `json:"withdrawal_date"`
}

// WithdrawalListResponse lista paginada de retiros.
type WithdrawalListResponse struct {
	Items []WithdrawalResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// AllocationLineRequest línea de un detalle de retiro.
type AllocationLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Status    string `json:"status" validate:"omitempty,oneof=good damaged"`
}

// CreateDetailRequest entrada para asignar stock a un retiro.
type CreateDetailRequest struct {
	Notes string                  `json:"notes"`
	Lines []AllocationLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReallocateDetailRequest entrada para reemplazar las líneas de un detalle.
type ReallocateDetailRequest struct {
	Notes *string                 `json:"notes"`
	Lines []AllocationLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DetailLineResponse línea persistida de un detalle, con su producto.
type DetailLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Status    string `json:"status"`
}

// DetailResponse salida de un detalle de retiro.
type DetailResponse struct {
	ID           string               `json:"id"`
	WithdrawalID string               `json:"withdrawal_id"`
	Notes        string               `json:"notes"`
	Lines        []DetailLineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}
