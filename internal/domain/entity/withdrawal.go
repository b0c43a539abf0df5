package entity

import "time"

// Withdrawal representa un retiro de mercadería del almacén.
type Withdrawal struct {
	ID             string
	EmployeeID     string
	AdminID        string
	WithdrawalDate time.Time
}

// WithdrawalDetail agrupa las líneas de una transacción de retiro.
type WithdrawalDetail struct {
	ID           string
	WithdrawalID string
	Notes        string
	CreatedAt    time.Time
}

// Estados de una línea de retiro.
const (
	LineStatusGood    = "good"
	LineStatusDamaged = "damaged"
)

// WithdrawalDetailProduct es una línea de asignación: cuánto se retiró de qué
// producto. El desglose por lote vive en LotDebit.
type WithdrawalDetailProduct struct {
	ID        string
	DetailID  string
	ProductID string
	Quantity  int64
	Status    string // good | damaged
}

// LotDebit registra cuánto se debitó de cada lote al satisfacer una línea de
// retiro. Persistirlo hace exacta la reversa: se restauran los mismos lotes
// con los mismos montos.
type LotDebit struct {
	ID              string
	DetailProductID string
	LotID           string
	Quantity        int64
}
