package entity

import "time"

// Lot representa un lote: mercadería de un producto recibida junta, con su
// fecha de vencimiento. La cantidad solo la ajustan asignaciones, reposiciones
// y reversas. ReceivedQuantity es el máximo histórico del lote y acota las
// reversas: restaurar por encima de él es una inconsistencia, no un clamp.
type Lot struct {
	ID               string
	ProductID        string
	LotNumber        string // texto libre, no único globalmente
	ExpirationDate   time.Time
	Quantity         int64
	ReceivedQuantity int64
	CreatedAt        time.Time
}
