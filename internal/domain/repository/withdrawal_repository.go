package repository

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// WithdrawalRepository define el puerto de persistencia para retiros, sus
// detalles, líneas y el desglose de débitos por lote.
type WithdrawalRepository interface {
	Create(w *entity.Withdrawal) error
	GetByID(id string) (*entity.Withdrawal, error)
	Update(w *entity.Withdrawal) error
	Delete(id string) error
	List(limit, offset int) ([]*entity.Withdrawal, error)
	SearchByDateRange(from, to time.Time, limit, offset int) ([]*entity.Withdrawal, error)
	SearchByEmployee(employeeID string, limit, offset int) ([]*entity.Withdrawal, error)
	SearchByAdmin(adminID string, limit, offset int) ([]*entity.Withdrawal, error)
	CountDetails(withdrawalID string) (int, error)

	CreateDetail(d *entity.WithdrawalDetail) error
	GetDetail(id string) (*entity.WithdrawalDetail, error)
	UpdateDetail(d *entity.WithdrawalDetail) error
	DeleteDetail(id string) error
	ListDetailsByWithdrawal(withdrawalID string) ([]*entity.WithdrawalDetail, error)

	CreateDetailProduct(p *entity.WithdrawalDetailProduct) error
	ListDetailProducts(detailID string) ([]*entity.WithdrawalDetailProduct, error)
	DeleteDetailProducts(detailID string) error

	CreateLotDebit(d *entity.LotDebit) error
	ListLotDebits(detailProductID string) ([]*entity.LotDebit, error)
	DeleteLotDebits(detailProductID string) error
}
