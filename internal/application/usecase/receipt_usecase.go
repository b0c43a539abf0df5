package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ReceiptLine línea de comprobante con el nombre del producto ya resuelto.
type ReceiptLine struct {
	ProductName string
	Quantity    int64
	Status      string
}

// ReceiptData todo lo que necesita el comprobante de retiro.
type ReceiptData struct {
	WithdrawalID   string
	WithdrawalDate time.Time
	EmployeeName   string
	EmployeeDNI    string
	AdminName      string
	Notes          []string
	Lines          []ReceiptLine
}

// ReceiptPDFGenerator genera el comprobante en PDF. La implementación vive en
// infraestructura (Maroto).
type ReceiptPDFGenerator interface {
	GenerateWithdrawalReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

// ReceiptUseCase arma el comprobante de un retiro: junta cabecera, detalles y
// nombres, y delega el render al generador.
type ReceiptUseCase struct {
	withdrawalRepo repository.WithdrawalRepository
	productRepo    repository.ProductRepository
	employeeRepo   repository.EmployeeRepository
	adminRepo      repository.AdminRepository
	generator      ReceiptPDFGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	withdrawalRepo repository.WithdrawalRepository,
	productRepo repository.ProductRepository,
	employeeRepo repository.EmployeeRepository,
	adminRepo repository.AdminRepository,
	generator ReceiptPDFGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		withdrawalRepo: withdrawalRepo,
		productRepo:    productRepo,
		employeeRepo:   employeeRepo,
		adminRepo:      adminRepo,
		generator:      generator,
	}
}

// Generate genera el comprobante PDF de un retiro con todos sus detalles.
func (uc *ReceiptUseCase) Generate(ctx context.Context, withdrawalID string) ([]byte, error) {
	w, err := uc.withdrawalRepo.GetByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}

	data := ReceiptData{
		WithdrawalID:   w.ID,
		WithdrawalDate: w.WithdrawalDate,
	}
	if employee, err := uc.employeeRepo.GetByID(w.EmployeeID); err != nil {
		return nil, err
	} else if employee != nil {
		data.EmployeeName = employee.Name
		data.EmployeeDNI = employee.DNI
	}
	if admin, err := uc.adminRepo.GetByID(w.AdminID); err != nil {
		return nil, err
	} else if admin != nil {
		data.AdminName = admin.Name
	}

	details, err := uc.withdrawalRepo.ListDetailsByWithdrawal(withdrawalID)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	for _, d := range details {
		if d.Notes != "" {
			data.Notes = append(data.Notes, d.Notes)
		}
		products, err := uc.withdrawalRepo.ListDetailProducts(d.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			name, ok := names[p.ProductID]
			if !ok {
				product, err := uc.productRepo.GetByID(p.ProductID)
				if err != nil {
					return nil, err
				}
				if product != nil {
					name = product.Name
				} else {
					name = p.ProductID
				}
				names[p.ProductID] = name
			}
			data.Lines = append(data.Lines, ReceiptLine{
				ProductName: name,
				Quantity:    p.Quantity,
				Status:      p.Status,
			})
		}
	}

	return uc.generator.GenerateWithdrawalReceipt(ctx, data)
}
