package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// WithdrawalUseCase gestiona las cabeceras de retiro y sus consultas. La
// asignación de stock a un retiro es responsabilidad del motor de stock.
type WithdrawalUseCase struct {
	withdrawalRepo repository.WithdrawalRepository
	employeeRepo   repository.EmployeeRepository
}

// NewWithdrawalUseCase construye el caso de uso.
func NewWithdrawalUseCase(withdrawalRepo repository.WithdrawalRepository, employeeRepo repository.EmployeeRepository) *WithdrawalUseCase {
	return &WithdrawalUseCase{withdrawalRepo: withdrawalRepo, employeeRepo: employeeRepo}
}

// Create abre un retiro para un empleado. El admin que lo autoriza viene del
// token.
func (uc *WithdrawalUseCase) Create(ctx context.Context, adminID string, in dto.CreateWithdrawalRequest) (*dto.WithdrawalResponse, error) {
	employee, err := uc.employeeRepo.GetByID(in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, domain.ErrNotFound
	}
	date := in.WithdrawalDate
	if date.IsZero() {
		date = time.Now()
	}
	w := &entity.Withdrawal{
		ID:             uuid.New().String(),
		EmployeeID:     in.EmployeeID,
		AdminID:        adminID,
		WithdrawalDate: date,
	}
	if err := uc.withdrawalRepo.Create(w); err != nil {
		return nil, err
	}
	return toWithdrawalResponse(w), nil
}

// GetByID obtiene un retiro.
func (uc *WithdrawalUseCase) GetByID(ctx context.Context, id string) (*dto.WithdrawalResponse, error) {
	w, err := uc.withdrawalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}
	return toWithdrawalResponse(w), nil
}

// Update corrige la cabecera de un retiro: empleado destinatario o fecha.
// Las líneas asignadas no se tocan aquí.
func (uc *WithdrawalUseCase) Update(ctx context.Context, id string, in dto.UpdateWithdrawalRequest) (*dto.WithdrawalResponse, error) {
	w, err := uc.withdrawalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}
	if in.EmployeeID != nil {
		if *in.EmployeeID == "" {
			return nil, domain.ErrInvalidInput
		}
		employee, err := uc.employeeRepo.GetByID(*in.EmployeeID)
		if err != nil {
			return nil, err
		}
		if employee == nil {
			return nil, domain.ErrNotFound
		}
		w.EmployeeID = *in.EmployeeID
	}
	if in.WithdrawalDate != nil {
		w.WithdrawalDate = *in.WithdrawalDate
	}
	if err := uc.withdrawalRepo.Update(w); err != nil {
		return nil, err
	}
	return toWithdrawalResponse(w), nil
}

// List lista retiros con paginación.
func (uc *WithdrawalUseCase) List(ctx context.Context, limit, offset int) (*dto.WithdrawalListResponse, error) {
	list, err := uc.withdrawalRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	return toWithdrawalList(list, limit, offset), nil
}

// SearchByDateRange busca retiros por rango de fechas.
func (uc *WithdrawalUseCase) SearchByDateRange(ctx context.Context, from, to time.Time, limit, offset int) (*dto.WithdrawalListResponse, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.withdrawalRepo.SearchByDateRange(from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toWithdrawalList(list, limit, offset), nil
}

// SearchByEmployee busca retiros de un empleado.
func (uc *WithdrawalUseCase) SearchByEmployee(ctx context.Context, employeeID string, limit, offset int) (*dto.WithdrawalListResponse, error) {
	list, err := uc.withdrawalRepo.SearchByEmployee(employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toWithdrawalList(list, limit, offset), nil
}

// SearchByAdmin busca retiros autorizados por un admin.
func (uc *WithdrawalUseCase) SearchByAdmin(ctx context.Context, adminID string, limit, offset int) (*dto.WithdrawalListResponse, error) {
	list, err := uc.withdrawalRepo.SearchByAdmin(adminID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toWithdrawalList(list, limit, offset), nil
}

// Delete elimina un retiro sin detalles. Mientras tenga detalles asignados no
// se puede eliminar: primero hay que revertirlos.
func (uc *WithdrawalUseCase) Delete(ctx context.Context, id string) error {
	w, err := uc.withdrawalRepo.GetByID(id)
	if err != nil {
		return err
	}
	if w == nil {
		return domain.ErrNotFound
	}
	count, err := uc.withdrawalRepo.CountDetails(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrConflict
	}
	return uc.withdrawalRepo.Delete(id)
}

// GetDetail obtiene un detalle con sus líneas persistidas.
func (uc *WithdrawalUseCase) GetDetail(ctx context.Context, detailID string) (*dto.DetailResponse, error) {
	d, err := uc.withdrawalRepo.GetDetail(detailID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toDetailResponse(d)
}

// ListDetails lista los detalles de un retiro con sus líneas.
func (uc *WithdrawalUseCase) ListDetails(ctx context.Context, withdrawalID string) ([]dto.DetailResponse, error) {
	w, err := uc.withdrawalRepo.GetByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}
	details, err := uc.withdrawalRepo.ListDetailsByWithdrawal(withdrawalID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DetailResponse, 0, len(details))
	for _, d := range details {
		resp, err := uc.toDetailResponse(d)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (uc *WithdrawalUseCase) toDetailResponse(d *entity.WithdrawalDetail) (*dto.DetailResponse, error) {
	products, err := uc.withdrawalRepo.ListDetailProducts(d.ID)
	if err != nil {
		return nil, err
	}
	lines := make([]dto.DetailLineResponse, 0, len(products))
	for _, p := range products {
		lines = append(lines, dto.DetailLineResponse{
			ID:        p.ID,
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Status:    p.Status,
		})
	}
	return &dto.DetailResponse{
		ID:           d.ID,
		WithdrawalID: d.WithdrawalID,
		Notes:        d.Notes,
		Lines:        lines,
		CreatedAt:    d.CreatedAt,
	}, nil
}

func toWithdrawalResponse(w *entity.Withdrawal) *dto.WithdrawalResponse {
	if w == nil {
		return nil
	}
	return &dto.WithdrawalResponse{
		ID:             w.ID,
		EmployeeID:     w.EmployeeID,
		AdminID:        w.AdminID,
		WithdrawalDate: w.WithdrawalDate,
	}
}

func toWithdrawalList(list []*entity.Withdrawal, limit, offset int) *dto.WithdrawalListResponse {
	items := make([]dto.WithdrawalResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWithdrawalResponse(w))
	}
	return &dto.WithdrawalListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
}
