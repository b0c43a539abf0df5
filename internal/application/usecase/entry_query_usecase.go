package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// EntryQueryUseCase consultas de solo lectura sobre ingresos. Las escrituras
// pasan por el motor de stock.
type EntryQueryUseCase struct {
	entryRepo repository.EntryRepository
}

// NewEntryQueryUseCase construye el caso de uso.
func NewEntryQueryUseCase(entryRepo repository.EntryRepository) *EntryQueryUseCase {
	return &EntryQueryUseCase{entryRepo: entryRepo}
}

// GetByID obtiene un ingreso.
func (uc *EntryQueryUseCase) GetByID(ctx context.Context, id string) (*dto.EntryResponse, error) {
	entry, err := uc.entryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return toEntryResponse(entry), nil
}

// List lista ingresos con paginación.
func (uc *EntryQueryUseCase) List(ctx context.Context, limit, offset int) (*dto.EntryListResponse, error) {
	list, err := uc.entryRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	return toEntryList(list, limit, offset), nil
}

// SearchByDeliveryCompany busca ingresos por transportista (parcial,
// case-insensitive).
func (uc *EntryQueryUseCase) SearchByDeliveryCompany(ctx context.Context, company string, limit, offset int) (*dto.EntryListResponse, error) {
	list, err := uc.entryRepo.SearchByDeliveryCompany(strings.ToLower(strings.TrimSpace(company)), limit, offset)
	if err != nil {
		return nil, err
	}
	return toEntryList(list, limit, offset), nil
}

// SearchByDateRange busca ingresos por rango de fechas.
func (uc *EntryQueryUseCase) SearchByDateRange(ctx context.Context, from, to time.Time, limit, offset int) (*dto.EntryListResponse, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.entryRepo.SearchByDateRange(from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toEntryList(list, limit, offset), nil
}

// SearchByStatus busca ingresos por estado.
func (uc *EntryQueryUseCase) SearchByStatus(ctx context.Context, status string, limit, offset int) (*dto.EntryListResponse, error) {
	list, err := uc.entryRepo.SearchByStatus(strings.ToLower(strings.TrimSpace(status)), limit, offset)
	if err != nil {
		return nil, err
	}
	return toEntryList(list, limit, offset), nil
}

func toEntryResponse(e *entity.Entry) *dto.EntryResponse {
	if e == nil {
		return nil
	}
	return &dto.EntryResponse{
		ID:              e.ID,
		ProductID:       e.ProductID,
		LotID:           e.LotID,
		Quantity:        e.Quantity,
		ReceiptCode:     e.ReceiptCode,
		DeliveryCompany: e.DeliveryCompany,
		EntryDate:       e.EntryDate,
		Status:          e.Status,
		AdminID:         e.AdminID,
		CreatedAt:       e.CreatedAt,
	}
}

func toEntryList(list []*entity.Entry, limit, offset int) *dto.EntryListResponse {
	items := make([]dto.EntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toEntryResponse(e))
	}
	return &dto.EntryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
}
