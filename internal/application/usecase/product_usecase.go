package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ProductCache cachea lecturas de producto. La implementación vive en
// infraestructura (Redis); aquí solo interesa el contrato.
type ProductCache interface {
	Get(ctx context.Context, id string) (*entity.Product, bool)
	Set(ctx context.Context, product *entity.Product)
	Delete(ctx context.Context, id string)
}

// ProductUseCase casos de uso CRUD del catálogo. El stock no se edita aquí:
// solo se mueve vía ingresos y retiros.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
	cache       ProductCache
}

// NewProductUseCase construye el caso de uso. cache puede ser nil.
func NewProductUseCase(productRepo repository.ProductRepository, lotRepo repository.LotRepository, cache ProductCache) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, lotRepo: lotRepo, cache: cache}
}

// Create crea un producto con stock 0. El texto libre se normaliza a
// minúsculas.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.ToLower(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         name,
		Brand:        strings.ToLower(strings.TrimSpace(in.Brand)),
		Manufacturer: strings.ToLower(strings.TrimSpace(in.Manufacturer)),
		Presentation: strings.ToLower(strings.TrimSpace(in.Presentation)),
		Stock:        0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID, pasando por cache si está disponible.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if uc.cache != nil {
		if p, ok := uc.cache.Get(ctx, id); ok {
			return toProductResponse(p), nil
		}
	}
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, product)
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos descriptivos de un producto. No permite tocar
// Stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.ToLower(strings.TrimSpace(*in.Name))
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Brand != nil {
		product.Brand = strings.ToLower(strings.TrimSpace(*in.Brand))
	}
	if in.Manufacturer != nil {
		product.Manufacturer = strings.ToLower(strings.TrimSpace(*in.Manufacturer))
	}
	if in.Presentation != nil {
		product.Presentation = strings.ToLower(strings.TrimSpace(*in.Presentation))
	}
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Delete(ctx, id)
	}
	return toProductResponse(product), nil
}

// List lista el catálogo con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.productRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// SearchByName busca productos por nombre (parcial, case-insensitive).
func (uc *ProductUseCase) SearchByName(ctx context.Context, name string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.productRepo.SearchByName(strings.ToLower(strings.TrimSpace(name)), limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto. Un producto con lotes vivos no se elimina: sus
// ingresos deben revocarse primero.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByProduct(id, 1, 0)
	if err != nil {
		return err
	}
	if product.Stock != 0 || len(lots) > 0 {
		return domain.ErrConflict
	}
	if err := uc.productRepo.Delete(id); err != nil {
		return err
	}
	if uc.cache != nil {
		uc.cache.Delete(ctx, id)
	}
	return nil
}

// ListLots lista los lotes vivos de un producto.
func (uc *ProductUseCase) ListLots(ctx context.Context, productID string, limit, offset int) (*dto.LotListResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByProduct(productID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		items = append(items, *toLotResponse(l))
	}
	return &dto.LotListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListExpiring lista lotes que vencen antes de la fecha de corte, los más
// próximos primero.
func (uc *ProductUseCase) ListExpiring(ctx context.Context, cutoff time.Time, limit, offset int) (*dto.LotListResponse, error) {
	lots, err := uc.lotRepo.ListExpiringBefore(cutoff, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		items = append(items, *toLotResponse(l))
	}
	return &dto.LotListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Brand:        p.Brand,
		Manufacturer: p.Manufacturer,
		Presentation: p.Presentation,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toLotResponse(l *entity.Lot) *dto.LotResponse {
	if l == nil {
		return nil
	}
	return &dto.LotResponse{
		ID:               l.ID,
		ProductID:        l.ProductID,
		LotNumber:        l.LotNumber,
		ExpirationDate:   l.ExpirationDate,
		Quantity:         l.Quantity,
		ReceivedQuantity: l.ReceivedQuantity,
		CreatedAt:        l.CreatedAt,
	}
}
