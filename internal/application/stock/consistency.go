package stock

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ConsistencyUseCase verifica la conciliación del libro de stock: para cada
// producto, Product.Stock debe ser igual a la suma de las cantidades de sus
// lotes. Es de solo lectura; corre dentro de una transacción para leer un
// snapshot coherente.
type ConsistencyUseCase struct {
	txRunner TxRunner
}

// NewConsistencyUseCase construye el caso de uso.
func NewConsistencyUseCase(txRunner TxRunner) *ConsistencyUseCase {
	return &ConsistencyUseCase{txRunner: txRunner}
}

// ConsistencyReport resultado de conciliar un producto.
type ConsistencyReport struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Stock      int64  `json:"stock"`
	LotSum     int64  `json:"lot_sum"`
	Consistent bool   `json:"consistent"`
}

// CheckProduct concilia un producto.
func (uc *ConsistencyUseCase) CheckProduct(ctx context.Context, productID string) (*ConsistencyReport, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var report *ConsistencyReport
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		_ repository.EntryRepository,
		_ repository.WithdrawalRepository,
	) error {
		product, err := productRepo.GetByID(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		sum, err := lotRepo.SumQuantityByProduct(productID)
		if err != nil {
			return err
		}
		report = &ConsistencyReport{
			ProductID:  product.ID,
			Name:       product.Name,
			Stock:      product.Stock,
			LotSum:     sum,
			Consistent: product.Stock == sum,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// CheckAll concilia todos los productos del almacén y devuelve un reporte por
// producto. Pagina internamente para no cargar el catálogo entero de una vez.
func (uc *ConsistencyUseCase) CheckAll(ctx context.Context) ([]ConsistencyReport, error) {
	const pageSize = 200
	var reports []ConsistencyReport
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		_ repository.EntryRepository,
		_ repository.WithdrawalRepository,
	) error {
		for offset := 0; ; offset += pageSize {
			products, err := productRepo.List(pageSize, offset)
			if err != nil {
				return err
			}
			for _, product := range products {
				sum, err := lotRepo.SumQuantityByProduct(product.ID)
				if err != nil {
					return err
				}
				reports = append(reports, ConsistencyReport{
					ProductID:  product.ID,
					Name:       product.Name,
					Stock:      product.Stock,
					LotSum:     sum,
					Consistent: product.Stock == sum,
				})
			}
			if len(products) < pageSize {
				return nil
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}
