package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = "id, product_id, lot_number, expiration_date, quantity, received_quantity, created_at"

// LotRepo implementación del puerto LotRepository sobre PostgreSQL (usable con
// pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de persistencia para lotes. Pasar
// pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un nuevo lote.
func (r *LotRepo) Create(lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, product_id, lot_number, expiration_date, quantity, received_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.ProductID, lot.LotNumber, lot.ExpirationDate,
		lot.Quantity, lot.ReceivedQuantity, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	return r.scanOne(query, "get lot", id)
}

// GetForUpdate obtiene un lote y bloquea su fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, "get lot for update", id)
}

// ListForAllocation devuelve los lotes de un producto en el orden en que deben
// consumirse: vencimiento ascendente, desempate por orden de creación y luego
// id. Bloquea las filas; la fila del producto ya debe estar bloqueada.
func (r *LotRepo) ListForAllocation(productID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots WHERE product_id = $1
		ORDER BY expiration_date ASC, created_at ASC, id ASC
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots for allocation: %w", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

// OldestForUpdate devuelve el lote más próximo a vencer de un producto con la
// fila bloqueada, o nil si no queda ninguno.
func (r *LotRepo) OldestForUpdate(productID string) (*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots WHERE product_id = $1
		ORDER BY expiration_date ASC, created_at ASC, id ASC
		LIMIT 1 FOR UPDATE`
	return r.scanOne(query, "oldest lot for update", productID)
}

// UpdateQuantity escribe la cantidad remanente de un lote.
func (r *LotRepo) UpdateQuantity(lotID string, quantity int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE lots SET quantity = $2 WHERE id = $1`,
		lotID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update lot quantity: %w", err)
	}
	return nil
}

// Reassign reescribe producto, cantidad y máximo histórico de un lote. Lo usa
// la corrección de ingresos y el crédito de reversas.
func (r *LotRepo) Reassign(lotID, productID string, quantity, receivedQuantity int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE lots SET product_id = $2, quantity = $3, received_quantity = $4 WHERE id = $1`,
		lotID, productID, quantity, receivedQuantity,
	)
	if err != nil {
		return fmt.Errorf("reassign lot: %w", err)
	}
	return nil
}

// ListByProduct lista los lotes de un producto, los más próximos a vencer
// primero.
func (r *LotRepo) ListByProduct(productID string, limit, offset int) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots WHERE product_id = $1
		ORDER BY expiration_date ASC, created_at ASC, id ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list lots by product: %w", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

// ListExpiringBefore lista lotes que vencen antes de la fecha de corte.
func (r *LotRepo) ListExpiringBefore(cutoff time.Time, limit, offset int) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots WHERE expiration_date < $1
		ORDER BY expiration_date ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, cutoff, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expiring lots: %w", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

// SumQuantityByProduct suma las cantidades remanentes de los lotes de un
// producto. Es el lado derecho del invariante de conciliación.
func (r *LotRepo) SumQuantityByProduct(productID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity), 0) FROM lots WHERE product_id = $1`,
		productID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum lot quantities: %w", err)
	}
	return sum, nil
}

// Delete elimina un lote por ID.
func (r *LotRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	return nil
}

func (r *LotRepo) scanOne(query, op string, args ...any) (*entity.Lot, error) {
	var l entity.Lot
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&l.ID, &l.ProductID, &l.LotNumber, &l.ExpirationDate,
		&l.Quantity, &l.ReceivedQuantity, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}

func scanLots(rows pgx.Rows) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.LotNumber, &l.ExpirationDate,
			&l.Quantity, &l.ReceivedQuantity, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
