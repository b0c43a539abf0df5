package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.WithdrawalRepository = (*WithdrawalRepo)(nil)

// WithdrawalRepo implementación del puerto WithdrawalRepository sobre
// PostgreSQL: retiros, detalles, líneas y débitos por lote (usable con pool o
// tx).
type WithdrawalRepo struct {
	q Querier
}

// NewWithdrawalRepository construye el adaptador de persistencia para retiros.
// Pasar pool o tx (Querier).
func NewWithdrawalRepository(q Querier) *WithdrawalRepo {
	return &WithdrawalRepo{q: q}
}

// Create persiste un retiro.
func (r *WithdrawalRepo) Create(w *entity.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, employee_id, admin_id, withdrawal_date)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query, w.ID, w.EmployeeID, w.AdminID, w.WithdrawalDate)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

// GetByID obtiene un retiro por ID.
func (r *WithdrawalRepo) GetByID(id string) (*entity.Withdrawal, error) {
	query := `SELECT id, employee_id, admin_id, withdrawal_date FROM withdrawals WHERE id = $1`
	var w entity.Withdrawal
	err := r.q.QueryRow(context.Background(), query, id).Scan(&w.ID, &w.EmployeeID, &w.AdminID, &w.WithdrawalDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}
	return &w, nil
}

// Update actualiza un retiro.
func (r *WithdrawalRepo) Update(w *entity.Withdrawal) error {
	query := `UPDATE withdrawals SET employee_id = $2, admin_id = $3, withdrawal_date = $4 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, w.ID, w.EmployeeID, w.AdminID, w.WithdrawalDate)
	if err != nil {
		return fmt.Errorf("update withdrawal: %w", err)
	}
	return nil
}

// Delete elimina un retiro por ID.
func (r *WithdrawalRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM withdrawals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete withdrawal: %w", err)
	}
	return nil
}

// List lista retiros con paginación, los más recientes primero.
func (r *WithdrawalRepo) List(limit, offset int) ([]*entity.Withdrawal, error) {
	query := `SELECT id, employee_id, admin_id, withdrawal_date FROM withdrawals ORDER BY withdrawal_date DESC LIMIT $1 OFFSET $2`
	return r.scanWithdrawals(query, "list withdrawals", limit, offset)
}

// SearchByDateRange busca retiros por rango de fechas (inclusive).
func (r *WithdrawalRepo) SearchByDateRange(from, to time.Time, limit, offset int) ([]*entity.Withdrawal, error) {
	query := `
		SELECT id, employee_id, admin_id, withdrawal_date
		FROM withdrawals WHERE withdrawal_date >= $1 AND withdrawal_date <= $2
		ORDER BY withdrawal_date DESC LIMIT $3 OFFSET $4`
	return r.scanWithdrawals(query, "search withdrawals by date", from, to, limit, offset)
}

// SearchByEmployee busca retiros de un empleado.
func (r *WithdrawalRepo) SearchByEmployee(employeeID string, limit, offset int) ([]*entity.Withdrawal, error) {
	query := `
		SELECT id, employee_id, admin_id, withdrawal_date
		FROM withdrawals WHERE employee_id = $1
		ORDER BY withdrawal_date DESC LIMIT $2 OFFSET $3`
	return r.scanWithdrawals(query, "search withdrawals by employee", employeeID, limit, offset)
}

// SearchByAdmin busca retiros autorizados por un admin.
func (r *WithdrawalRepo) SearchByAdmin(adminID string, limit, offset int) ([]*entity.Withdrawal, error) {
	query := `
		SELECT id, employee_id, admin_id, withdrawal_date
		FROM withdrawals WHERE admin_id = $1
		ORDER BY withdrawal_date DESC LIMIT $2 OFFSET $3`
	return r.scanWithdrawals(query, "search withdrawals by admin", adminID, limit, offset)
}

// CountDetails cuenta los detalles de un retiro.
func (r *WithdrawalRepo) CountDetails(withdrawalID string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM withdrawal_details WHERE withdrawal_id = $1`,
		withdrawalID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count withdrawal details: %w", err)
	}
	return count, nil
}

// CreateDetail persiste un detalle de retiro.
func (r *WithdrawalRepo) CreateDetail(d *entity.WithdrawalDetail) error {
	query := `
		INSERT INTO withdrawal_details (id, withdrawal_id, notes, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query, d.ID, d.WithdrawalID, d.Notes, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert withdrawal detail: %w", err)
	}
	return nil
}

// GetDetail obtiene un detalle por ID.
func (r *WithdrawalRepo) GetDetail(id string) (*entity.WithdrawalDetail, error) {
	query := `SELECT id, withdrawal_id, notes, created_at FROM withdrawal_details WHERE id = $1`
	var d entity.WithdrawalDetail
	err := r.q.QueryRow(context.Background(), query, id).Scan(&d.ID, &d.WithdrawalID, &d.Notes, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal detail: %w", err)
	}
	return &d, nil
}

// UpdateDetail actualiza un detalle.
func (r *WithdrawalRepo) UpdateDetail(d *entity.WithdrawalDetail) error {
	query := `UPDATE withdrawal_details SET notes = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, d.ID, d.Notes)
	if err != nil {
		return fmt.Errorf("update withdrawal detail: %w", err)
	}
	return nil
}

// DeleteDetail elimina un detalle por ID.
func (r *WithdrawalRepo) DeleteDetail(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM withdrawal_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete withdrawal detail: %w", err)
	}
	return nil
}

// ListDetailsByWithdrawal lista los detalles de un retiro.
func (r *WithdrawalRepo) ListDetailsByWithdrawal(withdrawalID string) ([]*entity.WithdrawalDetail, error) {
	query := `SELECT id, withdrawal_id, notes, created_at FROM withdrawal_details WHERE withdrawal_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawal details: %w", err)
	}
	defer rows.Close()
	var out []*entity.WithdrawalDetail
	for rows.Next() {
		var d entity.WithdrawalDetail
		if err := rows.Scan(&d.ID, &d.WithdrawalID, &d.Notes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan withdrawal detail: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// CreateDetailProduct persiste una línea de detalle.
func (r *WithdrawalRepo) CreateDetailProduct(p *entity.WithdrawalDetailProduct) error {
	query := `
		INSERT INTO withdrawal_detail_products (id, detail_id, product_id, quantity, status)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, p.ID, p.DetailID, p.ProductID, p.Quantity, p.Status)
	if err != nil {
		return fmt.Errorf("insert detail product: %w", err)
	}
	return nil
}

// ListDetailProducts lista las líneas de un detalle.
func (r *WithdrawalRepo) ListDetailProducts(detailID string) ([]*entity.WithdrawalDetailProduct, error) {
	query := `SELECT id, detail_id, product_id, quantity, status FROM withdrawal_detail_products WHERE detail_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, detailID)
	if err != nil {
		return nil, fmt.Errorf("list detail products: %w", err)
	}
	defer rows.Close()
	var out []*entity.WithdrawalDetailProduct
	for rows.Next() {
		var p entity.WithdrawalDetailProduct
		if err := rows.Scan(&p.ID, &p.DetailID, &p.ProductID, &p.Quantity, &p.Status); err != nil {
			return nil, fmt.Errorf("scan detail product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// DeleteDetailProducts elimina las líneas de un detalle.
func (r *WithdrawalRepo) DeleteDetailProducts(detailID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM withdrawal_detail_products WHERE detail_id = $1`, detailID)
	if err != nil {
		return fmt.Errorf("delete detail products: %w", err)
	}
	return nil
}

// CreateLotDebit persiste el débito que una línea le hizo a un lote.
func (r *WithdrawalRepo) CreateLotDebit(d *entity.LotDebit) error {
	query := `
		INSERT INTO lot_debits (id, detail_product_id, lot_id, quantity)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query, d.ID, d.DetailProductID, d.LotID, d.Quantity)
	if err != nil {
		return fmt.Errorf("insert lot debit: %w", err)
	}
	return nil
}

// ListLotDebits lista los débitos por lote de una línea, en el orden en que se
// aplicaron.
func (r *WithdrawalRepo) ListLotDebits(detailProductID string) ([]*entity.LotDebit, error) {
	query := `SELECT id, detail_product_id, lot_id, quantity FROM lot_debits WHERE detail_product_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, detailProductID)
	if err != nil {
		return nil, fmt.Errorf("list lot debits: %w", err)
	}
	defer rows.Close()
	var out []*entity.LotDebit
	for rows.Next() {
		var d entity.LotDebit
		if err := rows.Scan(&d.ID, &d.DetailProductID, &d.LotID, &d.Quantity); err != nil {
			return nil, fmt.Errorf("scan lot debit: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// DeleteLotDebits elimina los débitos de una línea.
func (r *WithdrawalRepo) DeleteLotDebits(detailProductID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM lot_debits WHERE detail_product_id = $1`, detailProductID)
	if err != nil {
		return fmt.Errorf("delete lot debits: %w", err)
	}
	return nil
}

func (r *WithdrawalRepo) scanWithdrawals(query, op string, args ...any) ([]*entity.Withdrawal, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.Withdrawal
	for rows.Next() {
		var w entity.Withdrawal
		if err := rows.Scan(&w.ID, &w.EmployeeID, &w.AdminID, &w.WithdrawalDate); err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}
