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

var _ repository.EntryRepository = (*EntryRepo)(nil)

const entryColumns = "id, product_id, lot_id, quantity, receipt_code, delivery_company, entry_date, status, admin_id, created_at"

// EntryRepo implementación del puerto EntryRepository sobre PostgreSQL
// (usable con pool o tx).
type EntryRepo struct {
	q Querier
}

// NewEntryRepository construye el adaptador de persistencia para ingresos.
// Pasar pool o tx (Querier).
func NewEntryRepository(q Querier) *EntryRepo {
	return &EntryRepo{q: q}
}

// Create persiste un nuevo ingreso. La tabla además tiene un índice único
// sobre (product_id, receipt_code, delivery_company) como segunda guarda
// contra la doble carga del mismo remito.
func (r *EntryRepo) Create(entry *entity.Entry) error {
	query := `
		INSERT INTO entries (id, product_id, lot_id, quantity, receipt_code, delivery_company, entry_date, status, admin_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ProductID, entry.LotID, entry.Quantity, entry.ReceiptCode,
		entry.DeliveryCompany, entry.EntryDate, entry.Status, entry.AdminID, entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// GetByID obtiene un ingreso por ID.
func (r *EntryRepo) GetByID(id string) (*entity.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`
	return r.scanOne(query, "get entry", id)
}

// FindDuplicate busca un ingreso con la misma tupla (producto, remito,
// transportista). Los tres valores ya viajan normalizados a minúsculas.
func (r *EntryRepo) FindDuplicate(productID, receiptCode, deliveryCompany string) (*entity.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries WHERE product_id = $1 AND receipt_code = $2 AND delivery_company = $3`
	return r.scanOne(query, "find duplicate entry", productID, receiptCode, deliveryCompany)
}

// Update actualiza un ingreso existente.
func (r *EntryRepo) Update(entry *entity.Entry) error {
	query := `
		UPDATE entries SET product_id = $2, lot_id = $3, quantity = $4, receipt_code = $5,
			delivery_company = $6, entry_date = $7, status = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ProductID, entry.LotID, entry.Quantity, entry.ReceiptCode,
		entry.DeliveryCompany, entry.EntryDate, entry.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

// Delete elimina un ingreso por ID.
func (r *EntryRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// List lista ingresos con paginación, los más recientes primero.
func (r *EntryRepo) List(limit, offset int) ([]*entity.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries ORDER BY entry_date DESC, created_at DESC LIMIT $1 OFFSET $2`
	return r.scanMany(query, "list entries", limit, offset)
}

// SearchByDeliveryCompany busca ingresos por transportista (parcial).
func (r *EntryRepo) SearchByDeliveryCompany(deliveryCompany string, limit, offset int) ([]*entity.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries WHERE delivery_company ILIKE '%' || $1 || '%'
		ORDER BY entry_date DESC LIMIT $2 OFFSET $3`
	return r.scanMany(query, "search entries by company", deliveryCompany, limit, offset)
}

// SearchByDateRange busca ingresos por rango de fechas (inclusive).
func (r *EntryRepo) SearchByDateRange(from, to time.Time, limit, offset int) ([]*entity.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries WHERE entry_date >= $1 AND entry_date <= $2
		ORDER BY entry_date DESC LIMIT $3 OFFSET $4`
	return r.scanMany(query, "search entries by date", from, to, limit, offset)
}

// SearchByStatus busca ingresos por estado.
func (r *EntryRepo) SearchByStatus(status string, limit, offset int) ([]*entity.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries WHERE status = $1
		ORDER BY entry_date DESC LIMIT $2 OFFSET $3`
	return r.scanMany(query, "search entries by status", status, limit, offset)
}

func (r *EntryRepo) scanOne(query, op string, args ...any) (*entity.Entry, error) {
	var e entity.Entry
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&e.ID, &e.ProductID, &e.LotID, &e.Quantity, &e.ReceiptCode,
		&e.DeliveryCompany, &e.EntryDate, &e.Status, &e.AdminID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (r *EntryRepo) scanMany(query, op string, args ...any) ([]*entity.Entry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.Entry
	for rows.Next() {
		var e entity.Entry
		if err := rows.Scan(
			&e.ID, &e.ProductID, &e.LotID, &e.Quantity, &e.ReceiptCode,
			&e.DeliveryCompany, &e.EntryDate, &e.Status, &e.AdminID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
