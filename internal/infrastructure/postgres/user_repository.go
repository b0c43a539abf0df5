package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.AdminRepository = (*AdminRepo)(nil)
var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

// AdminRepo implementación del puerto AdminRepository sobre PostgreSQL.
type AdminRepo struct {
	q Querier
}

// NewAdminRepository construye el adaptador de persistencia para admins.
func NewAdminRepository(q Querier) *AdminRepo {
	return &AdminRepo{q: q}
}

// Create persiste un administrador.
func (r *AdminRepo) Create(admin *entity.Admin) error {
	query := `
		INSERT INTO admins (id, dni, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		admin.ID, admin.DNI, admin.Name, admin.Email, admin.PasswordHash, admin.Role, admin.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetByID obtiene un admin por ID.
func (r *AdminRepo) GetByID(id string) (*entity.Admin, error) {
	query := `SELECT id, dni, name, email, password_hash, role, created_at FROM admins WHERE id = $1`
	return r.scanOne(query, "get admin", id)
}

// GetByEmail obtiene un admin por email.
func (r *AdminRepo) GetByEmail(email string) (*entity.Admin, error) {
	query := `SELECT id, dni, name, email, password_hash, role, created_at FROM admins WHERE email = $1`
	return r.scanOne(query, "get admin by email", email)
}

func (r *AdminRepo) scanOne(query, op string, args ...any) (*entity.Admin, error) {
	var a entity.Admin
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&a.ID, &a.DNI, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// EmployeeRepo implementación del puerto EmployeeRepository sobre PostgreSQL.
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador de persistencia para empleados.
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

// Create persiste un empleado.
func (r *EmployeeRepo) Create(employee *entity.Employee) error {
	query := `
		INSERT INTO employees (id, dni, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		employee.ID, employee.DNI, employee.Name, employee.Email, employee.PasswordHash, employee.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// GetByID obtiene un empleado por ID.
func (r *EmployeeRepo) GetByID(id string) (*entity.Employee, error) {
	query := `SELECT id, dni, name, email, password_hash, created_at FROM employees WHERE id = $1`
	return r.scanOne(query, "get employee", id)
}

// GetByEmail obtiene un empleado por email.
func (r *EmployeeRepo) GetByEmail(email string) (*entity.Employee, error) {
	query := `SELECT id, dni, name, email, password_hash, created_at FROM employees WHERE email = $1`
	return r.scanOne(query, "get employee by email", email)
}

func (r *EmployeeRepo) scanOne(query, op string, args ...any) (*entity.Employee, error) {
	var e entity.Employee
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&e.ID, &e.DNI, &e.Name, &e.Email, &e.PasswordHash, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}
