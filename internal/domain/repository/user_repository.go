package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// AdminRepository define el puerto de persistencia para administradores.
type AdminRepository interface {
	Create(admin *entity.Admin) error
	GetByID(id string) (*entity.Admin, error)
	GetByEmail(email string) (*entity.Admin, error)
}

// EmployeeRepository define el puerto de persistencia para empleados.
type EmployeeRepository interface {
	Create(employee *entity.Employee) error
	GetByID(id string) (*entity.Employee, error)
	GetByEmail(email string) (*entity.Employee, error)
}
