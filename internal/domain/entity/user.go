package entity

import "time"

// Roles de la aplicación.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
	RoleEmployee   = "employee"
)

// Admin usuario administrador del almacén. Role puede ser admin o super-admin.
type Admin struct {
	ID           string
	DNI          string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Employee empleado que retira mercadería.
type Employee struct {
	ID           string
	DNI          string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
