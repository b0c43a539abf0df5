package dto

import "time"

// RegisterAdminRequest entrada para registrar un administrador (password en
// texto, se hashea en el use case).
type RegisterAdminRequest struct {
	DNI      string `json:"dni" validate:"required,min=1,max=20"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin super-admin"`
}

// RegisterEmployeeRequest entrada para registrar un empleado.
type RegisterEmployeeRequest struct {
	DNI      string `json:"dni" validate:"required,min=1,max=20"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserResponse salida de un admin o empleado (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	DNI       string    `json:"dni"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
