package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login de
// administradores y empleados.
type AuthUseCase struct {
	adminRepo    repository.AdminRepository
	employeeRepo repository.EmployeeRepository
	jwtCfg       JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(adminRepo repository.AdminRepository, employeeRepo repository.EmployeeRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{adminRepo: adminRepo, employeeRepo: employeeRepo, jwtCfg: jwtCfg}
}

// RegisterAdmin crea un administrador: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) RegisterAdmin(in dto.RegisterAdminRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, _ := uc.adminRepo.GetByEmail(email)
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	role := in.Role
	if role == "" {
		role = entity.RoleAdmin
	}
	if role != entity.RoleAdmin && role != entity.RoleSuperAdmin {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &entity.Admin{
		ID:           uuid.New().String(),
		DNI:          strings.TrimSpace(in.DNI),
		Name:         strings.ToLower(strings.TrimSpace(in.Name)),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := uc.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	return adminToResponse(admin), nil
}

// RegisterEmployee crea un empleado. Los empleados pueden loguearse para
// consultar sus retiros, pero no operan el stock.
func (uc *AuthUseCase) RegisterEmployee(in dto.RegisterEmployeeRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, _ := uc.employeeRepo.GetByEmail(email)
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	employee := &entity.Employee{
		ID:           uuid.New().String(),
		DNI:          strings.TrimSpace(in.DNI),
		Name:         strings.ToLower(strings.TrimSpace(in.Name)),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := uc.employeeRepo.Create(employee); err != nil {
		return nil, err
	}
	return employeeToResponse(employee), nil
}

// Login verifica email/password de un administrador o empleado, genera JWT y
// retorna token + usuario. El email se busca primero entre los admins; si no
// está, entre los empleados, que reciben un token con rol employee.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	admin, err := uc.adminRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if admin != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)); err != nil {
			return nil, domain.ErrUnauthorized
		}
		token, err := jwt.Generate(uc.jwtCfg.Secret, admin.ID, admin.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
		if err != nil {
			return nil, err
		}
		return &dto.LoginResponse{
			Token: token,
			User:  *adminToResponse(admin),
		}, nil
	}

	employee, err := uc.employeeRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, employee.ID, entity.RoleEmployee, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *employeeToResponse(employee),
	}, nil
}

func adminToResponse(a *entity.Admin) *dto.UserResponse {
	if a == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        a.ID,
		DNI:       a.DNI,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

func employeeToResponse(e *entity.Employee) *dto.UserResponse {
	if e == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        e.ID,
		DNI:       e.DNI,
		Name:      e.Name,
		Email:     e.Email,
		Role:      entity.RoleEmployee,
		CreatedAt: e.CreatedAt,
	}
}
