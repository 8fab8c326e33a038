package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
// Role vacío crea "user"; otros roles exigen que el actor pueda asignarlos.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=user moderator admin super_admin"`
}

// RegisterRequest entrada para el registro público (auth). Siempre crea
// cuentas "user" sin padre. El captcha solo se exige si está habilitado.
type RegisterRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=50"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	CaptchaID     string `json:"captcha_id" validate:"omitempty,uuid"`
	CaptchaAnswer string `json:"captcha_answer" validate:"omitempty,max=10"`
}

// UpdateProfileRequest entrada para actualizar la propia cuenta.
// Solo viajan los campos que cambian.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// ChangeRoleRequest entrada para cambiar el rol de otro usuario.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user moderator admin super_admin"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedBy string          `json:"created_by,omitempty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UserListResponse página de usuarios.
type UserListResponse struct {
	Items      []*UserResponse `json:"items"`
	Pagination PageResponse    `json:"pagination"`
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

// CaptchaResponse reto emitido para el registro público.
type CaptchaResponse struct {
	CaptchaID string    `json:"captcha_id"`
	Question  string    `json:"question"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CanManageResponse salida de la consulta de facultad de gestión.
type CanManageResponse struct {
	CanManage bool `json:"can_manage"`
}

// TreeNodeResponse nodo del árbol de descendencia anidado.
type TreeNodeResponse struct {
	User     UserResponse        `json:"user"`
	Children []*TreeNodeResponse `json:"children"`
}

// DownlineResponse listado plano de descendencia.
type DownlineResponse struct {
	Total int             `json:"total"`
	Users []*UserResponse `json:"users"`
}
