package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles disponibles, de menor a mayor jerarquía.
const (
	RoleUser       = "user"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User representa una cuenta de la red. Cada usuario (salvo las raíces)
// guarda en CreatedBy el ID de quien lo registró; ese vínculo es inmutable
// y define el árbol de patrocinio sobre el que operan permisos y saldo.
type User struct {
	ID           string
	Username     string
	Email        string // siempre normalizado a minúsculas
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // user, moderator, admin, super_admin
	Balance      decimal.Decimal // nunca negativo; solo lo muta el motor de saldo
	CreatedBy    string // ID del padre; vacío = raíz
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRoot indica si el usuario no tiene padre en el árbol.
func (u *User) IsRoot() bool {
	return u.CreatedBy == ""
}
