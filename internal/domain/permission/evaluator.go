// Package permission concentra las reglas de autorización entre usuarios:
// quién puede gestionar a quién, qué roles puede asignar cada rol y cuándo
// procede eliminar una cuenta. Todas las decisiones combinan dos insumos:
// el rango del rol y la posición en el árbol de patrocinio (la ascendencia
// la calcula el llamador con el paquete hierarchy).
package permission

import (
	"github.com/jhoicas/saldora-api/internal/domain/entity"
)

// roleRank define el orden total de los roles.
var roleRank = map[string]int{
	entity.RoleUser:       1,
	entity.RoleModerator:  2,
	entity.RoleAdmin:      3,
	entity.RoleSuperAdmin: 4,
}

// Rank devuelve el rango numérico del rol; 0 para roles desconocidos.
func Rank(role string) int {
	return roleRank[role]
}

// ValidRole indica si el rol existe.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// IsPrivileged indica si el rol tiene alcance administrativo (admin o superior).
func IsPrivileged(role string) bool {
	return roleRank[role] >= roleRank[entity.RoleAdmin]
}

// CanManage decide si actor puede gestionar a subject. Las reglas, en orden:
//
//  1. nadie se gestiona a sí mismo por esta vía (las operaciones sobre la
//     propia cuenta tienen sus propias reglas);
//  2. super_admin gestiona a cualquiera;
//  3. un rango estrictamente mayor gestiona a su descendencia;
//  4. admin gestiona a cualquier usuario no privilegiado de toda la red,
//     sin exigir ascendencia.
//
// actorIsAncestor lo calcula el llamador (hierarchy.IsAncestor o
// Snapshot.IsDescendant) para no atar este paquete a ninguna fuente de datos.
func CanManage(actor, subject *entity.User, actorIsAncestor bool) bool {
	if actor == nil || subject == nil {
		return false
	}
	if actor.ID == subject.ID {
		return false
	}
	if actor.Role == entity.RoleSuperAdmin {
		return true
	}
	if Rank(actor.Role) > Rank(subject.Role) && actorIsAncestor {
		return true
	}
	if actor.Role == entity.RoleAdmin && !IsPrivileged(subject.Role) {
		return true
	}
	return false
}

// CanAssignRole decide si un actor con actorRole puede dejar al sujeto con
// newRole. targetCurrentRole es el rol actual del sujeto cuando se trata de
// un cambio de rol; al crear una cuenta nueva va vacío. actorRole vacío
// representa el registro público, que solo produce cuentas "user".
func CanAssignRole(actorRole, targetCurrentRole, newRole string) bool {
	if !ValidRole(newRole) {
		return false
	}
	switch actorRole {
	case entity.RoleSuperAdmin:
		return true
	case entity.RoleAdmin:
		// un admin no toca a otros admins ni a super_admins,
		// y nunca otorga super_admin
		if targetCurrentRole == entity.RoleAdmin || targetCurrentRole == entity.RoleSuperAdmin {
			return false
		}
		return newRole != entity.RoleSuperAdmin
	case entity.RoleUser, entity.RoleModerator:
		return newRole == entity.RoleUser
	case "":
		return newRole == entity.RoleUser
	default:
		return false
	}
}

// CanDelete decide si actor puede eliminar la cuenta de subject: nunca la
// propia, solo con saldo exactamente en cero y teniendo facultad de gestión.
func CanDelete(actor, subject *entity.User, actorIsAncestor bool) bool {
	if actor == nil || subject == nil {
		return false
	}
	if actor.ID == subject.ID {
		return false
	}
	if !subject.Balance.IsZero() {
		return false
	}
	return CanManage(actor, subject, actorIsAncestor)
}
