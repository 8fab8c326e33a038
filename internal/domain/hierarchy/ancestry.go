package hierarchy

import "github.com/jhoicas/saldora-api/internal/domain/entity"

// UserGetter es el contrato mínimo para subir por la cadena de padres sin
// cargar el árbol completo. Lo satisface repository.UserRepository.
type UserGetter interface {
	GetByID(id string) (*entity.User, error)
}

// IsAncestor indica si ancestorID aparece en la cadena de padres de userID.
// Sube iterativamente desde el usuario hasta la raíz; un usuario no es
// ancestro de sí mismo. Usuarios inexistentes en la cadena cortan la
// búsqueda sin error: simplemente no hay ascendencia.
func IsAncestor(g UserGetter, ancestorID, userID string) (bool, error) {
	if ancestorID == "" || userID == "" || ancestorID == userID {
		return false, nil
	}
	visited := make(map[string]bool)
	currentID := userID
	for {
		if visited[currentID] {
			// ciclo en los datos: lo tratamos como "no es ancestro"
			return false, nil
		}
		visited[currentID] = true

		u, err := g.GetByID(currentID)
		if err != nil {
			return false, err
		}
		if u == nil || u.CreatedBy == "" {
			return false, nil
		}
		if u.CreatedBy == ancestorID {
			return true, nil
		}
		currentID = u.CreatedBy
	}
}
