// Package hierarchy resuelve consultas sobre el árbol de patrocinio.
//
// El árbol vive en la columna created_by de users: cada usuario apunta a su
// padre y las raíces apuntan a nada. Para consultas de red (descendencia
// completa, árbol anidado, hijos directos) se carga una foto del universo de
// usuarios en un Snapshot indexado en memoria y se recorre de forma
// iterativa con una pila explícita; no hay recursión ni consultas N+1.
//
// Para la pregunta puntual "¿es A ancestro de B?" no hace falta la foto:
// IsAncestor sube por la cadena de padres leyendo usuario por usuario.
package hierarchy

import (
	"sort"

	"github.com/jhoicas/saldora-api/internal/domain/entity"
)

// Snapshot es una foto inmutable del árbol de usuarios, indexada para
// resolver consultas de descendencia sin tocar la base de datos.
type Snapshot struct {
	byID     map[string]*entity.User
	children map[string][]*entity.User // hijos ordenados por username
}

// TreeNode es un nodo del árbol anidado que produce Tree.
type TreeNode struct {
	User     *entity.User
	Children []*TreeNode
}

// NewSnapshot construye los índices a partir del listado completo de
// usuarios. El orden de entrada no importa: los hijos de cada nodo quedan
// ordenados por username para que las respuestas sean deterministas.
func NewSnapshot(users []*entity.User) *Snapshot {
	s := &Snapshot{
		byID:     make(map[string]*entity.User, len(users)),
		children: make(map[string][]*entity.User),
	}
	for _, u := range users {
		s.byID[u.ID] = u
	}
	for _, u := range users {
		if u.CreatedBy == "" {
			continue
		}
		s.children[u.CreatedBy] = append(s.children[u.CreatedBy], u)
	}
	for _, kids := range s.children {
		sort.Slice(kids, func(i, j int) bool { return kids[i].Username < kids[j].Username })
	}
	return s
}

// Get devuelve el usuario por ID, o nil si no está en la foto.
func (s *Snapshot) Get(userID string) *entity.User {
	return s.byID[userID]
}

// ParentOf devuelve el padre directo del usuario, o nil si es raíz o no existe.
func (s *Snapshot) ParentOf(userID string) *entity.User {
	u, ok := s.byID[userID]
	if !ok || u.CreatedBy == "" {
		return nil
	}
	return s.byID[u.CreatedBy]
}

// NextLevel devuelve los hijos directos del usuario, ordenados por username.
func (s *Snapshot) NextLevel(userID string) []*entity.User {
	if _, ok := s.byID[userID]; !ok {
		return nil
	}
	kids := s.children[userID]
	out := make([]*entity.User, len(kids))
	copy(out, kids)
	return out
}

// Downline devuelve la descendencia completa del usuario en preorden
// (cada rama en orden de username). Con includeSelf el propio usuario
// encabeza el resultado. Usuario inexistente: nil.
func (s *Snapshot) Downline(userID string, includeSelf bool) []*entity.User {
	root, ok := s.byID[userID]
	if !ok {
		return nil
	}
	var result []*entity.User
	if includeSelf {
		result = append(result, root)
	}
	visited := map[string]bool{userID: true}
	var stack []*entity.User
	pushChildren := func(id string) {
		kids := s.children[id]
		// en orden inverso para que la pila entregue username ascendente
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	pushChildren(userID)
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[u.ID] {
			continue
		}
		visited[u.ID] = true
		result = append(result, u)
		pushChildren(u.ID)
	}
	return result
}

// Tree devuelve la descendencia del usuario como árbol anidado listo para
// serializar. Usuario inexistente: nil.
func (s *Snapshot) Tree(userID string) *TreeNode {
	root, ok := s.byID[userID]
	if !ok {
		return nil
	}
	rootNode := &TreeNode{User: root}
	visited := map[string]bool{userID: true}
	stack := []*TreeNode{rootNode}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range s.children[node.User.ID] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			childNode := &TreeNode{User: child}
			node.Children = append(node.Children, childNode)
			stack = append(stack, childNode)
		}
	}
	return rootNode
}

// IsDescendant indica si candidateID está en la descendencia de ancestorID.
// Un usuario nunca es descendiente de sí mismo. Sube por la cadena de padres
// del candidato, que siempre es más corta que bajar por la descendencia.
func (s *Snapshot) IsDescendant(ancestorID, candidateID string) bool {
	if ancestorID == candidateID {
		return false
	}
	current, ok := s.byID[candidateID]
	if !ok {
		return false
	}
	visited := make(map[string]bool)
	for current != nil && current.CreatedBy != "" {
		if visited[current.ID] {
			// ciclo en los datos: nunca debería pasar, pero no colgamos el proceso
			return false
		}
		visited[current.ID] = true
		if current.CreatedBy == ancestorID {
			return true
		}
		current = s.byID[current.CreatedBy]
	}
	return false
}

// Size devuelve cuántos usuarios contiene la foto.
func (s *Snapshot) Size() int {
	return len(s.byID)
}
