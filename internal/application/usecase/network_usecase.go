package usecase

import (
	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/hierarchy"
	"github.com/jhoicas/saldora-api/internal/domain/permission"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

// NetworkUseCase responde consultas sobre la red de un usuario: descendencia
// plana, árbol anidado y siguiente nivel. Cada consulta carga una foto del
// universo (hierarchy.Snapshot) y la resuelve en memoria; las peticiones no
// comparten estado entre sí.
type NetworkUseCase struct {
	repo repository.UserRepository
}

// NewNetworkUseCase construye el caso de uso de consultas de red.
func NewNetworkUseCase(repo repository.UserRepository) *NetworkUseCase {
	return &NetworkUseCase{repo: repo}
}

// snapshot carga el universo de usuarios y lo indexa.
func (uc *NetworkUseCase) snapshot() (*hierarchy.Snapshot, error) {
	users, err := uc.repo.ListAll()
	if err != nil {
		return nil, err
	}
	return hierarchy.NewSnapshot(users), nil
}

// authorizeNetwork decide si el actor puede consultar la red del objetivo:
// la propia, la de su descendencia, o cualquiera si es admin+.
func authorizeNetwork(snap *hierarchy.Snapshot, actorID, targetID string) error {
	actor := snap.Get(actorID)
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.IsActive {
		return domain.ErrForbidden
	}
	if snap.Get(targetID) == nil {
		return domain.ErrUserNotFound
	}
	if actorID == targetID || permission.IsPrivileged(actor.Role) || snap.IsDescendant(actorID, targetID) {
		return nil
	}
	return domain.ErrForbidden
}

// Downline devuelve la descendencia completa del objetivo, plana y en preorden.
func (uc *NetworkUseCase) Downline(actorID, targetID string, includeSelf bool) (*dto.DownlineResponse, error) {
	snap, err := uc.snapshot()
	if err != nil {
		return nil, err
	}
	if err := authorizeNetwork(snap, actorID, targetID); err != nil {
		return nil, err
	}
	users := snap.Downline(targetID, includeSelf)
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, entityToUserResponse(u))
	}
	return &dto.DownlineResponse{Total: len(out), Users: out}, nil
}

// Tree devuelve la descendencia del objetivo como árbol anidado.
func (uc *NetworkUseCase) Tree(actorID, targetID string) (*dto.TreeNodeResponse, error) {
	snap, err := uc.snapshot()
	if err != nil {
		return nil, err
	}
	if err := authorizeNetwork(snap, actorID, targetID); err != nil {
		return nil, err
	}
	return treeNodeToResponse(snap.Tree(targetID)), nil
}

// NextLevel devuelve los hijos directos del objetivo.
func (uc *NetworkUseCase) NextLevel(actorID, targetID string) ([]*dto.UserResponse, error) {
	snap, err := uc.snapshot()
	if err != nil {
		return nil, err
	}
	if err := authorizeNetwork(snap, actorID, targetID); err != nil {
		return nil, err
	}
	kids := snap.NextLevel(targetID)
	out := make([]*dto.UserResponse, 0, len(kids))
	for _, u := range kids {
		out = append(out, entityToUserResponse(u))
	}
	return out, nil
}

// treeNodeToResponse convierte el árbol del dominio al DTO con una pila
// explícita. Children va siempre inicializado para que el JSON serialice
// listas vacías y no null.
func treeNodeToResponse(node *hierarchy.TreeNode) *dto.TreeNodeResponse {
	if node == nil {
		return nil
	}
	root := &dto.TreeNodeResponse{User: *entityToUserResponse(node.User), Children: []*dto.TreeNodeResponse{}}
	type pair struct {
		src *hierarchy.TreeNode
		dst *dto.TreeNodeResponse
	}
	stack := []pair{{node, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range p.src.Children {
			childDst := &dto.TreeNodeResponse{User: *entityToUserResponse(child.User), Children: []*dto.TreeNodeResponse{}}
			p.dst.Children = append(p.dst.Children, childDst)
			stack = append(stack, pair{child, childDst})
		}
	}
	return root
}
