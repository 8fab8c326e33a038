package usecase

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/internal/domain/hierarchy"
	"github.com/jhoicas/saldora-api/internal/domain/permission"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

// UserUseCase aplica las reglas de negocio de cuentas: alta con vínculo de
// patrocinio, perfil, rol, estado y eliminación.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// loadActorAndSubject resuelve el par (quien opera, sobre quién). El actor
// viene del token: si no existe o está inactivo no hay nada que hacer.
func (uc *UserUseCase) loadActorAndSubject(actorID, subjectID string) (*entity.User, *entity.User, error) {
	actor, err := uc.repo.GetByID(actorID)
	if err != nil {
		return nil, nil, err
	}
	if actor == nil {
		return nil, nil, domain.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, nil, domain.ErrForbidden
	}
	subject, err := uc.repo.GetByID(subjectID)
	if err != nil {
		return nil, nil, err
	}
	if subject == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	return actor, subject, nil
}

// manages resuelve la facultad de gestión del actor sobre el sujeto,
// calculando la ascendencia contra el repositorio.
func (uc *UserUseCase) manages(actor, subject *entity.User) (bool, error) {
	isAncestor, err := hierarchy.IsAncestor(uc.repo, actor.ID, subject.ID)
	if err != nil {
		return false, err
	}
	return permission.CanManage(actor, subject, isAncestor), nil
}

// Create registra una cuenta nueva. Con actorID vacío es el alta pública:
// siempre rol "user" y sin padre. Con actor, la cuenta queda colgada del
// actor en el árbol y el rol pedido debe estar dentro de lo que su rol
// puede asignar. El vínculo de patrocinio nunca se modifica después.
func (uc *UserUseCase) Create(actorID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if !permission.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}

	createdBy := ""
	actorRole := ""
	if actorID != "" {
		actor, err := uc.repo.GetByID(actorID)
		if err != nil {
			return nil, err
		}
		if actor == nil {
			return nil, domain.ErrUnauthorized
		}
		if !actor.IsActive {
			return nil, domain.ErrForbidden
		}
		actorRole = actor.Role
		createdBy = actor.ID
	}
	if !permission.CanAssignRole(actorRole, "", role) {
		return nil, domain.ErrForbidden
	}

	// unicidad con error específico; el índice único cubre la carrera
	if existing, err := uc.repo.GetByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	if existing, err := uc.repo.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Balance:      decimal.Zero,
		CreatedBy:    createdBy,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario. Visible para: él mismo, admin+ o cualquiera
// de sus ancestros.
func (uc *UserUseCase) GetByID(actorID, id string) (*dto.UserResponse, error) {
	actor, subject, err := uc.loadActorAndSubject(actorID, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != subject.ID && !permission.IsPrivileged(actor.Role) {
		isAncestor, err := hierarchy.IsAncestor(uc.repo, actor.ID, subject.ID)
		if err != nil {
			return nil, err
		}
		if !isAncestor {
			return nil, domain.ErrForbidden
		}
	}
	return entityToUserResponse(subject), nil
}

// UpdateProfile actualiza la propia cuenta: username, email o password.
// Solo se tocan los campos que vienen en la petición.
func (uc *UserUseCase) UpdateProfile(actorID string, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	actor, err := uc.repo.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, domain.ErrForbidden
	}

	changed := false
	if username := strings.TrimSpace(in.Username); username != "" && username != actor.Username {
		if existing, err := uc.repo.GetByUsername(username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, domain.ErrUsernameTaken
		}
		actor.Username = username
		changed = true
	}
	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" && email != actor.Email {
		if existing, err := uc.repo.GetByEmail(email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, domain.ErrEmailTaken
		}
		actor.Email = email
		changed = true
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		actor.PasswordHash = string(hash)
		changed = true
	}
	if !changed {
		return entityToUserResponse(actor), nil
	}

	actor.UpdatedAt = time.Now()
	if err := uc.repo.Update(actor); err != nil {
		return nil, err
	}
	return entityToUserResponse(actor), nil
}

// ChangeRole cambia el rol del sujeto. Exige facultad de gestión y que el
// rol del actor pueda asignar el rol nuevo. Funciona también sobre cuentas
// desactivadas: es una de las dos operaciones permitidas sobre ellas.
func (uc *UserUseCase) ChangeRole(actorID, subjectID, newRole string) (*dto.UserResponse, error) {
	actor, subject, err := uc.loadActorAndSubject(actorID, subjectID)
	if err != nil {
		return nil, err
	}
	ok, err := uc.manages(actor, subject)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	if !permission.CanAssignRole(actor.Role, subject.Role, newRole) {
		return nil, domain.ErrForbidden
	}
	if subject.Role == newRole {
		return entityToUserResponse(subject), nil
	}
	if err := uc.repo.UpdateRole(subject.ID, newRole); err != nil {
		return nil, err
	}
	subject.Role = newRole
	return entityToUserResponse(subject), nil
}

// ToggleStatus activa o desactiva la cuenta del sujeto.
func (uc *UserUseCase) ToggleStatus(actorID, subjectID string) (*dto.UserResponse, error) {
	actor, subject, err := uc.loadActorAndSubject(actorID, subjectID)
	if err != nil {
		return nil, err
	}
	ok, err := uc.manages(actor, subject)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	newStatus := !subject.IsActive
	if err := uc.repo.UpdateStatus(subject.ID, newStatus); err != nil {
		return nil, err
	}
	subject.IsActive = newStatus
	return entityToUserResponse(subject), nil
}

// Delete elimina la cuenta del sujeto. Nunca la propia, solo con saldo en
// cero y con facultad de gestión. Los hijos del eliminado pasan a ser
// raíces (el FK está declarado ON DELETE SET NULL); sus asientos en el
// libro se conservan.
func (uc *UserUseCase) Delete(actorID, subjectID string) error {
	actor, subject, err := uc.loadActorAndSubject(actorID, subjectID)
	if err != nil {
		return err
	}
	if actor.ID == subject.ID {
		return domain.ErrForbidden
	}
	if !subject.Balance.IsZero() {
		return domain.ErrBalanceNotZero
	}
	isAncestor, err := hierarchy.IsAncestor(uc.repo, actor.ID, subject.ID)
	if err != nil {
		return err
	}
	if !permission.CanDelete(actor, subject, isAncestor) {
		return domain.ErrForbidden
	}
	return uc.repo.Delete(subject.ID)
}

// List lista usuarios con paginación (solo rutas admin+, lo exige el router).
func (uc *UserUseCase) List(page dto.PageRequest) ([]*dto.UserResponse, int64, error) {
	page.DefaultPage()
	users, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.repo.Count()
	if err != nil {
		return nil, 0, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, entityToUserResponse(u))
	}
	return out, total, nil
}

// CanManage responde la consulta de facultad de gestión sin efectos.
func (uc *UserUseCase) CanManage(actorID, subjectID string) (bool, error) {
	actor, subject, err := uc.loadActorAndSubject(actorID, subjectID)
	if err != nil {
		return false, err
	}
	return uc.manages(actor, subject)
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Balance:   u.Balance,
		CreatedBy: u.CreatedBy,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
