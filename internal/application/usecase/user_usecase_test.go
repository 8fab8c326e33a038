package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/application/usecase"
	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
)

// ────────────────────────────── Create ────────────────────────────────────────

func TestUserCreate_PublicoCreaRaizConRolUser(t *testing.T) {
	repo := newFakeUserRepo()
	uc := usecase.NewUserUseCase(repo)

	out, err := uc.Create("", dto.CreateUserRequest{
		Username: "ana",
		Email:    "Ana@Saldora.Test",
		Password: "secreta123",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana", out.Username)
	assert.Equal(t, "ana@saldora.test", out.Email, "el email se normaliza a minúsculas")
	assert.Equal(t, entity.RoleUser, out.Role)
	assert.Empty(t, out.CreatedBy, "el alta pública no tiene padre")
	assert.True(t, out.Balance.IsZero(), "toda cuenta nace con saldo cero")
	assert.True(t, out.IsActive)

	stored, err := repo.GetByID(out.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreta123")),
		"el password se guarda hasheado con bcrypt")
	assert.NotEqual(t, "secreta123", stored.PasswordHash)
}

func TestUserCreate_ActorCreaHijoDirecto(t *testing.T) {
	repo := buildNetwork()
	uc := usecase.NewUserUseCase(repo)

	out, err := uc.Create("u-mod1", dto.CreateUserRequest{
		Username: "nuevo",
		Email:    "nuevo@saldora.test",
		Password: "secreta123",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-mod1", out.CreatedBy, "la cuenta cuelga del actor que la creó")
	assert.Equal(t, entity.RoleUser, out.Role)
}

func TestUserCreate_PublicoNoPuedePedirOtroRol(t *testing.T) {
	uc := usecase.NewUserUseCase(newFakeUserRepo())

	_, err := uc.Create("", dto.CreateUserRequest{
		Username: "intruso",
		Email:    "intruso@saldora.test",
		Password: "secreta123",
		Role:     entity.RoleAdmin,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden,
		"el registro público solo produce cuentas user")
}

func TestUserCreate_AsignacionDeRoles(t *testing.T) {
	cases := []struct {
		name    string
		actorID string
		role    string
		wantErr error
	}{
		{"super_admin crea admin", "u-root", entity.RoleAdmin, nil},
		{"super_admin crea super_admin", "u-root", entity.RoleSuperAdmin, nil},
		{"admin crea moderator", "u-admin1", entity.RoleModerator, nil},
		{"admin crea admin", "u-admin1", entity.RoleAdmin, nil},
		{"admin no otorga super_admin", "u-admin1", entity.RoleSuperAdmin, domain.ErrForbidden},
		{"moderator solo crea user", "u-mod1", entity.RoleModerator, domain.ErrForbidden},
		{"user solo crea user", "u-user1", entity.RoleUser, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			uc := usecase.NewUserUseCase(buildNetwork())
			_, err := uc.Create(c.actorID, dto.CreateUserRequest{
				Username: "cuenta-" + c.role,
				Email:    "cuenta-" + c.role + "@saldora.test",
				Password: "secreta123",
				Role:     c.role,
			})
			if c.wantErr != nil {
				assert.ErrorIs(t, err, c.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserCreate_RolDesconocido_Retorna400(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())
	_, err := uc.Create("u-root", dto.CreateUserRequest{
		Username: "x",
		Email:    "x@saldora.test",
		Password: "secreta123",
		Role:     "emperador",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserCreate_UsernameYEmailUnicos(t *testing.T) {
	repo := buildNetwork()
	uc := usecase.NewUserUseCase(repo)

	_, err := uc.Create("u-root", dto.CreateUserRequest{
		Username: "user1", // ya existe
		Email:    "otro@saldora.test",
		Password: "secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = uc.Create("u-root", dto.CreateUserRequest{
		Username: "otro",
		Email:    "USER1@saldora.test", // ya existe tras normalizar
		Password: "secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserCreate_ActorInactivoNoCrea(t *testing.T) {
	repo := buildNetwork()
	require.NoError(t, repo.UpdateStatus("u-mod1", false))
	uc := usecase.NewUserUseCase(repo)

	_, err := uc.Create("u-mod1", dto.CreateUserRequest{
		Username: "hijo",
		Email:    "hijo@saldora.test",
		Password: "secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ────────────────────────────── GetByID ───────────────────────────────────────

func TestUserGetByID_Visibilidad(t *testing.T) {
	cases := []struct {
		name      string
		actorID   string
		subjectID string
		wantErr   error
	}{
		{"el propio usuario se ve", "u-user1", "u-user1", nil},
		{"admin ve a cualquiera", "u-admin1", "u-libre", nil},
		{"ancestro ve a su descendiente", "u-mod1", "u-user1", nil},
		{"abuelo ve a su descendiente", "u-root", "u-user1", nil},
		{"hermano no ve al hermano", "u-user1", "u-user2", domain.ErrForbidden},
		{"descendiente no ve al ancestro", "u-user1", "u-mod1", domain.ErrForbidden},
		{"raíz ajena no ve nada", "u-libre", "u-user1", domain.ErrForbidden},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			uc := usecase.NewUserUseCase(buildNetwork())
			out, err := uc.GetByID(c.actorID, c.subjectID)
			if c.wantErr != nil {
				assert.ErrorIs(t, err, c.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.subjectID, out.ID)
		})
	}
}

func TestUserGetByID_NoExiste(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())
	_, err := uc.GetByID("u-root", "u-fantasma")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// ────────────────────────────── UpdateProfile ─────────────────────────────────

func TestUpdateProfile_CambiaUsernameYPassword(t *testing.T) {
	repo := buildNetwork()
	uc := usecase.NewUserUseCase(repo)

	out, err := uc.UpdateProfile("u-user1", dto.UpdateProfileRequest{
		Username: "user1-renombrado",
		Password: "nuevaClave99",
	})
	require.NoError(t, err)
	assert.Equal(t, "user1-renombrado", out.Username)

	stored, _ := repo.GetByID("u-user1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("nuevaClave99")))
}

func TestUpdateProfile_SinCambiosNoEscribe(t *testing.T) {
	repo := buildNetwork()
	uc := usecase.NewUserUseCase(repo)

	out, err := uc.UpdateProfile("u-user1", dto.UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "user1", out.Username)
	assert.Zero(t, repo.updateCalls, "una petición vacía no debe tocar la BD")
}

func TestUpdateProfile_UsernameOcupado(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())
	_, err := uc.UpdateProfile("u-user1", dto.UpdateProfileRequest{Username: "user2"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

// ────────────────────────────── ChangeRole ────────────────────────────────────

func TestChangeRole_SuperAdminPromueve(t *testing.T) {
	repo := buildNetwork()
	uc := usecase.NewUserUseCase(repo)

	out, err := uc.ChangeRole("u-root", "u-user1", entity.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleModerator, out.Role)

	stored, _ := repo.GetByID("u-user1")
	assert.Equal(t, entity.RoleModerator, stored.Role)
}

func TestChangeRole_AdminNoTocaAOtroAdmin(t *testing.T) {
	repo := buildNetwork()
	repo.Create(mkUser("u-admin2", "admin2", entity.RoleAdmin, "u-root", 0))
	uc := usecase.NewUserUseCase(repo)

	_, err := uc.ChangeRole("u-admin1", "u-admin2", entity.RoleUser)
	assert.ErrorIs(t, err, domain.ErrForbidden,
		"un admin no gestiona cuentas admin o superiores")
}

func TestChangeRole_AdminPromueveUsuarioDeOtraRama(t *testing.T) {
	// admin gestiona a cualquier no privilegiado de toda la red
	uc := usecase.NewUserUseCase(buildNetwork())
	out, err := uc.ChangeRole("u-admin1", "u-libre", entity.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleModerator, out.Role)
}

func TestChangeRole_ModeratorNoPromueve(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())
	_, err := uc.ChangeRole("u-mod1", "u-user1", entity.RoleModerator)
	assert.ErrorIs(t, err, domain.ErrForbidden,
		"moderator solo puede dejar cuentas en rol user")
}

func TestChangeRole_FuncionaSobreCuentaDesactivada(t *testing.T) {
	repo := buildNetwork()
	require.NoError(t, repo.UpdateStatus("u-user1", false))
	uc := usecase.NewUserUseCase(repo)

	out, err := uc.ChangeRole("u-root", "u-user1", entity.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleModerator, out.Role)
	assert.False(t, out.IsActive, "el cambio de rol no reactiva la cuenta")
}

func TestChangeRole_MismoRolEsNoOp(t *testing.T) {
	repo := buildNetwork()
	uc := usecase.NewUserUseCase(repo)

	out, err := uc.ChangeRole("u-root", "u-user1", entity.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, out.Role)
}

// ────────────────────────────── ToggleStatus ──────────────────────────────────

func TestToggleStatus_AncestroDesactivaYReactiva(t *testing.T) {
	repo := buildNetwork()
	uc := usecase.NewUserUseCase(repo)

	out, err := uc.ToggleStatus("u-mod1", "u-user1")
	require.NoError(t, err)
	assert.False(t, out.IsActive)

	out, err = uc.ToggleStatus("u-mod1", "u-user1")
	require.NoError(t, err)
	assert.True(t, out.IsActive, "reactivar es la otra operación válida sobre cuentas desactivadas")
}

func TestToggleStatus_DescendienteNoTocaAlAncestro(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())
	_, err := uc.ToggleStatus("u-user1", "u-mod1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestToggleStatus_SobreSiMismoNoProcede(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())
	_, err := uc.ToggleStatus("u-mod1", "u-mod1")
	assert.ErrorIs(t, err, domain.ErrForbidden,
		"nadie se desactiva a sí mismo")
}

// ────────────────────────────── Delete ────────────────────────────────────────

func TestDelete_ExigeSaldoCero(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())
	err := uc.Delete("u-mod1", "u-user1") // user1 tiene saldo 50
	assert.ErrorIs(t, err, domain.ErrBalanceNotZero)
}

func TestDelete_AncestroEliminaCuentaEnCero(t *testing.T) {
	repo := buildNetwork()
	uc := usecase.NewUserUseCase(repo)

	require.NoError(t, uc.Delete("u-mod1", "u-user2")) // user2 tiene saldo 0

	gone, err := repo.GetByID("u-user2")
	require.NoError(t, err)
	assert.Nil(t, gone, "la cuenta debe desaparecer")
}

func TestDelete_HuerfanosQuedanComoRaices(t *testing.T) {
	repo := buildNetwork()
	require.NoError(t, repo.UpdateBalance("u-mod1", decimal.Zero))
	uc := usecase.NewUserUseCase(repo)

	require.NoError(t, uc.Delete("u-admin1", "u-mod1"))

	huerfano, _ := repo.GetByID("u-user1")
	require.NotNil(t, huerfano)
	assert.Empty(t, huerfano.CreatedBy,
		"los hijos del eliminado pierden el vínculo y pasan a ser raíces")
}

func TestDelete_NuncaLaPropiaCuenta(t *testing.T) {
	repo := buildNetwork()
	require.NoError(t, repo.UpdateBalance("u-mod1", decimal.Zero))
	uc := usecase.NewUserUseCase(repo)

	err := uc.Delete("u-mod1", "u-mod1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDelete_SinFacultadDeGestion(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())
	err := uc.Delete("u-user1", "u-user2") // hermanos, saldo de user2 en cero
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ────────────────────────────── List / CanManage ──────────────────────────────

func TestUserList_Pagina(t *testing.T) {
	uc := usecase.NewUserUseCase(buildNetwork())

	items, total, err := uc.List(dto.PageRequest{Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, items, 4)

	items, total, err = uc.List(dto.PageRequest{Limit: 4, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, items, 2)
}

func TestCanManage_Consulta(t *testing.T) {
	cases := []struct {
		name      string
		actorID   string
		subjectID string
		want      bool
	}{
		{"moderator sobre su descendiente", "u-mod1", "u-user1", true},
		{"moderator sobre raíz ajena", "u-mod1", "u-libre", false},
		{"admin sobre no privilegiado de otra rama", "u-admin1", "u-libre", true},
		{"admin sobre super_admin", "u-admin1", "u-root", false},
		{"super_admin sobre cualquiera", "u-root", "u-libre", true},
		{"nadie sobre sí mismo", "u-root", "u-root", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			uc := usecase.NewUserUseCase(buildNetwork())
			got, err := uc.CanManage(c.actorID, c.subjectID)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}
