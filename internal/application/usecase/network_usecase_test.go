package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/application/usecase"
	"github.com/jhoicas/saldora-api/internal/domain"
)

func usernames(users []*dto.UserResponse) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

// ────────────────────────────── Downline ──────────────────────────────────────

func TestNetworkDownline_DescendenciaCompleta(t *testing.T) {
	uc := usecase.NewNetworkUseCase(buildNetwork())

	out, err := uc.Downline("u-admin1", "u-admin1", false)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Total)
	assert.Equal(t, []string{"mod1", "user1", "user2"}, usernames(out.Users),
		"preorden: cada rama completa antes de la siguiente, hijos por username")
}

func TestNetworkDownline_IncludeSelfEncabeza(t *testing.T) {
	uc := usecase.NewNetworkUseCase(buildNetwork())

	out, err := uc.Downline("u-mod1", "u-mod1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"mod1", "user1", "user2"}, usernames(out.Users))
	assert.Equal(t, 3, out.Total)
}

func TestNetworkDownline_HojaSinDescendencia(t *testing.T) {
	uc := usecase.NewNetworkUseCase(buildNetwork())

	out, err := uc.Downline("u-user1", "u-user1", false)
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.Empty(t, out.Users)
}

// ────────────────────────────── Tree ──────────────────────────────────────────

func TestNetworkTree_Anidado(t *testing.T) {
	uc := usecase.NewNetworkUseCase(buildNetwork())

	root, err := uc.Tree("u-root", "u-root")
	require.NoError(t, err)

	assert.Equal(t, "root", root.User.Username)
	require.Len(t, root.Children, 1)
	admin := root.Children[0]
	assert.Equal(t, "admin1", admin.User.Username)
	require.Len(t, admin.Children, 1)
	mod := admin.Children[0]
	assert.Equal(t, "mod1", mod.User.Username)
	require.Len(t, mod.Children, 2)
	assert.Equal(t, "user1", mod.Children[0].User.Username)
	assert.Equal(t, "user2", mod.Children[1].User.Username)
	assert.NotNil(t, mod.Children[0].Children,
		"las hojas serializan children como lista vacía, no null")
	assert.Empty(t, mod.Children[0].Children)
}

// ────────────────────────────── NextLevel ─────────────────────────────────────

func TestNetworkNextLevel_HijosDirectos(t *testing.T) {
	uc := usecase.NewNetworkUseCase(buildNetwork())

	kids, err := uc.NextLevel("u-mod1", "u-mod1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user1", "user2"}, usernames(kids))
}

func TestNetworkNextLevel_SoloUnNivel(t *testing.T) {
	uc := usecase.NewNetworkUseCase(buildNetwork())

	kids, err := uc.NextLevel("u-root", "u-root")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin1"}, usernames(kids),
		"next-level no baja más de un nivel")
}

// ────────────────────────────── Autorización ──────────────────────────────────

func TestNetworkAutorizacion(t *testing.T) {
	cases := []struct {
		name     string
		actorID  string
		targetID string
		wantErr  error
	}{
		{"la propia red", "u-user1", "u-user1", nil},
		{"red de un descendiente", "u-admin1", "u-user1", nil},
		{"admin ve cualquier red", "u-admin1", "u-libre", nil},
		{"red de un hermano", "u-user1", "u-user2", domain.ErrForbidden},
		{"red del ancestro", "u-user1", "u-mod1", domain.ErrForbidden},
		{"objetivo inexistente", "u-root", "u-fantasma", domain.ErrUserNotFound},
		{"actor inexistente", "u-fantasma", "u-user1", domain.ErrUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			uc := usecase.NewNetworkUseCase(buildNetwork())
			_, err := uc.Downline(c.actorID, c.targetID, false)
			if c.wantErr != nil {
				assert.ErrorIs(t, err, c.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNetworkAutorizacion_ActorInactivo(t *testing.T) {
	repo := buildNetwork()
	require.NoError(t, repo.UpdateStatus("u-admin1", false))
	uc := usecase.NewNetworkUseCase(repo)

	_, err := uc.Tree("u-admin1", "u-user1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
