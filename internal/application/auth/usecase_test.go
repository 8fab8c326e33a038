package auth_test

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/saldora-api/internal/application/auth"
	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/application/usecase"
	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/pkg/captcha"
	"github.com/jhoicas/saldora-api/pkg/jwt"
)

var testJWT = auth.JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "saldora-test"}

// memRepo repositorio en memoria, lo justo para los flujos de auth.
type memRepo struct {
	users map[string]*entity.User
}

func newMemRepo() *memRepo { return &memRepo{users: make(map[string]*entity.User)} }

func (r *memRepo) Create(u *entity.User) error        { r.users[u.ID] = u; return nil }
func (r *memRepo) GetByID(id string) (*entity.User, error) { return r.users[id], nil }

func (r *memRepo) GetByUsername(username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memRepo) GetForUpdate(id string) (*entity.User, error) { return r.users[id], nil }
func (r *memRepo) Update(u *entity.User) error                  { r.users[u.ID] = u; return nil }

func (r *memRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	r.users[id].Balance = balance
	return nil
}

func (r *memRepo) UpdateRole(id, role string) error { r.users[id].Role = role; return nil }

func (r *memRepo) UpdateStatus(id string, isActive bool) error {
	r.users[id].IsActive = isActive
	return nil
}

func (r *memRepo) Delete(id string) error { delete(r.users, id); return nil }

func (r *memRepo) List(limit, offset int) ([]*entity.User, error) { return nil, nil }
func (r *memRepo) Count() (int64, error)                          { return int64(len(r.users)), nil }
func (r *memRepo) ListAll() ([]*entity.User, error)               { return nil, nil }
func (r *memRepo) ListByCreatedBy(createdBy string) ([]*entity.User, error) {
	return nil, nil
}

func newAuthUC(repo *memRepo, store *captcha.Store) *auth.AuthUseCase {
	userUC := usecase.NewUserUseCase(repo)
	return auth.NewAuthUseCase(repo, userUC, store, testJWT)
}

// seedUser registra un usuario activo con password conocido.
func seedUser(t *testing.T, repo *memRepo, id, username, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &entity.User{
		ID:           id,
		Username:     username,
		Email:        username + "@saldora.test",
		PasswordHash: string(hash),
		Role:         entity.RoleUser,
		Balance:      decimal.Zero,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(u))
	return u
}

// solve resuelve el reto aritmético "a + b" como lo haría el cliente.
func solve(t *testing.T, question string) string {
	t.Helper()
	parts := strings.Fields(question) // ["23", "+", "7"]
	require.Len(t, parts, 3)
	a, err := strconv.Atoi(parts[0])
	require.NoError(t, err)
	b, err := strconv.Atoi(parts[2])
	require.NoError(t, err)
	return strconv.Itoa(a + b)
}

// ────────────────────────────── Register ──────────────────────────────────────

func TestRegister_SinCaptchaCreaUsuario(t *testing.T) {
	repo := newMemRepo()
	uc := newAuthUC(repo, nil) // captcha deshabilitado

	out, err := uc.Register(dto.RegisterRequest{
		Username: "nueva",
		Email:    "Nueva@Saldora.Test",
		Password: "secreta123",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleUser, out.Role, "el registro público siempre da rol user")
	assert.Empty(t, out.CreatedBy, "el registro público crea cuentas raíz")
	assert.Equal(t, "nueva@saldora.test", out.Email)
	assert.True(t, out.IsActive)

	stored, _ := repo.GetByID(out.ID)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreta123")))
}

func TestRegister_CaptchaCorrecto(t *testing.T) {
	repo := newMemRepo()
	store := captcha.NewStore(time.Minute)
	uc := newAuthUC(repo, store)

	ch := store.Issue()
	_, err := uc.Register(dto.RegisterRequest{
		Username:      "nueva",
		Email:         "nueva@saldora.test",
		Password:      "secreta123",
		CaptchaID:     ch.ID,
		CaptchaAnswer: solve(t, ch.Question),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Pending(), "el reto se consume al usarse")
}

func TestRegister_CaptchaIncorrecto(t *testing.T) {
	repo := newMemRepo()
	store := captcha.NewStore(time.Minute)
	uc := newAuthUC(repo, store)

	ch := store.Issue()
	req := dto.RegisterRequest{
		Username:      "nueva",
		Email:         "nueva@saldora.test",
		Password:      "secreta123",
		CaptchaID:     ch.ID,
		CaptchaAnswer: "999",
	}
	_, err := uc.Register(req)
	assert.ErrorIs(t, err, domain.ErrInvalidCaptcha)

	// el fallo también consume el reto: la respuesta correcta ya no sirve
	req.CaptchaAnswer = solve(t, ch.Question)
	_, err = uc.Register(req)
	assert.ErrorIs(t, err, domain.ErrInvalidCaptcha)
}

func TestRegister_CaptchaInexistente(t *testing.T) {
	uc := newAuthUC(newMemRepo(), captcha.NewStore(time.Minute))

	_, err := uc.Register(dto.RegisterRequest{
		Username:      "nueva",
		Email:         "nueva@saldora.test",
		Password:      "secreta123",
		CaptchaID:     "11111111-1111-1111-1111-111111111111",
		CaptchaAnswer: "30",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCaptcha)
}

func TestRegister_UsernameOcupado(t *testing.T) {
	repo := newMemRepo()
	seedUser(t, repo, "u-1", "ocupado", "loquesea1")
	uc := newAuthUC(repo, nil)

	_, err := uc.Register(dto.RegisterRequest{
		Username: "ocupado",
		Email:    "otra@saldora.test",
		Password: "secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegister_EmailOcupado(t *testing.T) {
	repo := newMemRepo()
	seedUser(t, repo, "u-1", "primera", "loquesea1")
	uc := newAuthUC(repo, nil)

	_, err := uc.Register(dto.RegisterRequest{
		Username: "segunda",
		Email:    "primera@saldora.test",
		Password: "secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

// ────────────────────────────── Captcha ───────────────────────────────────────

func TestCaptcha_EmiteReto(t *testing.T) {
	uc := newAuthUC(newMemRepo(), captcha.NewStore(5*time.Minute))

	out, err := uc.Captcha()
	require.NoError(t, err)
	assert.NotEmpty(t, out.CaptchaID)
	assert.Regexp(t, regexp.MustCompile(`^\d+ \+ \d+$`), out.Question)
	assert.True(t, out.ExpiresAt.After(time.Now()))
}

func TestCaptcha_Deshabilitado(t *testing.T) {
	uc := newAuthUC(newMemRepo(), nil)

	_, err := uc.Captcha()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ────────────────────────────── Login ─────────────────────────────────────────

func TestLogin_OK(t *testing.T) {
	repo := newMemRepo()
	seedUser(t, repo, "u-1", "clienta", "secreta123")
	uc := newAuthUC(repo, nil)

	out, err := uc.Login(dto.LoginRequest{Email: "clienta@saldora.test", Password: "secreta123"})
	require.NoError(t, err)

	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "u-1", out.User.ID)
	assert.Equal(t, "clienta@saldora.test", out.User.Email)

	userID, role, err := jwt.Parse(testJWT.Secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, entity.RoleUser, role)
}

func TestLogin_EmailDesconocido(t *testing.T) {
	uc := newAuthUC(newMemRepo(), nil)

	_, err := uc.Login(dto.LoginRequest{Email: "nadie@saldora.test", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	repo := newMemRepo()
	seedUser(t, repo, "u-1", "clienta", "secreta123")
	uc := newAuthUC(repo, nil)

	_, err := uc.Login(dto.LoginRequest{Email: "clienta@saldora.test", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials,
		"mismo error que email desconocido: no se filtra cuál falló")
}

func TestLogin_CuentaInactiva(t *testing.T) {
	repo := newMemRepo()
	u := seedUser(t, repo, "u-1", "clienta", "secreta123")
	u.IsActive = false
	uc := newAuthUC(repo, nil)

	_, err := uc.Login(dto.LoginRequest{Email: "clienta@saldora.test", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ────────────────────────────── Me ────────────────────────────────────────────

func TestMe_DevuelvePerfil(t *testing.T) {
	repo := newMemRepo()
	seedUser(t, repo, "u-1", "clienta", "secreta123")
	uc := newAuthUC(repo, nil)

	out, err := uc.Me("u-1")
	require.NoError(t, err)
	assert.Equal(t, "clienta", out.Username)
}

func TestMe_NoExiste(t *testing.T) {
	uc := newAuthUC(newMemRepo(), nil)

	_, err := uc.Me("u-fantasma")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
