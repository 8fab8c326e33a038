package auth

import (
	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/application/usecase"
	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
	"github.com/jhoicas/saldora-api/pkg/captcha"
	"github.com/jhoicas/saldora-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro público, login y
// perfil propio. El alta en sí la ejecuta UserUseCase; aquí solo se
// antepone el captcha y se resuelve el token.
type AuthUseCase struct {
	userRepo repository.UserRepository
	userUC   *usecase.UserUseCase
	captcha  *captcha.Store // nil si el captcha está deshabilitado
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth. captcha puede ser nil.
func NewAuthUseCase(userRepo repository.UserRepository, userUC *usecase.UserUseCase, captchaStore *captcha.Store, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, userUC: userUC, captcha: captchaStore, jwtCfg: jwtCfg}
}

// Register crea una cuenta desde el registro público: siempre rol "user" y
// sin padre. Si el captcha está habilitado, la respuesta debe ser válida y
// el reto se consume aunque falle.
func (uc *AuthUseCase) Register(in dto.RegisterRequest) (*dto.UserResponse, error) {
	if uc.captcha != nil {
		if !uc.captcha.Verify(in.CaptchaID, in.CaptchaAnswer) {
			return nil, domain.ErrInvalidCaptcha
		}
	}
	return uc.userUC.Create("", dto.CreateUserRequest{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
}

// Captcha emite un reto nuevo para el registro público.
// Si el captcha está deshabilitado no hay nada que emitir.
func (uc *AuthUseCase) Captcha() (*dto.CaptchaResponse, error) {
	if uc.captcha == nil {
		return nil, domain.ErrNotFound
	}
	ch := uc.captcha.Issue()
	return &dto.CaptchaResponse{
		CaptchaID: ch.ID,
		Question:  ch.Question,
		ExpiresAt: ch.ExpiresAt,
	}, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Devuelve siempre ErrInvalidCredentials ante email desconocido o password
// incorrecto, sin distinguir el caso. Cuentas desactivadas no entran.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// Me devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Me(userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
