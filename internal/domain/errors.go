package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrTransactionNotFound = errors.New("transacción no encontrada")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidAmount       = errors.New("monto inválido")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInvalidCredentials  = errors.New("credenciales inválidas")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrUsernameTaken       = errors.New("el username ya está registrado")
	ErrEmailTaken          = errors.New("el email ya está registrado")
	ErrBalanceNotZero      = errors.New("el usuario tiene saldo pendiente")
	ErrInsufficientBalance = errors.New("saldo insuficiente")
	ErrInvalidCaptcha      = errors.New("captcha inválido o expirado")
)
