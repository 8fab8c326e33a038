package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/application/ledger"
	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
)

// ledgerService es el contrato mínimo que necesita el handler del motor de
// saldo. Lo implementa *ledger.UseCase; la interfaz permite probar el handler
// sin base de datos.
type ledgerService interface {
	Credit(ctx context.Context, actorID, subjectID string, amount decimal.Decimal, description string) (*ledger.CreditResult, error)
	Debit(ctx context.Context, actorID, subjectID string, amount decimal.Decimal, description string) (*ledger.DebitResult, error)
}

// BalanceHandler maneja créditos y débitos de saldo (protegido).
// El parámetro :id acepta "me" como alias del usuario autenticado.
type BalanceHandler struct {
	svc ledgerService
}

// NewBalanceHandler construye el handler.
func NewBalanceHandler(svc ledgerService) *BalanceHandler {
	return &BalanceHandler{svc: svc}
}

// Credit godoc
// @Summary      Acreditar saldo a un usuario
// @Description  Si el objetivo no es el propio actor, el monto se descuenta del padre directo del objetivo en la misma transacción. La autorecarga (id propio o "me") inyecta saldo sin debitar a nadie.
// @Tags         balance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario o 'me'"
// @Param        body  body  dto.CreditRequest  true  "amount y description opcional"
// @Success      200   {object}  dto.CreditResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/balance/{id}/credit [post]
func (h *BalanceHandler) Credit(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	subjectID := resolveTargetID(c, actorID)
	if subjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.CreditRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.svc.Credit(c.Context(), actorID, subjectID, in.Amount, in.Description)
	if err != nil {
		return h.ledgerError(c, err)
	}
	return c.JSON(toCreditResponse(result))
}

// Debit godoc
// @Summary      Debitar saldo de un usuario
// @Description  Descuenta el monto de la cuenta indicada. No propaga nada hacia el padre.
// @Tags         balance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario o 'me'"
// @Param        body  body  dto.DebitRequest  true  "amount y description opcional"
// @Success      200   {object}  dto.DebitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/balance/{id}/debit [post]
func (h *BalanceHandler) Debit(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	subjectID := resolveTargetID(c, actorID)
	if subjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.DebitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.svc.Debit(c.Context(), actorID, subjectID, in.Amount, in.Description)
	if err != nil {
		return h.ledgerError(c, err)
	}
	return c.JSON(toDebitResponse(result))
}

// ledgerError traduce los errores del motor de saldo a HTTP. Créditos y
// débitos comparten exactamente la misma taxonomía.
func (h *BalanceHandler) ledgerError(c *fiber.Ctx, err error) error {
	if err == domain.ErrInvalidInput {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if err == domain.ErrInvalidAmount {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_AMOUNT", Message: "el monto debe ser positivo con máximo dos decimales"})
	}
	if err == domain.ErrUnauthorized {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err == domain.ErrForbidden {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin facultad sobre la cuenta indicada"})
	}
	if err == domain.ErrUserNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	}
	if err == domain.ErrInsufficientBalance {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_BALANCE", Message: "saldo insuficiente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func toTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	if t == nil {
		return dto.TransactionResponse{}
	}
	return dto.TransactionResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		PerformedBy:     t.PerformedBy,
		Type:            t.Type,
		Amount:          t.Amount,
		PreviousBalance: t.PreviousBalance,
		NewBalance:      t.NewBalance,
		TransferID:      t.TransferID,
		Description:     t.Description,
		Status:          t.Status,
		Reference:       t.Reference,
		CreatedAt:       t.CreatedAt,
	}
}

func toCreditResponse(r *ledger.CreditResult) dto.CreditResponse {
	out := dto.CreditResponse{
		SubjectBalance: r.SubjectBalance,
		Transaction:    toTransactionResponse(r.Transaction),
	}
	if r.PayerAdjustment != nil {
		out.PayerAdjustment = &dto.PayerAdjustmentResponse{
			PayerID:         r.PayerAdjustment.PayerID,
			PayerUsername:   r.PayerAdjustment.PayerUsername,
			PreviousBalance: r.PayerAdjustment.PreviousBalance,
			NewBalance:      r.PayerAdjustment.NewBalance,
			Transaction:     toTransactionResponse(r.PayerAdjustment.Transaction),
		}
	}
	return out
}

func toDebitResponse(r *ledger.DebitResult) dto.DebitResponse {
	return dto.DebitResponse{
		SubjectBalance: r.SubjectBalance,
		Transaction:    toTransactionResponse(r.Transaction),
	}
}
