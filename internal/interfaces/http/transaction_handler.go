package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/application/usecase"
	"github.com/jhoicas/saldora-api/internal/domain"
)

const dateLayout = "2006-01-02"

// TransactionHandler expone el libro de movimientos en solo lectura.
type TransactionHandler struct {
	uc *usecase.TransactionUseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *usecase.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// parseDateRange interpreta from/to como fechas YYYY-MM-DD. El límite
// superior se extiende al final del día para que "to=2025-03-01" incluya
// los movimientos de ese día completo.
func parseDateRange(fromStr, toStr string) (from, to *time.Time, err error) {
	if fromStr != "" {
		f, perr := time.Parse(dateLayout, fromStr)
		if perr != nil {
			return nil, nil, perr
		}
		from = &f
	}
	if toStr != "" {
		tt, perr := time.Parse(dateLayout, toStr)
		if perr != nil {
			return nil, nil, perr
		}
		endOfDay := tt.Add(24*time.Hour - time.Nanosecond)
		to = &endOfDay
	}
	return from, to, nil
}

func (h *TransactionHandler) transactionError(c *fiber.Ctx, err error) error {
	if err == domain.ErrUnauthorized {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err == domain.ErrForbidden {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin visibilidad sobre estos movimientos"})
	}
	if err == domain.ErrUserNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	}
	if err == domain.ErrTransactionNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// List godoc
// @Summary      Listar movimientos
// @Description  Sin user_id lista los propios. Ver los de otro usuario exige ser admin+ o su ancestro.
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        user_id  query  string  false  "Usuario objetivo (default: el propio)"
// @Param        type     query  string  false  "credit o debit"
// @Param        from     query  string  false  "Fecha inicial (YYYY-MM-DD)"
// @Param        to       query  string  false  "Fecha final (YYYY-MM-DD)"
// @Param        limit    query  int     false  "Límite"   default(20)
// @Param        offset   query  int     false  "Offset"   default(0)
// @Param        sort     query  string  false  "asc o desc"  default(desc)
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var req dto.TransactionListRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	if req.Type != "" && req.Type != "credit" && req.Type != "debit" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type debe ser credit o debit"})
	}
	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fechas en formato YYYY-MM-DD"})
	}
	out, err := h.uc.List(actorID, usecase.TransactionListInput{
		UserID:  req.UserID,
		Type:    req.Type,
		From:    from,
		To:      to,
		Limit:   req.Limit,
		Offset:  req.Offset,
		SortAsc: req.Sort == "asc",
	})
	if err != nil {
		return h.transactionError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de movimientos
// @Description  Totales de créditos, débitos, conteos y neto del usuario objetivo en el rango.
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        user_id  query  string  false  "Usuario objetivo (default: el propio)"
// @Param        from     query  string  false  "Fecha inicial (YYYY-MM-DD)"
// @Param        to       query  string  false  "Fecha final (YYYY-MM-DD)"
// @Success      200  {object}  dto.TransactionSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/transactions/summary [get]
func (h *TransactionHandler) Summary(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fechas en formato YYYY-MM-DD"})
	}
	out, err := h.uc.Summary(actorID, c.Query("user_id"), from, to)
	if err != nil {
		return h.transactionError(c, err)
	}
	return c.JSON(out)
}

// GetByReference godoc
// @Summary      Buscar movimiento por referencia
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        ref  path  string  true  "Referencia (TXN-...)"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/reference/{ref} [get]
func (h *TransactionHandler) GetByReference(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	ref := c.Params("ref")
	if ref == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "referencia requerida"})
	}
	out, err := h.uc.GetByReference(actorID, ref)
	if err != nil {
		return h.transactionError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(actorID, id)
	if err != nil {
		return h.transactionError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Estado de cuenta en PDF
// @Description  Genera el estado de cuenta del usuario objetivo. Sin rango explícito cubre los últimos 30 días.
// @Tags         transactions
// @Security     Bearer
// @Produce      application/pdf
// @Param        user_id  query  string  false  "Usuario objetivo (default: el propio)"
// @Param        from     query  string  false  "Fecha inicial (YYYY-MM-DD)"
// @Param        to       query  string  false  "Fecha final (YYYY-MM-DD)"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/transactions/statement [get]
func (h *TransactionHandler) Statement(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fechas en formato YYYY-MM-DD"})
	}
	pdfBytes, filename, err := h.uc.Statement(c.Context(), actorID, c.Query("user_id"), from, to)
	if err != nil {
		return h.transactionError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
