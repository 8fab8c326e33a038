package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/application/usecase"
	"github.com/jhoicas/saldora-api/internal/domain"
)

// NetworkHandler expone la red de patrocinio: descendencia plana, árbol
// anidado y nivel siguiente. El parámetro :id acepta "me" como alias del
// usuario autenticado.
type NetworkHandler struct {
	uc *usecase.NetworkUseCase
}

// NewNetworkHandler construye el handler.
func NewNetworkHandler(uc *usecase.NetworkUseCase) *NetworkHandler {
	return &NetworkHandler{uc: uc}
}

// resolveTargetID traduce el alias "me" al actor autenticado.
func resolveTargetID(c *fiber.Ctx, actorID string) string {
	id := c.Params("id")
	if id == "me" {
		return actorID
	}
	return id
}

func networkError(c *fiber.Ctx, err error) error {
	if err == domain.ErrUnauthorized {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err == domain.ErrForbidden {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin visibilidad sobre la red de este usuario"})
	}
	if err == domain.ErrUserNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// Downline godoc
// @Summary      Descendencia completa (plana)
// @Description  Todos los usuarios bajo el objetivo, a cualquier profundidad. Con include_self=true el objetivo encabeza la lista.
// @Tags         network
// @Security     Bearer
// @Produce      json
// @Param        id            path   string  true   "ID del usuario o 'me'"
// @Param        include_self  query  bool    false  "Incluir al propio usuario"  default(false)
// @Success      200  {object}  dto.DownlineResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/network/{id}/downline [get]
func (h *NetworkHandler) Downline(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	targetID := resolveTargetID(c, actorID)
	if targetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	includeSelf := c.QueryBool("include_self", false)
	out, err := h.uc.Downline(actorID, targetID, includeSelf)
	if err != nil {
		return networkError(c, err)
	}
	return c.JSON(out)
}

// Tree godoc
// @Summary      Árbol de descendencia anidado
// @Tags         network
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario o 'me'"
// @Success      200  {object}  dto.TreeNodeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/network/{id}/tree [get]
func (h *NetworkHandler) Tree(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	targetID := resolveTargetID(c, actorID)
	if targetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.Tree(actorID, targetID)
	if err != nil {
		return networkError(c, err)
	}
	return c.JSON(out)
}

// NextLevel godoc
// @Summary      Hijos directos (nivel siguiente)
// @Tags         network
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario o 'me'"
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/network/{id}/next-level [get]
func (h *NetworkHandler) NextLevel(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	targetID := resolveTargetID(c, actorID)
	if targetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.NextLevel(actorID, targetID)
	if err != nil {
		return networkError(c, err)
	}
	return c.JSON(out)
}
