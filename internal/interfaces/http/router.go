package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/saldora-api/internal/application/auth"
	"github.com/jhoicas/saldora-api/internal/application/ledger"
	"github.com/jhoicas/saldora-api/internal/application/usecase"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	NetworkUC     *usecase.NetworkUseCase
	LedgerUC      *ledger.UseCase
	TransactionUC *usecase.TransactionUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (registro y login públicos; /me requiere token)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/captcha", authHandler.Captcha)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Users (protegido). "/me" va antes de "/:id" para que no lo capture el parámetro.
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin), userHandler.List)
	users.Get("/me", userHandler.Me)
	users.Put("/me", userHandler.UpdateMe)
	users.Get("/:id", userHandler.GetByID)
	users.Patch("/:id/role", userHandler.ChangeRole)
	users.Patch("/:id/status", userHandler.ToggleStatus)
	users.Delete("/:id", userHandler.Delete)
	users.Get("/:id/can-manage", userHandler.CanManage)

	// Network (protegido). :id acepta "me".
	network := protected.Group("/network")
	networkHandler := NewNetworkHandler(deps.NetworkUC)
	network.Get("/:id/downline", networkHandler.Downline)
	network.Get("/:id/tree", networkHandler.Tree)
	network.Get("/:id/next-level", networkHandler.NextLevel)

	// Balance (protegido). :id acepta "me".
	balance := protected.Group("/balance")
	balanceHandler := NewBalanceHandler(deps.LedgerUC)
	balance.Post("/:id/credit", balanceHandler.Credit)
	balance.Post("/:id/debit", balanceHandler.Debit)

	// Transactions (protegido, solo lectura). Las rutas fijas van antes de "/:id".
	transactions := protected.Group("/transactions")
	transactionHandler := NewTransactionHandler(deps.TransactionUC)
	transactions.Get("/", transactionHandler.List)
	transactions.Get("/summary", transactionHandler.Summary)
	transactions.Get("/statement", transactionHandler.Statement)
	transactions.Get("/reference/:ref", transactionHandler.GetByReference)
	transactions.Get("/:id", transactionHandler.GetByID)
}
