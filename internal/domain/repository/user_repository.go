package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/saldora-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los métodos Get* devuelven (nil, nil) cuando el usuario no existe.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// GetForUpdate lee la fila bloqueándola (SELECT ... FOR UPDATE).
	// Solo tiene sentido dentro de una transacción del TxRunner.
	GetForUpdate(id string) (*entity.User, error)
	Update(user *entity.User) error
	UpdateBalance(id string, balance decimal.Decimal) error
	UpdateRole(id, role string) error
	UpdateStatus(id string, isActive bool) error
	Delete(id string) error
	List(limit, offset int) ([]*entity.User, error)
	Count() (int64, error)
	// ListAll carga el universo completo para armar la foto del árbol.
	ListAll() ([]*entity.User, error)
	ListByCreatedBy(createdBy string) ([]*entity.User, error)
}
