package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/saldora-api/internal/domain/entity"
)

// TransactionFilter acota el listado de movimientos. Los campos en cero
// no filtran. Limit <= 0 significa sin límite (lo usa el estado de cuenta).
type TransactionFilter struct {
	UserID  string
	Type    string // credit o debit
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
	SortAsc bool // por defecto del más reciente al más antiguo
}

// TransactionSummary agrega los movimientos de un usuario en un rango.
type TransactionSummary struct {
	TotalCredits decimal.Decimal
	TotalDebits  decimal.Decimal
	CreditCount  int64
	DebitCount   int64
	NetAmount    decimal.Decimal // créditos menos débitos
}

// TransactionRepository define el puerto del libro de movimientos.
// El libro es append-only: no hay Update ni Delete.
type TransactionRepository interface {
	Create(t *entity.Transaction) error
	GetByID(id string) (*entity.Transaction, error)
	// GetByReference devuelve (nil, nil) si la referencia no existe.
	GetByReference(reference string) (*entity.Transaction, error)
	// List devuelve la página solicitada y el total sin paginar.
	List(filter TransactionFilter) ([]*entity.Transaction, int64, error)
	Summary(userID string, from, to *time.Time) (*TransactionSummary, error)
}
