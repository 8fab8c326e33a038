package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción.
const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

// Estados de transacción. El motor de saldo solo escribe "completed";
// los demás quedan reservados para liquidaciones asíncronas futuras.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
)

// Transaction es un asiento inmutable del libro de movimientos: una vez
// creado nunca se actualiza ni se elimina. Los campos PreviousBalance y
// NewBalance capturan el saldo del titular antes y después del movimiento,
// de modo que el historial se audita sin reconstruir nada.
type Transaction struct {
	ID              string
	UserID          string // titular: a quién le cambió el saldo
	PerformedBy     string // quién inició la operación
	Type            string // credit, debit
	Amount          decimal.Decimal // siempre positivo
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	TransferID      string // correlaciona el par débito/crédito de una transferencia; vacío si no aplica
	Description     string
	Status          string
	Reference       string // identificador legible y único, p. ej. TXN-20240131154502-8F3A21C4
	CreatedAt       time.Time
}
