package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditRequest entrada para acreditar saldo a un usuario.
type CreditRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"omitempty,max=300"`
}

// DebitRequest entrada para debitar saldo de un usuario.
type DebitRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"omitempty,max=300"`
}

// TransactionResponse salida de un asiento del libro de movimientos.
type TransactionResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	PerformedBy     string          `json:"performed_by"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	TransferID      string          `json:"transfer_id,omitempty"`
	Description     string          `json:"description"`
	Status          string          `json:"status"`
	Reference       string          `json:"reference"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PayerAdjustmentResponse débito aplicado al pagador de una transferencia.
type PayerAdjustmentResponse struct {
	PayerID         string              `json:"payer_id"`
	PayerUsername   string              `json:"payer_username"`
	PreviousBalance decimal.Decimal     `json:"previous_balance"`
	NewBalance      decimal.Decimal     `json:"new_balance"`
	Transaction     TransactionResponse `json:"transaction"`
}

// CreditResponse salida de un crédito aplicado. PayerAdjustment va vacío
// en las autorecargas.
type CreditResponse struct {
	SubjectBalance  decimal.Decimal          `json:"subject_balance"`
	Transaction     TransactionResponse      `json:"transaction"`
	PayerAdjustment *PayerAdjustmentResponse `json:"payer_adjustment,omitempty"`
}

// DebitResponse salida de un débito aplicado.
type DebitResponse struct {
	SubjectBalance decimal.Decimal     `json:"subject_balance"`
	Transaction    TransactionResponse `json:"transaction"`
}

// TransactionListRequest filtros del listado de movimientos.
type TransactionListRequest struct {
	UserID string `query:"user_id" validate:"omitempty,uuid"`
	Type   string `query:"type" validate:"omitempty,oneof=credit debit"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit  int    `query:"limit" validate:"min=0,max=100"`
	Offset int    `query:"offset" validate:"min=0"`
	Sort   string `query:"sort" validate:"omitempty,oneof=asc desc"`
}

// TransactionListResponse página de movimientos.
type TransactionListResponse struct {
	Items      []*TransactionResponse `json:"items"`
	Pagination PageResponse           `json:"pagination"`
}

// TransactionSummaryResponse agregados de movimientos en un rango.
type TransactionSummaryResponse struct {
	UserID       string          `json:"user_id"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	CreditCount  int64           `json:"credit_count"`
	DebitCount   int64           `json:"debit_count"`
	NetAmount    decimal.Decimal `json:"net_amount"`
}
