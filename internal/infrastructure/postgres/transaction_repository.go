package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// scanTransaction lee una fila de transactions. transfer_id es NULL cuando
// el movimiento no forma parte de una transferencia.
func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var transferID *string
	err := row.Scan(
		&t.ID, &t.UserID, &t.PerformedBy, &t.Type, &t.Amount,
		&t.PreviousBalance, &t.NewBalance, &transferID, &t.Description,
		&t.Status, &t.Reference, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if transferID != nil {
		t.TransferID = *transferID
	}
	return &t, nil
}

// Create persiste un asiento del libro. No existe Update ni Delete:
// el libro es append-only.
func (r *TransactionRepo) Create(t *entity.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transactions (id, user_id, performed_by, type, amount, previous_balance, new_balance, transfer_id, description, status, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	transferID := (*string)(nil)
	if t.TransferID != "" {
		transferID = &t.TransferID
	}
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.UserID, t.PerformedBy, t.Type, t.Amount,
		t.PreviousBalance, t.NewBalance, transferID, t.Description,
		t.Status, t.Reference, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// choque de referencia: rarísimo (sufijo aleatorio); aborta la tx
			return domain.ErrConflict
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *TransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	query := `
		SELECT id, user_id, performed_by, type, amount, previous_balance, new_balance, transfer_id, description, status, reference, created_at
		FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// GetByReference obtiene un asiento por su referencia única.
func (r *TransactionRepo) GetByReference(reference string) (*entity.Transaction, error) {
	query := `
		SELECT id, user_id, performed_by, type, amount, previous_balance, new_balance, transfer_id, description, status, reference, created_at
		FROM transactions WHERE reference = $1`
	t, err := scanTransaction(r.q.QueryRow(context.Background(), query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by reference: %w", err)
	}
	return t, nil
}

// List devuelve los asientos que cumplen el filtro más el total sin paginar.
func (r *TransactionRepo) List(filter repository.TransactionFilter) ([]*entity.Transaction, int64, error) {
	var conds []string
	var args []any
	pos := 1
	if filter.UserID != "" {
		conds = append(conds, fmt.Sprintf("user_id = $%d", pos))
		args = append(args, filter.UserID)
		pos++
	}
	if filter.Type != "" {
		conds = append(conds, fmt.Sprintf("type = $%d", pos))
		args = append(args, filter.Type)
		pos++
	}
	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("created_at >= $%d", pos))
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("created_at <= $%d", pos))
		args = append(args, *filter.To)
		pos++
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM transactions" + where
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	order := " ORDER BY created_at DESC, id DESC"
	if filter.SortAsc {
		order = " ORDER BY created_at ASC, id ASC"
	}
	query := `
		SELECT id, user_id, performed_by, type, amount, previous_balance, new_balance, transfer_id, description, status, reference, created_at
		FROM transactions` + where + order
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

// Summary agrega créditos y débitos de un usuario en un rango de fechas.
func (r *TransactionRepo) Summary(userID string, from, to *time.Time) (*repository.TransactionSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0) AS total_credits,
			COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0)  AS total_debits,
			COUNT(*) FILTER (WHERE type = 'credit')                 AS credit_count,
			COUNT(*) FILTER (WHERE type = 'debit')                  AS debit_count
		FROM transactions
		WHERE user_id = $1`
	args := []any{userID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}

	var s repository.TransactionSummary
	var credits, debits decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&credits, &debits, &s.CreditCount, &s.DebitCount,
	)
	if err != nil {
		return nil, fmt.Errorf("transactions summary: %w", err)
	}
	s.TotalCredits = credits
	s.TotalDebits = debits
	s.NetAmount = credits.Sub(debits)
	return &s, nil
}
