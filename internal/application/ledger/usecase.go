// Package ledger implementa el motor de saldo: los créditos y débitos que
// mueven dinero entre cuentas del árbol de patrocinio. Toda escritura ocurre
// dentro de una transacción de BD con las filas bloqueadas (SELECT FOR
// UPDATE) y queda asentada en el libro de movimientos con el saldo anterior
// y el nuevo.
//
// Las dos operaciones son deliberadamente asimétricas: un crédito a un
// usuario con padre es una transferencia (el dinero sale del padre y los dos
// asientos comparten transfer_id), mientras que un débito solo descuenta la
// cuenta indicada y no propaga nada hacia arriba.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/internal/domain/hierarchy"
	"github.com/jhoicas/saldora-api/internal/domain/permission"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

// UseCase ejecuta las operaciones de saldo de forma transaccional.
type UseCase struct {
	txRunner TxRunner
	userRepo repository.UserRepository
}

// NewUseCase construye el motor de saldo.
func NewUseCase(txRunner TxRunner, userRepo repository.UserRepository) *UseCase {
	return &UseCase{txRunner: txRunner, userRepo: userRepo}
}

// CreditResult describe el efecto de un crédito aplicado.
type CreditResult struct {
	SubjectBalance decimal.Decimal
	Transaction    *entity.Transaction
	// PayerAdjustment es nil en las autorecargas: no hubo débito a nadie.
	PayerAdjustment *PayerAdjustment
}

// PayerAdjustment detalla el débito que fondeó una transferencia.
type PayerAdjustment struct {
	PayerID         string
	PayerUsername   string
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Transaction     *entity.Transaction
}

// DebitResult describe el efecto de un débito aplicado.
type DebitResult struct {
	SubjectBalance decimal.Decimal
	Transaction    *entity.Transaction
}

// validateAmount exige montos positivos con máximo dos decimales.
func validateAmount(amount decimal.Decimal) error {
	if !amount.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return domain.ErrInvalidAmount
	}
	return nil
}

// lockUsers bloquea las filas indicadas en orden ascendente de ID, para que
// dos transferencias cruzadas (A→B y B→A concurrentes) no se interbloqueen.
func lockUsers(userRepo repository.UserRepository, ids ...string) (map[string]*entity.User, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)

	rows := make(map[string]*entity.User, len(unique))
	for _, id := range unique {
		u, err := userRepo.GetForUpdate(id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.ErrUserNotFound
		}
		rows[id] = u
	}
	return rows, nil
}

// Credit acredita amount al sujeto. Si el sujeto no es el propio actor, el
// dinero sale del padre directo del sujeto (o del actor cuando el sujeto es
// raíz): se le descuenta en la misma transacción y los dos asientos quedan
// enlazados por transfer_id. La autorecarga (actor == sujeto) inyecta dinero
// al sistema sin debitar a nadie.
//
// Autorizado para: el propio actor, un ancestro del sujeto, o admin+.
func (uc *UseCase) Credit(ctx context.Context, actorID, subjectID string, amount decimal.Decimal, description string) (*CreditResult, error) {
	if actorID == "" || subjectID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	actor, err := uc.userRepo.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, domain.ErrForbidden
	}
	subject, err := uc.userRepo.GetByID(subjectID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, domain.ErrUserNotFound
	}
	if !subject.IsActive {
		return nil, domain.ErrForbidden
	}

	allowed := actor.ID == subject.ID || permission.IsPrivileged(actor.Role)
	if !allowed {
		isAncestor, err := hierarchy.IsAncestor(uc.userRepo, actor.ID, subject.ID)
		if err != nil {
			return nil, err
		}
		allowed = isAncestor
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	// El pagador se resuelve con datos inmutables (created_by no cambia
	// nunca): autorecarga la paga el propio actor; en el resto de casos paga
	// el padre directo del sujeto, y si el sujeto es raíz, paga el actor.
	payerID := subjectID
	if actorID != subjectID {
		if subject.CreatedBy != "" {
			payerID = subject.CreatedBy
		} else {
			payerID = actorID
		}
	}

	now := time.Now()
	transferID := ""
	if payerID != subjectID {
		transferID = uuid.New().String()
	}

	var result *CreditResult
	err = uc.txRunner.Run(ctx, func(
		userRepo repository.UserRepository,
		txRepo repository.TransactionRepository,
	) error {
		rows, err := lockUsers(userRepo, subjectID, payerID)
		if err != nil {
			return err
		}
		subjectRow := rows[subjectID]
		payerRow := rows[payerID]

		var payerAdj *PayerAdjustment
		if payerID != subjectID {
			// la transferencia exige fondos del pagador; el abono en sí no
			if payerRow.Balance.LessThan(amount) {
				return domain.ErrInsufficientBalance
			}
			prev := payerRow.Balance
			payerRow.Balance = prev.Sub(amount)
			if err := userRepo.UpdateBalance(payerRow.ID, payerRow.Balance); err != nil {
				return err
			}
			debitDesc := description
			if debitDesc == "" {
				debitDesc = "Transferencia a " + subjectRow.Username
			}
			debitTx := &entity.Transaction{
				ID:              uuid.New().String(),
				UserID:          payerRow.ID,
				PerformedBy:     actorID,
				Type:            entity.TransactionTypeDebit,
				Amount:          amount,
				PreviousBalance: prev,
				NewBalance:      payerRow.Balance,
				TransferID:      transferID,
				Description:     debitDesc,
				Status:          entity.TransactionStatusCompleted,
				Reference:       NewReference(now),
				CreatedAt:       now,
			}
			if err := txRepo.Create(debitTx); err != nil {
				return err
			}
			payerAdj = &PayerAdjustment{
				PayerID:         payerRow.ID,
				PayerUsername:   payerRow.Username,
				PreviousBalance: prev,
				NewBalance:      payerRow.Balance,
				Transaction:     debitTx,
			}
		}

		prev := subjectRow.Balance
		subjectRow.Balance = prev.Add(amount)
		if err := userRepo.UpdateBalance(subjectRow.ID, subjectRow.Balance); err != nil {
			return err
		}
		creditDesc := description
		if creditDesc == "" {
			if payerID == subjectID {
				creditDesc = "Recarga de saldo"
			} else {
				creditDesc = "Transferencia de " + payerRow.Username
			}
		}
		creditTx := &entity.Transaction{
			ID:              uuid.New().String(),
			UserID:          subjectRow.ID,
			PerformedBy:     actorID,
			Type:            entity.TransactionTypeCredit,
			Amount:          amount,
			PreviousBalance: prev,
			NewBalance:      subjectRow.Balance,
			TransferID:      transferID,
			Description:     creditDesc,
			Status:          entity.TransactionStatusCompleted,
			Reference:       NewReference(now),
			CreatedAt:       now,
		}
		if err := txRepo.Create(creditTx); err != nil {
			return err
		}
		result = &CreditResult{
			SubjectBalance:  subjectRow.Balance,
			Transaction:     creditTx,
			PayerAdjustment: payerAdj,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Debit descuenta amount de la cuenta del sujeto. A diferencia del crédito,
// el débito nunca propaga nada hacia el padre: toca una sola cuenta. El
// saldo debe alcanzar; si no, la operación falla completa sin asiento.
//
// Autorizado para: el propio actor o quien tenga facultad de gestión.
func (uc *UseCase) Debit(ctx context.Context, actorID, subjectID string, amount decimal.Decimal, description string) (*DebitResult, error) {
	if actorID == "" || subjectID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	actor, err := uc.userRepo.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, domain.ErrForbidden
	}
	subject, err := uc.userRepo.GetByID(subjectID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, domain.ErrUserNotFound
	}
	if !subject.IsActive {
		return nil, domain.ErrForbidden
	}

	allowed := actor.ID == subject.ID
	if !allowed {
		isAncestor, err := hierarchy.IsAncestor(uc.userRepo, actor.ID, subject.ID)
		if err != nil {
			return nil, err
		}
		allowed = permission.CanManage(actor, subject, isAncestor)
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	var result *DebitResult
	err = uc.txRunner.Run(ctx, func(
		userRepo repository.UserRepository,
		txRepo repository.TransactionRepository,
	) error {
		row, err := userRepo.GetForUpdate(subjectID)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrUserNotFound
		}
		if row.Balance.LessThan(amount) {
			return domain.ErrInsufficientBalance
		}

		prev := row.Balance
		newBalance := prev.Sub(amount)
		if err := userRepo.UpdateBalance(row.ID, newBalance); err != nil {
			return err
		}
		desc := description
		if desc == "" {
			desc = "Retiro de saldo"
		}
		t := &entity.Transaction{
			ID:              uuid.New().String(),
			UserID:          row.ID,
			PerformedBy:     actorID,
			Type:            entity.TransactionTypeDebit,
			Amount:          amount,
			PreviousBalance: prev,
			NewBalance:      newBalance,
			Description:     desc,
			Status:          entity.TransactionStatusCompleted,
			Reference:       NewReference(now),
			CreatedAt:       now,
		}
		if err := txRepo.Create(t); err != nil {
			return err
		}
		result = &DebitResult{SubjectBalance: newBalance, Transaction: t}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
