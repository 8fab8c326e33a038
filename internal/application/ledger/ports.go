package ledger

import (
	"context"

	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

// TxRunner abstrae la ejecución transaccional: Run abre una transacción,
// pasa a fn repositorios atados a ella y hace Commit si fn devuelve nil o
// Rollback si devuelve error. Lo implementa postgres.TxRunner.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		userRepo repository.UserRepository,
		txRepo repository.TransactionRepository,
	) error) error
}
