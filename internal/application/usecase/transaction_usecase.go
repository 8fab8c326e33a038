package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/saldora-api/internal/application/dto"
	"github.com/jhoicas/saldora-api/internal/domain"
	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/internal/domain/hierarchy"
	"github.com/jhoicas/saldora-api/internal/domain/permission"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

// TransactionUseCase expone el libro de movimientos en solo lectura:
// listado, resumen, búsqueda por referencia y estado de cuenta en PDF.
// Las escrituras al libro son exclusivas del motor de saldo.
type TransactionUseCase struct {
	txs    repository.TransactionRepository
	users  repository.UserRepository
	pdfGen StatementPDFGenerator
}

// NewTransactionUseCase construye el caso de uso de consultas del libro.
func NewTransactionUseCase(
	txs repository.TransactionRepository,
	users repository.UserRepository,
	pdfGen StatementPDFGenerator,
) *TransactionUseCase {
	return &TransactionUseCase{txs: txs, users: users, pdfGen: pdfGen}
}

// TransactionListInput filtros ya resueltos para el listado (las fechas
// las parsea el handler).
type TransactionListInput struct {
	UserID  string
	Type    string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
	SortAsc bool
}

// loadActor carga al actor autenticado y verifica que siga activo.
func (uc *TransactionUseCase) loadActor(actorID string) (*entity.User, error) {
	actor, err := uc.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsActive {
		return nil, domain.ErrForbidden
	}
	return actor, nil
}

// canViewTransaction decide si el actor ve un asiento: el titular, quien lo
// ejecutó, admin+ o un ancestro del titular.
func (uc *TransactionUseCase) canViewTransaction(actor *entity.User, t *entity.Transaction) (bool, error) {
	if t.UserID == actor.ID || t.PerformedBy == actor.ID || permission.IsPrivileged(actor.Role) {
		return true, nil
	}
	return hierarchy.IsAncestor(uc.users, actor.ID, t.UserID)
}

// resolveTarget aplica la regla de alcance: sin user_id se consultan los
// movimientos propios; ver los de otro exige ser admin+ o su ancestro.
func (uc *TransactionUseCase) resolveTarget(actorID, userID string) (*entity.User, error) {
	actor, err := uc.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	if userID == "" || userID == actor.ID {
		return actor, nil
	}
	subject, err := uc.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, domain.ErrUserNotFound
	}
	if permission.IsPrivileged(actor.Role) {
		return subject, nil
	}
	isAncestor, err := hierarchy.IsAncestor(uc.users, actor.ID, subject.ID)
	if err != nil {
		return nil, err
	}
	if !isAncestor {
		return nil, domain.ErrForbidden
	}
	return subject, nil
}

// List devuelve la página de movimientos del usuario objetivo.
func (uc *TransactionUseCase) List(actorID string, in TransactionListInput) (*dto.TransactionListResponse, error) {
	target, err := uc.resolveTarget(actorID, in.UserID)
	if err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	items, total, err := uc.txs.List(repository.TransactionFilter{
		UserID:  target.ID,
		Type:    in.Type,
		From:    in.From,
		To:      in.To,
		Limit:   limit,
		Offset:  offset,
		SortAsc: in.SortAsc,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*dto.TransactionResponse, 0, len(items))
	for _, t := range items {
		out = append(out, transactionToResponse(t))
	}
	return &dto.TransactionListResponse{
		Items:      out,
		Pagination: dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Summary agrega créditos y débitos del usuario objetivo en un rango.
func (uc *TransactionUseCase) Summary(actorID, userID string, from, to *time.Time) (*dto.TransactionSummaryResponse, error) {
	target, err := uc.resolveTarget(actorID, userID)
	if err != nil {
		return nil, err
	}
	s, err := uc.txs.Summary(target.ID, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.TransactionSummaryResponse{
		UserID:       target.ID,
		TotalCredits: s.TotalCredits,
		TotalDebits:  s.TotalDebits,
		CreditCount:  s.CreditCount,
		DebitCount:   s.DebitCount,
		NetAmount:    s.NetAmount,
	}, nil
}

// GetByReference busca un asiento por su referencia única.
func (uc *TransactionUseCase) GetByReference(actorID, reference string) (*dto.TransactionResponse, error) {
	actor, err := uc.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	t, err := uc.txs.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTransactionNotFound
	}
	ok, err := uc.canViewTransaction(actor, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return transactionToResponse(t), nil
}

// GetByID busca un asiento por su ID, con la misma visibilidad que la
// búsqueda por referencia.
func (uc *TransactionUseCase) GetByID(actorID, id string) (*dto.TransactionResponse, error) {
	actor, err := uc.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	t, err := uc.txs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTransactionNotFound
	}
	ok, err := uc.canViewTransaction(actor, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return transactionToResponse(t), nil
}

// Statement genera el estado de cuenta en PDF del usuario objetivo.
// Sin rango explícito cubre los últimos 30 días. Devuelve el contenido
// y un nombre de archivo sugerido.
func (uc *TransactionUseCase) Statement(ctx context.Context, actorID, userID string, from, to *time.Time) ([]byte, string, error) {
	target, err := uc.resolveTarget(actorID, userID)
	if err != nil {
		return nil, "", err
	}

	end := time.Now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}

	// sin límite: el estado de cuenta lista el rango completo, en orden cronológico
	items, _, err := uc.txs.List(repository.TransactionFilter{
		UserID:  target.ID,
		From:    &start,
		To:      &end,
		SortAsc: true,
	})
	if err != nil {
		return nil, "", err
	}
	summary, err := uc.txs.Summary(target.ID, &start, &end)
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err := uc.pdfGen.GenerateStatementPDF(ctx, target, summary, items, start, end)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("estado_cuenta_%s_%s.pdf", target.Username, end.Format("20060102"))
	return pdfBytes, filename, nil
}

func transactionToResponse(t *entity.Transaction) *dto.TransactionResponse {
	if t == nil {
		return nil
	}
	return &dto.TransactionResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		PerformedBy:     t.PerformedBy,
		Type:            t.Type,
		Amount:          t.Amount,
		PreviousBalance: t.PreviousBalance,
		NewBalance:      t.NewBalance,
		TransferID:      t.TransferID,
		Description:     t.Description,
		Status:          t.Status,
		Reference:       t.Reference,
		CreatedAt:       t.CreatedAt,
	}
}
