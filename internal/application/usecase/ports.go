package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

// StatementPDFGenerator puerto hacia la infraestructura de PDF: produce el
// estado de cuenta de un usuario en un rango de fechas. Lo implementa
// pdf.StatementGenerator.
type StatementPDFGenerator interface {
	GenerateStatementPDF(
		ctx context.Context,
		user *entity.User,
		summary *repository.TransactionSummary,
		movements []*entity.Transaction,
		from, to time.Time,
	) ([]byte, error)
}
