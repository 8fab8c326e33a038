// Package pdf implementa la generación del estado de cuenta de un usuario:
// sus movimientos de saldo en un rango de fechas con los totales del período.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Saldora  │  ESTADO DE CUENTA + rango               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TITULAR: username + email + rol + saldo actual             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Referencia | Tipo | Descripción | Monto |   │
//	│         Saldo                                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Créditos / Débitos / NETO DEL PERÍODO             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda informativa                                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/saldora-api/internal/domain/entity"
	"github.com/jhoicas/saldora-api/internal/domain/repository"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 16, Green: 112, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCredit  = &props.Color{Red: 22, Green: 128, Blue: 57}
	colorDebit   = &props.Color{Red: 178, Green: 34, Blue: 34}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// StatementGenerator implementa usecase.StatementPDFGenerator usando Maroto v2.
type StatementGenerator struct{}

// NewStatementGenerator construye el generador.
func NewStatementGenerator() *StatementGenerator { return &StatementGenerator{} }

// GenerateStatementPDF genera el PDF y devuelve sus bytes.
func (g *StatementGenerator) GenerateStatementPDF(
	_ context.Context,
	user *entity.User,
	summary *repository.TransactionSummary,
	movements []*entity.Transaction,
	from, to time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estado de Cuenta", true).
		WithAuthor("Saldora", true).
		Build()

	m := maroto.New(cfg)

	// Header principal
	m.AddRows(headerRow(from, to))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(titularRow(user))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de movimientos
	m.AddRows(tableHeaderRow())
	for _, r := range tableMovementRows(movements) {
		m.AddRows(r)
	}

	// Totales del período
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(summary))

	// Footer
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: marca (izq) y título + rango del período (der).
func headerRow(from, to time.Time) core.Row {
	rango := from.Format("02/01/2006") + " al " + to.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New("Saldora", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Red de saldos", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ESTADO DE CUENTA", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Período: "+rango, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Generado: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// titularRow: datos del titular de la cuenta.
func titularRow(user *entity.User) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("TITULAR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(user.Username, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Rol: %s", user.Email, user.Role),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("SALDO ACTUAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("$"+formatMoney(user.Balance), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Referencia", 3, align.Left),
		h("Tipo", 1, align.Center),
		h("Descripción", 2, align.Left),
		h("Monto", 2, align.Right),
		h("Saldo", 2, align.Right),
	)
}

// tableMovementRows: una fila por asiento, con el monto firmado y coloreado.
func tableMovementRows(movements []*entity.Transaction) []core.Row {
	if len(movements) == 0 {
		return []core.Row{row.New(10).Add(col.New(12).Add(
			text.New("Sin movimientos en el período", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		))}
	}

	result := make([]core.Row, 0, len(movements))
	for _, t := range movements {
		tipo, signo, color := "CR", "+", colorCredit
		if t.Type == entity.TransactionTypeDebit {
			tipo, signo, color = "DB", "-", colorDebit
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				t.CreatedAt.Format("02/01/06 15:04"),
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				t.Reference,
				props.Text{Size: 6.5, Align: align.Left, Top: 1.5, Left: 1, Color: colorGray},
			)),
			col.New(1).Add(text.New(
				tipo,
				props.Text{Size: 7, Align: align.Center, Top: 1, Color: color},
			)),
			col.New(2).Add(text.New(
				t.Description,
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				signo+"$"+formatMoney(t.Amount),
				props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1, Color: color},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(t.NewBalance),
				props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales del período alineado a la derecha.
func totalsRow(summary *repository.TransactionSummary) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string, c *props.Color) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Color: c})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	creditos := fmt.Sprintf("+$%s (%d)", formatMoney(summary.TotalCredits), summary.CreditCount)
	debitos := fmt.Sprintf("-$%s (%d)", formatMoney(summary.TotalDebits), summary.DebitCount)

	return row.New(26).Add(
		col.New(3), // espacio izquierdo
		col.New(4).Add(
			label("Total créditos:"),
			label("Total débitos:"),
			grandLabel("NETO DEL PERÍODO:"),
		),
		col.New(3).Add(
			value(creditos, colorCredit),
			value(debitos, colorDebit),
			grandValue(signedMoney(summary.NetAmount)),
		),
		col.New(2), // espacio derecho
	)
}

// footerRow: leyenda informativa.
func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Este estado de cuenta refleja los asientos del libro de movimientos a la fecha de generación. "+
				"Cada asiento es inmutable y conserva el saldo anterior y el resultante.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney da formato de moneda con puntos de miles y coma decimal.
// Ej: 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, intPart[i])
	}
	out := string(buf) + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// signedMoney antepone el signo fuera del símbolo de moneda.
// Ej: -250 → "-$250,00"; 250 → "$250,00"
func signedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + formatMoney(d.Neg())
	}
	return "$" + formatMoney(d)
}
