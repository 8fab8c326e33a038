package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReference genera la referencia única y legible de un asiento: un token
// de tiempo UTC compacto más un sufijo aleatorio de ocho caracteres. El
// índice único de la columna reference respalda la unicidad si el azar
// llegara a repetir el sufijo dentro del mismo segundo.
//
//	TXN-20240131154502-8F3A21C4
func NewReference(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("TXN-%s-%s", t.UTC().Format("20060102150405"), suffix)
}
