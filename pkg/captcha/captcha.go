// Package captcha implementa un reto aritmético en memoria para frenar
// registros automatizados. No hay goroutine de barrido: las entradas
// vencidas se descartan al consultarlas y se barren de forma perezosa en
// cada emisión.
package captcha

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Challenge es un reto emitido, pendiente de respuesta.
type Challenge struct {
	ID        string
	Question  string // ej: "23 + 7"
	ExpiresAt time.Time
}

type entry struct {
	answer    string
	expiresAt time.Time
}

// Store guarda los retos vivos. Seguro para uso concurrente.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time // reemplazable en tests
}

// NewStore construye el almacén con el TTL dado.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Issue crea un reto aritmético nuevo y lo registra.
func (s *Store) Issue() Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()

	a := rand.Intn(90) + 10
	b := rand.Intn(9) + 1
	id := uuid.New().String()
	expiresAt := s.now().Add(s.ttl)
	s.entries[id] = entry{
		answer:    strconv.Itoa(a + b),
		expiresAt: expiresAt,
	}
	return Challenge{
		ID:        id,
		Question:  fmt.Sprintf("%d + %d", a, b),
		ExpiresAt: expiresAt,
	}
}

// Verify valida la respuesta de un reto. El reto es de un solo uso: se
// consume siempre, acierte o no, para que no se pueda reintentar por
// fuerza bruta sobre el mismo ID.
func (s *Store) Verify(id, answer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	delete(s.entries, id)
	if s.now().After(e.expiresAt) {
		return false
	}
	return strings.TrimSpace(answer) == e.answer
}

// Pending devuelve cuántos retos siguen registrados (vencidos incluidos,
// hasta el próximo barrido).
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) evictExpiredLocked() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
