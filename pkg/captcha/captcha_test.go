package captcha

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solveQuestion resuelve "a + b" para responder el reto en los tests.
func solveQuestion(t *testing.T, question string) string {
	t.Helper()
	parts := strings.Split(question, " + ")
	require.Len(t, parts, 2, "pregunta inesperada: %s", question)
	a, err := strconv.Atoi(parts[0])
	require.NoError(t, err)
	b, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	return strconv.Itoa(a + b)
}

func TestIssueYVerify_RespuestaCorrecta(t *testing.T) {
	s := NewStore(5 * time.Minute)

	ch := s.Issue()
	require.NotEmpty(t, ch.ID)
	require.NotEmpty(t, ch.Question)

	assert.True(t, s.Verify(ch.ID, solveQuestion(t, ch.Question)))
}

func TestVerify_RespuestaIncorrecta(t *testing.T) {
	s := NewStore(5 * time.Minute)

	ch := s.Issue()

	assert.False(t, s.Verify(ch.ID, "999999"))
}

func TestVerify_AceptaEspaciosAlrededor(t *testing.T) {
	s := NewStore(5 * time.Minute)

	ch := s.Issue()

	assert.True(t, s.Verify(ch.ID, "  "+solveQuestion(t, ch.Question)+" "))
}

func TestVerify_RetoDeUnSoloUso(t *testing.T) {
	s := NewStore(5 * time.Minute)

	ch := s.Issue()
	respuesta := solveQuestion(t, ch.Question)

	require.True(t, s.Verify(ch.ID, respuesta))
	assert.False(t, s.Verify(ch.ID, respuesta), "el reto se consume al primer intento")
}

func TestVerify_SeConsumeAunqueFalle(t *testing.T) {
	s := NewStore(5 * time.Minute)

	ch := s.Issue()
	respuesta := solveQuestion(t, ch.Question)

	require.False(t, s.Verify(ch.ID, "0"))
	assert.False(t, s.Verify(ch.ID, respuesta), "no hay segundo intento sobre el mismo ID")
}

func TestVerify_IDDesconocido(t *testing.T) {
	s := NewStore(5 * time.Minute)

	assert.False(t, s.Verify("no-existe", "42"))
}

func TestVerify_RetoVencido(t *testing.T) {
	s := NewStore(2 * time.Minute)
	ahora := time.Now()
	s.now = func() time.Time { return ahora }

	ch := s.Issue()
	respuesta := solveQuestion(t, ch.Question)

	// avanza el reloj más allá del TTL
	s.now = func() time.Time { return ahora.Add(3 * time.Minute) }

	assert.False(t, s.Verify(ch.ID, respuesta))
}

func TestIssue_BarreLosVencidos(t *testing.T) {
	s := NewStore(2 * time.Minute)
	ahora := time.Now()
	s.now = func() time.Time { return ahora }

	s.Issue()
	s.Issue()
	require.Equal(t, 2, s.Pending())

	// los dos primeros vencen; la siguiente emisión los barre
	s.now = func() time.Time { return ahora.Add(5 * time.Minute) }
	s.Issue()

	assert.Equal(t, 1, s.Pending(), "solo queda el reto recién emitido")
}
