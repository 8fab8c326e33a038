// seed_users genera un script SQL para poblar el árbol de usuarios inicial
// a partir de un CSV exportado del sistema anterior (separado por ';' y en
// ISO-8859-1, con columnas: usuario;correo;rol;padre;saldo).
//
// Uso: go run ./cmd/seed_users [ruta/usuarios.csv] [password-inicial]
// Por defecto busca usuarios.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_users.sql
//
// Los IDs son UUIDs deterministas derivados del username, así el script es
// reejecutable y las referencias al padre se resuelven sin consultar la BD.
// Todas las cuentas nacen con el mismo password inicial (hash bcrypt único).
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type seedUser struct {
	username string
	email    string
	role     string
	parent   string // username del padre; vacío = cuenta raíz
	balance  decimal.Decimal
}

var validRoles = map[string]bool{
	"user":        true,
	"moderator":   true,
	"admin":       true,
	"super_admin": true,
}

func main() {
	csvPath := "usuarios.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	initialPassword := "Cambiar123!"
	if len(os.Args) > 2 {
		initialPassword = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// Los exports legados vienen en ISO-8859-1 (tildes y eñes)
	reader := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	users, err := parseRecords(records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ordered, err := sortParentsFirst(users)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Un solo hash para todas las cuentas: bcrypt es caro y el password
	// inicial es compartido (se fuerza el cambio en el primer login).
	hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hash del password: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_users.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Árbol de usuarios inicial (migrado del sistema anterior)\n")
	out.WriteString("-- Generado desde " + filepath.Base(csvPath) + "; los padres van antes que sus hijos\n\n")

	for _, u := range ordered {
		parentSQL := "NULL"
		if u.parent != "" {
			parentSQL = "'" + userID(u.parent) + "'"
		}
		fmt.Fprintf(out, "INSERT INTO users (id, username, email, password_hash, role, balance, created_by)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', '%s', '%s', %s, %s)\n",
			userID(u.username), escapeSQL(u.username), escapeSQL(u.email),
			string(hash), u.role, u.balance.StringFixed(2), parentSQL)
		out.WriteString("ON CONFLICT (id) DO NOTHING;\n")
	}

	fmt.Printf("Generado %s: %d usuarios\n", outPath, len(ordered))
}

// parseRecords valida fila por fila. La primera fila puede ser encabezado.
func parseRecords(records [][]string) ([]seedUser, error) {
	var users []seedUser
	seen := make(map[string]bool)
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "usuario") {
			continue
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("fila %d: se esperaban 5 columnas (usuario;correo;rol;padre;saldo), hay %d", i+1, len(rec))
		}
		username := strings.TrimSpace(rec[0])
		email := strings.ToLower(strings.TrimSpace(rec[1]))
		role := strings.TrimSpace(rec[2])
		parent := strings.TrimSpace(rec[3])
		if username == "" || email == "" {
			return nil, fmt.Errorf("fila %d: usuario y correo son obligatorios", i+1)
		}
		if seen[username] {
			return nil, fmt.Errorf("fila %d: usuario duplicado %q", i+1, username)
		}
		seen[username] = true
		if role == "" {
			role = "user"
		}
		if !validRoles[role] {
			return nil, fmt.Errorf("fila %d: rol desconocido %q", i+1, role)
		}
		balance, err := decimal.NewFromString(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("fila %d: saldo inválido %q", i+1, rec[4])
		}
		if balance.IsNegative() {
			return nil, fmt.Errorf("fila %d: el saldo no puede ser negativo", i+1)
		}
		users = append(users, seedUser{
			username: username,
			email:    email,
			role:     role,
			parent:   parent,
			balance:  balance,
		})
	}
	return users, nil
}

// sortParentsFirst ordena de modo que cada padre quede antes que sus hijos
// (la FK created_by lo exige). Detecta padres ausentes y ciclos.
func sortParentsFirst(users []seedUser) ([]seedUser, error) {
	byName := make(map[string]seedUser, len(users))
	for _, u := range users {
		byName[u.username] = u
	}
	for _, u := range users {
		if u.parent != "" {
			if _, ok := byName[u.parent]; !ok {
				return nil, fmt.Errorf("usuario %q: su padre %q no está en el CSV", u.username, u.parent)
			}
		}
	}

	emitted := make(map[string]bool, len(users))
	ordered := make([]seedUser, 0, len(users))
	pending := users
	for len(pending) > 0 {
		var next []seedUser
		progress := false
		for _, u := range pending {
			if u.parent == "" || emitted[u.parent] {
				ordered = append(ordered, u)
				emitted[u.username] = true
				progress = true
			} else {
				next = append(next, u)
			}
		}
		if !progress {
			names := make([]string, 0, len(next))
			for _, u := range next {
				names = append(names, u.username)
			}
			return nil, fmt.Errorf("ciclo de padres entre: %s", strings.Join(names, ", "))
		}
		pending = next
	}
	return ordered, nil
}

// userID deriva un UUID v5 estable a partir del username.
func userID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("saldora:user:"+username)).String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
