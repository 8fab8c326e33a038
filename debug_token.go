package main

import (
	"fmt"

	"github.com/jhoicas/saldora-api/pkg/jwt"
)

func main() {
	// 1. Datos copiados EXACTAMENTE de tu .env
	// OJO: pega el secret real y un token recién emitido por /api/auth/login
	jwtSecret := "super-secret-change-me"
	token := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.PEGA.AQUI"

	fmt.Println("🔍 DIAGNÓSTICO DE TOKEN JWT")
	fmt.Println("----------------------------------")
	fmt.Printf("🔑 Secret en uso: %q (%d caracteres)\n", jwtSecret, len(jwtSecret))

	// 2. Intentar validar firma y claims (Secret Check)
	fmt.Println("\n🔐 Intentando validar el token con ese secret...")
	userID, role, err := jwt.Parse(jwtSecret, token)
	if err != nil {
		fmt.Println("\n❌ ERROR DE FIRMA O FORMATO:")
		fmt.Printf("   El token no valida con este secret, o está vencido/malformado.\n")
		fmt.Printf("   Detalle técnico: %v\n", err)
		return
	}

	fmt.Println("\n✨ ¡ÉXITO! El token es válido con este secret.")
	fmt.Printf("   user_id=%s role=%s\n", userID, role)
	fmt.Println("   El problema NO es el secret, es cómo tu app carga el .env.")
}
