package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// generarCodigo returns a 6-digit numeric verification code.
// crypto/rand: the code doubles as a temp password for branch accounts.
func generarCodigo() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generar codigo: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
