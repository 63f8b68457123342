package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors forming the service-level taxonomy. Handlers translate them
// to HTTP status codes in exactly one place (handler.writeServiceError);
// wrapped detail travels in the message.
var (
	// ErrValidacion → 400
	ErrValidacion = errors.New("solicitud invalida")
	// ErrCredenciales → 401
	ErrCredenciales = errors.New("credenciales invalidas")
	// ErrEmailNoVerificado → 401 (distinct from bad credentials so the
	// frontend can offer the re-send flow)
	ErrEmailNoVerificado = errors.New("el correo electronico no ha sido verificado")
	// ErrNoAutorizado → 403
	ErrNoAutorizado = errors.New("acceso no autorizado")
	// ErrNoEncontrado → 404
	ErrNoEncontrado = errors.New("recurso no encontrado")
	// ErrConflicto → 409
	ErrConflicto = errors.New("conflicto con un recurso existente")
)

// esDuplicado reports whether err is a unique-constraint violation.
// GORM translates pgx errors when TranslateError is on; the SQLSTATE match
// covers drivers/configs that surface the raw 23505.
func esDuplicado(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

// esNoEncontrado reports whether err is a missing-row lookup.
func esNoEncontrado(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// parseUUID wraps uuid.Parse into the validation branch of the taxonomy.
func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: identificador invalido", ErrValidacion)
	}
	return id, nil
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
