package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles form a closed set; anything else is rejected at the DTO layer
// (validator oneof) and, defensively, by RolValido.
const (
	RolAdmin    = "admin"
	RolEmpleado = "empleado"
	RolGerente  = "gerente"
)

// RolValido reports whether rol belongs to the closed role set.
func RolValido(rol string) bool {
	return rol == RolAdmin || rol == RolEmpleado || rol == RolGerente
}

// Usuario stores platform users with role-based, tenant-scoped access.
//
// Invariant: an admin's SucursalID is always nil (restaurant-wide access);
// an empleado/gerente's SucursalID is never nil.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Apellidos    string
	PasswordHash string     `gorm:"not null"`
	Rol          string     `gorm:"type:varchar(20);not null"`
	RestauranteID uuid.UUID `gorm:"type:uuid;not null;index"`
	SucursalID   *uuid.UUID `gorm:"type:uuid;index"`

	EmailVerificado bool `gorm:"not null;default:false"`
	Activo          bool `gorm:"not null;default:true"`
	// PrimerLogin marks accounts auto-created during branch verification:
	// they carry the verification code as temp password and must change it
	// before a session token is issued.
	PrimerLogin bool `gorm:"not null;default:false"`

	CodigoVerificacion *string `gorm:"type:varchar(6)"`
	CodigoExpira       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
}

func (Usuario) TableName() string { return "usuarios" }

// EsAdmin reports restaurant-wide access.
func (u *Usuario) EsAdmin() bool { return u.Rol == RolAdmin }
