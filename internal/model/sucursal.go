package model

import (
	"time"

	"github.com/google/uuid"
)

// Sucursal is a branch/location of a restaurante.
// Lifecycle: created (Verificada=false, with a 6-digit code valid 24h) →
// verified. The code columns are nulled once the branch verifies.
type Sucursal struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre        string    `gorm:"not null"`
	Email         string    `gorm:"not null"`
	Telefono      *string
	Direccion     *string
	Ciudad        *string
	Verificada    bool `gorm:"not null;default:false"`
	Activa        bool `gorm:"not null;default:true"`
	// CodigoVerificacion is a 6-digit numeric code mailed on creation.
	CodigoVerificacion *string `gorm:"type:varchar(6)"`
	CodigoExpira       *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Restaurante *Restaurante `gorm:"foreignKey:RestauranteID"`
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Sucursal) TableName() string { return "sucursales" }
