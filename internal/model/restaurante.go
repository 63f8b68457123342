package model

import (
	"time"

	"github.com/google/uuid"
)

// Restaurante is the tenant root entity. Every sucursal, usuario and pedido
// hangs off a restaurante; rows are soft-deleted only (Activo=false).
type Restaurante struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"not null"`
	RazonSocial *string
	Email       string `gorm:"uniqueIndex;not null"`
	Telefono    *string
	Direccion   *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Sucursales []Sucursal `gorm:"foreignKey:RestauranteID"`
}

func (Restaurante) TableName() string { return "restaurantes" }
