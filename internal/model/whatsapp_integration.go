package model

import (
	"time"

	"github.com/google/uuid"
)

// Integration estados.
const (
	IntegracionPendiente    = "pendiente"
	IntegracionConectada    = "conectada"
	IntegracionDesconectada = "desconectada"
)

// WhatsAppIntegration is the per-restaurante (optionally per-sucursal)
// WhatsApp Business channel configuration. Inbound webhook messages resolve
// their tenant through PhoneNumberID.
//
// TokenCifrado is the Cloud API access token encrypted with AES-256-GCM and a
// random per-record nonce; the plaintext never touches the database.
type WhatsAppIntegration struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RestauranteID uuid.UUID  `gorm:"type:uuid;not null;index"`
	SucursalID    *uuid.UUID `gorm:"type:uuid;index"`

	PhoneNumberID string `gorm:"uniqueIndex;not null"`
	WabaID        string `gorm:"not null"`
	TokenCifrado  string `gorm:"not null"`
	// VerifyToken is echoed back during Meta's GET webhook handshake.
	VerifyToken string `gorm:"not null"`
	ApiVersion  string `gorm:"type:varchar(10);not null;default:'v21.0'"`

	Estado      string  `gorm:"type:varchar(20);not null;default:'pendiente'"`
	UltimoError *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName avoids GORM's "whats_app_integrations" default.
func (WhatsAppIntegration) TableName() string { return "whatsapp_integraciones" }
