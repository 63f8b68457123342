package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Known estados. The column tolerates free text (legacy clients send their
// own labels) but these are the ones the order board drives.
const (
	EstadoPendiente  = "Pendiente"
	EstadoPreparando = "Preparando"
	EstadoListo      = "Listo"
	EstadoCompletado = "Completado"
	EstadoCancelado  = "Cancelado"
)

// Delivery types for a pedido.
const (
	EntregaDomicilio = "domicilio"
	EntregaRecoger   = "recoger"
)

// Pedido is a customer order scoped to a sucursal. Codigo is the
// caller-supplied business key (unique platform-wide); it is what customers
// and the WhatsApp confirmation reference, never the UUID.
type Pedido struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo     string    `gorm:"uniqueIndex;not null"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;index"`
	Estado     string    `gorm:"type:varchar(30);not null;default:'Pendiente'"`

	// Customer
	Nombre  string `gorm:"not null"`
	Celular string `gorm:"not null"`

	// Detalle holds the serialized line items as sent by the client or
	// mapped from a WhatsApp order message.
	Detalle string          `gorm:"type:jsonb;not null"`
	Total   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Moneda  string          `gorm:"type:varchar(3);not null"`

	// TipoEntrega: "domicilio" requires Domicilio, "recoger" requires EntregarA.
	TipoEntrega   string  `gorm:"type:varchar(20);not null"`
	Domicilio     *string
	EntregarA     *string
	Instrucciones *string

	// Business date/time as captured by the ordering channel.
	Fecha string `gorm:"type:varchar(10);not null"`
	Hora  string `gorm:"type:varchar(8);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
}

func (Pedido) TableName() string { return "pedidos" }

// EsTerminal reports whether the estado admits no further transitions.
func EsTerminal(estado string) bool {
	return estado == EstadoCompletado || estado == EstadoCancelado
}
