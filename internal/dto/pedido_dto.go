package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearPedidoRequest is the single order-creation shape: the authenticated
// route binds it from JSON and the WhatsApp webhook builds it from an order
// message, so validation and defaulting cannot diverge.
type CrearPedidoRequest struct {
	Codigo  string `json:"codigo"  validate:"required,min=3,max=40"`
	// Estado is optional; empty defaults to "Pendiente".
	Estado  string `json:"estado"  validate:"omitempty,min=1,max=30"`
	Nombre  string `json:"nombre"  validate:"required,min=2,max=120"`
	Celular string `json:"celular" validate:"required,min=7,max=20"`

	// Pedido carries the serialized line items, stored as-is (jsonb).
	Pedido json.RawMessage `json:"pedido" validate:"required"`

	Total  decimal.Decimal `json:"total"  validate:"required"`
	Moneda string          `json:"moneda" validate:"required,len=3,uppercase"`

	Fecha string `json:"fecha" validate:"required,datetime=2006-01-02"`
	Hora  string `json:"hora"  validate:"required"`

	TipoEntrega string `json:"deliver_or_rest" validate:"required,oneof=domicilio recoger"`
	// Domicilio is required when TipoEntrega=domicilio, EntregarA when
	// =recoger; the conditional rule is enforced by the service.
	Domicilio     *string `json:"domicilio"       validate:"omitempty,max=250"`
	EntregarA     *string `json:"entregar_a"      validate:"omitempty,max=120"`
	Instrucciones *string `json:"instrucciones"   validate:"omitempty,max=500"`
}

type ActualizarEstadoRequest struct {
	Estado string `json:"estado" validate:"required,min=1,max=30"`
	// Motivo accompanies cancellations; it is logged, not persisted.
	Motivo *string `json:"motivo" validate:"omitempty,max=300"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PedidoResponse struct {
	ID            string          `json:"pedido_id"`
	Codigo        string          `json:"codigo"`
	SucursalID    string          `json:"sucursal_id"`
	Estado        string          `json:"estado"`
	Nombre        string          `json:"nombre"`
	Celular       string          `json:"celular"`
	Pedido        json.RawMessage `json:"pedido"`
	Total         decimal.Decimal `json:"total"`
	Moneda        string          `json:"moneda"`
	TipoEntrega   string          `json:"deliver_or_rest"`
	Domicilio     *string         `json:"domicilio,omitempty"`
	EntregarA     *string         `json:"entregar_a,omitempty"`
	Instrucciones *string         `json:"instrucciones,omitempty"`
	Fecha         string          `json:"fecha"`
	Hora          string          `json:"hora"`
	CreatedAt     string          `json:"created_at"`
}

// PedidoListItem adds the branch name for the admin-wide listing
// (GET /api/pedidos.json).
type PedidoListItem struct {
	PedidoResponse
	SucursalNombre string `json:"sucursal_nombre"`
}
