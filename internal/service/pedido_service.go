package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ceats/internal/dto"
	"ceats/internal/middleware"
	"ceats/internal/model"
	"ceats/internal/repository"
	"ceats/internal/ws"

	"github.com/rs/zerolog/log"
)

type PedidoService interface {
	// Crear is the single order-creation path: the authenticated route and the
	// WhatsApp webhook both land here. Webhook callers pass nil claims — they
	// already resolved the sucursal through the phone-number mapping.
	Crear(ctx context.Context, claims *middleware.JWTClaims, sucursalID string, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	ObtenerPorCodigo(ctx context.Context, claims *middleware.JWTClaims, codigo string) (*dto.PedidoResponse, error)
	ListarPorSucursal(ctx context.Context, claims *middleware.JWTClaims, sucursalID string) ([]dto.PedidoResponse, error)
	ListarPorRestaurante(ctx context.Context, claims *middleware.JWTClaims, fecha string) ([]dto.PedidoListItem, error)
	ActualizarEstado(ctx context.Context, claims *middleware.JWTClaims, codigo string, req dto.ActualizarEstadoRequest) (*dto.PedidoResponse, error)
	Eliminar(ctx context.Context, claims *middleware.JWTClaims, codigo string) error
}

type pedidoService struct {
	repo         repository.PedidoRepository
	sucursalRepo repository.SucursalRepository
	hub          *ws.Hub
}

func NewPedidoService(repo repository.PedidoRepository, sucursalRepo repository.SucursalRepository, hub *ws.Hub) PedidoService {
	return &pedidoService{repo: repo, sucursalRepo: sucursalRepo, hub: hub}
}

func (s *pedidoService) Crear(ctx context.Context, claims *middleware.JWTClaims, sucursalID string, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	// Tag validation runs here, not only in the handler, so webhook-built
	// requests pass through the exact same rule set.
	if err := dto.Validar(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidacion, err)
	}

	suc, err := s.buscarSucursal(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	if err := autorizarSucursal(claims, suc); err != nil {
		return nil, err
	}

	// Conditional delivery fields: exactly the one matching the tipo is
	// required, the other is ignored if present.
	switch req.TipoEntrega {
	case model.EntregaDomicilio:
		if req.Domicilio == nil || *req.Domicilio == "" {
			return nil, fmt.Errorf("%w: domicilio es obligatorio para entrega a domicilio", ErrValidacion)
		}
	case model.EntregaRecoger:
		if req.EntregarA == nil || *req.EntregarA == "" {
			return nil, fmt.Errorf("%w: entregar_a es obligatorio para recoger", ErrValidacion)
		}
	}

	estado := req.Estado
	if estado == "" {
		estado = model.EstadoPendiente
	}

	pedido := &model.Pedido{
		Codigo:        req.Codigo,
		SucursalID:    suc.ID,
		Estado:        estado,
		Nombre:        req.Nombre,
		Celular:       req.Celular,
		Detalle:       string(req.Pedido),
		Total:         req.Total,
		Moneda:        req.Moneda,
		TipoEntrega:   req.TipoEntrega,
		Domicilio:     req.Domicilio,
		EntregarA:     req.EntregarA,
		Instrucciones: req.Instrucciones,
		Fecha:         req.Fecha,
		Hora:          req.Hora,
	}
	if err := s.repo.Create(ctx, pedido); err != nil {
		if esDuplicado(err) {
			return nil, fmt.Errorf("%w: ya existe un pedido con el codigo %s", ErrConflicto, req.Codigo)
		}
		return nil, err
	}

	resp := pedidoToResponse(pedido)
	s.hub.Broadcast(suc.RestauranteID.String(), ws.EventoPedidoCreado, resp)
	return resp, nil
}

func (s *pedidoService) ObtenerPorCodigo(ctx context.Context, claims *middleware.JWTClaims, codigo string) (*dto.PedidoResponse, error) {
	pedido, suc, err := s.buscarConSucursal(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if err := autorizarSucursal(claims, suc); err != nil {
		return nil, err
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) ListarPorSucursal(ctx context.Context, claims *middleware.JWTClaims, sucursalID string) ([]dto.PedidoResponse, error) {
	suc, err := s.buscarSucursal(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	if err := autorizarSucursal(claims, suc); err != nil {
		return nil, err
	}

	pedidos, err := s.repo.ListBySucursal(ctx, suc.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PedidoResponse, len(pedidos))
	for i := range pedidos {
		resp[i] = *pedidoToResponse(&pedidos[i])
	}
	return resp, nil
}

// ListarPorRestaurante is the admin-wide board: every branch, optional fecha
// filter (YYYY-MM-DD).
func (s *pedidoService) ListarPorRestaurante(ctx context.Context, claims *middleware.JWTClaims, fecha string) ([]dto.PedidoListItem, error) {
	if claims.Rol != model.RolAdmin {
		return nil, fmt.Errorf("%w: solo un admin puede listar todos los pedidos", ErrNoAutorizado)
	}
	restauranteID, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return nil, err
	}
	if fecha != "" {
		if _, err := time.Parse("2006-01-02", fecha); err != nil {
			return nil, fmt.Errorf("%w: fecha debe ser YYYY-MM-DD", ErrValidacion)
		}
	}

	rows, err := s.repo.ListByRestaurante(ctx, restauranteID, fecha)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PedidoListItem, len(rows))
	for i := range rows {
		resp[i] = dto.PedidoListItem{
			PedidoResponse: *pedidoToResponse(&rows[i].Pedido),
			SucursalNombre: rows[i].SucursalNombre,
		}
	}
	return resp, nil
}

func (s *pedidoService) ActualizarEstado(ctx context.Context, claims *middleware.JWTClaims, codigo string, req dto.ActualizarEstadoRequest) (*dto.PedidoResponse, error) {
	pedido, suc, err := s.buscarConSucursal(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if err := autorizarSucursal(claims, suc); err != nil {
		return nil, err
	}

	// Same-estado updates are a no-op success, so button double-clicks and
	// webhook retries cannot fail.
	if pedido.Estado == req.Estado {
		return pedidoToResponse(pedido), nil
	}
	if model.EsTerminal(pedido.Estado) {
		return nil, fmt.Errorf("%w: el pedido %s ya esta %s", ErrConflicto, codigo, pedido.Estado)
	}

	if err := s.repo.UpdateEstado(ctx, codigo, req.Estado); err != nil {
		return nil, err
	}
	pedido.Estado = req.Estado

	evt := log.Info().Str("codigo", codigo).Str("estado", req.Estado)
	if req.Motivo != nil {
		evt = evt.Str("motivo", *req.Motivo)
	}
	evt.Msg("pedido: estado actualizado")

	resp := pedidoToResponse(pedido)
	s.hub.Broadcast(suc.RestauranteID.String(), ws.EventoPedidoActualizado, resp)
	return resp, nil
}

func (s *pedidoService) Eliminar(ctx context.Context, claims *middleware.JWTClaims, codigo string) error {
	if claims.Rol != model.RolAdmin {
		return fmt.Errorf("%w: solo un admin puede eliminar pedidos", ErrNoAutorizado)
	}
	_, suc, err := s.buscarConSucursal(ctx, codigo)
	if err != nil {
		return err
	}
	if err := autorizarSucursal(claims, suc); err != nil {
		return err
	}
	return s.repo.Delete(ctx, codigo)
}

func (s *pedidoService) buscarSucursal(ctx context.Context, id string) (*model.Sucursal, error) {
	sucursalID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	suc, err := s.sucursalRepo.FindByID(ctx, sucursalID)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, fmt.Errorf("%w: sucursal", ErrNoEncontrado)
		}
		return nil, err
	}
	return suc, nil
}

func (s *pedidoService) buscarConSucursal(ctx context.Context, codigo string) (*model.Pedido, *model.Sucursal, error) {
	pedido, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, nil, fmt.Errorf("%w: pedido %s", ErrNoEncontrado, codigo)
		}
		return nil, nil, err
	}
	suc, err := s.sucursalRepo.FindByID(ctx, pedido.SucursalID)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, nil, fmt.Errorf("%w: sucursal del pedido", ErrNoEncontrado)
		}
		return nil, nil, err
	}
	return pedido, suc, nil
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	return &dto.PedidoResponse{
		ID:            p.ID.String(),
		Codigo:        p.Codigo,
		SucursalID:    p.SucursalID.String(),
		Estado:        p.Estado,
		Nombre:        p.Nombre,
		Celular:       p.Celular,
		Pedido:        json.RawMessage(p.Detalle),
		Total:         p.Total,
		Moneda:        p.Moneda,
		TipoEntrega:   p.TipoEntrega,
		Domicilio:     p.Domicilio,
		EntregarA:     p.EntregarA,
		Instrucciones: p.Instrucciones,
		Fecha:         p.Fecha,
		Hora:          p.Hora,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
