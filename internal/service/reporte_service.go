package service

import (
	"context"
	"fmt"
	"time"

	"ceats/internal/infra"
	"ceats/internal/middleware"
	"ceats/internal/model"
	"ceats/internal/repository"
)

type ReporteService interface {
	// GenerarReportePedidos renders the orders PDF for the caller's restaurant
	// (optional fecha filter, YYYY-MM-DD) and returns the file path.
	GenerarReportePedidos(ctx context.Context, claims *middleware.JWTClaims, fecha string) (string, error)
}

type reporteService struct {
	pedidoRepo      repository.PedidoRepository
	restauranteRepo repository.RestauranteRepository
	storagePath     string
}

func NewReporteService(pedidoRepo repository.PedidoRepository, restauranteRepo repository.RestauranteRepository, storagePath string) ReporteService {
	return &reporteService{
		pedidoRepo:      pedidoRepo,
		restauranteRepo: restauranteRepo,
		storagePath:     storagePath,
	}
}

func (s *reporteService) GenerarReportePedidos(ctx context.Context, claims *middleware.JWTClaims, fecha string) (string, error) {
	if claims.Rol != model.RolAdmin {
		return "", fmt.Errorf("%w: solo un admin puede generar reportes", ErrNoAutorizado)
	}
	restauranteID, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return "", err
	}
	if fecha != "" {
		if _, err := time.Parse("2006-01-02", fecha); err != nil {
			return "", fmt.Errorf("%w: fecha debe ser YYYY-MM-DD", ErrValidacion)
		}
	}

	rest, err := s.restauranteRepo.FindByID(ctx, restauranteID)
	if err != nil {
		return "", fmt.Errorf("%w: restaurante", ErrNoEncontrado)
	}
	pedidos, err := s.pedidoRepo.ListByRestaurante(ctx, restauranteID, fecha)
	if err != nil {
		return "", err
	}
	return infra.GenerateReportePedidosPDF(rest.Nombre, fecha, pedidos, s.storagePath)
}
