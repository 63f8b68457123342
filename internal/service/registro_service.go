package service

import (
	"context"
	"fmt"
	"time"

	"ceats/internal/config"
	"ceats/internal/dto"
	"ceats/internal/middleware"
	"ceats/internal/model"
	"ceats/internal/repository"
	"ceats/internal/worker"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegistroService interface {
	// RegistrarRestaurantero creates the restaurante and its admin user
	// atomically and mails the admin a verification code.
	RegistrarRestaurantero(ctx context.Context, req dto.RegistroRestauranteroRequest) (*dto.RegistroRestauranteroResponse, error)
	ObtenerRestaurante(ctx context.Context, claims *middleware.JWTClaims) (*dto.RestauranteResponse, error)
	ActualizarRestaurante(ctx context.Context, claims *middleware.JWTClaims, req dto.ActualizarRestauranteRequest) (*dto.RestauranteResponse, error)
	EliminarRestaurante(ctx context.Context, claims *middleware.JWTClaims) error
}

type registroService struct {
	restauranteRepo repository.RestauranteRepository
	usuarioRepo     repository.UsuarioRepository
	dispatcher      *worker.Dispatcher
	cfg             *config.Config
}

func NewRegistroService(
	restauranteRepo repository.RestauranteRepository,
	usuarioRepo repository.UsuarioRepository,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) RegistroService {
	return &registroService{
		restauranteRepo: restauranteRepo,
		usuarioRepo:     usuarioRepo,
		dispatcher:      dispatcher,
		cfg:             cfg,
	}
}

func (s *registroService) RegistrarRestaurantero(ctx context.Context, req dto.RegistroRestauranteroRequest) (*dto.RegistroRestauranteroResponse, error) {
	// Pre-flight duplicate check for a friendly 409; the unique indexes
	// still back this up under races.
	if _, err := s.usuarioRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: ya existe un usuario con ese correo", ErrConflicto)
	}

	codigo, err := generarCodigo()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	expira := time.Now().Add(time.Duration(s.cfg.CodigoTTLHoras) * time.Hour)

	restaurante := &model.Restaurante{
		Nombre:      req.NombreRestaurante,
		RazonSocial: req.RazonSocial,
		Email:       req.EmailRestaurante,
		Telefono:    req.Telefono,
		Direccion:   req.Direccion,
		Activo:      true,
	}
	admin := &model.Usuario{
		Email:              req.Email,
		Nombre:             req.Nombre,
		Apellidos:          req.Apellidos,
		PasswordHash:       string(hash),
		Rol:                model.RolAdmin,
		SucursalID:         nil, // admins are restaurant-wide
		Activo:             true,
		EmailVerificado:    false,
		CodigoVerificacion: &codigo,
		CodigoExpira:       &expira,
	}

	// Restaurante + admin must exist together or not at all.
	txErr := runTx(ctx, s.restauranteRepo.DB(), func(tx *gorm.DB) error {
		if err := s.restauranteRepo.Create(ctx, tx, restaurante); err != nil {
			return err
		}
		admin.RestauranteID = restaurante.ID
		return s.usuarioRepo.Create(ctx, tx, admin)
	})
	if txErr != nil {
		if esDuplicado(txErr) {
			return nil, fmt.Errorf("%w: ya existe un registro con ese correo", ErrConflicto)
		}
		return nil, txErr
	}

	// Verification mail is best-effort: the registration already succeeded.
	emailJob := worker.EmailJobPayload{ToEmail: admin.Email, Destino: admin.Nombre, Codigo: codigo}
	if err := s.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", admin.Email).Msg("registro: no se pudo encolar el correo de verificacion")
	}

	return &dto.RegistroRestauranteroResponse{
		Success:       true,
		RestauranteID: restaurante.ID.String(),
		UsuarioID:     admin.ID.String(),
		Mensaje:       "Registro exitoso. Revisa tu correo para verificar la cuenta.",
	}, nil
}

func (s *registroService) ObtenerRestaurante(ctx context.Context, claims *middleware.JWTClaims) (*dto.RestauranteResponse, error) {
	rest, err := s.buscarPropio(ctx, claims)
	if err != nil {
		return nil, err
	}
	return restauranteToResponse(rest), nil
}

func (s *registroService) ActualizarRestaurante(ctx context.Context, claims *middleware.JWTClaims, req dto.ActualizarRestauranteRequest) (*dto.RestauranteResponse, error) {
	rest, err := s.buscarPropio(ctx, claims)
	if err != nil {
		return nil, err
	}
	if req.Nombre != "" {
		rest.Nombre = req.Nombre
	}
	if req.RazonSocial != nil {
		rest.RazonSocial = req.RazonSocial
	}
	if req.Telefono != nil {
		rest.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		rest.Direccion = req.Direccion
	}
	if err := s.restauranteRepo.Update(ctx, rest); err != nil {
		return nil, err
	}
	return restauranteToResponse(rest), nil
}

// EliminarRestaurante is a soft delete; pedidos and sucursales stay queryable
// for audit.
func (s *registroService) EliminarRestaurante(ctx context.Context, claims *middleware.JWTClaims) error {
	rest, err := s.buscarPropio(ctx, claims)
	if err != nil {
		return err
	}
	return s.restauranteRepo.SoftDelete(ctx, rest.ID)
}

func (s *registroService) buscarPropio(ctx context.Context, claims *middleware.JWTClaims) (*model.Restaurante, error) {
	id, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return nil, fmt.Errorf("%w: restaurante", ErrNoEncontrado)
	}
	rest, err := s.restauranteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: restaurante", ErrNoEncontrado)
	}
	return rest, nil
}

func restauranteToResponse(r *model.Restaurante) *dto.RestauranteResponse {
	return &dto.RestauranteResponse{
		ID:          r.ID.String(),
		Nombre:      r.Nombre,
		RazonSocial: r.RazonSocial,
		Email:       r.Email,
		Telefono:    r.Telefono,
		Direccion:   r.Direccion,
		Activo:      r.Activo,
	}
}
