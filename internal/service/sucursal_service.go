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

type SucursalService interface {
	Crear(ctx context.Context, claims *middleware.JWTClaims, req dto.CrearSucursalRequest) (*dto.SucursalResponse, error)
	Listar(ctx context.Context, claims *middleware.JWTClaims) ([]dto.SucursalResponse, error)
	Obtener(ctx context.Context, claims *middleware.JWTClaims, id string) (*dto.SucursalResponse, error)
	Actualizar(ctx context.Context, claims *middleware.JWTClaims, id string, req dto.ActualizarSucursalRequest) (*dto.SucursalResponse, error)
	// Verificar consumes the emailed 6-digit code: marks the branch verified
	// and auto-creates its empleado account (code reused as temp password).
	Verificar(ctx context.Context, id string, req dto.VerificarSucursalRequest) (*dto.VerificarSucursalResponse, error)
	// Eliminar soft-deletes; blocked while active users reference the branch.
	Eliminar(ctx context.Context, claims *middleware.JWTClaims, id string) error
}

type sucursalService struct {
	repo        repository.SucursalRepository
	usuarioRepo repository.UsuarioRepository
	db          *gorm.DB
	dispatcher  *worker.Dispatcher
	cfg         *config.Config
}

func NewSucursalService(
	repo repository.SucursalRepository,
	usuarioRepo repository.UsuarioRepository,
	db *gorm.DB,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) SucursalService {
	return &sucursalService{
		repo:        repo,
		usuarioRepo: usuarioRepo,
		db:          db,
		dispatcher:  dispatcher,
		cfg:         cfg,
	}
}

func (s *sucursalService) Crear(ctx context.Context, claims *middleware.JWTClaims, req dto.CrearSucursalRequest) (*dto.SucursalResponse, error) {
	restauranteID, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return nil, err
	}

	codigo, err := generarCodigo()
	if err != nil {
		return nil, err
	}
	expira := time.Now().Add(time.Duration(s.cfg.CodigoTTLHoras) * time.Hour)

	suc := &model.Sucursal{
		RestauranteID:      restauranteID,
		Nombre:             req.Nombre,
		Email:              req.Email,
		Telefono:           req.Telefono,
		Direccion:          req.Direccion,
		Ciudad:             req.Ciudad,
		Verificada:         false,
		Activa:             true,
		CodigoVerificacion: &codigo,
		CodigoExpira:       &expira,
	}
	if err := s.repo.Create(ctx, suc); err != nil {
		if esDuplicado(err) {
			return nil, fmt.Errorf("%w: sucursal duplicada", ErrConflicto)
		}
		return nil, err
	}

	emailJob := worker.EmailJobPayload{ToEmail: suc.Email, Destino: suc.Nombre, Codigo: codigo}
	if err := s.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", suc.Email).Msg("sucursal: no se pudo encolar el correo de verificacion")
	}

	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Listar(ctx context.Context, claims *middleware.JWTClaims) ([]dto.SucursalResponse, error) {
	restauranteID, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return nil, err
	}
	sucursales, err := s.repo.ListByRestaurante(ctx, restauranteID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SucursalResponse, len(sucursales))
	for i := range sucursales {
		resp[i] = *sucursalToResponse(&sucursales[i])
	}
	return resp, nil
}

func (s *sucursalService) Obtener(ctx context.Context, claims *middleware.JWTClaims, id string) (*dto.SucursalResponse, error) {
	suc, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := autorizarSucursal(claims, suc); err != nil {
		return nil, err
	}
	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Actualizar(ctx context.Context, claims *middleware.JWTClaims, id string, req dto.ActualizarSucursalRequest) (*dto.SucursalResponse, error) {
	suc, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := autorizarRestaurante(claims, suc.RestauranteID.String()); err != nil {
		return nil, err
	}

	if req.Nombre != "" {
		suc.Nombre = req.Nombre
	}
	if req.Telefono != nil {
		suc.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		suc.Direccion = req.Direccion
	}
	if req.Ciudad != nil {
		suc.Ciudad = req.Ciudad
	}
	if err := s.repo.Update(ctx, suc); err != nil {
		return nil, err
	}
	return sucursalToResponse(suc), nil
}

func (s *sucursalService) Verificar(ctx context.Context, id string, req dto.VerificarSucursalRequest) (*dto.VerificarSucursalResponse, error) {
	suc, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if suc.Verificada {
		return nil, fmt.Errorf("%w: la sucursal ya fue verificada", ErrValidacion)
	}
	if suc.CodigoVerificacion == nil || suc.CodigoExpira == nil {
		return nil, fmt.Errorf("%w: no hay codigo de verificacion pendiente", ErrValidacion)
	}
	if time.Now().After(*suc.CodigoExpira) {
		return nil, fmt.Errorf("%w: el codigo ha expirado", ErrValidacion)
	}
	if *suc.CodigoVerificacion != req.Codigo {
		return nil, fmt.Errorf("%w: codigo incorrecto", ErrValidacion)
	}

	// The code doubles as the empleado's temp password.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Codigo), 12)
	if err != nil {
		return nil, err
	}

	sucursalID := suc.ID
	empleado := &model.Usuario{
		Email:           suc.Email,
		Nombre:          suc.Nombre,
		Apellidos:       "Sucursal",
		PasswordHash:    string(hash),
		Rol:             model.RolEmpleado,
		RestauranteID:   suc.RestauranteID,
		SucursalID:      &sucursalID,
		EmailVerificado: true, // the code arrived at this very address
		Activo:          true,
		PrimerLogin:     true,
	}

	suc.Verificada = true
	suc.CodigoVerificacion = nil
	suc.CodigoExpira = nil

	// Branch flip + account creation are one atomic step.
	txErr := runTx(ctx, s.db, func(tx *gorm.DB) error {
		db := tx
		if db == nil {
			if err := s.repo.Update(ctx, suc); err != nil {
				return err
			}
			return s.usuarioRepo.Create(ctx, nil, empleado)
		}
		if err := db.WithContext(ctx).Save(suc).Error; err != nil {
			return err
		}
		return s.usuarioRepo.Create(ctx, db, empleado)
	})
	if txErr != nil {
		if esDuplicado(txErr) {
			return nil, fmt.Errorf("%w: ya existe un usuario con el correo de la sucursal", ErrConflicto)
		}
		return nil, txErr
	}

	return &dto.VerificarSucursalResponse{
		Success:      true,
		Sucursal:     *sucursalToResponse(suc),
		EmpleadoID:   empleado.ID.String(),
		EmpleadoMail: empleado.Email,
		Mensaje:      "Sucursal verificada. Se creo una cuenta de empleado con el codigo como contraseña temporal.",
	}, nil
}

func (s *sucursalService) Eliminar(ctx context.Context, claims *middleware.JWTClaims, id string) error {
	suc, err := s.buscar(ctx, id)
	if err != nil {
		return err
	}
	if err := autorizarRestaurante(claims, suc.RestauranteID.String()); err != nil {
		return err
	}

	activos, err := s.repo.CountUsuariosActivos(ctx, suc.ID)
	if err != nil {
		return err
	}
	if activos > 0 {
		return fmt.Errorf("%w: la sucursal tiene %d usuarios activos", ErrConflicto, activos)
	}
	return s.repo.SoftDelete(ctx, suc.ID)
}

func (s *sucursalService) buscar(ctx context.Context, id string) (*model.Sucursal, error) {
	sucursalID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	suc, err := s.repo.FindByID(ctx, sucursalID)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, fmt.Errorf("%w: sucursal", ErrNoEncontrado)
		}
		return nil, err
	}
	return suc, nil
}

func sucursalToResponse(s *model.Sucursal) *dto.SucursalResponse {
	return &dto.SucursalResponse{
		ID:            s.ID.String(),
		RestauranteID: s.RestauranteID.String(),
		Nombre:        s.Nombre,
		Email:         s.Email,
		Telefono:      s.Telefono,
		Direccion:     s.Direccion,
		Ciudad:        s.Ciudad,
		Verificada:    s.Verificada,
		Activa:        s.Activa,
	}
}
