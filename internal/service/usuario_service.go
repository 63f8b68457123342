package service

import (
	"context"
	"fmt"

	"ceats/internal/dto"
	"ceats/internal/middleware"
	"ceats/internal/model"
	"ceats/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UsuarioService interface {
	Crear(ctx context.Context, claims *middleware.JWTClaims, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	Listar(ctx context.Context, claims *middleware.JWTClaims, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	Obtener(ctx context.Context, claims *middleware.JWTClaims, id string) (*dto.UsuarioResponse, error)
	Actualizar(ctx context.Context, claims *middleware.JWTClaims, id string, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	Eliminar(ctx context.Context, claims *middleware.JWTClaims, id string) error
	Reactivar(ctx context.Context, claims *middleware.JWTClaims, id string) (*dto.UsuarioResponse, error)
}

type usuarioService struct {
	repo         repository.UsuarioRepository
	sucursalRepo repository.SucursalRepository
}

func NewUsuarioService(repo repository.UsuarioRepository, sucursalRepo repository.SucursalRepository) UsuarioService {
	return &usuarioService{repo: repo, sucursalRepo: sucursalRepo}
}

func (s *usuarioService) Crear(ctx context.Context, claims *middleware.JWTClaims, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	restauranteID, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return nil, err
	}

	sucursalID, err := s.resolverSucursal(ctx, restauranteID, req.Rol, req.SucursalID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}

	user := &model.Usuario{
		Email:         req.Email,
		Nombre:        req.Nombre,
		Apellidos:     req.Apellidos,
		PasswordHash:  string(hash),
		Rol:           req.Rol,
		RestauranteID: restauranteID,
		SucursalID:    sucursalID,
		// Created by an already-verified admin; no mail round trip.
		EmailVerificado: true,
		Activo:          true,
	}
	if err := s.repo.Create(ctx, nil, user); err != nil {
		if esDuplicado(err) {
			return nil, fmt.Errorf("%w: ya existe un usuario con ese correo", ErrConflicto)
		}
		return nil, err
	}
	return usuarioToResponse(user), nil
}

func (s *usuarioService) Listar(ctx context.Context, claims *middleware.JWTClaims, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	restauranteID, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.ListByRestaurante(ctx, restauranteID, incluirInactivos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = *usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *usuarioService) Obtener(ctx context.Context, claims *middleware.JWTClaims, id string) (*dto.UsuarioResponse, error) {
	user, err := s.buscarPropio(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	return usuarioToResponse(user), nil
}

func (s *usuarioService) Actualizar(ctx context.Context, claims *middleware.JWTClaims, id string, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.buscarPropio(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	if req.Nombre != "" {
		user.Nombre = req.Nombre
	}
	if req.Apellidos != "" {
		user.Apellidos = req.Apellidos
	}
	if req.Rol != "" && req.Rol != user.Rol {
		sucursalID, err := s.resolverSucursal(ctx, user.RestauranteID, req.Rol, req.SucursalID)
		if err != nil {
			return nil, err
		}
		user.Rol = req.Rol
		user.SucursalID = sucursalID
	} else if req.SucursalID != nil {
		sucursalID, err := s.resolverSucursal(ctx, user.RestauranteID, user.Rol, req.SucursalID)
		if err != nil {
			return nil, err
		}
		user.SucursalID = sucursalID
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		user.PrimerLogin = false
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return usuarioToResponse(user), nil
}

func (s *usuarioService) Eliminar(ctx context.Context, claims *middleware.JWTClaims, id string) error {
	user, err := s.buscarPropio(ctx, claims, id)
	if err != nil {
		return err
	}
	if user.ID.String() == claims.UsuarioID {
		return fmt.Errorf("%w: no puede eliminar su propia cuenta", ErrValidacion)
	}
	return s.repo.SoftDelete(ctx, user.ID)
}

func (s *usuarioService) Reactivar(ctx context.Context, claims *middleware.JWTClaims, id string) (*dto.UsuarioResponse, error) {
	user, err := s.buscarPropio(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Reactivar(ctx, user.ID); err != nil {
		return nil, err
	}
	user.Activo = true
	return usuarioToResponse(user), nil
}

// resolverSucursal enforces the role/branch pairing rule: admins are
// restaurant-wide (no sucursal), everyone else needs one, and it must belong
// to the caller's restaurante.
func (s *usuarioService) resolverSucursal(ctx context.Context, restauranteID uuid.UUID, rol string, sucursalID *string) (*uuid.UUID, error) {
	if rol == model.RolAdmin {
		if sucursalID != nil {
			return nil, fmt.Errorf("%w: un admin no se asigna a una sucursal", ErrValidacion)
		}
		return nil, nil
	}
	if sucursalID == nil {
		return nil, fmt.Errorf("%w: el rol %s requiere una sucursal", ErrValidacion, rol)
	}
	id, err := parseUUID(*sucursalID)
	if err != nil {
		return nil, err
	}
	suc, err := s.sucursalRepo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, fmt.Errorf("%w: sucursal", ErrNoEncontrado)
		}
		return nil, err
	}
	if suc.RestauranteID != restauranteID {
		return nil, fmt.Errorf("%w: la sucursal pertenece a otro restaurante", ErrNoAutorizado)
	}
	return &id, nil
}

// buscarPropio loads the user and confirms it belongs to the caller's tenant.
func (s *usuarioService) buscarPropio(ctx context.Context, claims *middleware.JWTClaims, id string) (*model.Usuario, error) {
	usuarioID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, usuarioID)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, fmt.Errorf("%w: usuario", ErrNoEncontrado)
		}
		return nil, err
	}
	if user.RestauranteID.String() != claims.RestauranteID {
		// 404 over 403 so the existence of foreign users leaks nothing.
		return nil, fmt.Errorf("%w: usuario", ErrNoEncontrado)
	}
	return user, nil
}

func usuarioToResponse(u *model.Usuario) *dto.UsuarioResponse {
	var sucID *string
	if u.SucursalID != nil {
		s := u.SucursalID.String()
		sucID = &s
	}
	return &dto.UsuarioResponse{
		ID:              u.ID.String(),
		Email:           u.Email,
		Nombre:          u.Nombre,
		Apellidos:       u.Apellidos,
		Rol:             u.Rol,
		RestauranteID:   u.RestauranteID.String(),
		SucursalID:      sucID,
		EmailVerificado: u.EmailVerificado,
		Activo:          u.Activo,
		PrimerLogin:     u.PrimerLogin,
	}
}
