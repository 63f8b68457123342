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

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	CambiarPassword(ctx context.Context, req dto.CambiarPasswordRequest) error
	VerificarEmail(ctx context.Context, req dto.VerificarEmailRequest) error
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrCredenciales
	}

	// Unverified accounts never get a session, password correctness aside,
	// so this check runs before the compare.
	if !user.EmailVerificado {
		return nil, ErrEmailNoVerificado
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}

	resp := &dto.LoginResponse{
		Success:       true,
		UsuarioID:     user.ID.String(),
		Email:         user.Email,
		Rol:           user.Rol,
		RestauranteID: user.RestauranteID.String(),
		SucursalID:    sucursalIDString(user),
		Nombre:        user.Nombre,
		Apellidos:     user.Apellidos,
	}

	// Temp-password accounts must change it before a token is issued.
	if user.PrimerLogin {
		resp.RequiereCambioPassword = true
		return resp, nil
	}

	token, err := s.generarToken(user)
	if err != nil {
		return nil, err
	}
	resp.Token = token
	return resp, nil
}

// CambiarPassword accepts the current temp or permanent password and installs
// the new one, clearing the first-login gate.
func (s *authService) CambiarPassword(ctx context.Context, req dto.CambiarPasswordRequest) error {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.PasswordActual)); err != nil {
		return ErrCredenciales
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PasswordNueva), 12)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.PrimerLogin = false
	return s.repo.Update(ctx, user)
}

func (s *authService) VerificarEmail(ctx context.Context, req dto.VerificarEmailRequest) error {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("%w: usuario", ErrNoEncontrado)
	}
	if user.EmailVerificado {
		return nil // idempotent
	}
	if user.CodigoVerificacion == nil || user.CodigoExpira == nil {
		return fmt.Errorf("%w: no hay codigo de verificacion pendiente", ErrValidacion)
	}
	if time.Now().After(*user.CodigoExpira) {
		return fmt.Errorf("%w: el codigo ha expirado", ErrValidacion)
	}
	if *user.CodigoVerificacion != req.Codigo {
		return fmt.Errorf("%w: codigo incorrecto", ErrValidacion)
	}

	user.EmailVerificado = true
	user.CodigoVerificacion = nil
	user.CodigoExpira = nil
	return s.repo.Update(ctx, user)
}

func (s *authService) generarToken(user *model.Usuario) (string, error) {
	now := time.Now()
	claims := middleware.JWTClaims{
		UsuarioID:     user.ID.String(),
		Email:         user.Email,
		Rol:           user.Rol,
		RestauranteID: user.RestauranteID.String(),
		SucursalID:    sucursalIDString(user),
		Nombre:        user.Nombre,
		Apellidos:     user.Apellidos,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func sucursalIDString(user *model.Usuario) *string {
	if user.SucursalID == nil {
		return nil
	}
	s := user.SucursalID.String()
	return &s
}
