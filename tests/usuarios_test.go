package tests

import (
	"context"
	"testing"
	"time"

	"ceats/internal/dto"
	"ceats/internal/middleware"
	"ceats/internal/model"
	"ceats/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usuarioFixture struct {
	svc           service.UsuarioService
	repo          *stubUsuarioRepo
	restauranteID uuid.UUID
	sucursal      *model.Sucursal
}

func newUsuarioFixture() *usuarioFixture {
	repo := newStubUsuarioRepo()
	sucRepo := newStubSucursalRepo()
	restauranteID := uuid.New()
	suc := seedSucursalPendiente(sucRepo, restauranteID, "483920", time.Now().Add(time.Hour))
	suc.Verificada = true
	return &usuarioFixture{
		svc:           service.NewUsuarioService(repo, sucRepo),
		repo:          repo,
		restauranteID: restauranteID,
		sucursal:      suc,
	}
}

func crearUsuarioRequest(rol string, sucursalID *string) dto.CrearUsuarioRequest {
	return dto.CrearUsuarioRequest{
		Email: "nuevo@tesoro.mx", Nombre: "Pedro", Apellidos: "Ramirez",
		Password: "clave-segura-1", Rol: rol, SucursalID: sucursalID,
	}
}

func TestCrearUsuario_AdminSinSucursal(t *testing.T) {
	f := newUsuarioFixture()

	// An admin with a branch assignment is rejected.
	sucID := f.sucursal.ID.String()
	_, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID),
		crearUsuarioRequest(model.RolAdmin, &sucID))
	assert.ErrorIs(t, err, service.ErrValidacion)

	resp, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID),
		crearUsuarioRequest(model.RolAdmin, nil))
	require.NoError(t, err)
	assert.Nil(t, resp.SucursalID)
	assert.True(t, resp.EmailVerificado, "admin-created accounts skip the mail round trip")
}

func TestCrearUsuario_EmpleadoRequiereSucursal(t *testing.T) {
	f := newUsuarioFixture()

	_, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID),
		crearUsuarioRequest(model.RolEmpleado, nil))
	assert.ErrorIs(t, err, service.ErrValidacion)

	sucID := f.sucursal.ID.String()
	resp, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID),
		crearUsuarioRequest(model.RolEmpleado, &sucID))
	require.NoError(t, err)
	require.NotNil(t, resp.SucursalID)
	assert.Equal(t, sucID, *resp.SucursalID)
}

func TestCrearUsuario_SucursalDeOtroRestaurante(t *testing.T) {
	f := newUsuarioFixture()

	sucID := f.sucursal.ID.String()
	_, err := f.svc.Crear(context.Background(), adminClaims(uuid.New()),
		crearUsuarioRequest(model.RolGerente, &sucID))
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestObtenerUsuario_OtroTenantDevuelve404(t *testing.T) {
	f := newUsuarioFixture()
	u := seedUsuario(t, f.repo, "ajeno@tesoro.mx", "clave-segura-1", f.restauranteID,
		seedOpts{verificado: true})

	_, err := f.svc.Obtener(context.Background(), adminClaims(uuid.New()), u.ID.String())
	assert.ErrorIs(t, err, service.ErrNoEncontrado)

	_, err = f.svc.Obtener(context.Background(), adminClaims(f.restauranteID), u.ID.String())
	assert.NoError(t, err)
}

func TestEliminarUsuario_PropiaCuentaBloqueada(t *testing.T) {
	f := newUsuarioFixture()
	u := seedUsuario(t, f.repo, "admin@tesoro.mx", "clave-segura-1", f.restauranteID,
		seedOpts{verificado: true})

	claims := &middleware.JWTClaims{
		UsuarioID: u.ID.String(), Email: u.Email, Rol: model.RolAdmin,
		RestauranteID: f.restauranteID.String(),
	}
	err := f.svc.Eliminar(context.Background(), claims, u.ID.String())
	assert.ErrorIs(t, err, service.ErrValidacion)
	assert.True(t, u.Activo)

	// Another admin of the same restaurant can.
	err = f.svc.Eliminar(context.Background(), adminClaims(f.restauranteID), u.ID.String())
	assert.NoError(t, err)
	assert.False(t, u.Activo)
}

func TestReactivarUsuario(t *testing.T) {
	f := newUsuarioFixture()
	u := seedUsuario(t, f.repo, "baja@tesoro.mx", "clave-segura-1", f.restauranteID,
		seedOpts{verificado: true})
	u.Activo = false

	resp, err := f.svc.Reactivar(context.Background(), adminClaims(f.restauranteID), u.ID.String())
	require.NoError(t, err)
	assert.True(t, resp.Activo)

	listado, err := f.svc.Listar(context.Background(), adminClaims(f.restauranteID), false)
	require.NoError(t, err)
	assert.Len(t, listado, 1)
}

func TestActualizarUsuario_PasswordLiberaPrimerLogin(t *testing.T) {
	f := newUsuarioFixture()
	sucID := f.sucursal.ID
	u := seedUsuario(t, f.repo, "empleado@tesoro.mx", "483920", f.restauranteID,
		seedOpts{verificado: true, primerLogin: true, rol: model.RolEmpleado, sucursalID: &sucID})

	resp, err := f.svc.Actualizar(context.Background(), adminClaims(f.restauranteID),
		u.ID.String(), dto.ActualizarUsuarioRequest{Password: "clave-definitiva-1"})
	require.NoError(t, err)
	assert.False(t, resp.PrimerLogin)
}
