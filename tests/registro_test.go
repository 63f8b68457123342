package tests

import (
	"context"
	"strings"
	"testing"

	"ceats/internal/dto"
	"ceats/internal/model"
	"ceats/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory RestauranteRepository stub ─────────────────────────────────────

type stubRestauranteRepo struct {
	restaurantes map[uuid.UUID]*model.Restaurante
}

func newStubRestauranteRepo() *stubRestauranteRepo {
	return &stubRestauranteRepo{restaurantes: make(map[uuid.UUID]*model.Restaurante)}
}

func (r *stubRestauranteRepo) Create(_ context.Context, _ *gorm.DB, rest *model.Restaurante) error {
	for _, existing := range r.restaurantes {
		if strings.EqualFold(existing.Email, rest.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if rest.ID == uuid.Nil {
		rest.ID = uuid.New()
	}
	r.restaurantes[rest.ID] = rest
	return nil
}

func (r *stubRestauranteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Restaurante, error) {
	rest, ok := r.restaurantes[id]
	if !ok || !rest.Activo {
		return nil, gorm.ErrRecordNotFound
	}
	return rest, nil
}

func (r *stubRestauranteRepo) FindByEmail(_ context.Context, email string) (*model.Restaurante, error) {
	for _, rest := range r.restaurantes {
		if strings.EqualFold(rest.Email, email) {
			return rest, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRestauranteRepo) Update(_ context.Context, rest *model.Restaurante) error {
	r.restaurantes[rest.ID] = rest
	return nil
}

func (r *stubRestauranteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	rest, ok := r.restaurantes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rest.Activo = false
	return nil
}

func (r *stubRestauranteRepo) DB() *gorm.DB { return nil }

// ── Tests: RegistrarRestaurantero ────────────────────────────────────────────

func registroRequest() dto.RegistroRestauranteroRequest {
	return dto.RegistroRestauranteroRequest{
		NombreRestaurante: "Tacos El Tesoro",
		EmailRestaurante:  "contacto@tesoro.mx",
		Nombre:            "Maria",
		Apellidos:         "Lopez",
		Email:             "maria@tesoro.mx",
		Password:          "clave-segura-1",
	}
}

func TestRegistrarRestaurantero_CreaRestauranteYAdmin(t *testing.T) {
	restRepo := newStubRestauranteRepo()
	userRepo := newStubUsuarioRepo()
	svc := service.NewRegistroService(restRepo, userRepo, nil, newTestCfg())

	resp, err := svc.RegistrarRestaurantero(context.Background(), registroRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RestauranteID)
	assert.NotEmpty(t, resp.UsuarioID)

	admin, err := userRepo.FindByEmail(context.Background(), "maria@tesoro.mx")
	require.NoError(t, err)
	assert.Equal(t, model.RolAdmin, admin.Rol)
	assert.Nil(t, admin.SucursalID, "admin is restaurant-wide")
	assert.False(t, admin.EmailVerificado)
	require.NotNil(t, admin.CodigoVerificacion)
	assert.Len(t, *admin.CodigoVerificacion, 6)
	assert.Equal(t, resp.RestauranteID, admin.RestauranteID.String())
}

func TestRegistrarRestaurantero_EmailDuplicado(t *testing.T) {
	restRepo := newStubRestauranteRepo()
	userRepo := newStubUsuarioRepo()
	svc := service.NewRegistroService(restRepo, userRepo, nil, newTestCfg())

	_, err := svc.RegistrarRestaurantero(context.Background(), registroRequest())
	require.NoError(t, err)

	_, err = svc.RegistrarRestaurantero(context.Background(), registroRequest())
	assert.ErrorIs(t, err, service.ErrConflicto)
}

func TestObtenerRestaurante_PropioTenant(t *testing.T) {
	restRepo := newStubRestauranteRepo()
	userRepo := newStubUsuarioRepo()
	svc := service.NewRegistroService(restRepo, userRepo, nil, newTestCfg())

	resp, err := svc.RegistrarRestaurantero(context.Background(), registroRequest())
	require.NoError(t, err)

	restauranteID := uuid.MustParse(resp.RestauranteID)
	got, err := svc.ObtenerRestaurante(context.Background(), adminClaims(restauranteID))
	require.NoError(t, err)
	assert.Equal(t, "Tacos El Tesoro", got.Nombre)

	// A claims set from another tenant sees nothing.
	_, err = svc.ObtenerRestaurante(context.Background(), adminClaims(uuid.New()))
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

func TestEliminarRestaurante_SoftDelete(t *testing.T) {
	restRepo := newStubRestauranteRepo()
	userRepo := newStubUsuarioRepo()
	svc := service.NewRegistroService(restRepo, userRepo, nil, newTestCfg())

	resp, err := svc.RegistrarRestaurantero(context.Background(), registroRequest())
	require.NoError(t, err)
	restauranteID := uuid.MustParse(resp.RestauranteID)

	require.NoError(t, svc.EliminarRestaurante(context.Background(), adminClaims(restauranteID)))

	_, err = svc.ObtenerRestaurante(context.Background(), adminClaims(restauranteID))
	assert.ErrorIs(t, err, service.ErrNoEncontrado, "soft-deleted tenant must not resolve")
}
