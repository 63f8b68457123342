package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"ceats/internal/dto"
	"ceats/internal/handler"
	"ceats/internal/middleware"
	"ceats/internal/model"
	"ceats/internal/repository"
	"ceats/internal/service"
	"ceats/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory PedidoRepository stub ──────────────────────────────────────────

type stubPedidoRepo struct {
	pedidos map[string]*model.Pedido // keyed by codigo
	// nombres lets ListByRestaurante resolve branch names without a join.
	sucursales *stubSucursalRepo
}

func newStubPedidoRepo(sucursales *stubSucursalRepo) *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[string]*model.Pedido), sucursales: sucursales}
}

func (r *stubPedidoRepo) Create(_ context.Context, p *model.Pedido) error {
	if _, ok := r.pedidos[p.Codigo]; ok {
		return gorm.ErrDuplicatedKey
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.pedidos[p.Codigo] = p
	return nil
}

func (r *stubPedidoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Pedido, error) {
	p, ok := r.pedidos[codigo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPedidoRepo) ListBySucursal(_ context.Context, sucursalID uuid.UUID) ([]model.Pedido, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		if p.SucursalID == sucursalID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPedidoRepo) ListByRestaurante(_ context.Context, restauranteID uuid.UUID, fecha string) ([]repository.PedidoConSucursal, error) {
	var out []repository.PedidoConSucursal
	for _, p := range r.pedidos {
		suc, ok := r.sucursales.sucursales[p.SucursalID]
		if !ok || suc.RestauranteID != restauranteID {
			continue
		}
		if fecha != "" && p.Fecha != fecha {
			continue
		}
		out = append(out, repository.PedidoConSucursal{Pedido: *p, SucursalNombre: suc.Nombre})
	}
	return out, nil
}

func (r *stubPedidoRepo) UpdateEstado(_ context.Context, codigo, estado string) error {
	p, ok := r.pedidos[codigo]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Estado = estado
	return nil
}

func (r *stubPedidoRepo) Delete(_ context.Context, codigo string) error {
	delete(r.pedidos, codigo)
	return nil
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

type pedidoFixture struct {
	svc           service.PedidoService
	repo          *stubPedidoRepo
	sucursalRepo  *stubSucursalRepo
	restauranteID uuid.UUID
	sucursal      *model.Sucursal
}

func newPedidoFixture() *pedidoFixture {
	sucRepo := newStubSucursalRepo()
	restauranteID := uuid.New()
	suc := &model.Sucursal{
		ID: uuid.New(), RestauranteID: restauranteID,
		Nombre: "Centro", Email: "centro@tesoro.mx",
		Verificada: true, Activa: true,
	}
	sucRepo.sucursales[suc.ID] = suc

	repo := newStubPedidoRepo(sucRepo)
	return &pedidoFixture{
		svc:           service.NewPedidoService(repo, sucRepo, ws.NewHub()),
		repo:          repo,
		sucursalRepo:  sucRepo,
		restauranteID: restauranteID,
		sucursal:      suc,
	}
}

func domicilio(s string) *string { return &s }

func pedidoRequest(codigo string) dto.CrearPedidoRequest {
	return dto.CrearPedidoRequest{
		Codigo:      codigo,
		Nombre:      "Juan Perez",
		Celular:     "5215550001",
		Pedido:      json.RawMessage(`[{"nombre":"Taco pastor","cantidad":3}]`),
		Total:       decimal.RequireFromString("145.50"),
		Moneda:      "MXN",
		Fecha:       "2026-08-31",
		Hora:        "13:45:00",
		TipoEntrega: model.EntregaDomicilio,
		Domicilio:   domicilio("Av. Reforma 123"),
	}
}

// ── Tests: Crear ─────────────────────────────────────────────────────────────

func TestCrearPedido_EstadoPorDefecto(t *testing.T) {
	f := newPedidoFixture()

	resp, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID), f.sucursal.ID.String(), pedidoRequest("PED-001"))
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, resp.Estado)
	assert.Equal(t, "PED-001", resp.Codigo)
	assert.Equal(t, f.sucursal.ID.String(), resp.SucursalID)
}

func TestCrearPedido_CodigoDuplicado(t *testing.T) {
	f := newPedidoFixture()
	claims := adminClaims(f.restauranteID)

	_, err := f.svc.Crear(context.Background(), claims, f.sucursal.ID.String(), pedidoRequest("PED-001"))
	require.NoError(t, err)

	_, err = f.svc.Crear(context.Background(), claims, f.sucursal.ID.String(), pedidoRequest("PED-001"))
	assert.ErrorIs(t, err, service.ErrConflicto)
}

func TestCrearPedido_DomicilioObligatorio(t *testing.T) {
	f := newPedidoFixture()
	req := pedidoRequest("PED-002")
	req.Domicilio = nil

	_, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID), f.sucursal.ID.String(), req)
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestCrearPedido_EntregarAObligatorioAlRecoger(t *testing.T) {
	f := newPedidoFixture()
	req := pedidoRequest("PED-003")
	req.TipoEntrega = model.EntregaRecoger
	req.Domicilio = nil

	_, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID), f.sucursal.ID.String(), req)
	assert.ErrorIs(t, err, service.ErrValidacion)

	req.EntregarA = domicilio("Juan Perez")
	_, err = f.svc.Crear(context.Background(), adminClaims(f.restauranteID), f.sucursal.ID.String(), req)
	assert.NoError(t, err)
}

func TestCrearPedido_EmpleadoDeOtraSucursal(t *testing.T) {
	f := newPedidoFixture()

	_, err := f.svc.Crear(context.Background(), empleadoClaims(f.restauranteID, uuid.New()), f.sucursal.ID.String(), pedidoRequest("PED-004"))
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestCrearPedido_AdminDeOtroRestaurante(t *testing.T) {
	f := newPedidoFixture()

	// Admin claims from a different restaurante than the branch's owner.
	_, err := f.svc.Crear(context.Background(), adminClaims(uuid.New()), f.sucursal.ID.String(), pedidoRequest("PED-006"))
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestListarPorSucursal_AdminDeOtroRestaurante(t *testing.T) {
	f := newPedidoFixture()
	_, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID), f.sucursal.ID.String(), pedidoRequest("PED-007"))
	require.NoError(t, err)

	_, err = f.svc.ListarPorSucursal(context.Background(), adminClaims(uuid.New()), f.sucursal.ID.String())
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestCrearPedido_ValidacionEnServicio(t *testing.T) {
	f := newPedidoFixture()

	// Tag rules apply even without the HTTP handler in front — the webhook
	// builds its requests directly against the service.
	req := pedidoRequest("PED-008")
	req.Moneda = "mxn"
	_, err := f.svc.Crear(context.Background(), nil, f.sucursal.ID.String(), req)
	assert.ErrorIs(t, err, service.ErrValidacion)

	req = pedidoRequest("PED-008")
	req.Codigo = "X"
	_, err = f.svc.Crear(context.Background(), nil, f.sucursal.ID.String(), req)
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestCrearPedido_SucursalInexistente(t *testing.T) {
	f := newPedidoFixture()

	_, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID), uuid.NewString(), pedidoRequest("PED-005"))
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

// ── Tests: ActualizarEstado ──────────────────────────────────────────────────

func TestActualizarEstado_Transicion(t *testing.T) {
	f := newPedidoFixture()
	claims := adminClaims(f.restauranteID)
	_, err := f.svc.Crear(context.Background(), claims, f.sucursal.ID.String(), pedidoRequest("PED-010"))
	require.NoError(t, err)

	resp, err := f.svc.ActualizarEstado(context.Background(), claims, "PED-010", dto.ActualizarEstadoRequest{Estado: model.EstadoPreparando})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPreparando, resp.Estado)
}

func TestActualizarEstado_Idempotente(t *testing.T) {
	f := newPedidoFixture()
	claims := adminClaims(f.restauranteID)
	_, err := f.svc.Crear(context.Background(), claims, f.sucursal.ID.String(), pedidoRequest("PED-011"))
	require.NoError(t, err)

	// Same estado twice: second call is a no-op success.
	_, err = f.svc.ActualizarEstado(context.Background(), claims, "PED-011", dto.ActualizarEstadoRequest{Estado: model.EstadoPendiente})
	assert.NoError(t, err)
	_, err = f.svc.ActualizarEstado(context.Background(), claims, "PED-011", dto.ActualizarEstadoRequest{Estado: model.EstadoPendiente})
	assert.NoError(t, err)
}

func TestActualizarEstado_TerminalBloqueado(t *testing.T) {
	f := newPedidoFixture()
	claims := adminClaims(f.restauranteID)
	_, err := f.svc.Crear(context.Background(), claims, f.sucursal.ID.String(), pedidoRequest("PED-012"))
	require.NoError(t, err)

	motivo := "cliente cancelo por telefono"
	_, err = f.svc.ActualizarEstado(context.Background(), claims, "PED-012", dto.ActualizarEstadoRequest{Estado: model.EstadoCancelado, Motivo: &motivo})
	require.NoError(t, err)

	_, err = f.svc.ActualizarEstado(context.Background(), claims, "PED-012", dto.ActualizarEstadoRequest{Estado: model.EstadoPreparando})
	assert.ErrorIs(t, err, service.ErrConflicto)
}

func TestActualizarEstado_PedidoInexistente(t *testing.T) {
	f := newPedidoFixture()

	_, err := f.svc.ActualizarEstado(context.Background(), adminClaims(f.restauranteID), "NO-EXISTE", dto.ActualizarEstadoRequest{Estado: model.EstadoListo})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

// ── Tests: Listados ──────────────────────────────────────────────────────────

func TestListarPorRestaurante_SoloAdminConFiltroFecha(t *testing.T) {
	f := newPedidoFixture()
	claims := adminClaims(f.restauranteID)

	req1 := pedidoRequest("PED-020")
	req2 := pedidoRequest("PED-021")
	req2.Fecha = "2026-09-01"
	_, err := f.svc.Crear(context.Background(), claims, f.sucursal.ID.String(), req1)
	require.NoError(t, err)
	_, err = f.svc.Crear(context.Background(), claims, f.sucursal.ID.String(), req2)
	require.NoError(t, err)

	todos, err := f.svc.ListarPorRestaurante(context.Background(), claims, "")
	require.NoError(t, err)
	assert.Len(t, todos, 2)
	assert.Equal(t, "Centro", todos[0].SucursalNombre)

	filtrados, err := f.svc.ListarPorRestaurante(context.Background(), claims, "2026-09-01")
	require.NoError(t, err)
	assert.Len(t, filtrados, 1)
	assert.Equal(t, "PED-021", filtrados[0].Codigo)

	_, err = f.svc.ListarPorRestaurante(context.Background(), claims, "31/08/2026")
	assert.ErrorIs(t, err, service.ErrValidacion)

	_, err = f.svc.ListarPorRestaurante(context.Background(), empleadoClaims(f.restauranteID, f.sucursal.ID), "")
	assert.ErrorIs(t, err, service.ErrNoAutorizado)
}

func TestListarPorSucursal_EmpleadoPropio(t *testing.T) {
	f := newPedidoFixture()
	_, err := f.svc.Crear(context.Background(), adminClaims(f.restauranteID), f.sucursal.ID.String(), pedidoRequest("PED-030"))
	require.NoError(t, err)

	pedidos, err := f.svc.ListarPorSucursal(context.Background(), empleadoClaims(f.restauranteID, f.sucursal.ID), f.sucursal.ID.String())
	require.NoError(t, err)
	assert.Len(t, pedidos, 1)
}

// ── Tests: handler validation ────────────────────────────────────────────────

func TestCrearPedido_HandlerValidacion400(t *testing.T) {
	f := newPedidoFixture()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	claims := adminClaims(f.restauranteID)
	r.Use(func(c *gin.Context) { c.Set(middleware.ClaimsKey, claims) })
	h := handler.NewPedidosHandler(f.svc, ws.NewHub(), testSecret)
	r.POST("/pedidos/:id", h.Crear)

	// Missing codigo/total/moneda → bindAndValidate rejects before the service.
	w := doJSONRequest(t, r, http.MethodPost, "/pedidos/"+f.sucursal.ID.String(), map[string]interface{}{
		"nombre": "Juan", "celular": "5215550001",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEliminarPedido_SoloAdmin(t *testing.T) {
	f := newPedidoFixture()
	claims := adminClaims(f.restauranteID)
	_, err := f.svc.Crear(context.Background(), claims, f.sucursal.ID.String(), pedidoRequest("PED-040"))
	require.NoError(t, err)

	err = f.svc.Eliminar(context.Background(), empleadoClaims(f.restauranteID, f.sucursal.ID), "PED-040")
	assert.ErrorIs(t, err, service.ErrNoAutorizado)

	err = f.svc.Eliminar(context.Background(), claims, "PED-040")
	assert.NoError(t, err)
	_, err = f.svc.ObtenerPorCodigo(context.Background(), claims, "PED-040")
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}
