//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   T-E2E-1: Tenant onboarding (registro → verificar email → login)
//   T-E2E-2: Branch verification creates the empleado account with temp password
//   T-E2E-3: Order lifecycle (create → list → estado → terminal block)
//   T-E2E-4: Signed WhatsApp webhook ingests an order idempotently
//   T-E2E-5: PDF report download

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ceats/internal/config"
	"ceats/internal/infra"
	"ceats/internal/router"
	"ceats/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const (
	testAppSecret = "e2e-app-secret"
	testEncKey    = "6368616e676520746869732070617373776f726420746f206120736563726574"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// codigoUsuario reads the pending verification code straight from the table;
// e2e has no mailbox.
func codigoUsuario(t *testing.T, db *gorm.DB, email string) string {
	t.Helper()
	var codigo string
	require.NoError(t, db.Raw(
		`SELECT codigo_verificacion FROM usuarios WHERE email = ?`, email,
	).Scan(&codigo).Error)
	require.Len(t, codigo, 6)
	return codigo
}

func codigoSucursal(t *testing.T, db *gorm.DB, sucursalID string) string {
	t.Helper()
	var codigo string
	require.NoError(t, db.Raw(
		`SELECT codigo_verificacion FROM sucursales WHERE id = ?`, sucursalID,
	).Scan(&codigo).Error)
	require.Len(t, codigo, 6)
	return codigo
}

func firmar(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testAppSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("ceats_test"),
		tcPostgres.WithUsername("ceats"),
		tcPostgres.WithPassword("ceats"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 4,
		CodigoTTLHoras:     24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		GraphBaseURL:       "http://localhost:9999", // never dialed in e2e
		GraphAPIVersion:    "v21.0",
		WhatsAppAppSecret:  testAppSecret,
		EncryptionKey:      testEncKey,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	cipher, err := infra.NewTokenCipher(cfg.EncryptionKey)
	require.NoError(t, err)

	srv := httptest.NewServer(router.New(cfg, db, rdb, cipher, ws.NewHub()))
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, db: db}

	// Tenant onboarding: registro → verificar email → login.
	regResp := do(t, srv, "POST", "/api/register-restaurantero", jsonBody(t, map[string]any{
		"nombre_restaurante": "Tacos El Tesoro",
		"email_restaurante":  "contacto@tesoro.mx",
		"nombre":             "Maria",
		"apellidos":          "Lopez",
		"email":              "maria@tesoro.mx",
		"password":           "clave-segura-1",
	}), "")
	require.Equal(t, http.StatusCreated, regResp.StatusCode)
	regResp.Body.Close()

	verResp := do(t, srv, "POST", "/api/verificar-email", jsonBody(t, map[string]string{
		"email": "maria@tesoro.mx", "codigo": codigoUsuario(t, db, "maria@tesoro.mx"),
	}), "")
	require.Equal(t, http.StatusOK, verResp.StatusCode)
	verResp.Body.Close()

	loginResp := do(t, srv, "POST", "/api/login", jsonBody(t, map[string]string{
		"email": "maria@tesoro.mx", "password": "clave-segura-1",
	}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		Token string `json:"token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.Token)
	env.token = loginBody.Token

	return env
}

// crearSucursalVerificada runs the branch flow and returns its ID.
func crearSucursalVerificada(t *testing.T, env *testEnv, nombre, email string) string {
	t.Helper()
	sucResp := do(t, env.server, "POST", "/api/sucursales", jsonBody(t, map[string]string{
		"nombre": nombre, "email": email,
	}), env.token)
	require.Equal(t, http.StatusCreated, sucResp.StatusCode)
	var suc struct {
		ID string `json:"sucursal_id"`
	}
	decodeJSON(t, sucResp, &suc)

	verResp := do(t, env.server, "POST", "/api/sucursales/"+suc.ID+"/verificar",
		jsonBody(t, map[string]string{"codigo": codigoSucursal(t, env.db, suc.ID)}), "")
	require.Equal(t, http.StatusOK, verResp.StatusCode)
	verResp.Body.Close()
	return suc.ID
}

func pedidoBody(codigo string) map[string]any {
	return map[string]any{
		"codigo": codigo, "nombre": "Juan Perez", "celular": "5215550001",
		"pedido": []map[string]any{{"nombre": "Taco pastor", "cantidad": 3}},
		"total":  "145.50", "moneda": "MXN",
		"fecha": "2026-08-31", "hora": "13:45:00",
		"deliver_or_rest": "recoger", "entregar_a": "Juan Perez",
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

// T-E2E-1: unverified accounts cannot log in; verified ones can.
func TestE2E_OnboardingYLogin(t *testing.T) {
	env := setupTestEnv(t)

	// setupTestEnv already proved the happy path; a second registration with
	// the same admin email must conflict.
	resp := do(t, env.server, "POST", "/api/register-restaurantero", jsonBody(t, map[string]any{
		"nombre_restaurante": "Clon", "email_restaurante": "clon@tesoro.mx",
		"nombre": "Otra", "apellidos": "Persona",
		"email": "maria@tesoro.mx", "password": "clave-segura-2",
	}), "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

// T-E2E-2: branch verification creates an empleado gated behind a forced
// password change.
func TestE2E_VerificacionSucursalYPrimerLogin(t *testing.T) {
	env := setupTestEnv(t)

	sucResp := do(t, env.server, "POST", "/api/sucursales", jsonBody(t, map[string]string{
		"nombre": "Centro", "email": "centro@tesoro.mx",
	}), env.token)
	require.Equal(t, http.StatusCreated, sucResp.StatusCode)
	var suc struct {
		ID string `json:"sucursal_id"`
	}
	decodeJSON(t, sucResp, &suc)

	codigo := codigoSucursal(t, env.db, suc.ID)
	verResp := do(t, env.server, "POST", "/api/sucursales/"+suc.ID+"/verificar",
		jsonBody(t, map[string]string{"codigo": codigo}), "")
	require.Equal(t, http.StatusOK, verResp.StatusCode)
	verResp.Body.Close()

	// The code works as temp password but yields no token.
	loginResp := do(t, env.server, "POST", "/api/login", jsonBody(t, map[string]string{
		"email": "centro@tesoro.mx", "password": codigo,
	}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var primer struct {
		Token                  string `json:"token"`
		RequiereCambioPassword bool   `json:"requiere_cambio_password"`
	}
	decodeJSON(t, loginResp, &primer)
	assert.Empty(t, primer.Token)
	assert.True(t, primer.RequiereCambioPassword)

	// Forced change, then a real session.
	cambioResp := do(t, env.server, "POST", "/api/cambiar-password", jsonBody(t, map[string]string{
		"email": "centro@tesoro.mx", "password_actual": codigo, "password_nueva": "clave-definitiva-1",
	}), "")
	require.Equal(t, http.StatusOK, cambioResp.StatusCode)
	cambioResp.Body.Close()

	loginResp = do(t, env.server, "POST", "/api/login", jsonBody(t, map[string]string{
		"email": "centro@tesoro.mx", "password": "clave-definitiva-1",
	}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var sesion struct {
		Token string `json:"token"`
	}
	decodeJSON(t, loginResp, &sesion)
	assert.NotEmpty(t, sesion.Token)
}

// T-E2E-3: order lifecycle.
func TestE2E_CicloPedido(t *testing.T) {
	env := setupTestEnv(t)
	sucID := crearSucursalVerificada(t, env, "Centro", "centro@tesoro.mx")

	crearResp := do(t, env.server, "POST", "/api/pedidos/"+sucID, jsonBody(t, pedidoBody("PED-100")), env.token)
	require.Equal(t, http.StatusCreated, crearResp.StatusCode)
	var pedido struct {
		Codigo string `json:"codigo"`
		Estado string `json:"estado"`
	}
	decodeJSON(t, crearResp, &pedido)
	assert.Equal(t, "Pendiente", pedido.Estado)

	// Duplicate codigo conflicts.
	dupResp := do(t, env.server, "POST", "/api/pedidos/"+sucID, jsonBody(t, pedidoBody("PED-100")), env.token)
	assert.Equal(t, http.StatusConflict, dupResp.StatusCode)
	dupResp.Body.Close()

	// Admin-wide listing includes the branch name.
	listResp := do(t, env.server, "GET", "/api/pedidos.json?fecha=2026-08-31", nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var items []struct {
		Codigo         string `json:"codigo"`
		SucursalNombre string `json:"sucursal_nombre"`
	}
	decodeJSON(t, listResp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Centro", items[0].SucursalNombre)

	// Estado: Pendiente → Preparando → Cancelado, then terminal.
	for _, estado := range []string{"Preparando", "Cancelado"} {
		estResp := do(t, env.server, "POST", "/api/pedidos/PED-100/estado",
			jsonBody(t, map[string]string{"estado": estado}), env.token)
		require.Equal(t, http.StatusOK, estResp.StatusCode)
		estResp.Body.Close()
	}
	bloqueado := do(t, env.server, "POST", "/api/pedidos/PED-100/estado",
		jsonBody(t, map[string]string{"estado": "Listo"}), env.token)
	assert.Equal(t, http.StatusConflict, bloqueado.StatusCode)
	bloqueado.Body.Close()
}

// T-E2E-4: signed webhook ingestion, idempotent on redelivery.
func TestE2E_WebhookOrden(t *testing.T) {
	env := setupTestEnv(t)
	sucID := crearSucursalVerificada(t, env, "Centro", "centro@tesoro.mx")

	// Register the channel for this branch.
	intResp := do(t, env.server, "POST", "/api/whatsapp/integraciones", jsonBody(t, map[string]any{
		"phone_number_id": "1065550001",
		"waba_id":         "9001",
		"access_token":    "EAAG-e2e-token-de-prueba-123",
		"verify_token":    "tok-verify-e2e",
		"sucursal_id":     sucID,
	}), env.token)
	require.Equal(t, http.StatusCreated, intResp.StatusCode)
	intResp.Body.Close()

	// Meta handshake.
	hsResp := do(t, env.server, "GET",
		"/webhook?hub.mode=subscribe&hub.verify_token=tok-verify-e2e&hub.challenge=reto-7", nil, "")
	require.Equal(t, http.StatusOK, hsResp.StatusCode)

	body := []byte(fmt.Sprintf(`{
		"object": "whatsapp_business_account",
		"entry": [{"id": "9001", "changes": [{"field": "messages", "value": {
			"messaging_product": "whatsapp",
			"metadata": {"display_phone_number": "5215550001", "phone_number_id": "1065550001"},
			"contacts": [{"wa_id": "5215559999", "profile": {"name": "Juan Perez"}}],
			"messages": [{"from": "5215559999", "id": "wamid.E2E001", "timestamp": "1756640700",
				"type": "order",
				"order": {"catalog_id": "c1", "text": "", "product_items": [
					{"product_retailer_id": "taco-pastor", "quantity": 2, "item_price": 28500, "currency": "MXN"}
				]}}]
		}}]}]
	}`))

	// Unsigned delivery is rejected.
	req, _ := http.NewRequest("POST", env.server.URL+"/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Signed delivery, twice (Meta redelivers).
	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("POST", env.server.URL+"/webhook", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Hub-Signature-256", firmar(body))
		resp, err := env.server.Client().Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	listResp := do(t, env.server, "GET", "/api/pedidos/sucursal/"+sucID, nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var pedidos []struct {
		Codigo string `json:"codigo"`
		Total  string `json:"total"`
	}
	decodeJSON(t, listResp, &pedidos)
	require.Len(t, pedidos, 1, "redelivery must not duplicate the order")
	assert.Contains(t, pedidos[0].Codigo, "WA-")
	assert.Equal(t, "57", pedidos[0].Total)
}

// T-E2E-5: the PDF report endpoint streams a file.
func TestE2E_ReportePDF(t *testing.T) {
	env := setupTestEnv(t)
	sucID := crearSucursalVerificada(t, env, "Centro", "centro@tesoro.mx")

	crearResp := do(t, env.server, "POST", "/api/pedidos/"+sucID, jsonBody(t, pedidoBody("PED-200")), env.token)
	require.Equal(t, http.StatusCreated, crearResp.StatusCode)
	crearResp.Body.Close()

	resp := do(t, env.server, "GET", "/api/reportes/pedidos.pdf?fecha=2026-08-31", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	buf := make([]byte, 5)
	_, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(buf))
}
