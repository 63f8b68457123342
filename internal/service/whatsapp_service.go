package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ceats/internal/dto"
	"ceats/internal/infra"
	"ceats/internal/middleware"
	"ceats/internal/model"
	"ceats/internal/repository"
	"ceats/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// signupStateTTL bounds the embedded-signup handshake window.
const signupStateTTL = 10 * time.Minute

const signupStatePrefix = "wa:signup:"

type WhatsAppService interface {
	ConfigurarIntegracion(ctx context.Context, claims *middleware.JWTClaims, req dto.ConfigurarIntegracionRequest) (*dto.IntegracionResponse, error)
	ListarIntegraciones(ctx context.Context, claims *middleware.JWTClaims) ([]dto.IntegracionResponse, error)
	EliminarIntegracion(ctx context.Context, claims *middleware.JWTClaims, id string) error

	// IniciarSignup hands the dashboard a one-time state for the embedded
	// signup popup; CompletarSignup consumes it. State lives in Redis with a
	// 10-minute TTL, so it survives instance restarts and expires on its own.
	IniciarSignup(ctx context.Context, claims *middleware.JWTClaims) (*dto.SignupIniciarResponse, error)
	CompletarSignup(ctx context.Context, claims *middleware.JWTClaims, req dto.SignupCompletarRequest) error

	// VerificarWebhook answers Meta's GET handshake: echoes the challenge when
	// the verify token matches a configured integration.
	VerificarWebhook(ctx context.Context, modo, verifyToken, challenge string) (string, error)

	// ProcesarWebhook ingests a signed POST delivery. Order messages become
	// pedidos through the shared creation path; everything else is logged and
	// acknowledged so Meta stops retrying.
	ProcesarWebhook(ctx context.Context, firma string, body []byte) error
}

type whatsappService struct {
	repo         repository.WhatsAppRepository
	sucursalRepo repository.SucursalRepository
	pedidos      PedidoService
	dispatcher   *worker.Dispatcher
	cipher       *infra.TokenCipher
	rdb          *redis.Client
	appSecret    string
	apiVersion   string
}

func NewWhatsAppService(
	repo repository.WhatsAppRepository,
	sucursalRepo repository.SucursalRepository,
	pedidos PedidoService,
	dispatcher *worker.Dispatcher,
	cipher *infra.TokenCipher,
	rdb *redis.Client,
	appSecret string,
	apiVersion string,
) WhatsAppService {
	return &whatsappService{
		repo:         repo,
		sucursalRepo: sucursalRepo,
		pedidos:      pedidos,
		dispatcher:   dispatcher,
		cipher:       cipher,
		rdb:          rdb,
		appSecret:    appSecret,
		apiVersion:   apiVersion,
	}
}

// ─── Integration management ──────────────────────────────────────────────────

func (s *whatsappService) ConfigurarIntegracion(ctx context.Context, claims *middleware.JWTClaims, req dto.ConfigurarIntegracionRequest) (*dto.IntegracionResponse, error) {
	if claims.Rol != model.RolAdmin {
		return nil, fmt.Errorf("%w: solo un admin puede configurar integraciones", ErrNoAutorizado)
	}
	restauranteID, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return nil, err
	}

	integracion := &model.WhatsAppIntegration{
		RestauranteID: restauranteID,
		PhoneNumberID: req.PhoneNumberID,
		WabaID:        req.WabaID,
		VerifyToken:   req.VerifyToken,
		ApiVersion:    s.apiVersion,
		Estado:        model.IntegracionConectada,
	}

	if req.SucursalID != nil {
		sucID, err := parseUUID(*req.SucursalID)
		if err != nil {
			return nil, err
		}
		suc, err := s.sucursalRepo.FindByID(ctx, sucID)
		if err != nil {
			if esNoEncontrado(err) {
				return nil, fmt.Errorf("%w: sucursal", ErrNoEncontrado)
			}
			return nil, err
		}
		if suc.RestauranteID != restauranteID {
			return nil, fmt.Errorf("%w: la sucursal pertenece a otro restaurante", ErrNoAutorizado)
		}
		integracion.SucursalID = &sucID
	}

	cifrado, err := s.cipher.Encrypt(req.AccessToken)
	if err != nil {
		return nil, err
	}
	integracion.TokenCifrado = cifrado

	if err := s.repo.Upsert(ctx, integracion); err != nil {
		return nil, err
	}
	return integracionToResponse(integracion), nil
}

func (s *whatsappService) ListarIntegraciones(ctx context.Context, claims *middleware.JWTClaims) ([]dto.IntegracionResponse, error) {
	if claims.Rol != model.RolAdmin {
		return nil, fmt.Errorf("%w: solo un admin puede listar integraciones", ErrNoAutorizado)
	}
	restauranteID, err := parseUUID(claims.RestauranteID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.FindByRestaurante(ctx, restauranteID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.IntegracionResponse, len(list))
	for i := range list {
		resp[i] = *integracionToResponse(&list[i])
	}
	return resp, nil
}

func (s *whatsappService) EliminarIntegracion(ctx context.Context, claims *middleware.JWTClaims, id string) error {
	if claims.Rol != model.RolAdmin {
		return fmt.Errorf("%w: solo un admin puede eliminar integraciones", ErrNoAutorizado)
	}
	integracionID, err := parseUUID(id)
	if err != nil {
		return err
	}
	integracion, err := s.repo.FindByID(ctx, integracionID)
	if err != nil {
		if esNoEncontrado(err) {
			return fmt.Errorf("%w: integracion", ErrNoEncontrado)
		}
		return err
	}
	if integracion.RestauranteID.String() != claims.RestauranteID {
		return fmt.Errorf("%w: integracion", ErrNoEncontrado)
	}
	return s.repo.Delete(ctx, integracionID)
}

// ─── Embedded signup ─────────────────────────────────────────────────────────

func (s *whatsappService) IniciarSignup(ctx context.Context, claims *middleware.JWTClaims) (*dto.SignupIniciarResponse, error) {
	if claims.Rol != model.RolAdmin {
		return nil, fmt.Errorf("%w: solo un admin puede iniciar el alta de WhatsApp", ErrNoAutorizado)
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	state := hex.EncodeToString(buf)

	if err := s.rdb.SetEx(ctx, signupStatePrefix+state, claims.RestauranteID, signupStateTTL).Err(); err != nil {
		return nil, err
	}
	return &dto.SignupIniciarResponse{
		State:  state,
		Expira: int(signupStateTTL.Seconds()),
	}, nil
}

func (s *whatsappService) CompletarSignup(ctx context.Context, claims *middleware.JWTClaims, req dto.SignupCompletarRequest) error {
	// GetDel makes the state strictly one-shot.
	restauranteID, err := s.rdb.GetDel(ctx, signupStatePrefix+req.State).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: el state es invalido o expiro", ErrValidacion)
		}
		return err
	}
	if restauranteID != claims.RestauranteID {
		return fmt.Errorf("%w: el state pertenece a otra sesion", ErrNoAutorizado)
	}
	log.Info().Str("restaurante_id", restauranteID).Msg("whatsapp: signup completado")
	return nil
}

// ─── Webhook ─────────────────────────────────────────────────────────────────

func (s *whatsappService) VerificarWebhook(ctx context.Context, modo, verifyToken, challenge string) (string, error) {
	if modo != "subscribe" || verifyToken == "" {
		return "", fmt.Errorf("%w: handshake invalido", ErrNoAutorizado)
	}
	if _, err := s.repo.FindByVerifyToken(ctx, verifyToken); err != nil {
		return "", fmt.Errorf("%w: verify token desconocido", ErrNoAutorizado)
	}
	return challenge, nil
}

func (s *whatsappService) ProcesarWebhook(ctx context.Context, firma string, body []byte) error {
	if err := s.verificarFirma(firma, body); err != nil {
		return err
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: cuerpo del webhook invalido", ErrValidacion)
	}
	if payload.Object != "whatsapp_business_account" {
		return nil // not ours, acknowledge and move on
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			s.procesarValue(ctx, change.Value)
		}
	}
	return nil
}

// verificarFirma checks X-Hub-Signature-256 ("sha256=<hex>") against the app
// secret, constant-time.
func (s *whatsappService) verificarFirma(firma string, body []byte) error {
	esperadaHex, ok := strings.CutPrefix(firma, "sha256=")
	if !ok {
		return fmt.Errorf("%w: firma del webhook ausente o mal formada", ErrNoAutorizado)
	}
	esperada, err := hex.DecodeString(esperadaHex)
	if err != nil {
		return fmt.Errorf("%w: firma del webhook mal formada", ErrNoAutorizado)
	}
	mac := hmac.New(sha256.New, []byte(s.appSecret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), esperada) {
		return fmt.Errorf("%w: firma del webhook invalida", ErrNoAutorizado)
	}
	return nil
}

func (s *whatsappService) procesarValue(ctx context.Context, value dto.WebhookValue) {
	integracion, err := s.repo.FindByPhoneNumberID(ctx, value.Metadata.PhoneNumberID)
	if err != nil {
		// Unknown numbers are ignored: a 4xx would only make Meta retry.
		log.Warn().Str("phone_number_id", value.Metadata.PhoneNumberID).
			Msg("webhook: numero sin integracion, mensaje ignorado")
		return
	}

	for _, msg := range value.Messages {
		switch msg.Type {
		case "order":
			s.procesarOrden(ctx, integracion, value, msg)
		case "text":
			log.Debug().Str("from", msg.From).Msg("webhook: mensaje de texto recibido")
		default:
			log.Debug().Str("type", msg.Type).Msg("webhook: tipo de mensaje sin manejo")
		}
	}
}

func (s *whatsappService) procesarOrden(ctx context.Context, integracion *model.WhatsAppIntegration, value dto.WebhookValue, msg dto.WebhookMessage) {
	if msg.Order == nil || len(msg.Order.ProductItems) == 0 {
		log.Warn().Str("message_id", msg.ID).Msg("webhook: orden sin items, ignorada")
		return
	}
	if integracion.SucursalID == nil {
		log.Error().Str("phone_number_id", integracion.PhoneNumberID).
			Msg("webhook: integracion sin sucursal asignada, orden descartada")
		return
	}

	req, err := ordenARequest(msg)
	if err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("webhook: no se pudo mapear la orden")
		return
	}
	req.Nombre = nombreContacto(value.Contacts, msg.From)

	// nil claims: the tenant is already pinned by the phone-number mapping.
	resp, err := s.pedidos.Crear(ctx, nil, integracion.SucursalID.String(), *req)
	if err != nil {
		if errors.Is(err, ErrConflicto) {
			// Redelivery of an already-ingested order; ack silently.
			log.Info().Str("codigo", req.Codigo).Msg("webhook: orden ya ingresada")
			return
		}
		log.Error().Err(err).Str("codigo", req.Codigo).Msg("webhook: no se pudo crear el pedido")
		return
	}

	confirmacion := worker.ConfirmacionJobPayload{
		IntegracionID: integracion.ID.String(),
		To:            msg.From,
		Codigo:        resp.Codigo,
		Total:         resp.Total.StringFixed(2),
		Moneda:        resp.Moneda,
	}
	if err := s.dispatcher.EnqueueConfirmacion(ctx, confirmacion); err != nil {
		log.Warn().Err(err).Str("codigo", resp.Codigo).Msg("webhook: no se pudo encolar la confirmacion")
	}
}

// ordenARequest maps a WhatsApp order message onto the shared creation shape.
// Item prices arrive in thousandths of the currency unit.
func ordenARequest(msg dto.WebhookMessage) (*dto.CrearPedidoRequest, error) {
	detalle, err := json.Marshal(msg.Order.ProductItems)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	moneda := "MXN"
	for _, item := range msg.Order.ProductItems {
		linea := decimal.NewFromInt(item.ItemPrice).
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Div(decimal.NewFromInt(1000))
		total = total.Add(linea)
		if item.Currency != "" {
			moneda = strings.ToUpper(item.Currency)
		}
	}

	momento := momentoMensaje(msg.Timestamp)
	instrucciones := msg.Order.Text
	req := &dto.CrearPedidoRequest{
		Codigo:      codigoDesdeMensaje(msg.ID),
		Celular:     msg.From,
		Pedido:      detalle,
		Total:       total.Round(2),
		Moneda:      moneda,
		Fecha:       momento.Format("2006-01-02"),
		Hora:        momento.Format("15:04:05"),
		TipoEntrega: model.EntregaRecoger,
		EntregarA:   &msg.From,
	}
	if instrucciones != "" {
		req.Instrucciones = &instrucciones
	}
	return req, nil
}

// codigoDesdeMensaje derives the stable business key from the WhatsApp message
// id; redeliveries hit the unique index instead of creating duplicates.
func codigoDesdeMensaje(messageID string) string {
	id := strings.TrimPrefix(messageID, "wamid.")
	if len(id) > 32 {
		id = id[len(id)-32:]
	}
	return "WA-" + id
}

func momentoMensaje(timestamp string) time.Time {
	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}

func nombreContacto(contacts []dto.WebhookContact, from string) string {
	for _, c := range contacts {
		if c.WaID == from && c.Profile.Name != "" {
			return c.Profile.Name
		}
	}
	return "Cliente WhatsApp"
}

func integracionToResponse(w *model.WhatsAppIntegration) *dto.IntegracionResponse {
	var sucID *string
	if w.SucursalID != nil {
		s := w.SucursalID.String()
		sucID = &s
	}
	return &dto.IntegracionResponse{
		ID:            w.ID.String(),
		RestauranteID: w.RestauranteID.String(),
		SucursalID:    sucID,
		PhoneNumberID: w.PhoneNumberID,
		WabaID:        w.WabaID,
		ApiVersion:    w.ApiVersion,
		Estado:        w.Estado,
		UltimoError:   w.UltimoError,
	}
}
