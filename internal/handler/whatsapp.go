package handler

import (
	"io"
	"net/http"

	"ceats/internal/apierror"
	"ceats/internal/dto"
	"ceats/internal/middleware"
	"ceats/internal/service"

	"github.com/gin-gonic/gin"
)

type WhatsAppHandler struct{ svc service.WhatsAppService }

func NewWhatsAppHandler(svc service.WhatsAppService) *WhatsAppHandler {
	return &WhatsAppHandler{svc: svc}
}

// ─── Integration management (authenticated) ──────────────────────────────────

func (h *WhatsAppHandler) Configurar(c *gin.Context) {
	var req dto.ConfigurarIntegracionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfigurarIntegracion(c.Request.Context(), middleware.GetClaims(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *WhatsAppHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarIntegraciones(c.Request.Context(), middleware.GetClaims(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WhatsAppHandler) Eliminar(c *gin.Context) {
	if err := h.svc.EliminarIntegracion(c.Request.Context(), middleware.GetClaims(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *WhatsAppHandler) SignupIniciar(c *gin.Context) {
	resp, err := h.svc.IniciarSignup(c.Request.Context(), middleware.GetClaims(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WhatsAppHandler) SignupCompletar(c *gin.Context) {
	var req dto.SignupCompletarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.CompletarSignup(c.Request.Context(), middleware.GetClaims(c), req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ─── Meta webhook (public, signature-verified) ───────────────────────────────

// WebhookVerify answers Meta's GET handshake: plain-text echo of
// hub.challenge when hub.verify_token matches an integration.
func (h *WhatsAppHandler) WebhookVerify(c *gin.Context) {
	challenge, err := h.svc.VerificarWebhook(
		c.Request.Context(),
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		c.JSON(http.StatusForbidden, apierror.New("Verificacion rechazada"))
		return
	}
	c.String(http.StatusOK, challenge)
}

// WebhookReceive ingests a signed delivery. The raw body is read before any
// JSON decoding: the HMAC covers the exact bytes on the wire.
func (h *WhatsAppHandler) WebhookReceive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el cuerpo"))
		return
	}

	if err := h.svc.ProcesarWebhook(c.Request.Context(), c.GetHeader("X-Hub-Signature-256"), body); err != nil {
		writeServiceError(c, err)
		return
	}
	// Always 200 on accepted deliveries so Meta stops retrying.
	c.JSON(http.StatusOK, gin.H{"success": true})
}
