package handler

import (
	"net/http"

	"ceats/internal/apierror"
	"ceats/internal/dto"
	"ceats/internal/middleware"
	"ceats/internal/service"
	"ceats/internal/ws"

	"github.com/gin-gonic/gin"
)

type PedidosHandler struct {
	svc       service.PedidoService
	hub       *ws.Hub
	jwtSecret string
}

func NewPedidosHandler(svc service.PedidoService, hub *ws.Hub, jwtSecret string) *PedidosHandler {
	return &PedidosHandler{svc: svc, hub: hub, jwtSecret: jwtSecret}
}

// Crear godoc
// @Summary Crea un pedido en la sucursal indicada
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path string true "ID de la sucursal"
// @Param body body dto.CrearPedidoRequest true "Pedido"
// @Success 201 {object} dto.PedidoResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/pedidos/{id} [post]
func (h *PedidosHandler) Crear(c *gin.Context) {
	var req dto.CrearPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetClaims(c), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarTodos is the admin-wide board; optional ?fecha=YYYY-MM-DD filter.
func (h *PedidosHandler) ListarTodos(c *gin.Context) {
	resp, err := h.svc.ListarPorRestaurante(c.Request.Context(), middleware.GetClaims(c), c.Query("fecha"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) ListarPorSucursal(c *gin.Context) {
	resp, err := h.svc.ListarPorSucursal(c.Request.Context(), middleware.GetClaims(c), c.Param("sucursal_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) ObtenerPorCodigo(c *gin.Context) {
	resp, err := h.svc.ObtenerPorCodigo(c.Request.Context(), middleware.GetClaims(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarEstado godoc
// @Summary Actualiza el estado de un pedido (idempotente)
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path string true "Codigo del pedido"
// @Param body body dto.ActualizarEstadoRequest true "Nuevo estado"
// @Success 200 {object} dto.PedidoResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/pedidos/{id}/estado [post]
func (h *PedidosHandler) ActualizarEstado(c *gin.Context) {
	var req dto.ActualizarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEstado(c.Request.Context(), middleware.GetClaims(c), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) Eliminar(c *gin.Context) {
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetClaims(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Board upgrades to websocket for the live order feed. Browsers cannot set
// headers on websocket dials, so the JWT travels as ?token=.
func (h *PedidosHandler) Board(c *gin.Context) {
	claims, err := middleware.ParseClaims(c.Query("token"), h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
		return
	}
	h.hub.Serve(c.Writer, c.Request, claims.RestauranteID)
}
