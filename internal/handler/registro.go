package handler

import (
	"net/http"

	"ceats/internal/dto"
	"ceats/internal/middleware"
	"ceats/internal/service"

	"github.com/gin-gonic/gin"
)

// RegistroHandler covers the public restaurantero signup and the
// restaurant-profile management of the authenticated admin.
type RegistroHandler struct{ svc service.RegistroService }

func NewRegistroHandler(svc service.RegistroService) *RegistroHandler {
	return &RegistroHandler{svc: svc}
}

// Registrar godoc
// @Summary Alta de restaurante + cuenta admin
// @Tags registro
// @Accept json
// @Produce json
// @Param body body dto.RegistroRestauranteroRequest true "Datos del restaurante y su admin"
// @Success 201 {object} dto.RegistroRestauranteroResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/register-restaurantero [post]
func (h *RegistroHandler) Registrar(c *gin.Context) {
	var req dto.RegistroRestauranteroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarRestaurantero(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RegistroHandler) ObtenerRestaurante(c *gin.Context) {
	resp, err := h.svc.ObtenerRestaurante(c.Request.Context(), middleware.GetClaims(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RegistroHandler) ActualizarRestaurante(c *gin.Context) {
	var req dto.ActualizarRestauranteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarRestaurante(c.Request.Context(), middleware.GetClaims(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RegistroHandler) EliminarRestaurante(c *gin.Context) {
	if err := h.svc.EliminarRestaurante(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
