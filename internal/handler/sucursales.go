package handler

import (
	"net/http"

	"ceats/internal/dto"
	"ceats/internal/middleware"
	"ceats/internal/service"

	"github.com/gin-gonic/gin"
)

type SucursalesHandler struct{ svc service.SucursalService }

func NewSucursalesHandler(svc service.SucursalService) *SucursalesHandler {
	return &SucursalesHandler{svc: svc}
}

// Crear godoc
// @Summary Alta de sucursal — dispara el correo con el codigo de verificacion
// @Tags sucursales
// @Accept json
// @Produce json
// @Param body body dto.CrearSucursalRequest true "Datos de la sucursal"
// @Success 201 {object} dto.SucursalResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/sucursales [post]
func (h *SucursalesHandler) Crear(c *gin.Context) {
	var req dto.CrearSucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetClaims(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SucursalesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetClaims(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SucursalesHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context(), middleware.GetClaims(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SucursalesHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarSucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.GetClaims(c), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Verificar godoc
// @Summary Verifica la sucursal con el codigo recibido por correo
// @Description Publica: el codigo en si es la credencial. Al verificar se crea
// @Description la cuenta empleado de la sucursal con el codigo como contraseña temporal.
// @Tags sucursales
// @Accept json
// @Produce json
// @Param id path string true "ID de la sucursal"
// @Param body body dto.VerificarSucursalRequest true "Codigo de 6 digitos"
// @Success 200 {object} dto.VerificarSucursalResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/sucursales/{id}/verificar [post]
func (h *SucursalesHandler) Verificar(c *gin.Context) {
	var req dto.VerificarSucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Verificar(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SucursalesHandler) Eliminar(c *gin.Context) {
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetClaims(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
