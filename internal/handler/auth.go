package handler

import (
	"net/http"

	"ceats/internal/dto"
	"ceats/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarPassword godoc
// @Summary Cambio de contraseña (incluye el cambio forzado del primer login)
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.CambiarPasswordRequest true "Credenciales actuales y nueva contraseña"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} apierror.APIError
// @Router /api/cambiar-password [post]
func (h *AuthHandler) CambiarPassword(c *gin.Context) {
	var req dto.CambiarPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.CambiarPassword(c.Request.Context(), req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerificarEmail godoc
// @Summary Verificacion del correo con el codigo de 6 digitos
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.VerificarEmailRequest true "Email y codigo"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} apierror.APIError
// @Router /api/verificar-email [post]
func (h *AuthHandler) VerificarEmail(c *gin.Context) {
	var req dto.VerificarEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.VerificarEmail(c.Request.Context(), req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
