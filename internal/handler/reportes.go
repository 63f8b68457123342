package handler

import (
	"ceats/internal/middleware"
	"ceats/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// PedidosPDF godoc
// @Summary Descarga el reporte de pedidos en PDF
// @Tags reportes
// @Produce application/pdf
// @Param fecha query string false "Filtro de fecha YYYY-MM-DD"
// @Success 200 {file} binary
// @Failure 403 {object} apierror.APIError
// @Router /api/reportes/pedidos.pdf [get]
func (h *ReportesHandler) PedidosPDF(c *gin.Context) {
	path, err := h.svc.GenerarReportePedidos(c.Request.Context(), middleware.GetClaims(c), c.Query("fecha"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reporte_pedidos.pdf"`)
	c.File(path)
}
