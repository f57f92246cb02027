package handler

import (
	"net/http"
	"strconv"

	"almacenpos/internal/apierror"
	"almacenpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// ResumenInventario godoc
// @Summary      Resumen valorizado del inventario
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ResumenInventarioResponse
// @Router       /v1/reportes/inventario [get]
func (h *ReportesHandler) ResumenInventario(c *gin.Context) {
	resp, err := h.svc.ResumenInventario(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar resumen"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasDiarias aggregates sales per calendar day over a date range.
func (h *ReportesHandler) VentasDiarias(c *gin.Context) {
	resp, err := h.svc.VentasDiarias(c.Request.Context(), c.Query("desde"), c.Query("hasta"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProductos returns the best sellers over a date range.
func (h *ReportesHandler) TopProductos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	resp, err := h.svc.TopProductos(c.Request.Context(), c.Query("desde"), c.Query("hasta"), limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
