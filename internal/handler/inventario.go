package handler

import (
	"net/http"

	"almacenpos/internal/apierror"
	"almacenpos/internal/dto"
	"almacenpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// ListarMovimientos godoc
// @Summary      Historial de movimientos de stock
// @Description  Lista paginada del libro de movimientos, filtrable por producto, tipo, concepto y rango de fechas.
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id query string false "UUID del producto"
// @Param        tipo        query string false "entrada | salida"
// @Param        concepto    query string false "venta | compra | ajuste"
// @Param        desde       query string false "YYYY-MM-DD"
// @Param        hasta       query string false "YYYY-MM-DD"
// @Success      200 {object} dto.MovimientoListResponse
// @Router       /v1/inventario/movimientos [get]
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertas returns products at or below their stock mínimo.
func (h *InventarioHandler) Alertas(c *gin.Context) {
	alertas, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar alertas"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alertas, "total": len(alertas)})
}

// Recalcular godoc
// @Summary      Recalcular stock desde el libro de movimientos
// @Description  Repara el stock de un producto cuando difiere de la suma firmada de sus movimientos.
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del producto"
// @Success      200 {object} dto.RecalculoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/inventario/recalcular/{id} [post]
func (h *InventarioHandler) Recalcular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.RecomputarDesdeLedger(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
