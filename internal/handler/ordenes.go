package handler

import (
	"net/http"

	"almacenpos/internal/apierror"
	"almacenpos/internal/dto"
	"almacenpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdenesHandler struct{ svc service.OrdenService }

func NewOrdenesHandler(svc service.OrdenService) *OrdenesHandler { return &OrdenesHandler{svc: svc} }

// CrearOrden godoc
// @Summary      Crear orden de compra
// @Description  Registra una orden en estado pendiente. No afecta stock hasta su recepción.
// @Tags         ordenes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearOrdenRequest true "Detalle de la orden"
// @Success      201 {object} dto.OrdenResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/ordenes [post]
func (h *OrdenesHandler) CrearOrden(c *gin.Context) {
	var req dto.CrearOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := usuarioIDDesdeClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.CrearOrden(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecibirOrden godoc
// @Summary      Recibir orden de compra
// @Description  Marca la orden como recibida exactamente una vez: incrementa stock y registra los movimientos de entrada. Una segunda recepción responde 409 sin duplicar stock.
// @Tags         ordenes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la orden"
// @Success      200 {object} dto.OrdenResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ordenes/{id}/recibir [post]
func (h *OrdenesHandler) RecibirOrden(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	usuarioID, ok := usuarioIDDesdeClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.RecibirOrden(c.Request.Context(), usuarioID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerOrden returns one purchase order with its items.
func (h *OrdenesHandler) ObtenerOrden(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerOrden(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarOrdenes returns a paginated list filtered by estado / proveedor.
func (h *OrdenesHandler) ListarOrdenes(c *gin.Context) {
	var filter dto.OrdenFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListOrdenes(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar ordenes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
