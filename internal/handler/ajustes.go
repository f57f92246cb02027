package handler

import (
	"context"
	"net/http"

	"almacenpos/internal/apierror"
	"almacenpos/internal/dto"
	"almacenpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AjustesHandler struct{ svc service.AjusteService }

func NewAjustesHandler(svc service.AjusteService) *AjustesHandler { return &AjustesHandler{svc: svc} }

// CrearAjuste godoc
// @Summary      Proponer ajuste de inventario
// @Description  Registra una propuesta de corrección a partir de un conteo físico. Captura stock de sistema, diferencia y valorización; no toca stock hasta su aprobación.
// @Tags         ajustes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearAjusteRequest true "Conteo físico y motivo"
// @Success      201 {object} dto.AjusteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/ajustes [post]
func (h *AjustesHandler) CrearAjuste(c *gin.Context) {
	var req dto.CrearAjusteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := usuarioIDDesdeClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.CrearAjuste(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AprobarAjuste godoc
// @Summary      Aprobar ajuste
// @Description  Resuelve el ajuste de forma terminal: fija el stock al conteo físico y registra el movimiento. Una segunda resolución responde 409.
// @Tags         ajustes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del ajuste"
// @Success      200 {object} dto.AjusteResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ajustes/{id}/aprobar [post]
func (h *AjustesHandler) AprobarAjuste(c *gin.Context) {
	h.resolver(c, h.svc.AprobarAjuste)
}

// RechazarAjuste closes the proposal without stock effect, terminally.
func (h *AjustesHandler) RechazarAjuste(c *gin.Context) {
	h.resolver(c, h.svc.RechazarAjuste)
}

func (h *AjustesHandler) resolver(c *gin.Context, fn func(ctx context.Context, usuarioID, id uuid.UUID) (*dto.AjusteResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	usuarioID, ok := usuarioIDDesdeClaims(c)
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), usuarioID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAjuste returns one adjustment proposal.
func (h *AjustesHandler) ObtenerAjuste(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerAjuste(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarAjustes returns a paginated list filtered by estado / producto.
func (h *AjustesHandler) ListarAjustes(c *gin.Context) {
	var filter dto.AjusteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListAjustes(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar ajustes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
