package handler

import (
	"net/http"
	"path/filepath"
	"strconv"

	"almacenpos/internal/apierror"
	"almacenpos/internal/dto"
	"almacenpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// AbrirCaja godoc
// @Summary      Abrir caja del día
// @Description  Abre la sesión de caja de hoy con el monto inicial contado. Solo puede existir una sesión abierta por día.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirCajaRequest true "Monto inicial"
// @Success      201 {object} dto.SesionCajaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/caja/abrir [post]
func (h *CajaHandler) AbrirCaja(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := usuarioIDDesdeClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.AbrirCaja(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SesionActiva godoc
// @Summary      Sesión de caja activa
// @Description  Retorna la sesión abierta de hoy con totales recalculados desde las ventas y movimientos.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SesionCajaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/caja/activa [get]
func (h *CajaHandler) SesionActiva(c *gin.Context) {
	resp, err := h.svc.SesionActiva(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento appends an ingreso/gasto to the open session.
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := usuarioIDDesdeClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.RegistrarMovimientoManual(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CerrarCaja godoc
// @Summary      Cerrar caja
// @Description  Recalcula totales, registra el monto contado y la diferencia, y cierra la sesión. Una diferencia distinta de cero no bloquea el cierre.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CerrarCajaRequest true "Monto final contado"
// @Success      200 {object} dto.SesionCajaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/caja/cerrar [post]
func (h *CajaHandler) CerrarCaja(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := usuarioIDDesdeClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.CerrarCaja(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerSesion returns one session with its manual movements.
func (h *CajaHandler) ObtenerSesion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerSesion(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns the paginated session history.
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 30
	}

	sesiones, total, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar sesiones"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sesiones, "total": total, "page": page, "limit": limit})
}

// ReporteCierre godoc
// @Summary      Reporte de cierre en PDF
// @Tags         caja
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID de la sesión"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Router       /v1/caja/{id}/reporte [get]
func (h *CajaHandler) ReporteCierre(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	path, err := h.svc.GenerarReporteCierre(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
