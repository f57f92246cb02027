package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha      string `form:"fecha"` // YYYY-MM-DD; empty = today
	ClienteID  string `form:"cliente_id"`
	MetodoPago string `form:"metodo_pago"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	ClienteID  *string            `json:"cliente_id"  validate:"omitempty,uuid"`
	MetodoPago string             `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia"`
	Items      []ItemVentaRequest `json:"items"       validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID           string              `json:"id"`
	NumeroVenta  int                 `json:"numero_venta"`
	ClienteID    *string             `json:"cliente_id,omitempty"`
	Cliente      string              `json:"cliente,omitempty"`
	SesionCajaID string              `json:"sesion_caja_id"`
	UsuarioID    string              `json:"usuario_id"`
	MetodoPago   string              `json:"metodo_pago"`
	Items        []ItemVentaResponse `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	CreatedAt    string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
