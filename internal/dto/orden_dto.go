package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

type OrdenFilter struct {
	Estado      string `form:"estado"` // pendiente | recibido | all
	ProveedorID string `form:"proveedor_id"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemOrdenRequest struct {
	ProductoID    string          `json:"producto_id"    validate:"required,uuid"`
	Cantidad      int             `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"required,gt=0"`
}

type CrearOrdenRequest struct {
	ProveedorID string             `json:"proveedor_id" validate:"required,uuid"`
	Items       []ItemOrdenRequest `json:"items"        validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemOrdenResponse struct {
	ProductoID    string          `json:"producto_id"`
	Producto      string          `json:"producto"`
	Cantidad      int             `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type OrdenResponse struct {
	ID          string              `json:"id"`
	NumeroOrden int                 `json:"numero_orden"`
	ProveedorID string              `json:"proveedor_id"`
	Proveedor   string              `json:"proveedor,omitempty"`
	Estado      string              `json:"estado"`
	Items       []ItemOrdenResponse `json:"items"`
	Total       decimal.Decimal     `json:"total"`
	RecibidaAt  *string             `json:"recibida_at,omitempty"`
	CreatedAt   string              `json:"created_at"`
}

type OrdenListResponse struct {
	Data  []OrdenResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
