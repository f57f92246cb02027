package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Codigo    string `form:"codigo"`
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	// Estado filters on the DERIVED state: activo | stock_bajo | agotado
	Estado      string `form:"estado"`
	ProveedorID string `form:"proveedor_id"`
	// Activo: "false" = inactivos, "all" = todos, default = activos
	Activo string `form:"activo"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo      string          `json:"codigo"       validate:"required"`
	Nombre      string          `json:"nombre"       validate:"required"`
	Descripcion *string         `json:"descripcion"`
	Categoria   string          `json:"categoria"    validate:"required"`
	Precio      decimal.Decimal `json:"precio"       validate:"required,gt=0"`
	PrecioCosto decimal.Decimal `json:"precio_costo" validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
	ProveedorID *string         `json:"proveedor_id" validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre      string           `json:"nombre"`
	Descripcion *string          `json:"descripcion"`
	Categoria   string           `json:"categoria"`
	Precio      *decimal.Decimal `json:"precio"       validate:"omitempty,gt=0"`
	PrecioCosto *decimal.Decimal `json:"precio_costo" validate:"omitempty,min=0"`
	StockMinimo *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	ProveedorID *string          `json:"proveedor_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion,omitempty"`
	Categoria   string          `json:"categoria"`
	Precio      decimal.Decimal `json:"precio"`
	PrecioCosto decimal.Decimal `json:"precio_costo"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stock_minimo"`
	// Estado is derived from stock vs stock_minimo on every read.
	Estado      string  `json:"estado"`
	ProveedorID *string `json:"proveedor_id,omitempty"`
	Proveedor   string  `json:"proveedor,omitempty"`
	Activo      bool    `json:"activo"`
	CreatedAt   string  `json:"created_at"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
