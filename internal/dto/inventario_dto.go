package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// MovimientoFilter is bound from the query string of GET /v1/inventario/movimientos.
type MovimientoFilter struct {
	ProductoID string `form:"producto_id"`
	Tipo       string `form:"tipo"`     // entrada | salida
	Concepto   string `form:"concepto"` // venta | compra | ajuste
	Desde      string `form:"desde"`    // YYYY-MM-DD
	Hasta      string `form:"hasta"`    // YYYY-MM-DD
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto,omitempty"`
	Tipo           string          `json:"tipo"`
	Concepto       string          `json:"concepto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	StockAnterior  int             `json:"stock_anterior"`
	StockNuevo     int             `json:"stock_nuevo"`
	Documento      string          `json:"documento"`
	UsuarioID      string          `json:"usuario_id"`
	CreatedAt      string          `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
	Estado      string `json:"estado"` // stock_bajo | agotado
}

// RecalculoResponse reports the result of a recompute-from-ledger repair.
type RecalculoResponse struct {
	ProductoID      string `json:"producto_id"`
	StockAlmacenado int    `json:"stock_almacenado"`
	StockLedger     int    `json:"stock_ledger"`
	Corregido       bool   `json:"corregido"`
}
