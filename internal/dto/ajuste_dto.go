package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

type AjusteFilter struct {
	Estado     string `form:"estado"` // pendiente | aprobado | rechazado | all
	ProductoID string `form:"producto_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearAjusteRequest proposes a correction. stock_sistema, diferencia, valor
// and precio_unitario are captured server-side at proposal time.
type CrearAjusteRequest struct {
	ProductoID  string `json:"producto_id"  validate:"required,uuid"`
	StockFisico int    `json:"stock_fisico" validate:"min=0"`
	Motivo      string `json:"motivo"       validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AjusteResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto,omitempty"`
	StockSistema   int             `json:"stock_sistema"`
	StockFisico    int             `json:"stock_fisico"`
	Diferencia     int             `json:"diferencia"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Valor          decimal.Decimal `json:"valor"`
	Motivo         string          `json:"motivo"`
	Estado         string          `json:"estado"`
	UsuarioID      string          `json:"usuario_id"`
	ResueltoPor    *string         `json:"resuelto_por,omitempty"`
	ResueltoAt     *string         `json:"resuelto_at,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type AjusteListResponse struct {
	Data  []AjusteResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
