package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoProducto is derived from stock vs stock_minimo — it is never stored.
type EstadoProducto string

const (
	ProductoActivo    EstadoProducto = "activo"
	ProductoStockBajo EstadoProducto = "stock_bajo"
	ProductoAgotado   EstadoProducto = "agotado"
)

// Producto is the catalog entry that carries the authoritative stock count.
// Stock is mutated only by the ledger operations (venta, recepción de orden,
// ajuste aprobado), always inside the transaction that writes the movimiento.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	Categoria   string          `gorm:"not null"`
	Precio      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioCosto decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	StockMinimo int             `gorm:"not null;default:5"`
	ProveedorID *uuid.UUID      `gorm:"type:uuid;index"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

// Estado derives the product status from the stock counters.
func (p *Producto) Estado() EstadoProducto {
	switch {
	case p.Stock <= 0:
		return ProductoAgotado
	case p.Stock <= p.StockMinimo:
		return ProductoStockBajo
	default:
		return ProductoActivo
	}
}

// Valorizado returns precio_costo × stock, used by the valuation report.
func (p *Producto) Valorizado() decimal.Decimal {
	return p.PrecioCosto.Mul(decimal.NewFromInt(int64(p.Stock)))
}
