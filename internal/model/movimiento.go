package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoMovimiento marks the direction of a stock change.
type TipoMovimiento string

// ConceptoMovimiento names the operation that originated the change.
type ConceptoMovimiento string

const (
	MovimientoEntrada TipoMovimiento = "entrada"
	MovimientoSalida  TipoMovimiento = "salida"

	ConceptoVenta  ConceptoMovimiento = "venta"
	ConceptoCompra ConceptoMovimiento = "compra"
	ConceptoAjuste ConceptoMovimiento = "ajuste"
)

// Movimiento is one immutable entry of the stock ledger. It is created in the
// same transaction that mutates producto.stock and is NEVER updated or deleted.
// Cantidad is always positive; Tipo carries the sign.
type Movimiento struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	Tipo           TipoMovimiento     `gorm:"type:varchar(10);not null"`
	Concepto       ConceptoMovimiento `gorm:"type:varchar(10);not null"`
	Cantidad       int                `gorm:"not null"`
	PrecioUnitario decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	StockAnterior  int                `gorm:"not null"`
	StockNuevo     int                `gorm:"not null"`
	// Documento is the human-readable reference, e.g. "Venta #42" / "Orden #7".
	Documento    string     `gorm:"not null"`
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Movimiento) TableName() string { return "movimientos" }

// Delta returns the signed stock effect of the movement.
func (m *Movimiento) Delta() int {
	if m.Tipo == MovimientoSalida {
		return -m.Cantidad
	}
	return m.Cantidad
}
