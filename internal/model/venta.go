package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetodoPago for a sale. The caja rollup groups sales by this field.
type MetodoPago string

const (
	PagoEfectivo      MetodoPago = "efectivo"
	PagoTarjeta       MetodoPago = "tarjeta"
	PagoTransferencia MetodoPago = "transferencia"
)

// Venta is a completed point-of-sale checkout. It is created atomically with
// its stock decrements and salida movements, and is immutable thereafter.
type Venta struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroVenta  int             `gorm:"uniqueIndex;not null"`
	ClienteID    *uuid.UUID      `gorm:"type:uuid;index"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MetodoPago   MetodoPago      `gorm:"type:varchar(20);not null"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time

	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
	Items   []VentaItem `gorm:"foreignKey:VentaID"`
}

type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
