package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoOrden: pendiente → recibido, exactly once, never back.
type EstadoOrden string

const (
	OrdenPendiente EstadoOrden = "pendiente"
	OrdenRecibida  EstadoOrden = "recibido"
)

// OrdenCompra is a purchase order. Receiving it is the only operation that
// flips Estado, increments stock and writes the entrada movements — all in
// one transaction.
type OrdenCompra struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroOrden int             `gorm:"uniqueIndex;not null"`
	ProveedorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Estado      EstadoOrden     `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID   uuid.UUID       `gorm:"type:uuid;not null"`
	RecibidaAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Proveedor *Proveedor        `gorm:"foreignKey:ProveedorID"`
	Items     []OrdenCompraItem `gorm:"foreignKey:OrdenCompraID"`
}

func (OrdenCompra) TableName() string { return "ordenes_compra" }

type OrdenCompraItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenCompraID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID    uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad      int             `gorm:"not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (OrdenCompraItem) TableName() string { return "orden_compra_items" }
