package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoAjuste: pendiente → aprobado | rechazado. Both outcomes are terminal.
type EstadoAjuste string

const (
	AjustePendiente EstadoAjuste = "pendiente"
	AjusteAprobado  EstadoAjuste = "aprobado"
	AjusteRechazado EstadoAjuste = "rechazado"
)

// Ajuste is a proposed stock correction based on a physical count.
// StockSistema, Diferencia, PrecioUnitario and Valor are captured at proposal
// time; creating the proposal has no stock effect. Approval sets the product
// stock to StockFisico (absolute — the count is ground truth) and writes the
// corresponding movimiento.
type Ajuste struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockSistema   int             `gorm:"not null"`
	StockFisico    int             `gorm:"not null"`
	Diferencia     int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Valor          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo         string          `gorm:"not null"`
	Estado         EstadoAjuste    `gorm:"type:varchar(20);not null;default:'pendiente'"`
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null"`
	ResueltoPor    *uuid.UUID      `gorm:"type:uuid"`
	ResueltoAt     *time.Time
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Ajuste) TableName() string { return "ajustes" }
