package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoSesion: abierta → cerrada, irreversible.
type EstadoSesion string

const (
	SesionAbierta EstadoSesion = "abierta"
	SesionCerrada EstadoSesion = "cerrada"
)

// TipoMovimientoManual classifies cash drawer entries outside of sales.
type TipoMovimientoManual string

const (
	ManualIngreso TipoMovimientoManual = "ingreso"
	ManualGasto   TipoMovimientoManual = "gasto"
)

// SesionCaja is one daily cash register window. At most one session may be
// abierta per fecha (partial unique index, see infra.NewDatabase).
//
// The Total* columns are a derived rollup over the venta / movimiento manual
// stream — a cache, never authoritative. They are overwritten on every
// recompute; a fresh recomputation always wins over stored values.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha        string          `gorm:"type:varchar(10);not null;index"` // YYYY-MM-DD
	Estado       EstadoSesion    `gorm:"type:varchar(20);not null;default:'abierta'"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoFinal   *decimal.Decimal `gorm:"type:decimal(12,2)"`

	TotalVentas        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTarjeta       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalGastos        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalIngresosExtra decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCalculado     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Diferencia = monto_final − total_calculado, recorded at close.
	// Informational only: a session is allowed to close unbalanced.
	Diferencia *decimal.Decimal `gorm:"type:decimal(12,2)"`

	AbiertaAt time.Time
	CerradaAt *time.Time

	Usuario     *Usuario           `gorm:"foreignKey:UsuarioID"`
	Movimientos []MovimientoManual `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// MovimientoManual is an immutable manual cash entry (ingreso or gasto)
// inside a session. Like stock movements, these are never updated or deleted.
type MovimientoManual struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Tipo         TipoMovimientoManual `gorm:"type:varchar(10);not null"`
	Concepto     string               `gorm:"not null"`
	Monto        decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	UsuarioID    uuid.UUID            `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
}

func (MovimientoManual) TableName() string { return "movimientos_manuales" }
