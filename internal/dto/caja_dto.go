package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type MovimientoManualRequest struct {
	Tipo     string          `json:"tipo"     validate:"required,oneof=ingreso gasto"`
	Concepto string          `json:"concepto" validate:"required,min=3"`
	Monto    decimal.Decimal `json:"monto"    validate:"required,gt=0"`
}

type CerrarCajaRequest struct {
	MontoFinal decimal.Decimal `json:"monto_final" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// TotalesCaja is the derived rollup of one session.
type TotalesCaja struct {
	TotalVentas        decimal.Decimal `json:"total_ventas"`
	TotalEfectivo      decimal.Decimal `json:"total_efectivo"`
	TotalTarjeta       decimal.Decimal `json:"total_tarjeta"`
	TotalTransferencia decimal.Decimal `json:"total_transferencia"`
	TotalGastos        decimal.Decimal `json:"total_gastos"`
	TotalIngresosExtra decimal.Decimal `json:"total_ingresos_extra"`
	// TotalCalculado = monto_inicial + total_ventas − total_gastos
	TotalCalculado decimal.Decimal `json:"total_calculado"`
}

type MovimientoManualResponse struct {
	ID        string          `json:"id"`
	Tipo      string          `json:"tipo"`
	Concepto  string          `json:"concepto"`
	Monto     decimal.Decimal `json:"monto"`
	UsuarioID string          `json:"usuario_id"`
	CreatedAt string          `json:"created_at"`
}

type SesionCajaResponse struct {
	ID           string                     `json:"id"`
	Fecha        string                     `json:"fecha"`
	Estado       string                     `json:"estado"`
	UsuarioID    string                     `json:"usuario_id"`
	Usuario      string                     `json:"usuario,omitempty"`
	MontoInicial decimal.Decimal            `json:"monto_inicial"`
	MontoFinal   *decimal.Decimal           `json:"monto_final,omitempty"`
	Totales      TotalesCaja                `json:"totales"`
	Diferencia   *decimal.Decimal           `json:"diferencia,omitempty"`
	Movimientos  []MovimientoManualResponse `json:"movimientos,omitempty"`
	AbiertaAt    string                     `json:"abierta_at"`
	CerradaAt    *string                    `json:"cerrada_at,omitempty"`
}
