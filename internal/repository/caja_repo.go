package repository

import (
	"context"
	"time"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	CreateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	FindSesionAbiertaPorFecha(ctx context.Context, fecha string) (*model.SesionCaja, error)
	// FindSesionAbiertaPorFechaTx locks the open session FOR UPDATE inside
	// a transaction (single-open-session guard on abrir, stable read on
	// cerrar; the partial unique index is the backstop).
	FindSesionAbiertaPorFechaTx(tx *gorm.DB, fecha string) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindSesionByIDTx locks the session row (FOR UPDATE) so a rollup and a
	// close cannot interleave on it.
	FindSesionByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	// UpdateTotalesTx overwrites only the derived rollup columns. It never
	// touches estado, monto_final or cerrada_at: a recompute that raced a
	// close must not be able to reopen the session.
	UpdateTotalesTx(tx *gorm.DB, id uuid.UUID, t *dto.TotalesCaja, diferencia *decimal.Decimal) error
	// CerrarSesionTx closes the session with a compare-and-set on
	// estado='abierta'. applied=false means it was already closed.
	CerrarSesionTx(tx *gorm.DB, id uuid.UUID, montoFinal, diferencia decimal.Decimal, t *dto.TotalesCaja, at time.Time) (applied bool, err error)
	ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)

	CreateMovimientoManual(ctx context.Context, m *model.MovimientoManual) error
	ListMovimientosManuales(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoManual, error)
	// SumMovimientosManuales returns (ingresos, gastos) totals for a session.
	SumMovimientosManuales(ctx context.Context, sesionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Create(s).Error
}

func (r *cajaRepo) FindSesionAbiertaPorFecha(ctx context.Context, fecha string) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("fecha = ? AND estado = ?", fecha, model.SesionAbierta).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionAbiertaPorFechaTx(tx *gorm.DB, fecha string) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("fecha = ? AND estado = ?", fecha, model.SesionAbierta).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Usuario").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func totalesColumns(t *dto.TotalesCaja) map[string]interface{} {
	return map[string]interface{}{
		"total_ventas":         t.TotalVentas,
		"total_efectivo":       t.TotalEfectivo,
		"total_tarjeta":        t.TotalTarjeta,
		"total_transferencia":  t.TotalTransferencia,
		"total_gastos":         t.TotalGastos,
		"total_ingresos_extra": t.TotalIngresosExtra,
		"total_calculado":      t.TotalCalculado,
	}
}

func (r *cajaRepo) UpdateTotalesTx(tx *gorm.DB, id uuid.UUID, t *dto.TotalesCaja, diferencia *decimal.Decimal) error {
	cols := totalesColumns(t)
	if diferencia != nil {
		cols["diferencia"] = *diferencia
	}
	return tx.Model(&model.SesionCaja{}).Where("id = ?", id).Updates(cols).Error
}

func (r *cajaRepo) CerrarSesionTx(tx *gorm.DB, id uuid.UUID, montoFinal, diferencia decimal.Decimal, t *dto.TotalesCaja, at time.Time) (bool, error) {
	cols := totalesColumns(t)
	cols["estado"] = model.SesionCerrada
	cols["monto_final"] = montoFinal
	cols["diferencia"] = diferencia
	cols["cerrada_at"] = at

	res := tx.Model(&model.SesionCaja{}).
		Where("id = ? AND estado = ?", id, model.SesionAbierta).
		Updates(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cajaRepo) ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Usuario").
		Order("abierta_at DESC").
		Offset(offset).Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) CreateMovimientoManual(ctx context.Context, m *model.MovimientoManual) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) ListMovimientosManuales(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoManual, error) {
	var movs []model.MovimientoManual
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumMovimientosManuales(ctx context.Context, sesionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Tipo  string
		Total decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.MovimientoManual{}).
		Select("tipo, COALESCE(SUM(monto), 0) AS total").
		Where("sesion_caja_id = ?", sesionID).
		Group("tipo").
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	ingresos, gastos := decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch model.TipoMovimientoManual(r.Tipo) {
		case model.ManualIngreso:
			ingresos = r.Total
		case model.ManualGasto:
			gastos = r.Total
		}
	}
	return ingresos, gastos, nil
}
