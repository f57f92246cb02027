package repository

import (
	"context"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovimientoRepository interface {
	CreateTx(tx *gorm.DB, m *model.Movimiento) error
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error)
	// SumDelta returns the signed movement sum for one product:
	// Σ(entradas) − Σ(salidas). Used by the recompute-from-ledger repair.
	SumDelta(ctx context.Context, productoID uuid.UUID) (int, error)
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository {
	return &movimientoRepo{db: db}
}

func (r *movimientoRepo) CreateTx(tx *gorm.DB, m *model.Movimiento) error {
	return tx.Create(m).Error
}

func (r *movimientoRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Movimiento{}).Preload("Producto")

	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Concepto != "" {
		q = q.Where("concepto = ?", filter.Concepto)
	}
	if filter.Desde != "" {
		q = q.Where("DATE(created_at) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(created_at) <= ?", filter.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var movimientos []model.Movimiento
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&movimientos).Error
	return movimientos, total, err
}

func (r *movimientoRepo) SumDelta(ctx context.Context, productoID uuid.UUID) (int, error) {
	var delta int
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(CASE WHEN tipo = 'entrada' THEN cantidad ELSE -cantidad END), 0)
		FROM movimientos
		WHERE producto_id = ?
	`, productoID).Scan(&delta).Error
	return delta, err
}
