package repository

import (
	"context"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	NextNumeroVenta(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	// SumPorMetodo aggregates the session's completed sales by payment method.
	SumPorMetodo(ctx context.Context, sesionID uuid.UUID) (map[model.MetodoPago]decimal.Decimal, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").Preload("Cliente").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) NextNumeroVenta(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence for atomic, gapless-enough sale numbering
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('ventas_numero_venta_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.MetodoPago != "" {
		q = q.Where("metodo_pago = ?", filter.MetodoPago)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Producto").Preload("Cliente").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) SumPorMetodo(ctx context.Context, sesionID uuid.UUID) (map[model.MetodoPago]decimal.Decimal, error) {
	type row struct {
		MetodoPago string
		Total      decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("metodo_pago, COALESCE(SUM(total), 0) AS total").
		Where("sesion_caja_id = ?", sesionID).
		Group("metodo_pago").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := map[model.MetodoPago]decimal.Decimal{
		model.PagoEfectivo:      decimal.Zero,
		model.PagoTarjeta:       decimal.Zero,
		model.PagoTransferencia: decimal.Zero,
	}
	for _, r := range rows {
		sums[model.MetodoPago(r.MetodoPago)] = r.Total
	}
	return sums, nil
}
