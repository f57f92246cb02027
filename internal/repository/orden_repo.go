package repository

import (
	"context"
	"time"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrdenRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.OrdenCompra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenCompra, error)
	NextNumeroOrden(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.OrdenFilter) ([]model.OrdenCompra, int64, error)
	// MarcarRecibidaTx performs the atomic pendiente→recibido compare-and-set:
	// UPDATE … SET estado='recibido' WHERE id=? AND estado='pendiente'.
	// applied=false means the order was already received (or gone) — the
	// caller must treat that as AlreadyResolved, never as success.
	MarcarRecibidaTx(tx *gorm.DB, id uuid.UUID, at time.Time) (applied bool, err error)
	DB() *gorm.DB
}

type ordenRepo struct{ db *gorm.DB }

func NewOrdenRepository(db *gorm.DB) OrdenRepository { return &ordenRepo{db: db} }

func (r *ordenRepo) DB() *gorm.DB { return r.db }

func (r *ordenRepo) Create(ctx context.Context, tx *gorm.DB, o *model.OrdenCompra) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *ordenRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenCompra, error) {
	var o model.OrdenCompra
	err := r.db.WithContext(ctx).Preload("Items.Producto").Preload("Proveedor").First(&o, id).Error
	return &o, err
}

func (r *ordenRepo) NextNumeroOrden(ctx context.Context, tx *gorm.DB) (int, error) {
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('ordenes_numero_orden_seq')").Scan(&num).Error
	return num, err
}

func (r *ordenRepo) List(ctx context.Context, filter dto.OrdenFilter) ([]model.OrdenCompra, int64, error) {
	var ordenes []model.OrdenCompra
	var total int64

	q := r.db.WithContext(ctx).Model(&model.OrdenCompra{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Producto").Preload("Proveedor").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ordenes).Error
	return ordenes, total, err
}

func (r *ordenRepo) MarcarRecibidaTx(tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	res := tx.Model(&model.OrdenCompra{}).
		Where("id = ? AND estado = ?", id, model.OrdenPendiente).
		Updates(map[string]interface{}{
			"estado":      model.OrdenRecibida,
			"recibida_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
