package repository

import (
	"context"
	"time"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AjusteRepository interface {
	Create(ctx context.Context, a *model.Ajuste) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ajuste, error)
	List(ctx context.Context, filter dto.AjusteFilter) ([]model.Ajuste, int64, error)
	// ResolverTx flips a pendiente adjustment to its terminal estado with an
	// atomic compare-and-set. applied=false means it was already resolved.
	ResolverTx(tx *gorm.DB, id uuid.UUID, estado model.EstadoAjuste, resueltoPor uuid.UUID, at time.Time) (applied bool, err error)
	DB() *gorm.DB
}

type ajusteRepo struct{ db *gorm.DB }

func NewAjusteRepository(db *gorm.DB) AjusteRepository { return &ajusteRepo{db: db} }

func (r *ajusteRepo) DB() *gorm.DB { return r.db }

func (r *ajusteRepo) Create(ctx context.Context, a *model.Ajuste) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ajusteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ajuste, error) {
	var a model.Ajuste
	err := r.db.WithContext(ctx).Preload("Producto").First(&a, id).Error
	return &a, err
}

func (r *ajusteRepo) List(ctx context.Context, filter dto.AjusteFilter) ([]model.Ajuste, int64, error) {
	var ajustes []model.Ajuste
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Ajuste{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Producto").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ajustes).Error
	return ajustes, total, err
}

func (r *ajusteRepo) ResolverTx(tx *gorm.DB, id uuid.UUID, estado model.EstadoAjuste, resueltoPor uuid.UUID, at time.Time) (bool, error) {
	res := tx.Model(&model.Ajuste{}).
		Where("id = ? AND estado = ?", id, model.AjustePendiente).
		Updates(map[string]interface{}{
			"estado":       estado,
			"resuelto_por": resueltoPor,
			"resuelto_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
