package repository

import (
	"context"
	"time"

	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStockFilter narrows the stock ledger. ReferenciaID selects the
// movements of one sale (its stock exit and, if voided, the return).
type MovimientoStockFilter struct {
	ProductoID   *uuid.UUID
	ReferenciaID *uuid.UUID
	Tipo         string
	Desde        *time.Time
	Hasta        *time.Time
	Page         int
	Limit        int
}

// MovimientoStockRepository is append-only: movements are never edited.
type MovimientoStockRepository interface {
	CrearTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoStock) error
	Listar(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CrearTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoStock) error {
	return mapError(conn(ctx, r.db, tx).Omit("Producto").Create(m).Error)
}

func (r *movimientoStockRepo) Listar(ctx context.Context, f MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if f.ReferenciaID != nil {
		q = q.Where("referencia_id = ?", *f.ReferenciaID)
	}
	if f.ProductoID != nil {
		q = q.Where("producto_id = ?", *f.ProductoID)
	}
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if f.Desde != nil {
		q = q.Where("created_at >= ?", *f.Desde)
	}
	if f.Hasta != nil {
		q = q.Where("created_at < ?", *f.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := page(f.Page, f.Limit)
	var out []model.MovimientoStock
	err := q.Preload("Producto", func(db *gorm.DB) *gorm.DB { return db.Unscoped().Select("id", "codigo", "nombre") }).
		Order("created_at DESC, id").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, total, err
}
