package repository

import (
	"context"

	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CarritoRepository interface {
	// ObtenerPorUsuario loads the cart with its live items and their products.
	ObtenerPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Carrito, error)
	Crear(ctx context.Context, c *model.Carrito) error
	// ObtenerItem looks the (carrito, producto) row up including logically
	// deleted ones, since the unique key still holds them.
	ObtenerItem(ctx context.Context, carritoID, productoID uuid.UUID) (*model.ItemCarrito, error)
	GuardarItem(ctx context.Context, it *model.ItemCarrito) error
	EliminarItem(ctx context.Context, carritoID, productoID uuid.UUID) error
	VaciarTx(ctx context.Context, tx *gorm.DB, carritoID uuid.UUID) error
}

type carritoRepo struct{ db *gorm.DB }

func NewCarritoRepository(db *gorm.DB) CarritoRepository { return &carritoRepo{db: db} }

func (r *carritoRepo) ObtenerPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Carrito, error) {
	var c model.Carrito
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("fecha_agregado DESC") }).
		Preload("Items.Producto").
		Where("usuario_id = ?", usuarioID).First(&c).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *carritoRepo) Crear(ctx context.Context, c *model.Carrito) error {
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *carritoRepo) ObtenerItem(ctx context.Context, carritoID, productoID uuid.UUID) (*model.ItemCarrito, error) {
	var it model.ItemCarrito
	err := r.db.WithContext(ctx).Unscoped().
		Where("carrito_id = ? AND producto_id = ?", carritoID, productoID).First(&it).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &it, nil
}

// GuardarItem upserts by primary key. Unscoped lets it revive a logically
// deleted row (DeletedAt cleared by the caller).
func (r *carritoRepo) GuardarItem(ctx context.Context, it *model.ItemCarrito) error {
	return mapError(r.db.WithContext(ctx).Unscoped().Omit(clause.Associations).Save(it).Error)
}

func (r *carritoRepo) EliminarItem(ctx context.Context, carritoID, productoID uuid.UUID) error {
	res := r.db.WithContext(ctx).Unscoped().
		Where("carrito_id = ? AND producto_id = ?", carritoID, productoID).
		Delete(&model.ItemCarrito{})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}

func (r *carritoRepo) VaciarTx(ctx context.Context, tx *gorm.DB, carritoID uuid.UUID) error {
	return mapError(conn(ctx, r.db, tx).Unscoped().
		Where("carrito_id = ?", carritoID).Delete(&model.ItemCarrito{}).Error)
}
