package repository

import (
	"context"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VentaRepository interface {
	Borrador

	CrearTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	ActualizarTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	// SiguienteCodigo draws the next value of ventas_codigo_seq.
	SiguienteCodigo(ctx context.Context, tx *gorm.DB) (int64, error)
	ObtenerEstado(ctx context.Context, codigo model.CodigoEstadoVenta) (*model.EstadoVenta, error)
	ObtenerMetodoPago(ctx context.Context, id uuid.UUID) (*model.MetodoPago, error)
	ListarMetodosPago(ctx context.Context) ([]model.MetodoPago, error)
	Listar(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct {
	borrador
	db *gorm.DB
}

func NewVentaRepository(db *gorm.DB) VentaRepository {
	return &ventaRepo{borrador: newBorrador(db), db: db}
}

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CrearTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return mapError(conn(ctx, r.db, tx).Omit("Cliente", "Estado", "MetodoPago", "Vendedor", "Detalles.Producto").Create(v).Error)
}

func (r *ventaRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	return first[model.Venta](r.db.WithContext(ctx), id, "Estado", "Cliente", "MetodoPago", "Detalles.Producto")
}

func (r *ventaRepo) ActualizarTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Save(v).Error)
}

func (r *ventaRepo) SiguienteCodigo(ctx context.Context, tx *gorm.DB) (int64, error) {
	// Uses a PostgreSQL sequence for atomic code generation
	var num int64
	err := conn(ctx, r.db, tx).Raw("SELECT nextval('ventas_codigo_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) ObtenerEstado(ctx context.Context, codigo model.CodigoEstadoVenta) (*model.EstadoVenta, error) {
	var e model.EstadoVenta
	if err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&e).Error; err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

func (r *ventaRepo) ObtenerMetodoPago(ctx context.Context, id uuid.UUID) (*model.MetodoPago, error) {
	return first[model.MetodoPago](r.db.WithContext(ctx), id)
}

func (r *ventaRepo) ListarMetodosPago(ctx context.Context) ([]model.MetodoPago, error) {
	var list []model.MetodoPago
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *ventaRepo) Listar(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.ClienteID != nil {
		q = q.Where("ventas.cliente_id = ?", *filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Joins("JOIN estados_venta ev ON ev.id = ventas.estado_id").Where("ev.codigo = ?", filter.Estado)
	}
	if filter.Desde != nil {
		q = q.Where("ventas.fecha_venta >= ?", *filter.Desde)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page(filter.Page, filter.Limit)
	err := q.Preload("Estado").Preload("Detalles.Producto").
		Order("ventas.fecha_venta DESC").
		Offset(offset).Limit(limit).
		Find(&ventas).Error

	return ventas, total, err
}
