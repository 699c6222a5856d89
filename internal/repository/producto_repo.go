package repository

import (
	"context"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for shop products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Borrador

	Crear(ctx context.Context, p *model.Producto) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Actualizar(ctx context.Context, p *model.Producto) error
	// ListarParaReponer returns live products at or below their minimum stock.
	ListarParaReponer(ctx context.Context) ([]model.Producto, error)

	// BloquearTx loads the product under SELECT ... FOR UPDATE.
	BloquearTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	// AjustarStockTx applies delta to stock. It fails with
	// model.ErrStockInsuficiente instead of letting stock go negative.
	AjustarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error

	CrearCategoria(ctx context.Context, c *model.CategoriaProducto) error
	ListarCategorias(ctx context.Context) ([]model.CategoriaProducto, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct {
	borrador
	db *gorm.DB
}

func NewProductoRepository(db *gorm.DB) ProductoRepository {
	return &productoRepo{borrador: newBorrador(db), db: db}
}

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Crear(ctx context.Context, p *model.Producto) error {
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *productoRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	return first[model.Producto](r.db.WithContext(ctx), id)
}

func (r *productoRepo) ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	if err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&p).Error; err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *productoRepo) Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("activo = true")

	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.CategoriaID != nil {
		q = q.Where("categoria_id = ?", *filter.CategoriaID)
	}
	if filter.Destacados {
		q = q.Where("destacado = true")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page(filter.Page, filter.Limit)
	err := q.Order("nombre ASC").Limit(limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Actualizar(ctx context.Context, p *model.Producto) error {
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

func (r *productoRepo) ListarParaReponer(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Where("activo = true AND stock <= stock_minimo").
		Order("stock ASC, nombre ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) BloquearTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return first[model.Producto](conn(ctx, r.db, tx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *productoRepo) AjustarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	res := conn(ctx, r.db, tx).Model(&model.Producto{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrStockInsuficiente
	}
	return nil
}

// ── Categorías de producto ────────────────────────────────────────────────────

func (r *productoRepo) CrearCategoria(ctx context.Context, c *model.CategoriaProducto) error {
	return mapError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *productoRepo) ListarCategorias(ctx context.Context) ([]model.CategoriaProducto, error) {
	var list []model.CategoriaProducto
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}
