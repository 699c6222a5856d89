package repository

import (
	"context"

	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoRepository covers the reference data that classifies resources:
// categorías, tipos, estados and etiquetas.
type CatalogoRepository interface {
	Borrador

	CrearCategoria(ctx context.Context, c *model.Categoria) error
	ListarCategorias(ctx context.Context) ([]model.Categoria, error)
	ObtenerCategoria(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	ObtenerCategoriaPorSlug(ctx context.Context, slug string) (*model.Categoria, error)
	ActualizarCategoria(ctx context.Context, c *model.Categoria) error

	CrearTipo(ctx context.Context, t *model.TipoRecurso) error
	ListarTipos(ctx context.Context) ([]model.TipoRecurso, error)

	CrearEstado(ctx context.Context, e *model.EstadoRecurso) error
	ListarEstados(ctx context.Context) ([]model.EstadoRecurso, error)
	ObtenerEstado(ctx context.Context, id uuid.UUID) (*model.EstadoRecurso, error)

	CrearEtiqueta(ctx context.Context, e *model.EtiquetaRecurso) error
	ListarEtiquetas(ctx context.Context) ([]model.EtiquetaRecurso, error)
	// ObtenerEtiquetas returns the live tags among ids; unknown ids are skipped.
	ObtenerEtiquetas(ctx context.Context, ids []uuid.UUID) ([]model.EtiquetaRecurso, error)
}

type catalogoRepository struct {
	borrador
	db *gorm.DB
}

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository {
	return &catalogoRepository{borrador: newBorrador(db), db: db}
}

// ── Categorías ────────────────────────────────────────────────────────────────

func (r *catalogoRepository) CrearCategoria(ctx context.Context, c *model.Categoria) error {
	return mapError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *catalogoRepository) ListarCategorias(ctx context.Context) ([]model.Categoria, error) {
	var list []model.Categoria
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *catalogoRepository) ObtenerCategoria(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	return first[model.Categoria](r.db.WithContext(ctx), id)
}

func (r *catalogoRepository) ObtenerCategoriaPorSlug(ctx context.Context, slug string) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).Unscoped().Where("slug = ?", slug).First(&c).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *catalogoRepository) ActualizarCategoria(ctx context.Context, c *model.Categoria) error {
	return mapError(r.db.WithContext(ctx).Save(c).Error)
}

// ── Tipos ─────────────────────────────────────────────────────────────────────

func (r *catalogoRepository) CrearTipo(ctx context.Context, t *model.TipoRecurso) error {
	return mapError(r.db.WithContext(ctx).Create(t).Error)
}

func (r *catalogoRepository) ListarTipos(ctx context.Context) ([]model.TipoRecurso, error) {
	var list []model.TipoRecurso
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}

// ── Estados ───────────────────────────────────────────────────────────────────

func (r *catalogoRepository) CrearEstado(ctx context.Context, e *model.EstadoRecurso) error {
	return mapError(r.db.WithContext(ctx).Create(e).Error)
}

func (r *catalogoRepository) ListarEstados(ctx context.Context) ([]model.EstadoRecurso, error) {
	var list []model.EstadoRecurso
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *catalogoRepository) ObtenerEstado(ctx context.Context, id uuid.UUID) (*model.EstadoRecurso, error) {
	return first[model.EstadoRecurso](r.db.WithContext(ctx), id)
}

// ── Etiquetas ─────────────────────────────────────────────────────────────────

func (r *catalogoRepository) CrearEtiqueta(ctx context.Context, e *model.EtiquetaRecurso) error {
	return mapError(r.db.WithContext(ctx).Create(e).Error)
}

func (r *catalogoRepository) ListarEtiquetas(ctx context.Context) ([]model.EtiquetaRecurso, error) {
	var list []model.EtiquetaRecurso
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *catalogoRepository) ObtenerEtiquetas(ctx context.Context, ids []uuid.UUID) ([]model.EtiquetaRecurso, error) {
	var list []model.EtiquetaRecurso
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("nombre asc").Find(&list).Error
	return list, err
}
