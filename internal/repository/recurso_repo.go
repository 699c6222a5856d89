package repository

import (
	"context"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecursoRepository defines the data access contract for club resources.
// Methods ending in Tx run on the given transaction; a nil tx falls back to
// the repository's own handle.
type RecursoRepository interface {
	Borrador

	Crear(ctx context.Context, r *model.Recurso) error
	// ObtenerPorID preloads categoría, tipo, estado and etiquetas.
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Recurso, error)
	Listar(ctx context.Context, filter dto.RecursoFilter) ([]model.Recurso, int64, error)
	// ActualizarTx saves the editable columns. cantidad_disponible is left to
	// ActualizarDisponibleTx so a concurrent rental is never overwritten.
	ActualizarTx(ctx context.Context, tx *gorm.DB, r *model.Recurso) error
	ReemplazarEtiquetas(ctx context.Context, r *model.Recurso, etiquetas []model.EtiquetaRecurso) error

	// BloquearTx loads the resource with tipo and estado under SELECT ... FOR UPDATE.
	BloquearTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Recurso, error)
	// UnidadesComprometidasTx sums the unreturned units of the resource held by
	// live rentals whose status is still open.
	UnidadesComprometidasTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int, error)
	ActualizarDisponibleTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, disponible int) error
	ActualizarEstadoTx(ctx context.Context, tx *gorm.DB, id, estadoID uuid.UUID) error

	CrearMantenimientoTx(ctx context.Context, tx *gorm.DB, m *model.MantenimientoRecurso) error
	ObtenerMantenimiento(ctx context.Context, id uuid.UUID) (*model.MantenimientoRecurso, error)
	ActualizarMantenimientoTx(ctx context.Context, tx *gorm.DB, m *model.MantenimientoRecurso) error
	ListarMantenimientos(ctx context.Context, recursoID uuid.UUID) ([]model.MantenimientoRecurso, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type recursoRepo struct {
	borrador
	db *gorm.DB
}

func NewRecursoRepository(db *gorm.DB) RecursoRepository {
	return &recursoRepo{borrador: newBorrador(db), db: db}
}

func (r *recursoRepo) DB() *gorm.DB { return r.db }

func (r *recursoRepo) Crear(ctx context.Context, rec *model.Recurso) error {
	return mapError(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *recursoRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Recurso, error) {
	return first[model.Recurso](r.db.WithContext(ctx), id, "Categoria", "Tipo", "Estado", "Etiquetas")
}

func (r *recursoRepo) Listar(ctx context.Context, filter dto.RecursoFilter) ([]model.Recurso, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Recurso{})
	if filter.Nombre != "" {
		q = q.Where("recursos.nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.CategoriaID != nil {
		q = q.Where("recursos.categoria_id = ?", *filter.CategoriaID)
	}
	if filter.TipoID != nil {
		q = q.Where("recursos.tipo_id = ?", *filter.TipoID)
	}
	if filter.SoloLibres {
		q = q.Joins("JOIN estados_recurso er ON er.id = recursos.estado_id").
			Where("er.disponible = true AND recursos.cantidad_disponible > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page(filter.Page, filter.Limit)
	var list []model.Recurso
	err := q.Preload("Categoria").Preload("Tipo").Preload("Estado").Preload("Etiquetas").
		Order("recursos.nombre ASC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *recursoRepo) ActualizarTx(ctx context.Context, tx *gorm.DB, rec *model.Recurso) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations, "cantidad_disponible").Save(rec).Error)
}

func (r *recursoRepo) ReemplazarEtiquetas(ctx context.Context, rec *model.Recurso, etiquetas []model.EtiquetaRecurso) error {
	return mapError(r.db.WithContext(ctx).Model(rec).Association("Etiquetas").Replace(etiquetas))
}

func (r *recursoRepo) BloquearTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Recurso, error) {
	q := conn(ctx, r.db, tx).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "recursos"}})
	return first[model.Recurso](q, id, "Tipo", "Estado")
}

func (r *recursoRepo) UnidadesComprometidasTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.db, tx).Model(&model.DetalleAlquiler{}).
		Select("COALESCE(SUM(detalles_alquiler.cantidad), 0)").
		Joins("JOIN alquileres a ON a.id = detalles_alquiler.alquiler_id AND a.deleted_at IS NULL").
		Joins("JOIN estados_alquiler e ON e.id = a.estado_id").
		Where("detalles_alquiler.recurso_id = ? AND detalles_alquiler.devuelto = false", id).
		Where("e.codigo IN ?", []model.CodigoEstadoAlquiler{model.AlquilerReservado, model.AlquilerEnCurso}).
		Scan(&n).Error
	return n, err
}

func (r *recursoRepo) ActualizarDisponibleTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, disponible int) error {
	return mapError(conn(ctx, r.db, tx).Model(&model.Recurso{}).Where("id = ?", id).
		Update("cantidad_disponible", disponible).Error)
}

func (r *recursoRepo) ActualizarEstadoTx(ctx context.Context, tx *gorm.DB, id, estadoID uuid.UUID) error {
	return mapError(conn(ctx, r.db, tx).Model(&model.Recurso{}).Where("id = ?", id).
		Update("estado_id", estadoID).Error)
}

// ── Mantenimientos ────────────────────────────────────────────────────────────

func (r *recursoRepo) CrearMantenimientoTx(ctx context.Context, tx *gorm.DB, m *model.MantenimientoRecurso) error {
	return mapError(conn(ctx, r.db, tx).Create(m).Error)
}

func (r *recursoRepo) ObtenerMantenimiento(ctx context.Context, id uuid.UUID) (*model.MantenimientoRecurso, error) {
	return first[model.MantenimientoRecurso](r.db.WithContext(ctx), id)
}

func (r *recursoRepo) ActualizarMantenimientoTx(ctx context.Context, tx *gorm.DB, m *model.MantenimientoRecurso) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Save(m).Error)
}

func (r *recursoRepo) ListarMantenimientos(ctx context.Context, recursoID uuid.UUID) ([]model.MantenimientoRecurso, error) {
	var list []model.MantenimientoRecurso
	err := r.db.WithContext(ctx).Where("recurso_id = ?", recursoID).
		Order("fecha_inicio DESC").Find(&list).Error
	return list, err
}
