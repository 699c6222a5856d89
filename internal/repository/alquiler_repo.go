package repository

import (
	"context"
	"time"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlquilerRepository interface {
	Borrador

	// SiguienteCodigo draws the next value of alquileres_codigo_seq.
	SiguienteCodigo(ctx context.Context, tx *gorm.DB) (int64, error)
	// CrearTx inserts the rental together with its line items.
	CrearTx(ctx context.Context, tx *gorm.DB, a *model.Alquiler) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Alquiler, error)
	// BloquearTx loads the rental with estado and line items under
	// SELECT ... FOR UPDATE OF alquileres.
	BloquearTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Alquiler, error)
	// ActualizarTx saves the rental's own columns; line items are not touched.
	ActualizarTx(ctx context.Context, tx *gorm.DB, a *model.Alquiler) error
	MarcarDevueltosTx(ctx context.Context, tx *gorm.DB, alquilerID uuid.UUID, fecha time.Time, estadoDevolucion string) error
	Listar(ctx context.Context, filter dto.AlquilerFilter) ([]model.Alquiler, int64, error)
	// ListarRetrasados returns unreturned open rentals whose expected end is before hoy.
	ListarRetrasados(ctx context.Context, hoy time.Time) ([]model.Alquiler, error)
	ContarAbiertosDeSocio(ctx context.Context, socioID uuid.UUID) (int64, error)
	ObtenerEstado(ctx context.Context, codigo model.CodigoEstadoAlquiler) (*model.EstadoAlquiler, error)

	CrearPenalizacionTx(ctx context.Context, tx *gorm.DB, p *model.Penalizacion) error
	ObtenerPenalizacion(ctx context.Context, id uuid.UUID) (*model.Penalizacion, error)
	ActualizarPenalizacion(ctx context.Context, p *model.Penalizacion) error

	CrearReserva(ctx context.Context, rv *model.ReservaRecurso) error
	ObtenerReserva(ctx context.Context, id uuid.UUID) (*model.ReservaRecurso, error)
	ActualizarReservaTx(ctx context.Context, tx *gorm.DB, rv *model.ReservaRecurso) error
	// ListarReservasVencidas returns unconfirmed, unconverted reservations
	// whose start date is before hoy.
	ListarReservasVencidas(ctx context.Context, hoy time.Time) ([]model.ReservaRecurso, error)

	DB() *gorm.DB
}

type alquilerRepo struct {
	borrador
	db *gorm.DB
}

func NewAlquilerRepository(db *gorm.DB) AlquilerRepository {
	return &alquilerRepo{borrador: newBorrador(db), db: db}
}

func (r *alquilerRepo) DB() *gorm.DB { return r.db }

func (r *alquilerRepo) SiguienteCodigo(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := conn(ctx, r.db, tx).Raw("SELECT nextval('alquileres_codigo_seq')").Scan(&n).Error
	return n, err
}

func (r *alquilerRepo) CrearTx(ctx context.Context, tx *gorm.DB, a *model.Alquiler) error {
	return mapError(conn(ctx, r.db, tx).Omit("Socio", "Estado", "GestionadoPor").Create(a).Error)
}

func (r *alquilerRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Alquiler, error) {
	return first[model.Alquiler](r.db.WithContext(ctx), id, "Estado", "Detalles.Recurso", "Penalizaciones")
}

func (r *alquilerRepo) BloquearTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Alquiler, error) {
	q := conn(ctx, r.db, tx).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "alquileres"}})
	return first[model.Alquiler](q, id, "Estado", "Detalles")
}

func (r *alquilerRepo) ActualizarTx(ctx context.Context, tx *gorm.DB, a *model.Alquiler) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Save(a).Error)
}

func (r *alquilerRepo) MarcarDevueltosTx(ctx context.Context, tx *gorm.DB, alquilerID uuid.UUID, fecha time.Time, estadoDevolucion string) error {
	return mapError(conn(ctx, r.db, tx).Model(&model.DetalleAlquiler{}).
		Where("alquiler_id = ? AND devuelto = false", alquilerID).
		Updates(map[string]any{
			"devuelto":          true,
			"fecha_devolucion":  fecha,
			"estado_devolucion": estadoDevolucion,
		}).Error)
}

func (r *alquilerRepo) Listar(ctx context.Context, filter dto.AlquilerFilter) ([]model.Alquiler, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Alquiler{})
	if filter.SocioID != nil {
		q = q.Where("alquileres.socio_id = ?", *filter.SocioID)
	}
	if filter.Estado != "" {
		q = q.Joins("JOIN estados_alquiler ea ON ea.id = alquileres.estado_id").
			Where("ea.codigo = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page(filter.Page, filter.Limit)
	var list []model.Alquiler
	err := q.Preload("Estado").Preload("Detalles.Recurso").
		Order("alquileres.fecha_solicitud DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *alquilerRepo) abiertos(q *gorm.DB) *gorm.DB {
	return q.Joins("JOIN estados_alquiler ea ON ea.id = alquileres.estado_id").
		Where("ea.codigo IN ?", []model.CodigoEstadoAlquiler{model.AlquilerReservado, model.AlquilerEnCurso})
}

func (r *alquilerRepo) ListarRetrasados(ctx context.Context, hoy time.Time) ([]model.Alquiler, error) {
	var list []model.Alquiler
	err := r.abiertos(r.db.WithContext(ctx).Model(&model.Alquiler{})).
		Where("alquileres.fecha_devolucion IS NULL AND alquileres.fecha_fin_prevista < ?", model.Dia(hoy)).
		Preload("Estado").Preload("Socio").Preload("Detalles.Recurso").
		Order("alquileres.fecha_fin_prevista ASC").Find(&list).Error
	return list, err
}

func (r *alquilerRepo) ContarAbiertosDeSocio(ctx context.Context, socioID uuid.UUID) (int64, error) {
	var n int64
	err := r.abiertos(r.db.WithContext(ctx).Model(&model.Alquiler{})).
		Where("alquileres.socio_id = ?", socioID).Count(&n).Error
	return n, err
}

func (r *alquilerRepo) ObtenerEstado(ctx context.Context, codigo model.CodigoEstadoAlquiler) (*model.EstadoAlquiler, error) {
	var e model.EstadoAlquiler
	if err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&e).Error; err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

// ── Penalizaciones ────────────────────────────────────────────────────────────

func (r *alquilerRepo) CrearPenalizacionTx(ctx context.Context, tx *gorm.DB, p *model.Penalizacion) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Create(p).Error)
}

func (r *alquilerRepo) ObtenerPenalizacion(ctx context.Context, id uuid.UUID) (*model.Penalizacion, error) {
	return first[model.Penalizacion](r.db.WithContext(ctx), id)
}

func (r *alquilerRepo) ActualizarPenalizacion(ctx context.Context, p *model.Penalizacion) error {
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

// ── Reservas ──────────────────────────────────────────────────────────────────

func (r *alquilerRepo) CrearReserva(ctx context.Context, rv *model.ReservaRecurso) error {
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error)
}

func (r *alquilerRepo) ObtenerReserva(ctx context.Context, id uuid.UUID) (*model.ReservaRecurso, error) {
	return first[model.ReservaRecurso](r.db.WithContext(ctx), id)
}

func (r *alquilerRepo) ActualizarReservaTx(ctx context.Context, tx *gorm.DB, rv *model.ReservaRecurso) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Save(rv).Error)
}

func (r *alquilerRepo) ListarReservasVencidas(ctx context.Context, hoy time.Time) ([]model.ReservaRecurso, error) {
	var list []model.ReservaRecurso
	err := r.db.WithContext(ctx).
		Where("confirmada = false AND alquiler_id IS NULL AND fecha_inicio < ?", model.Dia(hoy)).
		Order("fecha_reserva ASC").Find(&list).Error
	return list, err
}
