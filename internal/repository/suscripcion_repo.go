package repository

import (
	"context"
	"time"

	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SuscripcionRepository interface {
	Borrador

	Crear(ctx context.Context, s *model.Suscripcion) error
	// ObtenerPorID preloads estado and tipo.
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Suscripcion, error)
	ActualizarTx(ctx context.Context, tx *gorm.DB, s *model.Suscripcion) error
	ListarDeSocio(ctx context.Context, socioID uuid.UUID) ([]model.Suscripcion, error)
	// ActivaDe returns the most recent subscription of the member whose
	// status is activa and whose period covers hoy.
	ActivaDe(ctx context.Context, socioID uuid.UUID, hoy time.Time) (*model.Suscripcion, error)
	// ListarVencidas returns subscriptions in status activa whose fecha_fin
	// is before hoy, filtered by their renovacion_automatica flag.
	ListarVencidas(ctx context.Context, hoy time.Time, renovacionAutomatica bool) ([]model.Suscripcion, error)
	ObtenerEstado(ctx context.Context, codigo model.CodigoEstadoSuscripcion) (*model.EstadoSuscripcion, error)

	ObtenerTipo(ctx context.Context, id uuid.UUID) (*model.TipoSuscripcion, error)
	ListarTipos(ctx context.Context) ([]model.TipoSuscripcion, error)
	ObtenerFormaPago(ctx context.Context, id uuid.UUID) (*model.FormaPago, error)

	CrearPagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoSuscripcion) error
	ObtenerPago(ctx context.Context, id uuid.UUID) (*model.PagoSuscripcion, error)
	ActualizarPagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoSuscripcion) error

	DB() *gorm.DB
}

type suscripcionRepo struct {
	borrador
	db *gorm.DB
}

func NewSuscripcionRepository(db *gorm.DB) SuscripcionRepository {
	return &suscripcionRepo{borrador: newBorrador(db), db: db}
}

func (r *suscripcionRepo) DB() *gorm.DB { return r.db }

func (r *suscripcionRepo) Crear(ctx context.Context, s *model.Suscripcion) error {
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *suscripcionRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Suscripcion, error) {
	return first[model.Suscripcion](r.db.WithContext(ctx), id, "Estado", "Tipo")
}

func (r *suscripcionRepo) ActualizarTx(ctx context.Context, tx *gorm.DB, s *model.Suscripcion) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Save(s).Error)
}

func (r *suscripcionRepo) ListarDeSocio(ctx context.Context, socioID uuid.UUID) ([]model.Suscripcion, error) {
	var list []model.Suscripcion
	err := r.db.WithContext(ctx).Preload("Estado").Preload("Tipo").
		Where("socio_id = ?", socioID).Order("fecha_inicio DESC").Find(&list).Error
	return list, err
}

func (r *suscripcionRepo) conEstado(q *gorm.DB, codigo model.CodigoEstadoSuscripcion) *gorm.DB {
	return q.Joins("JOIN estados_suscripcion es ON es.id = suscripciones.estado_id").
		Where("es.codigo = ?", codigo)
}

func (r *suscripcionRepo) ActivaDe(ctx context.Context, socioID uuid.UUID, hoy time.Time) (*model.Suscripcion, error) {
	d := model.Dia(hoy)
	var s model.Suscripcion
	err := r.conEstado(r.db.WithContext(ctx).Model(&model.Suscripcion{}), model.SuscripcionActiva).
		Preload("Estado").Preload("Tipo").
		Where("suscripciones.socio_id = ? AND suscripciones.fecha_inicio <= ?", socioID, d).
		Where("suscripciones.fecha_fin IS NULL OR suscripciones.fecha_fin >= ?", d).
		Order("suscripciones.fecha_inicio DESC").
		First(&s).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *suscripcionRepo) ListarVencidas(ctx context.Context, hoy time.Time, renovacionAutomatica bool) ([]model.Suscripcion, error) {
	var list []model.Suscripcion
	err := r.conEstado(r.db.WithContext(ctx).Model(&model.Suscripcion{}), model.SuscripcionActiva).
		Preload("Estado").Preload("Tipo").
		Where("suscripciones.fecha_fin < ? AND suscripciones.renovacion_automatica = ?", model.Dia(hoy), renovacionAutomatica).
		Order("suscripciones.fecha_fin ASC").
		Find(&list).Error
	return list, err
}

func (r *suscripcionRepo) ObtenerEstado(ctx context.Context, codigo model.CodigoEstadoSuscripcion) (*model.EstadoSuscripcion, error) {
	var e model.EstadoSuscripcion
	if err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&e).Error; err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

// ── Tipos y formas de pago ────────────────────────────────────────────────────

func (r *suscripcionRepo) ObtenerTipo(ctx context.Context, id uuid.UUID) (*model.TipoSuscripcion, error) {
	return first[model.TipoSuscripcion](r.db.WithContext(ctx), id, "Beneficios")
}

func (r *suscripcionRepo) ListarTipos(ctx context.Context) ([]model.TipoSuscripcion, error) {
	var list []model.TipoSuscripcion
	err := r.db.WithContext(ctx).Preload("Beneficios").Order("precio_mensual ASC").Find(&list).Error
	return list, err
}

func (r *suscripcionRepo) ObtenerFormaPago(ctx context.Context, id uuid.UUID) (*model.FormaPago, error) {
	return first[model.FormaPago](r.db.WithContext(ctx), id)
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

func (r *suscripcionRepo) CrearPagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoSuscripcion) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Create(p).Error)
}

func (r *suscripcionRepo) ObtenerPago(ctx context.Context, id uuid.UUID) (*model.PagoSuscripcion, error) {
	return first[model.PagoSuscripcion](r.db.WithContext(ctx), id)
}

func (r *suscripcionRepo) ActualizarPagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoSuscripcion) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Save(p).Error)
}
