package repository

import (
	"context"
	"time"

	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClaseRepository covers classes, their sessions, enrollments and ratings.
type ClaseRepository interface {
	Borrador

	ObtenerClase(ctx context.Context, id uuid.UUID) (*model.Clase, error)
	ObtenerInstructor(ctx context.Context, id uuid.UUID) (*model.Instructor, error)
	ActualizarCalificacionTx(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID, calificacion *decimal.Decimal) error

	CrearSesion(ctx context.Context, s *model.SesionClase) error
	// ObtenerSesion preloads the class so capacity and price can be resolved.
	ObtenerSesion(ctx context.Context, id uuid.UUID) (*model.SesionClase, error)
	ActualizarSesion(ctx context.Context, s *model.SesionClase) error
	// BloquearSesionTx loads the session under SELECT ... FOR UPDATE. Every
	// enrollment for the session serialises on this row.
	BloquearSesionTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SesionClase, error)
	// ListarSesionesFuturas returns non-cancelled sessions of the class dated from desde on.
	ListarSesionesFuturas(ctx context.Context, claseID uuid.UUID, desde time.Time) ([]model.SesionClase, error)

	// ContarInscritosTx counts live, non-cancelled enrollments of the session.
	ContarInscritosTx(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) (int, error)
	// ObtenerInscripcionTx includes logically deleted rows (see CarritoRepository.ObtenerItem).
	ObtenerInscripcionTx(ctx context.Context, tx *gorm.DB, socioID, sesionID uuid.UUID) (*model.InscripcionClase, error)
	ObtenerInscripcion(ctx context.Context, id uuid.UUID) (*model.InscripcionClase, error)
	GuardarInscripcionTx(ctx context.Context, tx *gorm.DB, in *model.InscripcionClase) error

	CrearValoracionTx(ctx context.Context, tx *gorm.DB, v *model.ValoracionClase) error
	// PromedioInstructorTx is the mean of the instructor's approved live
	// ratings, nil when there are none.
	PromedioInstructorTx(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) (*decimal.Decimal, error)

	DB() *gorm.DB
}

type claseRepo struct {
	borrador
	db *gorm.DB
}

func NewClaseRepository(db *gorm.DB) ClaseRepository {
	return &claseRepo{borrador: newBorrador(db), db: db}
}

func (r *claseRepo) DB() *gorm.DB { return r.db }

func (r *claseRepo) ObtenerClase(ctx context.Context, id uuid.UUID) (*model.Clase, error) {
	return first[model.Clase](r.db.WithContext(ctx), id)
}

func (r *claseRepo) ObtenerInstructor(ctx context.Context, id uuid.UUID) (*model.Instructor, error) {
	return first[model.Instructor](r.db.WithContext(ctx), id, "Usuario")
}

func (r *claseRepo) ActualizarCalificacionTx(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID, calificacion *decimal.Decimal) error {
	return mapError(conn(ctx, r.db, tx).Model(&model.Instructor{}).Where("id = ?", instructorID).
		Update("calificacion", calificacion).Error)
}

// ── Sesiones ──────────────────────────────────────────────────────────────────

func (r *claseRepo) CrearSesion(ctx context.Context, s *model.SesionClase) error {
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *claseRepo) ObtenerSesion(ctx context.Context, id uuid.UUID) (*model.SesionClase, error) {
	return first[model.SesionClase](r.db.WithContext(ctx), id, "Clase")
}

func (r *claseRepo) ActualizarSesion(ctx context.Context, s *model.SesionClase) error {
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error)
}

func (r *claseRepo) BloquearSesionTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SesionClase, error) {
	q := conn(ctx, r.db, tx).Clauses(clause.Locking{Strength: "UPDATE"})
	return first[model.SesionClase](q, id, "Clase")
}

func (r *claseRepo) ListarSesionesFuturas(ctx context.Context, claseID uuid.UUID, desde time.Time) ([]model.SesionClase, error) {
	var list []model.SesionClase
	err := r.db.WithContext(ctx).Preload("Clase").
		Where("clase_id = ? AND cancelada = false AND fecha >= ?", claseID, model.Dia(desde)).
		Order("fecha ASC, hora_inicio ASC").Find(&list).Error
	return list, err
}

// ── Inscripciones ─────────────────────────────────────────────────────────────

func (r *claseRepo) ContarInscritosTx(ctx context.Context, tx *gorm.DB, sesionID uuid.UUID) (int, error) {
	var n int64
	err := conn(ctx, r.db, tx).Model(&model.InscripcionClase{}).
		Where("sesion_id = ? AND cancelada = false", sesionID).Count(&n).Error
	return int(n), err
}

func (r *claseRepo) ObtenerInscripcionTx(ctx context.Context, tx *gorm.DB, socioID, sesionID uuid.UUID) (*model.InscripcionClase, error) {
	var in model.InscripcionClase
	err := conn(ctx, r.db, tx).Unscoped().
		Where("socio_id = ? AND sesion_id = ?", socioID, sesionID).First(&in).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &in, nil
}

func (r *claseRepo) ObtenerInscripcion(ctx context.Context, id uuid.UUID) (*model.InscripcionClase, error) {
	return first[model.InscripcionClase](r.db.WithContext(ctx), id)
}

func (r *claseRepo) GuardarInscripcionTx(ctx context.Context, tx *gorm.DB, in *model.InscripcionClase) error {
	return mapError(conn(ctx, r.db, tx).Unscoped().Omit(clause.Associations).Save(in).Error)
}

// ── Valoraciones ──────────────────────────────────────────────────────────────

func (r *claseRepo) CrearValoracionTx(ctx context.Context, tx *gorm.DB, v *model.ValoracionClase) error {
	return mapError(conn(ctx, r.db, tx).Omit(clause.Associations).Create(v).Error)
}

func (r *claseRepo) PromedioInstructorTx(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) (*decimal.Decimal, error) {
	var res struct{ Promedio decimal.NullDecimal }
	err := conn(ctx, r.db, tx).Model(&model.ValoracionClase{}).
		Select("AVG(puntuacion) AS promedio").
		Where("instructor_id = ? AND aprobado = true", instructorID).
		Scan(&res).Error
	if err != nil || !res.Promedio.Valid {
		return nil, err
	}
	v := res.Promedio.Decimal.Round(2)
	return &v, nil
}
