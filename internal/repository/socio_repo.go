package repository

import (
	"context"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocioRepository interface {
	Borrador

	Crear(ctx context.Context, tx *gorm.DB, u *model.Usuario) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	ObtenerPorUsername(ctx context.Context, username string) (*model.Usuario, error)
	Listar(ctx context.Context, filter dto.SocioFilter) ([]model.Usuario, int64, error)
	Actualizar(ctx context.Context, u *model.Usuario) error
	// SiguienteNumeroTx bumps the member counter of anio and returns the new value.
	SiguienteNumeroTx(ctx context.Context, tx *gorm.DB, anio int) (int, error)

	DB() *gorm.DB
}

type socioRepo struct {
	borrador
	db *gorm.DB
}

func NewSocioRepository(db *gorm.DB) SocioRepository {
	return &socioRepo{borrador: newBorrador(db), db: db}
}

func (r *socioRepo) DB() *gorm.DB { return r.db }

func (r *socioRepo) Crear(ctx context.Context, tx *gorm.DB, u *model.Usuario) error {
	return mapError(conn(ctx, r.db, tx).Create(u).Error)
}

func (r *socioRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	return first[model.Usuario](r.db.WithContext(ctx), id)
}

func (r *socioRepo) ObtenerPorUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	// Accept lookup by username OR email (case-insensitive email match)
	err := r.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = LOWER(?)", username, username).
		First(&u).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *socioRepo) Listar(ctx context.Context, filter dto.SocioFilter) ([]model.Usuario, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Usuario{})
	if filter.Nombre != "" {
		like := "%" + filter.Nombre + "%"
		q = q.Where("nombre ILIKE ? OR apellido ILIKE ? OR numero_socio ILIKE ?", like, like, like)
	}
	if filter.SoloSocios {
		q = q.Where("es_socio = true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := page(filter.Page, filter.Limit)
	var users []model.Usuario
	err := q.Order("apellido ASC, nombre ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *socioRepo) Actualizar(ctx context.Context, u *model.Usuario) error {
	return mapError(r.db.WithContext(ctx).Save(u).Error)
}

func (r *socioRepo) SiguienteNumeroTx(ctx context.Context, tx *gorm.DB, anio int) (int, error) {
	var n int
	err := conn(ctx, r.db, tx).Raw(`
		INSERT INTO numeros_socio (anio, ultimo) VALUES (?, 1)
		ON CONFLICT (anio) DO UPDATE SET ultimo = numeros_socio.ultimo + 1
		RETURNING ultimo`, anio).Scan(&n).Error
	return n, err
}
