package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Borrador removes rows of any entity that embeds model.Base. modelo is a
// pointer to the zero value of the entity, e.g. &model.Recurso{}.
type Borrador interface {
	// Eliminar is the logical delete: it flips activo off and stamps
	// deleted_at. Already deleted rows are invisible to it and yield
	// ErrNoEncontrado, so deleted_at is written exactly once.
	Eliminar(ctx context.Context, modelo any, id uuid.UUID) error
	// EliminarDefinitivo physically removes the row. Protected references
	// surface as ErrReferencia; owned children go with the row.
	EliminarDefinitivo(ctx context.Context, modelo any, id uuid.UUID) error
	EliminarTx(ctx context.Context, tx *gorm.DB, modelo any, id uuid.UUID) error
	EliminarDefinitivoTx(ctx context.Context, tx *gorm.DB, modelo any, id uuid.UUID) error
	// ObtenerConEliminados loads a row ignoring the logical-delete scope.
	ObtenerConEliminados(ctx context.Context, dest any, id uuid.UUID) error
}

type borrador struct {
	db  *gorm.DB
	now func() time.Time
}

func newBorrador(db *gorm.DB) borrador { return borrador{db: db, now: time.Now} }

func (b borrador) Eliminar(ctx context.Context, modelo any, id uuid.UUID) error {
	return b.EliminarTx(ctx, nil, modelo, id)
}

func (b borrador) EliminarTx(ctx context.Context, tx *gorm.DB, modelo any, id uuid.UUID) error {
	res := conn(ctx, b.db, tx).Model(modelo).Where("id = ?", id).Updates(map[string]any{
		"activo":     false,
		"deleted_at": b.now(),
	})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}

func (b borrador) EliminarDefinitivo(ctx context.Context, modelo any, id uuid.UUID) error {
	return b.EliminarDefinitivoTx(ctx, nil, modelo, id)
}

func (b borrador) EliminarDefinitivoTx(ctx context.Context, tx *gorm.DB, modelo any, id uuid.UUID) error {
	res := conn(ctx, b.db, tx).Unscoped().Where("id = ?", id).Delete(modelo)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}

func (b borrador) ObtenerConEliminados(ctx context.Context, dest any, id uuid.UUID) error {
	return mapError(b.db.WithContext(ctx).Unscoped().First(dest, "id = ?", id).Error)
}

// conn returns tx when the caller is inside a transaction, else the base handle.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// first loads one row by primary key with the given preloads.
func first[T any](q *gorm.DB, id uuid.UUID, preloads ...string) (*T, error) {
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var v T
	if err := q.First(&v, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &v, nil
}

// page normalises pagination input the same way for every list query.
func page(p, limit int) (offset, size int) {
	if p < 1 {
		p = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return (p - 1) * limit, limit
}
