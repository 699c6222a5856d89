package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every persisted entity of the club.
// CreatedAt is create-only at the column level, so later Save/Updates calls
// cannot rewrite it. DeletedAt drives GORM's default scope: rows with a
// deletion timestamp are hidden from ordinary queries but stay in the table
// until a hard delete removes them.
type Base struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time      `gorm:"<-:create;not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	Activo    bool           `gorm:"not null;default:true"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// MarcarEliminado applies a logical delete in memory. The deletion timestamp
// is only written the first time; a repeated call keeps the original one.
func (b *Base) MarcarEliminado(now time.Time) {
	b.Activo = false
	if !b.DeletedAt.Valid {
		b.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	}
	b.UpdatedAt = now
}

// Eliminado reports whether the entity has been logically deleted.
func (b Base) Eliminado() bool { return b.DeletedAt.Valid }

// Vivo is true for rows that are active and not logically deleted.
func (b Base) Vivo() bool { return b.Activo && !b.DeletedAt.Valid }
