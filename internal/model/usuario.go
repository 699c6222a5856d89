package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Usuario is any person known to the club: members (EsSocio) and staff who
// manage rentals or confirm payments.
// NumeroSocio follows the "S{año}-{NNNN}" format and is assigned once, when
// the person becomes a member.
type Usuario struct {
	Base
	Username        string     `gorm:"size:150;uniqueIndex;not null"`
	Nombre          string     `gorm:"size:150;not null;index:idx_usuarios_nombre_completo,priority:2"`
	Apellido        string     `gorm:"size:150;index:idx_usuarios_nombre_completo,priority:1"`
	Email           *string    `gorm:"size:254"`
	DNI             string     `gorm:"column:dni;size:20"`
	FechaNacimiento *time.Time `gorm:"type:date"`
	Telefono        string     `gorm:"size:20"`
	Direccion       string     `gorm:"type:text"`
	CodigoPostal    string     `gorm:"size:10"`
	Ciudad          string     `gorm:"size:100"`
	Provincia       string     `gorm:"size:100"`
	Pais            string     `gorm:"size:100"`

	EsSocio     bool       `gorm:"not null;default:false"`
	NumeroSocio *string    `gorm:"size:50;uniqueIndex"`
	FechaAlta   *time.Time `gorm:"type:date"`

	RecibirNotificaciones bool           `gorm:"not null"`
	Preferencias          datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
}

// NombreCompleto falls back to the username when no name is stored.
func (u Usuario) NombreCompleto() string {
	switch {
	case u.Nombre != "" && u.Apellido != "":
		return u.Nombre + " " + u.Apellido
	case u.Nombre != "":
		return u.Nombre
	default:
		return u.Username
	}
}

// FormatearNumeroSocio renders a member number from the yearly counter.
func FormatearNumeroSocio(anio, secuencia int) string {
	return fmt.Sprintf("S%d-%04d", anio, secuencia)
}

// NumeroSocioContador is the per-year counter behind member numbers. The row
// is bumped atomically with INSERT ... ON CONFLICT DO UPDATE ... RETURNING.
type NumeroSocioContador struct {
	Anio   int `gorm:"primaryKey;autoIncrement:false"`
	Ultimo int `gorm:"not null;default:0"`
}

func (NumeroSocioContador) TableName() string { return "numeros_socio" }
