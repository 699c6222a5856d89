package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CategoriaClase struct {
	Base
	Nombre      string `gorm:"size:100;not null"`
	Descripcion string `gorm:"type:text"`
	Icono       string `gorm:"size:50"`
	Slug        string `gorm:"size:100;uniqueIndex;not null"`
	Color       string `gorm:"size:20;not null;default:'primary'"`
}

func (CategoriaClase) TableName() string { return "categorias_clase" }

// Instructor is the teaching profile of a user (one per user).
// Calificacion is the mean of the approved ratings received.
type Instructor struct {
	Base
	UsuarioID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	Biografia      string           `gorm:"type:text"`
	Especialidades string           `gorm:"type:text"`
	Telefono       string           `gorm:"size:20"`
	EmailContacto  string           `gorm:"size:254"`
	SitioWeb       string           `gorm:"size:200"`
	RedesSociales  datatypes.JSON   `gorm:"type:jsonb;not null;default:'{}'"`
	Calificacion   *decimal.Decimal `gorm:"type:decimal(3,2)"`

	Usuario *Usuario `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE"`
}

func (Instructor) TableName() string { return "instructores" }

func (i Instructor) NombreCompleto() string {
	if i.Usuario == nil {
		return ""
	}
	return i.Usuario.NombreCompleto()
}

type NivelClase struct {
	Base
	Nombre      string `gorm:"size:50;not null"`
	Descripcion string `gorm:"type:text"`
	Orden       int    `gorm:"not null;default:0"`
}

func (NivelClase) TableName() string { return "niveles_clase" }

// Clase is a course offered by the club; the bookable unit is SesionClase.
type Clase struct {
	Base
	Nombre               string          `gorm:"size:200;not null;index"`
	Descripcion          string          `gorm:"type:text"`
	CategoriaID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	NivelID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	DuracionMinutos      int             `gorm:"not null"`
	CapacidadMaxima      int             `gorm:"not null;check:capacidad_maxima >= 0"`
	Precio               decimal.Decimal `gorm:"type:decimal(10,2);not null;check:precio >= 0"`
	MaterialesNecesarios string          `gorm:"type:text"`
	RequisitosPrevios    string          `gorm:"type:text"`
	SoloSocios           bool            `gorm:"not null"`
	EdadMinima           *int
	EdadMaxima           *int
	Activa               bool `gorm:"not null"`
	Destacada            bool `gorm:"not null;default:false"`

	Categoria *CategoriaClase `gorm:"foreignKey:CategoriaID;constraint:OnDelete:RESTRICT"`
	Nivel     *NivelClase     `gorm:"foreignKey:NivelID;constraint:OnDelete:RESTRICT"`
}

func (Clase) TableName() string { return "clases" }

// AdmiteEdad checks the optional age bounds of the class.
func (c Clase) AdmiteEdad(edad int) bool {
	if c.EdadMinima != nil && edad < *c.EdadMinima {
		return false
	}
	if c.EdadMaxima != nil && edad > *c.EdadMaxima {
		return false
	}
	return true
}

// SesionClase is one scheduled occurrence of a class. CapacidadMaxima and
// PrecioEspecial override the class values when set.
type SesionClase struct {
	Base
	ClaseID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	InstructorID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Fecha             time.Time        `gorm:"type:date;not null;index:idx_sesiones_fecha_hora,priority:1"`
	HoraInicio        datatypes.Time   `gorm:"not null;index:idx_sesiones_fecha_hora,priority:2"`
	HoraFin           datatypes.Time   `gorm:"not null"`
	Ubicacion         string           `gorm:"size:200"`
	Notas             string           `gorm:"type:text"`
	CapacidadMaxima   *int             `gorm:"check:capacidad_maxima >= 0"`
	PrecioEspecial    *decimal.Decimal `gorm:"type:decimal(10,2);check:precio_especial >= 0"`
	Cancelada         bool             `gorm:"not null;default:false"`
	MotivoCancelacion string           `gorm:"type:text"`

	Clase      *Clase      `gorm:"foreignKey:ClaseID;constraint:OnDelete:CASCADE"`
	Instructor *Instructor `gorm:"foreignKey:InstructorID;constraint:OnDelete:RESTRICT"`
}

func (SesionClase) TableName() string { return "sesiones_clase" }

// DuracionMinutos wraps around midnight the same way a time-of-day difference does.
func (s SesionClase) DuracionMinutos() int {
	d := time.Duration(s.HoraFin) - time.Duration(s.HoraInicio)
	if d < 0 {
		d += 24 * time.Hour
	}
	return int(d / time.Minute)
}

func (s SesionClase) PrecioFinal() decimal.Decimal {
	if s.PrecioEspecial != nil {
		return *s.PrecioEspecial
	}
	if s.Clase == nil {
		return decimal.Zero
	}
	return s.Clase.Precio
}

func (s SesionClase) CapacidadFinal() int {
	if s.CapacidadMaxima != nil {
		return *s.CapacidadMaxima
	}
	if s.Clase == nil {
		return 0
	}
	return s.Clase.CapacidadMaxima
}

// PlazasDisponibles is max(0, capacity - non-cancelled enrollments).
func (s SesionClase) PlazasDisponibles(inscritos int) int {
	libres := s.CapacidadFinal() - inscritos
	if libres < 0 {
		return 0
	}
	return libres
}

func (s SesionClase) Completa(inscritos int) bool { return s.PlazasDisponibles(inscritos) == 0 }

// Comienzo combines the session date and start time.
func (s SesionClase) Comienzo() time.Time {
	return Dia(s.Fecha).Add(time.Duration(s.HoraInicio))
}

// InscripcionClase is a member's seat in a session; a member holds at most
// one row per session, reused when re-enrolling after a cancellation.
type InscripcionClase struct {
	Base
	SocioID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inscripcion_socio_sesion"`
	SesionID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inscripcion_socio_sesion"`
	FechaInscripcion  time.Time       `gorm:"not null;index"`
	PrecioPagado      decimal.Decimal `gorm:"type:decimal(10,2);not null;check:precio_pagado >= 0"`
	Pagado            bool            `gorm:"not null;default:false"`
	FechaPago         *time.Time
	Asistio           *bool
	Cancelada         bool `gorm:"not null;default:false"`
	FechaCancelacion  *time.Time
	MotivoCancelacion string `gorm:"type:text"`
	Reembolsado       bool   `gorm:"not null;default:false"`

	Socio  *Usuario     `gorm:"foreignKey:SocioID;constraint:OnDelete:CASCADE"`
	Sesion *SesionClase `gorm:"foreignKey:SesionID;constraint:OnDelete:CASCADE"`
}

func (InscripcionClase) TableName() string { return "inscripciones_clase" }

func (i *InscripcionClase) Cancelar(motivo string, now time.Time) {
	i.Cancelada = true
	i.FechaCancelacion = &now
	i.MotivoCancelacion = motivo
}

// ValoracionClase is a 1..5 rating of a class, optionally tied to a session
// and instructor. Unapproved ratings are kept but not shown or averaged.
type ValoracionClase struct {
	Base
	SocioID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_valoracion_socio_clase_sesion"`
	ClaseID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_valoracion_socio_clase_sesion"`
	SesionID     *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_valoracion_socio_clase_sesion"`
	InstructorID *uuid.UUID `gorm:"type:uuid;index"`
	Puntuacion   int        `gorm:"not null;check:puntuacion BETWEEN 1 AND 5"`
	Comentario   string     `gorm:"type:text"`
	Fecha        time.Time  `gorm:"not null;index"`
	Aprobado     bool       `gorm:"not null"`

	Socio      *Usuario     `gorm:"foreignKey:SocioID;constraint:OnDelete:CASCADE"`
	Clase      *Clase       `gorm:"foreignKey:ClaseID;constraint:OnDelete:CASCADE"`
	Sesion     *SesionClase `gorm:"foreignKey:SesionID;constraint:OnDelete:SET NULL"`
	Instructor *Instructor  `gorm:"foreignKey:InstructorID;constraint:OnDelete:SET NULL"`
}

func (ValoracionClase) TableName() string { return "valoraciones_clase" }

// PuntuacionValida reports whether p is in the 1..5 scale.
func PuntuacionValida(p int) bool { return p >= 1 && p <= 5 }
