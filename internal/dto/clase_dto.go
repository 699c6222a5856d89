package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ProgramarSesionRequest struct {
	ClaseID      uuid.UUID `json:"clase_id"      validate:"required"`
	InstructorID uuid.UUID `json:"instructor_id" validate:"required"`
	Fecha        time.Time `json:"fecha"         validate:"required"`
	// HoraInicio / HoraFin are "HH:MM" in the club's local time.
	HoraInicio      string           `json:"hora_inicio"      validate:"required,datetime=15:04"`
	HoraFin         string           `json:"hora_fin"         validate:"required,datetime=15:04"`
	Ubicacion       string           `json:"ubicacion"        validate:"max=200"`
	Notas           string           `json:"notas"`
	CapacidadMaxima *int             `json:"capacidad_maxima" validate:"omitempty,min=0"`
	PrecioEspecial  *decimal.Decimal `json:"precio_especial"  validate:"omitempty,min=0"`
}

type InscribirRequest struct {
	SocioID  uuid.UUID `json:"socio_id"  validate:"required"`
	SesionID uuid.UUID `json:"sesion_id" validate:"required"`
}

type ValorarClaseRequest struct {
	SocioID    uuid.UUID  `json:"socio_id"   validate:"required"`
	ClaseID    uuid.UUID  `json:"clase_id"   validate:"required"`
	SesionID   *uuid.UUID `json:"sesion_id"`
	Puntuacion int        `json:"puntuacion" validate:"required,min=1,max=5"`
	Comentario string     `json:"comentario"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionResponse struct {
	ID                uuid.UUID       `json:"id"`
	ClaseID           uuid.UUID       `json:"clase_id"`
	Clase             string          `json:"clase"`
	InstructorID      uuid.UUID       `json:"instructor_id"`
	Fecha             string          `json:"fecha"`
	HoraInicio        string          `json:"hora_inicio"`
	HoraFin           string          `json:"hora_fin"`
	DuracionMinutos   int             `json:"duracion_minutos"`
	Ubicacion         string          `json:"ubicacion,omitempty"`
	PrecioFinal       decimal.Decimal `json:"precio_final"`
	CapacidadFinal    int             `json:"capacidad_final"`
	Inscritos         int             `json:"inscritos"`
	PlazasDisponibles int             `json:"plazas_disponibles"`
	Completa          bool            `json:"completa"`
	Cancelada         bool            `json:"cancelada"`
}

type InscripcionResponse struct {
	ID               uuid.UUID       `json:"id"`
	SocioID          uuid.UUID       `json:"socio_id"`
	SesionID         uuid.UUID       `json:"sesion_id"`
	FechaInscripcion time.Time       `json:"fecha_inscripcion"`
	PrecioPagado     decimal.Decimal `json:"precio_pagado"`
	Pagado           bool            `json:"pagado"`
	Asistio          *bool           `json:"asistio,omitempty"`
	Cancelada        bool            `json:"cancelada"`
}

type ValoracionResponse struct {
	ID           uuid.UUID        `json:"id"`
	ClaseID      uuid.UUID        `json:"clase_id"`
	SesionID     *uuid.UUID       `json:"sesion_id,omitempty"`
	InstructorID *uuid.UUID       `json:"instructor_id,omitempty"`
	Puntuacion   int              `json:"puntuacion"`
	Comentario   string           `json:"comentario,omitempty"`
	Promedio     *decimal.Decimal `json:"promedio_instructor,omitempty"`
}
