package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearSuscripcionRequest struct {
	SocioID      uuid.UUID `json:"socio_id"      validate:"required"`
	TipoID       uuid.UUID `json:"tipo_id"       validate:"required"`
	FormaPagoID  uuid.UUID `json:"forma_pago_id" validate:"required"`
	Periodicidad string    `json:"periodicidad"  validate:"required,oneof=mensual trimestral anual"`
	// FechaInicio defaults to today.
	FechaInicio *time.Time `json:"fecha_inicio"`
	// Periodos is the number of periods initially paid for (default 1).
	Periodos             int    `json:"periodos"              validate:"omitempty,min=1"`
	SinFechaFin          bool   `json:"sin_fecha_fin"`
	RenovacionAutomatica *bool  `json:"renovacion_automatica"`
	Notas                string `json:"notas"`
}

type CancelarSuscripcionRequest struct {
	Motivo string     `json:"motivo" validate:"required,min=3"`
	Fecha  *time.Time `json:"fecha"`
}

type RegistrarPagoRequest struct {
	SuscripcionID uuid.UUID       `json:"suscripcion_id" validate:"required"`
	Fecha         *time.Time      `json:"fecha"`
	Monto         decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Referencia    string          `json:"referencia"     validate:"max=100"`
	Notas         string          `json:"notas"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SuscripcionResponse struct {
	ID                   uuid.UUID       `json:"id"`
	SocioID              uuid.UUID       `json:"socio_id"`
	TipoID               uuid.UUID       `json:"tipo_id"`
	Tipo                 string          `json:"tipo,omitempty"`
	Estado               string          `json:"estado"`
	Periodicidad         string          `json:"periodicidad"`
	Precio               decimal.Decimal `json:"precio"`
	FechaInicio          string          `json:"fecha_inicio"`
	FechaFin             *string         `json:"fecha_fin,omitempty"`
	FechaCancelacion     *string         `json:"fecha_cancelacion,omitempty"`
	MotivoCancelacion    string          `json:"motivo_cancelacion,omitempty"`
	RenovacionAutomatica bool            `json:"renovacion_automatica"`
	Activa               bool            `json:"activa"`
	DiasRestantes        *int            `json:"dias_restantes,omitempty"`
}

type PagoSuscripcionResponse struct {
	ID                uuid.UUID       `json:"id"`
	SuscripcionID     uuid.UUID       `json:"suscripcion_id"`
	Fecha             string          `json:"fecha"`
	Monto             decimal.Decimal `json:"monto"`
	Referencia        string          `json:"referencia,omitempty"`
	Confirmado        bool            `json:"confirmado"`
	FechaConfirmacion *string         `json:"fecha_confirmacion,omitempty"`
	ConfirmadoPorID   *uuid.UUID      `json:"confirmado_por_id,omitempty"`
}

// ResultadoProceso summarises a batch maintenance run (renewals, expiries...).
type ResultadoProceso struct {
	Procesadas int      `json:"procesadas"`
	Fallidas   int      `json:"fallidas"`
	Errores    []string `json:"errores,omitempty"`
}
