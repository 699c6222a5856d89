package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemAlquilerRequest struct {
	RecursoID uuid.UUID `json:"recurso_id" validate:"required"`
	Cantidad  int       `json:"cantidad"   validate:"required,min=1"`
}

type CrearAlquilerRequest struct {
	SocioID          uuid.UUID             `json:"socio_id"           validate:"required"`
	FechaInicio      time.Time             `json:"fecha_inicio"       validate:"required"`
	FechaFinPrevista time.Time             `json:"fecha_fin_prevista" validate:"required"`
	Items            []ItemAlquilerRequest `json:"items"              validate:"required,min=1,dive"`
	Notas            string                `json:"notas"`
	GestionadoPorID  *uuid.UUID            `json:"gestionado_por_id"`
}

type DevolverAlquilerRequest struct {
	// FechaDevolucion defaults to today.
	FechaDevolucion  *time.Time       `json:"fecha_devolucion"`
	DepositoDevuelto *decimal.Decimal `json:"deposito_devuelto" validate:"omitempty,min=0"`
	EstadoDevolucion string           `json:"estado_devolucion"`
	GestionadoPorID  *uuid.UUID       `json:"gestionado_por_id"`
}

type PenalizacionRequest struct {
	AlquilerID    uuid.UUID       `json:"alquiler_id"     validate:"required"`
	DetalleID     *uuid.UUID      `json:"detalle_id"`
	Motivo        string          `json:"motivo"          validate:"required,max=200"`
	Descripcion   string          `json:"descripcion"`
	Monto         decimal.Decimal `json:"monto"           validate:"min=0"`
	AplicadaPorID *uuid.UUID      `json:"aplicada_por_id"`
}

type CrearReservaRequest struct {
	SocioID     uuid.UUID `json:"socio_id"     validate:"required"`
	RecursoID   uuid.UUID `json:"recurso_id"   validate:"required"`
	Cantidad    int       `json:"cantidad"     validate:"required,min=1"`
	FechaInicio time.Time `json:"fecha_inicio" validate:"required"`
	FechaFin    time.Time `json:"fecha_fin"    validate:"required"`
	Notas       string    `json:"notas"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type AlquilerFilter struct {
	SocioID *uuid.UUID
	Estado  string // código de estado; empty = todos
	Page    int
	Limit   int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleAlquilerResponse struct {
	ID               uuid.UUID       `json:"id"`
	RecursoID        uuid.UUID       `json:"recurso_id"`
	Recurso          string          `json:"recurso"`
	Cantidad         int             `json:"cantidad"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	DepositoUnitario decimal.Decimal `json:"deposito_unitario"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DepositoTotal    decimal.Decimal `json:"deposito_total"`
	Devuelto         bool            `json:"devuelto"`
}

type PenalizacionResponse struct {
	ID     uuid.UUID       `json:"id"`
	Motivo string          `json:"motivo"`
	Monto  decimal.Decimal `json:"monto"`
	Fecha  string          `json:"fecha"`
	Pagada bool            `json:"pagada"`
}

type AlquilerResponse struct {
	ID               uuid.UUID                 `json:"id"`
	Codigo           string                    `json:"codigo"`
	SocioID          uuid.UUID                 `json:"socio_id"`
	Estado           string                    `json:"estado"`
	FechaSolicitud   time.Time                 `json:"fecha_solicitud"`
	FechaInicio      string                    `json:"fecha_inicio"`
	FechaFinPrevista string                    `json:"fecha_fin_prevista"`
	FechaDevolucion  *string                   `json:"fecha_devolucion,omitempty"`
	DiasAlquiler     int                       `json:"dias_alquiler"`
	EstaEnCurso      bool                      `json:"esta_en_curso"`
	EstaRetrasado    bool                      `json:"esta_retrasado"`
	DiasRetraso      int                       `json:"dias_retraso"`
	CostoTotal       decimal.Decimal           `json:"costo_total"`
	Deposito         decimal.Decimal           `json:"deposito"`
	DepositoDevuelto *decimal.Decimal          `json:"deposito_devuelto,omitempty"`
	Detalles         []DetalleAlquilerResponse `json:"detalles"`
	Penalizaciones   []PenalizacionResponse    `json:"penalizaciones,omitempty"`
}

type AlquilerListResponse struct {
	Data  []AlquilerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
