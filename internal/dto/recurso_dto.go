package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearRecursoRequest struct {
	Codigo               string           `json:"codigo"                validate:"required,max=50"`
	Nombre               string           `json:"nombre"                validate:"required,min=2,max=200"`
	Descripcion          string           `json:"descripcion"`
	CategoriaID          uuid.UUID        `json:"categoria_id"          validate:"required"`
	TipoID               uuid.UUID        `json:"tipo_id"               validate:"required"`
	EstadoID             uuid.UUID        `json:"estado_id"             validate:"required"`
	CantidadTotal        int              `json:"cantidad_total"        validate:"min=0"`
	CantidadDisponible   *int             `json:"cantidad_disponible"   validate:"omitempty,min=0"`
	PrecioAlquiler       *decimal.Decimal `json:"precio_alquiler"       validate:"omitempty,min=0"`
	PrecioVenta          *decimal.Decimal `json:"precio_venta"          validate:"omitempty,min=0"`
	DepositoGarantia     decimal.Decimal  `json:"deposito_garantia"     validate:"min=0"`
	FechaAdquisicion     *time.Time       `json:"fecha_adquisicion"`
	ValorAdquisicion     *decimal.Decimal `json:"valor_adquisicion"     validate:"omitempty,min=0"`
	Proveedor            string           `json:"proveedor"             validate:"max=200"`
	Notas                string           `json:"notas"`
	SoloSocios           bool             `json:"solo_socios"`
	RequiereAutorizacion bool             `json:"requiere_autorizacion"`
	EtiquetaIDs          []uuid.UUID      `json:"etiqueta_ids"`
}

type ActualizarRecursoRequest struct {
	Nombre           *string          `json:"nombre"            validate:"omitempty,min=2,max=200"`
	Descripcion      *string          `json:"descripcion"`
	CategoriaID      *uuid.UUID       `json:"categoria_id"`
	CantidadTotal    *int             `json:"cantidad_total"    validate:"omitempty,min=0"`
	PrecioAlquiler   *decimal.Decimal `json:"precio_alquiler"   validate:"omitempty,min=0"`
	PrecioVenta      *decimal.Decimal `json:"precio_venta"      validate:"omitempty,min=0"`
	DepositoGarantia *decimal.Decimal `json:"deposito_garantia" validate:"omitempty,min=0"`
	Notas            *string          `json:"notas"`
	SoloSocios       *bool            `json:"solo_socios"`
}

type IniciarMantenimientoRequest struct {
	RecursoID    uuid.UUID        `json:"recurso_id"    validate:"required"`
	EstadoID     uuid.UUID        `json:"estado_id"     validate:"required"`
	FechaInicio  time.Time        `json:"fecha_inicio"  validate:"required"`
	Descripcion  string           `json:"descripcion"   validate:"required"`
	Costo        *decimal.Decimal `json:"costo"         validate:"omitempty,min=0"`
	RealizadoPor string           `json:"realizado_por" validate:"max=200"`
	Notas        string           `json:"notas"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type RecursoFilter struct {
	Nombre      string
	CategoriaID *uuid.UUID
	TipoID      *uuid.UUID
	SoloLibres  bool
	Page        int
	Limit       int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RecursoResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Codigo             string           `json:"codigo"`
	Nombre             string           `json:"nombre"`
	Categoria          string           `json:"categoria"`
	Tipo               string           `json:"tipo"`
	Estado             string           `json:"estado"`
	CantidadTotal      int              `json:"cantidad_total"`
	CantidadDisponible int              `json:"cantidad_disponible"`
	PrecioAlquiler     *decimal.Decimal `json:"precio_alquiler,omitempty"`
	PrecioVenta        *decimal.Decimal `json:"precio_venta,omitempty"`
	DepositoGarantia   decimal.Decimal  `json:"deposito_garantia"`
	Disponible         bool             `json:"disponible"`
	EsAlquilable       bool             `json:"es_alquilable"`
	EsVendible         bool             `json:"es_vendible"`
	Etiquetas          []string         `json:"etiquetas"`
	Activo             bool             `json:"activo"`
}

type RecursoListResponse struct {
	Data  []RecursoResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
