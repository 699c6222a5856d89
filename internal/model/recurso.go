package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recurso is any physical item the club lends or sells (kayaks, rackets,
// lockers...). CantidadDisponible is kept in [0, CantidadTotal] by
// Reconciliar; the rental service is the only writer.
type Recurso struct {
	Base
	Codigo               string           `gorm:"size:50;uniqueIndex;not null"`
	Nombre               string           `gorm:"size:200;index;not null"`
	Descripcion          string           `gorm:"type:text"`
	CategoriaID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	TipoID               uuid.UUID        `gorm:"type:uuid;not null;index"`
	EstadoID             uuid.UUID        `gorm:"type:uuid;not null;index"`
	CantidadTotal        int              `gorm:"not null;check:cantidad_total >= 0"`
	CantidadDisponible   int              `gorm:"not null;check:cantidad_disponible >= 0"`
	PrecioAlquiler       *decimal.Decimal `gorm:"type:decimal(10,2)"`
	PrecioVenta          *decimal.Decimal `gorm:"type:decimal(10,2)"`
	DepositoGarantia     decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	FechaAdquisicion     *time.Time       `gorm:"type:date"`
	ValorAdquisicion     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Proveedor            string           `gorm:"size:200"`
	Notas                string           `gorm:"type:text"`
	SoloSocios           bool             `gorm:"not null;default:false"`
	RequiereAutorizacion bool             `gorm:"not null;default:false"`

	Categoria *Categoria        `gorm:"foreignKey:CategoriaID;constraint:OnDelete:RESTRICT"`
	Tipo      *TipoRecurso      `gorm:"foreignKey:TipoID;constraint:OnDelete:RESTRICT"`
	Estado    *EstadoRecurso    `gorm:"foreignKey:EstadoID;constraint:OnDelete:RESTRICT"`
	Etiquetas []EtiquetaRecurso `gorm:"many2many:recurso_etiquetas"`
}

func (Recurso) TableName() string { return "recursos" }

// Disponible requires the current state to allow use and at least one free unit.
func (r Recurso) Disponible() bool {
	return r.Estado != nil && r.Estado.Disponible && r.CantidadDisponible > 0
}

// EsAlquilable requires a rentable type and a rental price.
func (r Recurso) EsAlquilable() bool {
	return r.Tipo != nil && r.Tipo.Alquilable && r.PrecioAlquiler != nil
}

// EsVendible requires a sellable type and a sale price.
func (r Recurso) EsVendible() bool {
	return r.Tipo != nil && r.Tipo.Vendible && r.PrecioVenta != nil
}

// Reconciliar recomputes CantidadDisponible from the units committed to
// open rentals, clamped to [0, CantidadTotal].
func (r *Recurso) Reconciliar(comprometidas int) {
	libres := r.CantidadTotal - comprometidas
	if libres < 0 {
		libres = 0
	}
	if libres > r.CantidadTotal {
		libres = r.CantidadTotal
	}
	r.CantidadDisponible = libres
}

// MantenimientoRecurso records a maintenance window. EstadoAnteriorID is the
// state the resource goes back to when the maintenance is closed.
type MantenimientoRecurso struct {
	Base
	RecursoID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	FechaInicio      time.Time        `gorm:"type:date;not null"`
	FechaFin         *time.Time       `gorm:"type:date"`
	Descripcion      string           `gorm:"type:text;not null"`
	Costo            *decimal.Decimal `gorm:"type:decimal(10,2)"`
	RealizadoPor     string           `gorm:"size:200"`
	EstadoAnteriorID *uuid.UUID       `gorm:"type:uuid"`
	Notas            string           `gorm:"type:text"`

	Recurso        *Recurso       `gorm:"foreignKey:RecursoID;constraint:OnDelete:CASCADE"`
	EstadoAnterior *EstadoRecurso `gorm:"foreignKey:EstadoAnteriorID;constraint:OnDelete:RESTRICT"`
}

func (MantenimientoRecurso) TableName() string { return "mantenimientos_recurso" }

// EnCurso is true while the maintenance has no closing date.
func (m MantenimientoRecurso) EnCurso() bool { return m.FechaFin == nil }
