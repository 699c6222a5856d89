package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CodigoEstadoAlquiler is the stable identifier of a rental status.
// The status row's Nombre is for display only.
type CodigoEstadoAlquiler string

const (
	AlquilerReservado  CodigoEstadoAlquiler = "reservado"
	AlquilerEnCurso    CodigoEstadoAlquiler = "en_curso"
	AlquilerFinalizado CodigoEstadoAlquiler = "finalizado"
	AlquilerCancelado  CodigoEstadoAlquiler = "cancelado"
)

// Abierto reports whether rentals in this status still hold resource units.
func (c CodigoEstadoAlquiler) Abierto() bool {
	return c == AlquilerReservado || c == AlquilerEnCurso
}

type EstadoAlquiler struct {
	Base
	Codigo      CodigoEstadoAlquiler `gorm:"size:30;uniqueIndex;not null"`
	Nombre      string               `gorm:"size:50;not null"`
	Descripcion string               `gorm:"type:text"`
	Color       string               `gorm:"size:20;not null;default:'#000000'"`
}

func (EstadoAlquiler) TableName() string { return "estados_alquiler" }

// EstadosAlquiler is the closed family of rental statuses seeded at migration time.
var EstadosAlquiler = []EstadoAlquiler{
	{Codigo: AlquilerReservado, Nombre: "Reservado", Color: "#1E88E5"},
	{Codigo: AlquilerEnCurso, Nombre: "En curso", Color: "#43A047"},
	{Codigo: AlquilerFinalizado, Nombre: "Finalizado", Color: "#757575"},
	{Codigo: AlquilerCancelado, Nombre: "Cancelado", Color: "#E53935"},
}

// Alquiler is a member's rental of one or more resources. It owns its line
// items and penalties; deleting it physically removes them too.
type Alquiler struct {
	Base
	Codigo           string           `gorm:"size:50;uniqueIndex;not null"`
	SocioID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	FechaSolicitud   time.Time        `gorm:"not null;index"`
	FechaInicio      time.Time        `gorm:"type:date;not null"`
	FechaFinPrevista time.Time        `gorm:"type:date;not null"`
	FechaDevolucion  *time.Time       `gorm:"type:date"`
	EstadoID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Notas            string           `gorm:"type:text"`
	CostoTotal       decimal.Decimal  `gorm:"type:decimal(10,2);not null;check:costo_total >= 0"`
	Deposito         decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0;check:deposito >= 0"`
	DepositoDevuelto *decimal.Decimal `gorm:"type:decimal(10,2)"`
	GestionadoPorID  *uuid.UUID       `gorm:"type:uuid"`

	Socio          *Usuario          `gorm:"foreignKey:SocioID;constraint:OnDelete:RESTRICT"`
	Estado         *EstadoAlquiler   `gorm:"foreignKey:EstadoID;constraint:OnDelete:RESTRICT"`
	GestionadoPor  *Usuario          `gorm:"foreignKey:GestionadoPorID;constraint:OnDelete:RESTRICT"`
	Detalles       []DetalleAlquiler `gorm:"foreignKey:AlquilerID;constraint:OnDelete:CASCADE"`
	Penalizaciones []Penalizacion    `gorm:"foreignKey:AlquilerID;constraint:OnDelete:CASCADE"`
}

func (Alquiler) TableName() string { return "alquileres" }

// DiasAlquiler is the planned length of the rental in days.
func (a Alquiler) DiasAlquiler() int {
	return DiasEntre(a.FechaInicio, a.FechaFinPrevista)
}

// EstaEnCurso is true from the start date until the return date (inclusive).
func (a Alquiler) EstaEnCurso(hoy time.Time) bool {
	h := Dia(hoy)
	if h.Before(Dia(a.FechaInicio)) {
		return false
	}
	return a.FechaDevolucion == nil || !h.After(Dia(*a.FechaDevolucion))
}

// EstaRetrasado is true while the rental is unreturned past its expected end.
func (a Alquiler) EstaRetrasado(hoy time.Time) bool {
	return a.FechaDevolucion == nil && Dia(hoy).After(Dia(a.FechaFinPrevista))
}

// DiasRetraso returns the days elapsed past the expected end, or 0.
func (a Alquiler) DiasRetraso(hoy time.Time) int {
	if !a.EstaRetrasado(hoy) {
		return 0
	}
	return DiasEntre(a.FechaFinPrevista, hoy)
}

// CodigoEstado returns the status code when the status is loaded.
func (a Alquiler) CodigoEstado() CodigoEstadoAlquiler {
	if a.Estado == nil {
		return ""
	}
	return a.Estado.Codigo
}

// DetalleAlquiler is one resource line of a rental. PrecioUnitario is the
// price of one unit for the whole rental period.
type DetalleAlquiler struct {
	Base
	AlquilerID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_detalle_alquiler_recurso"`
	RecursoID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_detalle_alquiler_recurso"`
	Cantidad         int             `gorm:"not null;check:cantidad > 0"`
	PrecioUnitario   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DepositoUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Devuelto         bool            `gorm:"not null;default:false"`
	FechaDevolucion  *time.Time      `gorm:"type:date"`
	EstadoDevolucion string          `gorm:"type:text"`

	Recurso *Recurso `gorm:"foreignKey:RecursoID;constraint:OnDelete:RESTRICT"`
}

func (DetalleAlquiler) TableName() string { return "detalles_alquiler" }

func (d DetalleAlquiler) Subtotal() decimal.Decimal {
	return d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad)))
}

func (d DetalleAlquiler) DepositoTotal() decimal.Decimal {
	return d.DepositoUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad)))
}

// Motivos de penalización conocidos; Motivo is free text so others are allowed.
const (
	MotivoRetraso = "retraso"
	MotivoDanio   = "daño"
	MotivoPerdida = "pérdida"
)

// Penalizacion is a charge applied to a rental (late return, damage...).
// AplicadaPorID is nil when the charge was generated automatically.
type Penalizacion struct {
	Base
	AlquilerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	DetalleID     *uuid.UUID      `gorm:"type:uuid;index"`
	Motivo        string          `gorm:"size:200;not null"`
	Descripcion   string          `gorm:"type:text"`
	Monto         decimal.Decimal `gorm:"type:decimal(10,2);not null;check:monto >= 0"`
	Fecha         time.Time       `gorm:"type:date;not null;index"`
	AplicadaPorID *uuid.UUID      `gorm:"type:uuid"`
	Pagada        bool            `gorm:"not null;default:false"`
	FechaPago     *time.Time      `gorm:"type:date"`

	Detalle     *DetalleAlquiler `gorm:"foreignKey:DetalleID;constraint:OnDelete:CASCADE"`
	AplicadaPor *Usuario         `gorm:"foreignKey:AplicadaPorID;constraint:OnDelete:RESTRICT"`
}

func (Penalizacion) TableName() string { return "penalizaciones" }

// ReservaRecurso is an advance booking of resource units that can later be
// turned into a rental. AlquilerID is set once converted and cleared if that
// rental is physically removed.
type ReservaRecurso struct {
	Base
	SocioID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecursoID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Cantidad     int        `gorm:"not null;check:cantidad > 0"`
	FechaReserva time.Time  `gorm:"not null;index"`
	FechaInicio  time.Time  `gorm:"type:date;not null"`
	FechaFin     time.Time  `gorm:"type:date;not null"`
	Notas        string     `gorm:"type:text"`
	Confirmada   bool       `gorm:"not null;default:false"`
	AlquilerID   *uuid.UUID `gorm:"type:uuid"`

	Socio    *Usuario  `gorm:"foreignKey:SocioID;constraint:OnDelete:CASCADE"`
	Recurso  *Recurso  `gorm:"foreignKey:RecursoID;constraint:OnDelete:RESTRICT"`
	Alquiler *Alquiler `gorm:"foreignKey:AlquilerID;constraint:OnDelete:SET NULL"`
}

func (ReservaRecurso) TableName() string { return "reservas_recurso" }

// EstaVigente is true until the reserved start date has passed.
func (r ReservaRecurso) EstaVigente(hoy time.Time) bool {
	return !Dia(hoy).After(Dia(r.FechaInicio))
}

// Convertida reports whether the reservation already produced a rental.
func (r ReservaRecurso) Convertida() bool { return r.AlquilerID != nil }
