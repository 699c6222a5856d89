package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Periodicidad is the billing period of a subscription.
type Periodicidad string

const (
	Mensual    Periodicidad = "mensual"
	Trimestral Periodicidad = "trimestral"
	Anual      Periodicidad = "anual"
)

// Meses returns the number of calendar months covered by one period.
func (p Periodicidad) Meses() (int, bool) {
	switch p {
	case Mensual:
		return 1, true
	case Trimestral:
		return 3, true
	case Anual:
		return 12, true
	default:
		return 0, false
	}
}

// ── Tipos y catálogos ─────────────────────────────────────────────────────────

type Beneficio struct {
	Base
	Nombre      string `gorm:"size:100;not null"`
	Descripcion string `gorm:"type:text;not null"`
	Icono       string `gorm:"size:50"`
}

func (Beneficio) TableName() string { return "beneficios" }

// TipoSuscripcion is a membership plan. Discounts are percentages.
type TipoSuscripcion struct {
	Base
	Nombre                   string           `gorm:"size:100;not null"`
	Descripcion              string           `gorm:"type:text"`
	PrecioMensual            decimal.Decimal  `gorm:"type:decimal(10,2);not null;index;check:precio_mensual >= 0"`
	PrecioTrimestral         *decimal.Decimal `gorm:"type:decimal(10,2)"`
	PrecioAnual              *decimal.Decimal `gorm:"type:decimal(10,2)"`
	DuracionMinimaMeses      int              `gorm:"not null"`
	DescuentoAlquiler        decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	DescuentoCompras         decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	DescuentoClases          decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	MaxAlquileresSimultaneos int              `gorm:"not null"`
	MaxReservasClases        int              `gorm:"not null"`
	AccesoInstalaciones      bool             `gorm:"not null"`
	Color                    string           `gorm:"size:20;not null;default:'primary'"`
	Destacado                bool             `gorm:"not null;default:false"`

	Beneficios []Beneficio `gorm:"many2many:tipo_suscripcion_beneficios"`
}

func (TipoSuscripcion) TableName() string { return "tipos_suscripcion" }

// PrecioPara returns the plan price for one period. When no explicit
// quarterly or yearly price is set the monthly price is multiplied.
func (t TipoSuscripcion) PrecioPara(p Periodicidad) (decimal.Decimal, error) {
	switch p {
	case Mensual:
		return t.PrecioMensual, nil
	case Trimestral:
		if t.PrecioTrimestral != nil {
			return *t.PrecioTrimestral, nil
		}
		return t.PrecioMensual.Mul(decimal.NewFromInt(3)), nil
	case Anual:
		if t.PrecioAnual != nil {
			return *t.PrecioAnual, nil
		}
		return t.PrecioMensual.Mul(decimal.NewFromInt(12)), nil
	default:
		return decimal.Zero, ErrPeriodicidadInvalida
	}
}

type FormaPago struct {
	Base
	Nombre                   string `gorm:"size:100;not null;uniqueIndex"`
	Descripcion              string `gorm:"type:text"`
	RequiereValidacionManual bool   `gorm:"not null;default:false"`
}

func (FormaPago) TableName() string { return "formas_pago" }

// CodigoEstadoSuscripcion is the stable identifier of a subscription status.
type CodigoEstadoSuscripcion string

const (
	SuscripcionActiva        CodigoEstadoSuscripcion = "activa"
	SuscripcionPendientePago CodigoEstadoSuscripcion = "pendiente_pago"
	SuscripcionCancelada     CodigoEstadoSuscripcion = "cancelada"
	SuscripcionExpirada      CodigoEstadoSuscripcion = "expirada"
)

type EstadoSuscripcion struct {
	Base
	Codigo      CodigoEstadoSuscripcion `gorm:"size:30;uniqueIndex;not null"`
	Nombre      string                  `gorm:"size:50;not null"`
	Descripcion string                  `gorm:"type:text"`
	Color       string                  `gorm:"size:20;not null;default:'primary'"`
}

func (EstadoSuscripcion) TableName() string { return "estados_suscripcion" }

var EstadosSuscripcion = []EstadoSuscripcion{
	{Codigo: SuscripcionActiva, Nombre: "Activa", Color: "success"},
	{Codigo: SuscripcionPendientePago, Nombre: "Pendiente de pago", Color: "warning"},
	{Codigo: SuscripcionCancelada, Nombre: "Cancelada", Color: "danger"},
	{Codigo: SuscripcionExpirada, Nombre: "Expirada", Color: "secondary"},
}

// ── Suscripción ───────────────────────────────────────────────────────────────

// Suscripcion binds a member to a plan for a period. FechaFin nil means the
// subscription is open-ended and cannot be renewed by periods.
type Suscripcion struct {
	Base
	SocioID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	TipoID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	FechaInicio          time.Time       `gorm:"type:date;not null;index"`
	FechaFin             *time.Time      `gorm:"type:date"`
	FechaCancelacion     *time.Time      `gorm:"type:date"`
	EstadoID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	MotivoCancelacion    string          `gorm:"type:text"`
	FormaPagoID          uuid.UUID       `gorm:"type:uuid;not null"`
	Periodicidad         Periodicidad    `gorm:"size:20;not null;default:'mensual';check:periodicidad IN ('mensual','trimestral','anual')"`
	Precio               decimal.Decimal `gorm:"type:decimal(10,2);not null;check:precio >= 0"`
	RenovacionAutomatica bool            `gorm:"not null"`
	Notas                string          `gorm:"type:text"`

	Socio     *Usuario           `gorm:"foreignKey:SocioID;constraint:OnDelete:CASCADE"`
	Tipo      *TipoSuscripcion   `gorm:"foreignKey:TipoID;constraint:OnDelete:RESTRICT"`
	Estado    *EstadoSuscripcion `gorm:"foreignKey:EstadoID;constraint:OnDelete:RESTRICT"`
	FormaPago *FormaPago         `gorm:"foreignKey:FormaPagoID;constraint:OnDelete:RESTRICT"`
	Pagos     []PagoSuscripcion  `gorm:"foreignKey:SuscripcionID;constraint:OnDelete:CASCADE"`
}

func (Suscripcion) TableName() string { return "suscripciones" }

// Activa requires the Activa status and hoy within [FechaInicio, FechaFin].
func (s Suscripcion) Activa(hoy time.Time) bool {
	if s.Estado == nil || s.Estado.Codigo != SuscripcionActiva {
		return false
	}
	h := Dia(hoy)
	if h.Before(Dia(s.FechaInicio)) {
		return false
	}
	return s.FechaFin == nil || !h.After(Dia(*s.FechaFin))
}

// DiasRestantes is nil for open-ended subscriptions and 0 once expired.
func (s Suscripcion) DiasRestantes(hoy time.Time) *int {
	if s.FechaFin == nil {
		return nil
	}
	n := DiasEntre(hoy, *s.FechaFin)
	if n < 0 {
		n = 0
	}
	return &n
}

// Renovar extends the subscription by the given number of periods. The new
// period starts the day after the current end. Every precondition is checked
// before the first field is touched, so a failed renewal leaves s unchanged.
func (s *Suscripcion) Renovar(periodos int, activa *EstadoSuscripcion) error {
	if s.FechaFin == nil {
		return ErrSinFechaFin
	}
	if periodos < 1 {
		return ErrPeriodosInvalidos
	}
	meses, ok := s.Periodicidad.Meses()
	if !ok {
		return ErrPeriodicidadInvalida
	}
	if activa == nil || activa.Codigo != SuscripcionActiva {
		return ErrEstadoNoEncontrado
	}

	inicio := Dia(*s.FechaFin).AddDate(0, 0, 1)
	fin := SumarMeses(inicio, periodos*meses)

	s.FechaInicio = inicio
	s.FechaFin = &fin
	s.EstadoID = activa.ID
	s.Estado = activa
	s.FechaCancelacion = nil
	s.MotivoCancelacion = ""
	return nil
}

// Cancelar records the cancellation date and reason and moves the
// subscription to the Cancelada status.
func (s *Suscripcion) Cancelar(motivo string, fecha time.Time, cancelada *EstadoSuscripcion) error {
	if cancelada == nil || cancelada.Codigo != SuscripcionCancelada {
		return ErrEstadoNoEncontrado
	}
	f := Dia(fecha)
	s.FechaCancelacion = &f
	s.MotivoCancelacion = motivo
	s.EstadoID = cancelada.ID
	s.Estado = cancelada
	return nil
}

// Expirar moves a subscription to the Expirada status.
func (s *Suscripcion) Expirar(expirada *EstadoSuscripcion) error {
	if expirada == nil || expirada.Codigo != SuscripcionExpirada {
		return ErrEstadoNoEncontrado
	}
	s.EstadoID = expirada.ID
	s.Estado = expirada
	return nil
}

// PagoSuscripcion is a payment made against a subscription. ConfirmadoPorID
// is cleared if the confirming user is physically removed.
type PagoSuscripcion struct {
	Base
	SuscripcionID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Fecha             time.Time       `gorm:"type:date;not null;index"`
	Monto             decimal.Decimal `gorm:"type:decimal(10,2);not null;check:monto >= 0"`
	Referencia        string          `gorm:"size:100"`
	Notas             string          `gorm:"type:text"`
	Confirmado        bool            `gorm:"not null;default:false"`
	FechaConfirmacion *time.Time      `gorm:"type:date"`
	ConfirmadoPorID   *uuid.UUID      `gorm:"type:uuid"`

	ConfirmadoPor *Usuario `gorm:"foreignKey:ConfirmadoPorID;constraint:OnDelete:SET NULL"`
}

func (PagoSuscripcion) TableName() string { return "pagos_suscripcion" }

// Confirmar marks the payment as confirmed today by the given user (nil for
// automatic confirmations).
func (p *PagoSuscripcion) Confirmar(usuarioID *uuid.UUID, hoy time.Time) {
	f := Dia(hoy)
	p.Confirmado = true
	p.FechaConfirmacion = &f
	p.ConfirmadoPorID = usuarioID
}
