package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CodigoEstadoVenta is the stable identifier of a sale status.
type CodigoEstadoVenta string

const (
	VentaPendiente  CodigoEstadoVenta = "pendiente"
	VentaPagada     CodigoEstadoVenta = "pagada"
	VentaCompletada CodigoEstadoVenta = "completada"
	VentaCancelada  CodigoEstadoVenta = "cancelada"
)

type EstadoVenta struct {
	Base
	Codigo      CodigoEstadoVenta `gorm:"size:30;uniqueIndex;not null"`
	Nombre      string            `gorm:"size:50;not null"`
	Descripcion string            `gorm:"type:text"`
	Color       string            `gorm:"size:20;not null;default:'primary'"`
}

func (EstadoVenta) TableName() string { return "estados_venta" }

var EstadosVenta = []EstadoVenta{
	{Codigo: VentaPendiente, Nombre: "Pendiente", Color: "warning"},
	{Codigo: VentaPagada, Nombre: "Pagada", Color: "info"},
	{Codigo: VentaCompletada, Nombre: "Completada", Color: "success"},
	{Codigo: VentaCancelada, Nombre: "Cancelada", Color: "danger"},
}

type MetodoPago struct {
	Base
	Nombre      string `gorm:"size:100;not null;uniqueIndex"`
	Descripcion string `gorm:"type:text"`
	Icono       string `gorm:"size:50"`
}

func (MetodoPago) TableName() string { return "metodos_pago" }

// Venta is a shop sale to a club user. Totals are stored; CalcularTotal
// refreshes them from the line items.
type Venta struct {
	Base
	Codigo         string          `gorm:"size:50;uniqueIndex;not null"`
	ClienteID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	FechaVenta     time.Time       `gorm:"not null;index"`
	FechaPago      *time.Time
	EstadoID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Notas          string          `gorm:"type:text"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null;check:subtotal >= 0"`
	Impuestos      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;check:impuestos >= 0"`
	Descuento      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;check:descuento >= 0"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null;check:total >= 0"`
	MetodoPagoID   *uuid.UUID      `gorm:"type:uuid"`
	ReferenciaPago string          `gorm:"size:100"`
	VendedorID     *uuid.UUID      `gorm:"type:uuid"`

	Cliente    *Usuario       `gorm:"foreignKey:ClienteID;constraint:OnDelete:RESTRICT"`
	Estado     *EstadoVenta   `gorm:"foreignKey:EstadoID;constraint:OnDelete:RESTRICT"`
	MetodoPago *MetodoPago    `gorm:"foreignKey:MetodoPagoID;constraint:OnDelete:RESTRICT"`
	Vendedor   *Usuario       `gorm:"foreignKey:VendedorID;constraint:OnDelete:RESTRICT"`
	Detalles   []DetalleVenta `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

func (Venta) TableName() string { return "ventas" }

// CalcularTotal sets Subtotal to the sum of the line subtotals and
// Total to Subtotal + Impuestos - Descuento.
func (v *Venta) CalcularTotal() decimal.Decimal {
	sub := decimal.Zero
	for _, d := range v.Detalles {
		sub = sub.Add(d.Subtotal())
	}
	v.Subtotal = sub
	v.Total = sub.Add(v.Impuestos).Sub(v.Descuento)
	return v.Total
}

func (v Venta) CodigoEstado() CodigoEstadoVenta {
	if v.Estado == nil {
		return ""
	}
	return v.Estado.Codigo
}

// DetalleVenta is one product line of a sale with the price captured at
// the moment of sale.
type DetalleVenta struct {
	Base
	VentaID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_detalle_venta_producto"`
	ProductoID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_detalle_venta_producto"`
	Cantidad          int             `gorm:"not null;check:cantidad > 0"`
	PrecioUnitario    decimal.Decimal `gorm:"type:decimal(10,2);not null;check:precio_unitario >= 0"`
	DescuentoUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;check:descuento_unitario >= 0"`
	Notas             string          `gorm:"type:text"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (DetalleVenta) TableName() string { return "detalles_venta" }

// Subtotal is precio_unitario × cantidad − descuento_unitario. The unit
// discount is subtracted once per line, not per unit.
func (d DetalleVenta) Subtotal() decimal.Decimal {
	return d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad))).Sub(d.DescuentoUnitario)
}
