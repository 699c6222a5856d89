package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

type VentaFilter struct {
	ClienteID *uuid.UUID
	Estado    string     // código de estado; empty = todos
	Desde     *time.Time // fecha_venta >= Desde
	Page      int
	Limit     int
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID uuid.UUID       `json:"producto_id" validate:"required"`
	Cantidad   int             `json:"cantidad"    validate:"required,min=1"`
	Descuento  decimal.Decimal `json:"descuento"   validate:"min=0"`
}

type RegistrarVentaRequest struct {
	ClienteID    uuid.UUID          `json:"cliente_id"     validate:"required"`
	Items        []ItemVentaRequest `json:"items"          validate:"required,min=1,dive"`
	Impuestos    decimal.Decimal    `json:"impuestos"      validate:"min=0"`
	Descuento    decimal.Decimal    `json:"descuento"      validate:"min=0"`
	VendedorID   *uuid.UUID         `json:"vendedor_id"`
	Notas        string             `json:"notas"`
	MetodoPagoID *uuid.UUID         `json:"metodo_pago_id"`
	// ClienteEmail: when present, the email worker mails the PDF receipt.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

type MarcarPagadaRequest struct {
	MetodoPagoID   uuid.UUID `json:"metodo_pago_id"  validate:"required"`
	ReferenciaPago string    `json:"referencia_pago" validate:"max=100"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     uuid.UUID       `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID             uuid.UUID           `json:"id"`
	Codigo         string              `json:"codigo"`
	ClienteID      uuid.UUID           `json:"cliente_id"`
	Estado         string              `json:"estado"`
	FechaVenta     time.Time           `json:"fecha_venta"`
	FechaPago      *time.Time          `json:"fecha_pago,omitempty"`
	Items          []ItemVentaResponse `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Impuestos      decimal.Decimal     `json:"impuestos"`
	Descuento      decimal.Decimal     `json:"descuento"`
	Total          decimal.Decimal     `json:"total"`
	ReferenciaPago string              `json:"referencia_pago,omitempty"`
}
