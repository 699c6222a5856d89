package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AgregarItemRequest struct {
	ProductoID uuid.UUID `json:"producto_id" validate:"required"`
	Cantidad   int       `json:"cantidad"    validate:"required,min=1"`
}

type ConvertirCarritoRequest struct {
	MetodoPagoID *uuid.UUID `json:"metodo_pago_id"`
	Notas        string     `json:"notas"`
}

type ItemCarritoResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductoID    uuid.UUID       `json:"producto_id"`
	Producto      string          `json:"producto"`
	Cantidad      int             `json:"cantidad"`
	PrecioActual  decimal.Decimal `json:"precio_actual"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	FechaAgregado time.Time       `json:"fecha_agregado"`
}

type CarritoResponse struct {
	ID         uuid.UUID             `json:"id"`
	UsuarioID  uuid.UUID             `json:"usuario_id"`
	Items      []ItemCarritoResponse `json:"items"`
	TotalItems int                   `json:"total_items"`
	Subtotal   decimal.Decimal       `json:"subtotal"`
}
