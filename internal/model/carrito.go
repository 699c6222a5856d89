package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Carrito is the shopping cart of a user; each user has at most one.
// Totals are never stored, they are recomputed from the live items.
type Carrito struct {
	Base
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	Usuario *Usuario      `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE"`
	Items   []ItemCarrito `gorm:"foreignKey:CarritoID;constraint:OnDelete:CASCADE"`
}

func (Carrito) TableName() string { return "carritos" }

func (c Carrito) itemsVivos() []ItemCarrito {
	vivos := make([]ItemCarrito, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Eliminado() {
			continue
		}
		vivos = append(vivos, it)
	}
	return vivos
}

// TotalItems is the number of units across live items.
func (c Carrito) TotalItems() int {
	n := 0
	for _, it := range c.itemsVivos() {
		n += it.Cantidad
	}
	return n
}

// Subtotal sums the live items at the current catalog price.
func (c Carrito) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.itemsVivos() {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCarrito holds one product in a cart; a product appears at most once.
type ItemCarrito struct {
	Base
	CarritoID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_carrito_producto"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_carrito_producto"`
	Cantidad      int       `gorm:"not null;check:cantidad > 0"`
	FechaAgregado time.Time `gorm:"not null;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:CASCADE"`
}

func (ItemCarrito) TableName() string { return "items_carrito" }

// Subtotal uses the product's current price, not the price when added.
func (i ItemCarrito) Subtotal() decimal.Decimal {
	if i.Producto == nil {
		return decimal.Zero
	}
	return i.Producto.PrecioActual().Mul(decimal.NewFromInt(int64(i.Cantidad)))
}
