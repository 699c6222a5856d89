package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoriaProducto groups products in the club shop.
type CategoriaProducto struct {
	Base
	Nombre      string     `gorm:"size:100;not null"`
	Descripcion string     `gorm:"type:text"`
	Slug        string     `gorm:"size:120;uniqueIndex;not null"`
	PadreID     *uuid.UUID `gorm:"type:uuid;index"`

	Padre *CategoriaProducto `gorm:"foreignKey:PadreID;constraint:OnDelete:CASCADE"`
}

func (CategoriaProducto) TableName() string { return "categorias_producto" }

// Producto is an item sold in the shop. It may point to the Recurso it is
// the sellable face of; that link is cleared if the resource is removed.
type Producto struct {
	Base
	Codigo           string           `gorm:"size:50;uniqueIndex;not null"`
	Nombre           string           `gorm:"size:200;index;not null"`
	Descripcion      string           `gorm:"type:text"`
	CategoriaID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	RecursoID        *uuid.UUID       `gorm:"type:uuid;index"`
	Precio           decimal.Decimal  `gorm:"type:decimal(10,2);not null;check:precio >= 0"`
	PrecioOferta     *decimal.Decimal `gorm:"type:decimal(10,2);check:precio_oferta >= 0"`
	Stock            int              `gorm:"not null;default:0;check:stock >= 0"`
	StockMinimo      int              `gorm:"not null"`
	Destacado        bool             `gorm:"not null;default:false"`
	FechaPublicacion time.Time        `gorm:"type:date;not null"`
	SoloSocios       bool             `gorm:"not null;default:false"`
	Marca            string           `gorm:"size:100"`
	Modelo           string           `gorm:"size:100"`
	Peso             *decimal.Decimal `gorm:"type:decimal(6,2)"`
	Dimensiones      string           `gorm:"size:100"`

	Categoria *CategoriaProducto `gorm:"foreignKey:CategoriaID;constraint:OnDelete:RESTRICT"`
	Recurso   *Recurso           `gorm:"foreignKey:RecursoID;constraint:OnDelete:SET NULL"`
}

func (Producto) TableName() string { return "productos" }

// ofertaValida is true when a non-zero offer price below the list price is set.
func (p Producto) ofertaValida() bool {
	return p.PrecioOferta != nil && p.PrecioOferta.IsPositive() && p.PrecioOferta.LessThan(p.Precio)
}

// PrecioActual is the offer price when valid, else the list price.
func (p Producto) PrecioActual() decimal.Decimal {
	if p.ofertaValida() {
		return *p.PrecioOferta
	}
	return p.Precio
}

// PorcentajeDescuento is round(100 - oferta*100/precio), or 0 without a valid offer.
func (p Producto) PorcentajeDescuento() int {
	if !p.ofertaValida() {
		return 0
	}
	cien := decimal.NewFromInt(100)
	pct := cien.Sub(p.PrecioOferta.Mul(cien).Div(p.Precio))
	return int(pct.Round(0).IntPart())
}

// NecesitaReposicion flags products at or below their minimum stock.
func (p Producto) NecesitaReposicion() bool { return p.Stock <= p.StockMinimo }

// Disponible requires a live product with stock.
func (p Producto) Disponible() bool { return p.Vivo() && p.Stock > 0 }
