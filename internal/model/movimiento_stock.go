package model

import "github.com/google/uuid"

// Tipos de movimiento de stock.
const (
	MovimientoVenta        = "venta"
	MovimientoAnulacion    = "anulacion_venta"
	MovimientoAjusteManual = "ajuste_manual"
)

// MovimientoStock registra cada cambio de stock de un producto de la tienda.
// Se crea al vender, anular una venta o ajustar el stock a mano.
type MovimientoStock struct {
	Base
	ProductoID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Tipo          string     `gorm:"size:30;not null"`
	Cantidad      int        `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int        `gorm:"not null"`
	StockNuevo    int        `gorm:"not null"`
	Motivo        string     `gorm:"type:text"`
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"` // venta_id when applicable

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
