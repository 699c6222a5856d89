package model_test

import (
	"testing"

	"github.com/nycamas/club/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProducto_SinOfertaValida(t *testing.T) {
	cases := []struct {
		name   string
		oferta *decimal.Decimal
	}{
		{"sin oferta", nil},
		{"oferta cero", ptr(dec("0"))},
		{"oferta igual al precio", ptr(dec("25"))},
		{"oferta mayor al precio", ptr(dec("30"))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := model.Producto{Precio: dec("25"), PrecioOferta: c.oferta}
			assert.True(t, p.PrecioActual().Equal(dec("25")))
			assert.Equal(t, 0, p.PorcentajeDescuento())
		})
	}
}

func TestProducto_PorcentajeDescuento_Redondea(t *testing.T) {
	p := model.Producto{Precio: dec("3"), PrecioOferta: ptr(dec("1"))}
	assert.True(t, p.PrecioActual().Equal(dec("1")))
	// 100 - 33.33 = 66.67
	assert.Equal(t, 67, p.PorcentajeDescuento())

	p = model.Producto{Precio: dec("80"), PrecioOferta: ptr(dec("60"))}
	assert.Equal(t, 25, p.PorcentajeDescuento())
}

func TestProducto_Stock(t *testing.T) {
	p := model.Producto{Stock: 5, StockMinimo: 5}
	p.Activo = true
	assert.True(t, p.NecesitaReposicion())
	assert.True(t, p.Disponible())

	p.Stock = 0
	assert.False(t, p.Disponible())

	p.Stock = 6
	assert.False(t, p.NecesitaReposicion())
	p.Activo = false
	assert.False(t, p.Disponible())
}

func TestVenta_CalcularTotal(t *testing.T) {
	v := model.Venta{
		Impuestos: dec("4.20"),
		Descuento: dec("2"),
		Detalles: []model.DetalleVenta{
			{Cantidad: 2, PrecioUnitario: dec("10"), DescuentoUnitario: dec("1")},
			{Cantidad: 1, PrecioUnitario: dec("5.50")},
		},
	}
	total := v.CalcularTotal()

	assert.True(t, v.Subtotal.Equal(dec("24.50")), "got %s", v.Subtotal)
	assert.True(t, total.Equal(dec("26.70")), "got %s", total)
	assert.True(t, v.Total.Equal(total))
}

func TestCarrito_UsaPrecioActual(t *testing.T) {
	prod := &model.Producto{Precio: dec("10")}
	c := model.Carrito{Items: []model.ItemCarrito{
		{Cantidad: 2, Producto: prod},
		{Cantidad: 1, Producto: &model.Producto{Precio: dec("4")}},
	}}
	assert.Equal(t, 3, c.TotalItems())
	assert.True(t, c.Subtotal().Equal(dec("24")))

	// the cart follows catalog price changes
	prod.PrecioOferta = ptr(dec("7"))
	assert.True(t, c.Subtotal().Equal(dec("18")))
}

func TestCarrito_IgnoraItemsEliminados(t *testing.T) {
	borrado := model.ItemCarrito{Cantidad: 5, Producto: &model.Producto{Precio: dec("1")}}
	borrado.MarcarEliminado(fecha("2024-01-01"))

	c := model.Carrito{Items: []model.ItemCarrito{
		borrado,
		{Cantidad: 1, Producto: &model.Producto{Precio: dec("3")}},
	}}
	assert.Equal(t, 1, c.TotalItems())
	assert.True(t, c.Subtotal().Equal(dec("3")))
}
