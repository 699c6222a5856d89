package model_test

import (
	"testing"
	"time"

	"github.com/nycamas/club/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fecha(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func TestAlquiler_EstaRetrasado(t *testing.T) {
	a := model.Alquiler{
		FechaInicio:      fecha("2024-06-01"),
		FechaFinPrevista: fecha("2024-06-05"),
	}

	assert.False(t, a.EstaRetrasado(fecha("2024-06-05")), "the expected day itself is not late")
	assert.True(t, a.EstaRetrasado(fecha("2024-06-06")))
	assert.Equal(t, 3, a.DiasRetraso(fecha("2024-06-08")))
	assert.Equal(t, 0, a.DiasRetraso(fecha("2024-06-04")))

	// once returned the rental is never late, even if returned after the expected date
	a.FechaDevolucion = ptr(fecha("2024-06-09"))
	assert.False(t, a.EstaRetrasado(fecha("2024-06-20")))
	assert.Equal(t, 0, a.DiasRetraso(fecha("2024-06-20")))
}

func TestAlquiler_EstaEnCurso(t *testing.T) {
	a := model.Alquiler{
		FechaInicio:      fecha("2024-06-01"),
		FechaFinPrevista: fecha("2024-06-05"),
	}
	assert.Equal(t, 4, a.DiasAlquiler())
	assert.False(t, a.EstaEnCurso(fecha("2024-05-31")))
	assert.True(t, a.EstaEnCurso(fecha("2024-06-01")))
	assert.True(t, a.EstaEnCurso(fecha("2024-06-30")), "unreturned rentals stay in course")

	a.FechaDevolucion = ptr(fecha("2024-06-04"))
	assert.True(t, a.EstaEnCurso(fecha("2024-06-04")))
	assert.False(t, a.EstaEnCurso(fecha("2024-06-05")))
}

func TestDetalleAlquiler_Totales(t *testing.T) {
	d := model.DetalleAlquiler{
		Cantidad:         3,
		PrecioUnitario:   decimal.RequireFromString("12.50"),
		DepositoUnitario: decimal.RequireFromString("20"),
	}
	assert.True(t, d.Subtotal().Equal(decimal.RequireFromString("37.50")))
	assert.True(t, d.DepositoTotal().Equal(decimal.NewFromInt(60)))
}

func TestReservaRecurso_EstaVigente(t *testing.T) {
	r := model.ReservaRecurso{FechaInicio: fecha("2024-07-10")}
	assert.True(t, r.EstaVigente(fecha("2024-07-10")))
	assert.False(t, r.EstaVigente(fecha("2024-07-11")))
}

func TestCodigoEstadoAlquiler_Abierto(t *testing.T) {
	assert.True(t, model.AlquilerReservado.Abierto())
	assert.True(t, model.AlquilerEnCurso.Abierto())
	assert.False(t, model.AlquilerFinalizado.Abierto())
	assert.False(t, model.AlquilerCancelado.Abierto())
}
