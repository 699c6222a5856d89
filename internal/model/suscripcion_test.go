package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nycamas/club/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func estadoSuscripcion(codigo model.CodigoEstadoSuscripcion) *model.EstadoSuscripcion {
	e := &model.EstadoSuscripcion{Codigo: codigo, Nombre: string(codigo)}
	e.ID = uuid.New()
	return e
}

func TestSuscripcion_RenovarMensualCruzaAnio(t *testing.T) {
	cancelada := estadoSuscripcion(model.SuscripcionCancelada)
	activa := estadoSuscripcion(model.SuscripcionActiva)
	s := model.Suscripcion{
		FechaInicio:       fecha("2024-11-15"),
		FechaFin:          ptr(fecha("2024-12-15")),
		Periodicidad:      model.Mensual,
		Estado:            cancelada,
		EstadoID:          cancelada.ID,
		FechaCancelacion:  ptr(fecha("2024-12-01")),
		MotivoCancelacion: "mudanza",
	}

	require.NoError(t, s.Renovar(1, activa))

	assert.Equal(t, "2024-12-16", s.FechaInicio.Format("2006-01-02"))
	assert.Equal(t, "2025-01-16", s.FechaFin.Format("2006-01-02"))
	assert.Equal(t, activa.ID, s.EstadoID)
	assert.Nil(t, s.FechaCancelacion)
	assert.Empty(t, s.MotivoCancelacion)
}

func TestSuscripcion_RenovarPorPeriodicidad(t *testing.T) {
	activa := estadoSuscripcion(model.SuscripcionActiva)
	cases := []struct {
		periodicidad model.Periodicidad
		fin          string
		periodos     int
		wantInicio   string
		wantFin      string
	}{
		{model.Trimestral, "2024-11-30", 1, "2024-12-01", "2025-03-01"},
		{model.Trimestral, "2024-10-31", 2, "2024-11-01", "2025-05-01"},
		{model.Anual, "2024-02-28", 1, "2024-02-29", "2025-02-28"},
		{model.Mensual, "2024-01-30", 1, "2024-01-31", "2024-02-29"},
		{model.Mensual, "2024-03-31", 14, "2024-04-01", "2025-06-01"},
	}
	for _, c := range cases {
		t.Run(string(c.periodicidad)+" "+c.fin, func(t *testing.T) {
			s := model.Suscripcion{FechaFin: ptr(fecha(c.fin)), Periodicidad: c.periodicidad}
			require.NoError(t, s.Renovar(c.periodos, activa))
			assert.Equal(t, c.wantInicio, s.FechaInicio.Format("2006-01-02"))
			assert.Equal(t, c.wantFin, s.FechaFin.Format("2006-01-02"))
		})
	}
}

func TestSuscripcion_RenovarSinFechaFin(t *testing.T) {
	s := model.Suscripcion{FechaInicio: fecha("2024-01-01"), Periodicidad: model.Mensual}
	err := s.Renovar(1, estadoSuscripcion(model.SuscripcionActiva))
	assert.ErrorIs(t, err, model.ErrSinFechaFin)
	assert.Equal(t, fecha("2024-01-01"), s.FechaInicio)
}

func TestSuscripcion_RenovarSinEstadoNoModifica(t *testing.T) {
	fin := fecha("2024-12-15")
	s := model.Suscripcion{FechaInicio: fecha("2024-11-15"), FechaFin: &fin, Periodicidad: model.Mensual}
	antes := s

	err := s.Renovar(1, nil)
	assert.ErrorIs(t, err, model.ErrEstadoNoEncontrado)
	assert.Equal(t, antes, s)

	err = s.Renovar(1, estadoSuscripcion(model.SuscripcionExpirada))
	assert.ErrorIs(t, err, model.ErrEstadoNoEncontrado)
	assert.Equal(t, antes, s)
}

func TestSuscripcion_RenovarValidaEntradas(t *testing.T) {
	activa := estadoSuscripcion(model.SuscripcionActiva)
	s := model.Suscripcion{FechaFin: ptr(fecha("2024-12-15")), Periodicidad: "semanal"}
	assert.ErrorIs(t, s.Renovar(1, activa), model.ErrPeriodicidadInvalida)

	s.Periodicidad = model.Mensual
	assert.ErrorIs(t, s.Renovar(0, activa), model.ErrPeriodosInvalidos)
}

func TestSuscripcion_Cancelar(t *testing.T) {
	activa := estadoSuscripcion(model.SuscripcionActiva)
	s := model.Suscripcion{FechaInicio: fecha("2024-01-01"), Estado: activa, EstadoID: activa.ID}

	require.ErrorIs(t, s.Cancelar("x", fecha("2024-02-01"), nil), model.ErrEstadoNoEncontrado)
	assert.Nil(t, s.FechaCancelacion)
	assert.Equal(t, activa.ID, s.EstadoID)

	cancelada := estadoSuscripcion(model.SuscripcionCancelada)
	require.NoError(t, s.Cancelar("precio", fecha("2024-02-01"), cancelada))
	assert.Equal(t, "2024-02-01", s.FechaCancelacion.Format("2006-01-02"))
	assert.Equal(t, "precio", s.MotivoCancelacion)
	assert.Equal(t, cancelada.ID, s.EstadoID)
	assert.False(t, s.Activa(fecha("2024-02-02")))
}

func TestSuscripcion_ActivaYDiasRestantes(t *testing.T) {
	s := model.Suscripcion{
		FechaInicio: fecha("2024-01-01"),
		FechaFin:    ptr(fecha("2024-01-31")),
		Estado:      estadoSuscripcion(model.SuscripcionActiva),
	}
	assert.False(t, s.Activa(fecha("2023-12-31")))
	assert.True(t, s.Activa(fecha("2024-01-01")))
	assert.True(t, s.Activa(fecha("2024-01-31")))
	assert.False(t, s.Activa(fecha("2024-02-01")))

	require.NotNil(t, s.DiasRestantes(fecha("2024-01-21")))
	assert.Equal(t, 10, *s.DiasRestantes(fecha("2024-01-21")))
	assert.Equal(t, 0, *s.DiasRestantes(fecha("2024-03-01")))

	s.FechaFin = nil
	assert.Nil(t, s.DiasRestantes(fecha("2024-01-21")))
	assert.True(t, s.Activa(fecha("2030-01-01")))
}

func TestTipoSuscripcion_PrecioPara(t *testing.T) {
	tipo := model.TipoSuscripcion{PrecioMensual: dec("30"), PrecioAnual: ptr(dec("300"))}

	p, err := tipo.PrecioPara(model.Trimestral)
	require.NoError(t, err)
	assert.True(t, p.Equal(dec("90")))

	p, err = tipo.PrecioPara(model.Anual)
	require.NoError(t, err)
	assert.True(t, p.Equal(dec("300")))

	_, err = tipo.PrecioPara("bienal")
	assert.ErrorIs(t, err, model.ErrPeriodicidadInvalida)
}

func TestPagoSuscripcion_Confirmar(t *testing.T) {
	var p model.PagoSuscripcion
	u := uuid.New()
	p.Confirmar(&u, fecha("2024-05-02"))
	assert.True(t, p.Confirmado)
	assert.Equal(t, &u, p.ConfirmadoPorID)
	assert.Equal(t, "2024-05-02", p.FechaConfirmacion.Format("2006-01-02"))
}

func TestFormatearNumeroSocio(t *testing.T) {
	assert.Equal(t, "S2024-0007", model.FormatearNumeroSocio(2024, 7))
	assert.Equal(t, "S2025-12345", model.FormatearNumeroSocio(2025, 12345))
}
