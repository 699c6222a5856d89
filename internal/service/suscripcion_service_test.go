package service_test

import (
	"context"
	"testing"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearSuscripcion_FechasYEstado(t *testing.T) {
	repo := newStubSuscripcionRepo()
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("30")})
	forma := repo.seedForma(false)
	inicio := dia(2025, 1, 31)

	resp, err := svc.Crear(context.Background(), dto.CrearSuscripcionRequest{
		SocioID:      uuid.New(),
		TipoID:       tipo.ID,
		FormaPagoID:  forma.ID,
		Periodicidad: "trimestral",
		FechaInicio:  &inicio,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-31", resp.FechaInicio)
	require.NotNil(t, resp.FechaFin)
	assert.Equal(t, "2025-04-30", *resp.FechaFin)
	assert.Equal(t, string(model.SuscripcionActiva), resp.Estado)
	assert.True(t, resp.Precio.Equal(dec("90")), "trimestral sin precio propio = 3 × mensual")
	assert.True(t, resp.RenovacionAutomatica)
	assert.True(t, resp.Activa)
}

func TestCrearSuscripcion_DuracionMinima(t *testing.T) {
	repo := newStubSuscripcionRepo()
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("30"), DuracionMinimaMeses: 6})

	_, err := svc.Crear(context.Background(), dto.CrearSuscripcionRequest{
		SocioID:      uuid.New(),
		TipoID:       tipo.ID,
		FormaPagoID:  repo.seedForma(false).ID,
		Periodicidad: "mensual",
		Periodos:     3,
	})
	assert.ErrorIs(t, err, service.ErrDuracionMinima)
	assert.Empty(t, repo.suscripciones)
}

func TestCrearSuscripcion_PagoManualQuedaPendienteHastaConfirmar(t *testing.T) {
	repo := newStubSuscripcionRepo()
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	ctx := context.Background()
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("25")})

	sus, err := svc.Crear(ctx, dto.CrearSuscripcionRequest{
		SocioID:      uuid.New(),
		TipoID:       tipo.ID,
		FormaPagoID:  repo.seedForma(true).ID,
		Periodicidad: "mensual",
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.SuscripcionPendientePago), sus.Estado)
	assert.False(t, sus.Activa)

	pago, err := svc.RegistrarPago(ctx, dto.RegistrarPagoRequest{SuscripcionID: sus.ID, Monto: dec("25"), Referencia: "TRF-1"})
	require.NoError(t, err)
	assert.False(t, pago.Confirmado)

	staff := uuid.New()
	pago, err = svc.ConfirmarPago(ctx, pago.ID, &staff)
	require.NoError(t, err)
	assert.True(t, pago.Confirmado)
	require.NotNil(t, pago.FechaConfirmacion)
	assert.Equal(t, "2025-03-10", *pago.FechaConfirmacion)
	assert.Equal(t, &staff, pago.ConfirmadoPorID)

	got, err := svc.Obtener(ctx, sus.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.SuscripcionActiva), got.Estado)

	_, err = svc.ConfirmarPago(ctx, pago.ID, &staff)
	assert.ErrorIs(t, err, service.ErrPagoYaConfirmado)
}

func TestRenovar_Mensual(t *testing.T) {
	repo := newStubSuscripcionRepo()
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("30")})
	fin := dia(2024, 12, 15)
	sus := repo.seedSuscripcion(uuid.New(), tipo, dia(2024, 11, 15), &fin, false)

	resp, err := svc.Renovar(context.Background(), sus.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-16", resp.FechaInicio)
	require.NotNil(t, resp.FechaFin)
	assert.Equal(t, "2025-01-16", *resp.FechaFin)

	require.Len(t, repo.pagos, 1)
	for _, p := range repo.pagos {
		assert.True(t, p.Monto.Equal(dec("30")))
		assert.False(t, p.Confirmado)
	}
}

func TestRenovar_SinEstadoActivaNoModifica(t *testing.T) {
	repo := newStubSuscripcionRepo(model.SuscripcionCancelada, model.SuscripcionExpirada)
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("30")})
	fin := dia(2024, 12, 15)
	sus := repo.seedSuscripcion(uuid.New(), tipo, dia(2024, 11, 15), &fin, false)

	_, err := svc.Renovar(context.Background(), sus.ID, 1)
	assert.ErrorIs(t, err, model.ErrEstadoNoEncontrado)

	stored := repo.suscripciones[sus.ID]
	assert.Equal(t, dia(2024, 11, 15), stored.FechaInicio)
	assert.Equal(t, fin, *stored.FechaFin)
	assert.Zero(t, repo.actualizaciones)
	assert.Empty(t, repo.pagos)
}

func TestCancelar_SinEstadoCanceladaNoModifica(t *testing.T) {
	repo := newStubSuscripcionRepo(model.SuscripcionActiva)
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("30")})
	sus := repo.seedSuscripcion(uuid.New(), tipo, dia(2025, 1, 1), nil, true)

	_, err := svc.Cancelar(context.Background(), sus.ID, dto.CancelarSuscripcionRequest{Motivo: "mudanza"})
	assert.ErrorIs(t, err, model.ErrEstadoNoEncontrado)
	assert.Zero(t, repo.actualizaciones)
	assert.Nil(t, repo.suscripciones[sus.ID].FechaCancelacion)
}

func TestCancelar(t *testing.T) {
	repo := newStubSuscripcionRepo()
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	ctx := context.Background()
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("30")})
	sus := repo.seedSuscripcion(uuid.New(), tipo, dia(2025, 1, 1), nil, true)

	resp, err := svc.Cancelar(ctx, sus.ID, dto.CancelarSuscripcionRequest{Motivo: "mudanza"})
	require.NoError(t, err)
	assert.Equal(t, string(model.SuscripcionCancelada), resp.Estado)
	require.NotNil(t, resp.FechaCancelacion)
	assert.Equal(t, "2025-03-10", *resp.FechaCancelacion)
	assert.False(t, resp.RenovacionAutomatica)
	assert.False(t, resp.Activa)

	_, err = svc.Cancelar(ctx, sus.ID, dto.CancelarSuscripcionRequest{Motivo: "otra vez"})
	assert.ErrorIs(t, err, service.ErrSuscripcionCancelada)
}

func TestRenovarVencidas_RecuperaPeriodosPendientes(t *testing.T) {
	repo := newStubSuscripcionRepo()
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("20")})
	fin := dia(2025, 1, 20)
	auto := repo.seedSuscripcion(uuid.New(), tipo, dia(2024, 12, 20), &fin, true)
	finManual := dia(2025, 2, 1)
	manual := repo.seedSuscripcion(uuid.New(), tipo, dia(2025, 1, 1), &finManual, false)

	res, err := svc.RenovarVencidas(context.Background(), hoyTest)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Procesadas)
	assert.Zero(t, res.Fallidas)

	// 2025-01-20 → 2025-02-21 → 2025-03-22 covers 2025-03-10
	stored := repo.suscripciones[auto.ID]
	assert.Equal(t, dia(2025, 2, 22), stored.FechaInicio)
	assert.Equal(t, dia(2025, 3, 22), *stored.FechaFin)
	require.Len(t, repo.pagos, 1)
	for _, p := range repo.pagos {
		assert.True(t, p.Monto.Equal(dec("40")), "two periods, got %s", p.Monto)
	}

	assert.Equal(t, finManual, *repo.suscripciones[manual.ID].FechaFin)
}

func TestExpirarVencidas(t *testing.T) {
	repo := newStubSuscripcionRepo()
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("20")})
	fin := dia(2025, 2, 1)
	vencida := repo.seedSuscripcion(uuid.New(), tipo, dia(2025, 1, 1), &fin, false)
	finAuto := dia(2025, 2, 1)
	auto := repo.seedSuscripcion(uuid.New(), tipo, dia(2025, 1, 1), &finAuto, true)

	res, err := svc.ExpirarVencidas(context.Background(), hoyTest)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Procesadas)
	assert.Equal(t, repo.estados[model.SuscripcionExpirada].ID, repo.suscripciones[vencida.ID].EstadoID)
	assert.Equal(t, repo.estados[model.SuscripcionActiva].ID, repo.suscripciones[auto.ID].EstadoID)
}

func TestExpirarVencidas_SinEstadoExpirada(t *testing.T) {
	repo := newStubSuscripcionRepo(model.SuscripcionActiva)
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("20")})
	fin := dia(2025, 2, 1)
	repo.seedSuscripcion(uuid.New(), tipo, dia(2025, 1, 1), &fin, false)

	_, err := svc.ExpirarVencidas(context.Background(), hoyTest)
	assert.ErrorIs(t, err, model.ErrEstadoNoEncontrado)
	assert.Zero(t, repo.actualizaciones)
}

func TestActivaDe(t *testing.T) {
	repo := newStubSuscripcionRepo()
	svc := service.NewSuscripcionService(repo, relojFijo(hoyTest))
	tipo := repo.seedTipo(model.TipoSuscripcion{PrecioMensual: dec("20")})
	socio := uuid.New()
	fin := dia(2025, 3, 31)
	repo.seedSuscripcion(socio, tipo, dia(2025, 3, 1), &fin, false)

	resp, err := svc.ActivaDe(context.Background(), socio, hoyTest)
	require.NoError(t, err)
	require.NotNil(t, resp.DiasRestantes)
	assert.Equal(t, 21, *resp.DiasRestantes)

	_, err = svc.ActivaDe(context.Background(), uuid.New(), hoyTest)
	assert.ErrorIs(t, err, service.ErrSinSuscripcionActiva)
}
