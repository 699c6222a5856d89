package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSuscripcionNoEncontrada = errors.New("suscripción no encontrada")
	ErrSinSuscripcionActiva    = errors.New("el socio no tiene una suscripción activa")
	ErrSuscripcionCancelada    = errors.New("la suscripción ya está cancelada")
	ErrDuracionMinima          = errors.New("la duración contratada es menor a la mínima del plan")
	ErrPagoNoEncontrado        = errors.New("pago no encontrado")
	ErrPagoYaConfirmado        = errors.New("el pago ya fue confirmado")
)

// maxPeriodosRecuperacion bounds how many periods a lapsed auto-renewing
// subscription is caught up in a single run.
const maxPeriodosRecuperacion = 24

type SuscripcionService interface {
	Crear(ctx context.Context, req dto.CrearSuscripcionRequest) (dto.SuscripcionResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (dto.SuscripcionResponse, error)
	// Renovar extends the subscription by periodos and records the pending payment.
	Renovar(ctx context.Context, id uuid.UUID, periodos int) (dto.SuscripcionResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarSuscripcionRequest) (dto.SuscripcionResponse, error)
	RegistrarPago(ctx context.Context, req dto.RegistrarPagoRequest) (dto.PagoSuscripcionResponse, error)
	ConfirmarPago(ctx context.Context, pagoID uuid.UUID, usuarioID *uuid.UUID) (dto.PagoSuscripcionResponse, error)
	ActivaDe(ctx context.Context, socioID uuid.UUID, hoy time.Time) (dto.SuscripcionResponse, error)
	ListarDeSocio(ctx context.Context, socioID uuid.UUID) ([]dto.SuscripcionResponse, error)
	ListarTipos(ctx context.Context) ([]model.TipoSuscripcion, error)
	RenovarVencidas(ctx context.Context, hoy time.Time) (dto.ResultadoProceso, error)
	ExpirarVencidas(ctx context.Context, hoy time.Time) (dto.ResultadoProceso, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type suscripcionService struct {
	repo  repository.SuscripcionRepository
	reloj Reloj
}

func NewSuscripcionService(repo repository.SuscripcionRepository, reloj Reloj) SuscripcionService {
	return &suscripcionService{repo: repo, reloj: reloj}
}

// planActivo returns the plan of the member's active subscription, or nil
// when there is none (or no subscription repository is wired).
func planActivo(ctx context.Context, repo repository.SuscripcionRepository, socioID uuid.UUID, hoy time.Time) (*model.TipoSuscripcion, error) {
	if repo == nil {
		return nil, nil
	}
	s, err := repo.ActivaDe(ctx, socioID, hoy)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, nil
		}
		return nil, err
	}
	if s.Tipo != nil {
		return s.Tipo, nil
	}
	t, err := repo.ObtenerTipo(ctx, s.TipoID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func mapSuscripcion(s model.Suscripcion, hoy time.Time) dto.SuscripcionResponse {
	resp := dto.SuscripcionResponse{
		ID:                   s.ID,
		SocioID:              s.SocioID,
		TipoID:               s.TipoID,
		Periodicidad:         string(s.Periodicidad),
		Precio:               s.Precio,
		FechaInicio:          fecha(s.FechaInicio),
		FechaFin:             fechaPtr(s.FechaFin),
		FechaCancelacion:     fechaPtr(s.FechaCancelacion),
		MotivoCancelacion:    s.MotivoCancelacion,
		RenovacionAutomatica: s.RenovacionAutomatica,
		Activa:               s.Activa(hoy),
		DiasRestantes:        s.DiasRestantes(hoy),
	}
	if s.Tipo != nil {
		resp.Tipo = s.Tipo.Nombre
	}
	if s.Estado != nil {
		resp.Estado = string(s.Estado.Codigo)
	}
	return resp
}

func mapPago(p model.PagoSuscripcion) dto.PagoSuscripcionResponse {
	return dto.PagoSuscripcionResponse{
		ID:                p.ID,
		SuscripcionID:     p.SuscripcionID,
		Fecha:             fecha(p.Fecha),
		Monto:             p.Monto,
		Referencia:        p.Referencia,
		Confirmado:        p.Confirmado,
		FechaConfirmacion: fechaPtr(p.FechaConfirmacion),
		ConfirmadoPorID:   p.ConfirmadoPorID,
	}
}

func (s *suscripcionService) hoy() time.Time { return model.Dia(s.reloj.ahora()) }

// estado resolves a status row by code. A missing row is reported as
// model.ErrEstadoNoEncontrado so callers abort before mutating anything.
func (s *suscripcionService) estado(ctx context.Context, codigo model.CodigoEstadoSuscripcion) (*model.EstadoSuscripcion, error) {
	e, err := s.repo.ObtenerEstado(ctx, codigo)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, fmt.Errorf("%s: %w", codigo, model.ErrEstadoNoEncontrado)
		}
		return nil, err
	}
	return e, nil
}

func (s *suscripcionService) obtener(ctx context.Context, id uuid.UUID) (*model.Suscripcion, error) {
	sus, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrSuscripcionNoEncontrada
		}
		return nil, err
	}
	return sus, nil
}

// ── Alta ──────────────────────────────────────────────────────────────────────

func (s *suscripcionService) Crear(ctx context.Context, req dto.CrearSuscripcionRequest) (dto.SuscripcionResponse, error) {
	if err := validar(req); err != nil {
		return dto.SuscripcionResponse{}, err
	}
	per := model.Periodicidad(req.Periodicidad)
	meses, ok := per.Meses()
	if !ok {
		return dto.SuscripcionResponse{}, model.ErrPeriodicidadInvalida
	}
	periodos := req.Periodos
	if periodos == 0 {
		periodos = 1
	}

	tipo, err := s.repo.ObtenerTipo(ctx, req.TipoID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.SuscripcionResponse{}, errors.New("tipo de suscripción no encontrado")
		}
		return dto.SuscripcionResponse{}, err
	}
	forma, err := s.repo.ObtenerFormaPago(ctx, req.FormaPagoID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.SuscripcionResponse{}, errors.New("forma de pago no encontrada")
		}
		return dto.SuscripcionResponse{}, err
	}
	if !req.SinFechaFin && periodos*meses < tipo.DuracionMinimaMeses {
		return dto.SuscripcionResponse{}, fmt.Errorf("%w (%d meses)", ErrDuracionMinima, tipo.DuracionMinimaMeses)
	}
	precio, err := tipo.PrecioPara(per)
	if err != nil {
		return dto.SuscripcionResponse{}, err
	}

	codigo := model.SuscripcionActiva
	if forma.RequiereValidacionManual {
		codigo = model.SuscripcionPendientePago
	}
	est, err := s.estado(ctx, codigo)
	if err != nil {
		return dto.SuscripcionResponse{}, err
	}

	inicio := s.hoy()
	if req.FechaInicio != nil {
		inicio = model.Dia(*req.FechaInicio)
	}
	sus := &model.Suscripcion{
		Base:                 model.Base{Activo: true},
		SocioID:              req.SocioID,
		TipoID:               tipo.ID,
		FechaInicio:          inicio,
		EstadoID:             est.ID,
		FormaPagoID:          forma.ID,
		Periodicidad:         per,
		Precio:               precio,
		RenovacionAutomatica: true,
		Notas:                req.Notas,
	}
	if !req.SinFechaFin {
		fin := model.SumarMeses(inicio, periodos*meses)
		sus.FechaFin = &fin
	}
	if req.RenovacionAutomatica != nil {
		sus.RenovacionAutomatica = *req.RenovacionAutomatica
	}

	if err := s.repo.Crear(ctx, sus); err != nil {
		if errors.Is(err, repository.ErrReferencia) {
			return dto.SuscripcionResponse{}, ErrSocioNoEncontrado
		}
		return dto.SuscripcionResponse{}, err
	}
	sus.Tipo, sus.Estado = tipo, est

	log.Info().Str("suscripcion_id", sus.ID.String()).Str("socio_id", sus.SocioID.String()).
		Str("tipo", tipo.Nombre).Str("estado", string(codigo)).Msg("suscripción creada")
	return mapSuscripcion(*sus, s.hoy()), nil
}

func (s *suscripcionService) Obtener(ctx context.Context, id uuid.UUID) (dto.SuscripcionResponse, error) {
	sus, err := s.obtener(ctx, id)
	if err != nil {
		return dto.SuscripcionResponse{}, err
	}
	return mapSuscripcion(*sus, s.hoy()), nil
}

// ── Transiciones ──────────────────────────────────────────────────────────────

// renovarTx applies the renewal and records one unconfirmed payment for the
// periods added.
func (s *suscripcionService) renovarTx(ctx context.Context, tx *gorm.DB, sus *model.Suscripcion, periodos int, referencia string) error {
	if err := s.repo.ActualizarTx(ctx, tx, sus); err != nil {
		return err
	}
	pago := &model.PagoSuscripcion{
		Base:          model.Base{Activo: true},
		SuscripcionID: sus.ID,
		Fecha:         s.hoy(),
		Monto:         sus.Precio.Mul(decimal.NewFromInt(int64(periodos))),
		Referencia:    referencia,
		Notas:         fmt.Sprintf("Renovación de %d período(s) hasta %s", periodos, fecha(*sus.FechaFin)),
	}
	return s.repo.CrearPagoTx(ctx, tx, pago)
}

func (s *suscripcionService) Renovar(ctx context.Context, id uuid.UUID, periodos int) (dto.SuscripcionResponse, error) {
	if periodos < 1 {
		return dto.SuscripcionResponse{}, model.ErrPeriodosInvalidos
	}
	sus, err := s.obtener(ctx, id)
	if err != nil {
		return dto.SuscripcionResponse{}, err
	}
	activa, err := s.estado(ctx, model.SuscripcionActiva)
	if err != nil {
		return dto.SuscripcionResponse{}, err
	}
	if err := sus.Renovar(periodos, activa); err != nil {
		return dto.SuscripcionResponse{}, err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.renovarTx(ctx, tx, sus, periodos, "RENOV-MANUAL")
	})
	if err != nil {
		return dto.SuscripcionResponse{}, err
	}
	return mapSuscripcion(*sus, s.hoy()), nil
}

func (s *suscripcionService) Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarSuscripcionRequest) (dto.SuscripcionResponse, error) {
	if err := validar(req); err != nil {
		return dto.SuscripcionResponse{}, err
	}
	sus, err := s.obtener(ctx, id)
	if err != nil {
		return dto.SuscripcionResponse{}, err
	}
	if sus.Estado != nil && sus.Estado.Codigo == model.SuscripcionCancelada {
		return dto.SuscripcionResponse{}, ErrSuscripcionCancelada
	}
	cancelada, err := s.estado(ctx, model.SuscripcionCancelada)
	if err != nil {
		return dto.SuscripcionResponse{}, err
	}
	f := s.hoy()
	if req.Fecha != nil {
		f = *req.Fecha
	}
	if err := sus.Cancelar(req.Motivo, f, cancelada); err != nil {
		return dto.SuscripcionResponse{}, err
	}
	sus.RenovacionAutomatica = false
	if err := s.repo.ActualizarTx(ctx, nil, sus); err != nil {
		return dto.SuscripcionResponse{}, err
	}
	log.Info().Str("suscripcion_id", sus.ID.String()).Str("motivo", req.Motivo).Msg("suscripción cancelada")
	return mapSuscripcion(*sus, s.hoy()), nil
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

// activarSiPendiente moves a pendiente_pago subscription to activa once a
// payment is confirmed.
func (s *suscripcionService) activarSiPendiente(ctx context.Context, tx *gorm.DB, sus *model.Suscripcion, activa *model.EstadoSuscripcion) error {
	if sus.Estado == nil || sus.Estado.Codigo != model.SuscripcionPendientePago {
		return nil
	}
	sus.EstadoID = activa.ID
	sus.Estado = activa
	return s.repo.ActualizarTx(ctx, tx, sus)
}

func (s *suscripcionService) RegistrarPago(ctx context.Context, req dto.RegistrarPagoRequest) (dto.PagoSuscripcionResponse, error) {
	if err := validar(req); err != nil {
		return dto.PagoSuscripcionResponse{}, err
	}
	sus, err := s.obtener(ctx, req.SuscripcionID)
	if err != nil {
		return dto.PagoSuscripcionResponse{}, err
	}
	forma, err := s.repo.ObtenerFormaPago(ctx, sus.FormaPagoID)
	if err != nil {
		return dto.PagoSuscripcionResponse{}, err
	}
	activa, err := s.estado(ctx, model.SuscripcionActiva)
	if err != nil {
		return dto.PagoSuscripcionResponse{}, err
	}

	f := s.hoy()
	if req.Fecha != nil {
		f = model.Dia(*req.Fecha)
	}
	pago := &model.PagoSuscripcion{
		Base:          model.Base{Activo: true},
		SuscripcionID: sus.ID,
		Fecha:         f,
		Monto:         req.Monto,
		Referencia:    req.Referencia,
		Notas:         req.Notas,
	}
	if !forma.RequiereValidacionManual {
		pago.Confirmar(nil, s.hoy())
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CrearPagoTx(ctx, tx, pago); err != nil {
			return err
		}
		if pago.Confirmado {
			return s.activarSiPendiente(ctx, tx, sus, activa)
		}
		return nil
	})
	if err != nil {
		return dto.PagoSuscripcionResponse{}, err
	}
	return mapPago(*pago), nil
}

func (s *suscripcionService) ConfirmarPago(ctx context.Context, pagoID uuid.UUID, usuarioID *uuid.UUID) (dto.PagoSuscripcionResponse, error) {
	pago, err := s.repo.ObtenerPago(ctx, pagoID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.PagoSuscripcionResponse{}, ErrPagoNoEncontrado
		}
		return dto.PagoSuscripcionResponse{}, err
	}
	if pago.Confirmado {
		return dto.PagoSuscripcionResponse{}, ErrPagoYaConfirmado
	}
	sus, err := s.obtener(ctx, pago.SuscripcionID)
	if err != nil {
		return dto.PagoSuscripcionResponse{}, err
	}
	activa, err := s.estado(ctx, model.SuscripcionActiva)
	if err != nil {
		return dto.PagoSuscripcionResponse{}, err
	}

	pago.Confirmar(usuarioID, s.hoy())
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ActualizarPagoTx(ctx, tx, pago); err != nil {
			return err
		}
		return s.activarSiPendiente(ctx, tx, sus, activa)
	})
	if err != nil {
		return dto.PagoSuscripcionResponse{}, err
	}
	return mapPago(*pago), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *suscripcionService) ActivaDe(ctx context.Context, socioID uuid.UUID, hoy time.Time) (dto.SuscripcionResponse, error) {
	sus, err := s.repo.ActivaDe(ctx, socioID, hoy)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.SuscripcionResponse{}, ErrSinSuscripcionActiva
		}
		return dto.SuscripcionResponse{}, err
	}
	return mapSuscripcion(*sus, hoy), nil
}

func (s *suscripcionService) ListarDeSocio(ctx context.Context, socioID uuid.UUID) ([]dto.SuscripcionResponse, error) {
	list, err := s.repo.ListarDeSocio(ctx, socioID)
	if err != nil {
		return nil, err
	}
	hoy := s.hoy()
	out := make([]dto.SuscripcionResponse, 0, len(list))
	for _, sus := range list {
		out = append(out, mapSuscripcion(sus, hoy))
	}
	return out, nil
}

func (s *suscripcionService) ListarTipos(ctx context.Context) ([]model.TipoSuscripcion, error) {
	return s.repo.ListarTipos(ctx)
}

func (s *suscripcionService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Eliminar(ctx, &model.Suscripcion{}, id); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return ErrSuscripcionNoEncontrada
		}
		return err
	}
	return nil
}

// ── Mantenimiento ─────────────────────────────────────────────────────────────

// RenovarVencidas renews every active auto-renewing subscription whose end
// date has passed, one period at a time until the period covers hoy.
// Failures are collected per subscription and do not stop the run.
func (s *suscripcionService) RenovarVencidas(ctx context.Context, hoy time.Time) (dto.ResultadoProceso, error) {
	var res dto.ResultadoProceso
	activa, err := s.estado(ctx, model.SuscripcionActiva)
	if err != nil {
		return res, err
	}
	list, err := s.repo.ListarVencidas(ctx, hoy, true)
	if err != nil {
		return res, err
	}
	h := model.Dia(hoy)
	for i := range list {
		sus := &list[i]
		periodos := 0
		for sus.FechaFin != nil && sus.FechaFin.Before(h) && periodos < maxPeriodosRecuperacion {
			if err = sus.Renovar(1, activa); err != nil {
				break
			}
			periodos++
		}
		if err == nil && periodos > 0 {
			err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
				return s.renovarTx(ctx, tx, sus, periodos, "RENOV-AUTO")
			})
		}
		if err != nil {
			res.Fallidas++
			res.Errores = append(res.Errores, fmt.Sprintf("%s: %v", sus.ID, err))
			log.Error().Err(err).Str("suscripcion_id", sus.ID.String()).Msg("renovación automática fallida")
			err = nil
			continue
		}
		res.Procesadas++
	}
	log.Info().Int("procesadas", res.Procesadas).Int("fallidas", res.Fallidas).Msg("renovación de suscripciones vencidas")
	return res, nil
}

// ExpirarVencidas moves active subscriptions without auto-renewal whose end
// date has passed to expirada.
func (s *suscripcionService) ExpirarVencidas(ctx context.Context, hoy time.Time) (dto.ResultadoProceso, error) {
	var res dto.ResultadoProceso
	expirada, err := s.estado(ctx, model.SuscripcionExpirada)
	if err != nil {
		return res, err
	}
	list, err := s.repo.ListarVencidas(ctx, hoy, false)
	if err != nil {
		return res, err
	}
	for i := range list {
		sus := &list[i]
		err := sus.Expirar(expirada)
		if err == nil {
			err = s.repo.ActualizarTx(ctx, nil, sus)
		}
		if err != nil {
			res.Fallidas++
			res.Errores = append(res.Errores, fmt.Sprintf("%s: %v", sus.ID, err))
			log.Error().Err(err).Str("suscripcion_id", sus.ID.String()).Msg("expiración fallida")
			continue
		}
		res.Procesadas++
	}
	log.Info().Int("procesadas", res.Procesadas).Int("fallidas", res.Fallidas).Msg("expiración de suscripciones vencidas")
	return res, nil
}
