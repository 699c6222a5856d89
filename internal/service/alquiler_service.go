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
	ErrRecursoRepetido     = errors.New("el mismo recurso aparece más de una vez en el alquiler")
	ErrAlquilerCerrado     = errors.New("el alquiler ya no está abierto")
	ErrDuracionExcedida    = errors.New("la duración supera el tiempo máximo de alquiler del recurso")
	ErrLimiteAlquileres    = errors.New("el socio alcanzó el máximo de alquileres simultáneos de su suscripción")
	ErrReservaConvertida   = errors.New("la reserva ya fue convertida en alquiler")
	ErrReservaVencida      = errors.New("la reserva está vencida")
	ErrPenalizacionPagada  = errors.New("la penalización ya fue pagada")
	ErrDetalleNoPertenece  = errors.New("el detalle no pertenece al alquiler")
	ErrSocioNoEncontrado   = errors.New("socio no encontrado")
	ErrRecursoNoDisponible = errors.New("el recurso no está disponible")
)

// AlquilerService handles the lifecycle of resource rentals, their penalties
// and advance reservations.
type AlquilerService interface {
	Crear(ctx context.Context, req dto.CrearAlquilerRequest) (dto.AlquilerResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (dto.AlquilerResponse, error)
	Listar(ctx context.Context, filter dto.AlquilerFilter) (dto.AlquilerListResponse, error)
	Devolver(ctx context.Context, id uuid.UUID, req dto.DevolverAlquilerRequest) (dto.AlquilerResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID) (dto.AlquilerResponse, error)
	ListarRetrasados(ctx context.Context, hoy time.Time) ([]model.Alquiler, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	EliminarDefinitivo(ctx context.Context, id uuid.UUID) error

	RegistrarPenalizacion(ctx context.Context, req dto.PenalizacionRequest) (dto.PenalizacionResponse, error)
	PagarPenalizacion(ctx context.Context, id uuid.UUID) (dto.PenalizacionResponse, error)

	Reservar(ctx context.Context, req dto.CrearReservaRequest) (*model.ReservaRecurso, error)
	ConfirmarReserva(ctx context.Context, id uuid.UUID) (*model.ReservaRecurso, error)
	ConvertirReserva(ctx context.Context, id uuid.UUID) (dto.AlquilerResponse, error)
	// ExpirarReservas soft-deletes unconfirmed reservations whose start date
	// has passed and returns how many were removed.
	ExpirarReservas(ctx context.Context, hoy time.Time) (int, error)
}

type alquilerService struct {
	repo          repository.AlquilerRepository
	recursos      repository.RecursoRepository
	socios        repository.SocioRepository
	suscripciones repository.SuscripcionRepository
	// recargo is the daily late-return fee; zero disables automatic penalties.
	recargo decimal.Decimal
	reloj   Reloj
}

// NewAlquilerService wires the rental service. suscripciones may be nil, in
// which case no plan discounts or rental limits apply.
func NewAlquilerService(
	repo repository.AlquilerRepository,
	recursos repository.RecursoRepository,
	socios repository.SocioRepository,
	suscripciones repository.SuscripcionRepository,
	recargo decimal.Decimal,
	reloj Reloj,
) AlquilerService {
	return &alquilerService{
		repo:          repo,
		recursos:      recursos,
		socios:        socios,
		suscripciones: suscripciones,
		recargo:       recargo,
		reloj:         reloj,
	}
}

func mapAlquiler(a model.Alquiler, hoy time.Time) dto.AlquilerResponse {
	resp := dto.AlquilerResponse{
		ID:               a.ID,
		Codigo:           a.Codigo,
		SocioID:          a.SocioID,
		Estado:           string(a.CodigoEstado()),
		FechaSolicitud:   a.FechaSolicitud,
		FechaInicio:      fecha(a.FechaInicio),
		FechaFinPrevista: fecha(a.FechaFinPrevista),
		FechaDevolucion:  fechaPtr(a.FechaDevolucion),
		DiasAlquiler:     a.DiasAlquiler(),
		EstaEnCurso:      a.EstaEnCurso(hoy),
		EstaRetrasado:    a.EstaRetrasado(hoy),
		DiasRetraso:      a.DiasRetraso(hoy),
		CostoTotal:       a.CostoTotal,
		Deposito:         a.Deposito,
		DepositoDevuelto: a.DepositoDevuelto,
		Detalles:         make([]dto.DetalleAlquilerResponse, 0, len(a.Detalles)),
	}
	for _, d := range a.Detalles {
		dr := dto.DetalleAlquilerResponse{
			ID:               d.ID,
			RecursoID:        d.RecursoID,
			Cantidad:         d.Cantidad,
			PrecioUnitario:   d.PrecioUnitario,
			DepositoUnitario: d.DepositoUnitario,
			Subtotal:         d.Subtotal(),
			DepositoTotal:    d.DepositoTotal(),
			Devuelto:         d.Devuelto,
		}
		if d.Recurso != nil {
			dr.Recurso = d.Recurso.Nombre
		}
		resp.Detalles = append(resp.Detalles, dr)
	}
	for _, p := range a.Penalizaciones {
		resp.Penalizaciones = append(resp.Penalizaciones, mapPenalizacion(p))
	}
	return resp
}

func mapPenalizacion(p model.Penalizacion) dto.PenalizacionResponse {
	return dto.PenalizacionResponse{
		ID:     p.ID,
		Motivo: p.Motivo,
		Monto:  p.Monto,
		Fecha:  fecha(p.Fecha),
		Pagada: p.Pagada,
	}
}

func (s *alquilerService) hoy() time.Time { return model.Dia(s.reloj.ahora()) }

func (s *alquilerService) estado(ctx context.Context, codigo model.CodigoEstadoAlquiler) (*model.EstadoAlquiler, error) {
	e, err := s.repo.ObtenerEstado(ctx, codigo)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, fmt.Errorf("estado de alquiler %q: %w", codigo, model.ErrEstadoNoEncontrado)
		}
		return nil, err
	}
	return e, nil
}

func (s *alquilerService) obtener(ctx context.Context, id uuid.UUID) (*model.Alquiler, error) {
	a, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, errors.New("alquiler no encontrado")
		}
		return nil, err
	}
	return a, nil
}

// ── Alta ──────────────────────────────────────────────────────────────────────

func (s *alquilerService) Crear(ctx context.Context, req dto.CrearAlquilerRequest) (dto.AlquilerResponse, error) {
	a, err := s.crear(ctx, req, nil)
	if err != nil {
		return dto.AlquilerResponse{}, err
	}
	return mapAlquiler(*a, s.hoy()), nil
}

// crear runs the whole rental creation in one transaction. despues, when
// set, runs inside the same transaction once the rental row exists.
func (s *alquilerService) crear(ctx context.Context, req dto.CrearAlquilerRequest, despues func(tx *gorm.DB, a *model.Alquiler) error) (*model.Alquiler, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	inicio, fin := model.Dia(req.FechaInicio), model.Dia(req.FechaFinPrevista)
	if fin.Before(inicio) {
		return nil, model.ErrFechasInvalidas
	}
	vistos := make(map[uuid.UUID]struct{}, len(req.Items))
	for _, it := range req.Items {
		if _, dup := vistos[it.RecursoID]; dup {
			return nil, ErrRecursoRepetido
		}
		vistos[it.RecursoID] = struct{}{}
	}

	socio, err := s.socios.ObtenerPorID(ctx, req.SocioID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrSocioNoEncontrado
		}
		return nil, err
	}
	if !socio.Vivo() {
		return nil, ErrSocioNoEncontrado
	}

	hoy := s.hoy()
	plan, err := planActivo(ctx, s.suscripciones, req.SocioID, hoy)
	if err != nil {
		return nil, err
	}
	descuento := decimal.Zero
	if plan != nil {
		abiertos, err := s.repo.ContarAbiertosDeSocio(ctx, req.SocioID)
		if err != nil {
			return nil, err
		}
		if plan.MaxAlquileresSimultaneos > 0 && abiertos >= int64(plan.MaxAlquileresSimultaneos) {
			return nil, ErrLimiteAlquileres
		}
		descuento = plan.DescuentoAlquiler
	}

	codigoEstado := model.AlquilerEnCurso
	if inicio.After(hoy) {
		codigoEstado = model.AlquilerReservado
	}
	estado, err := s.estado(ctx, codigoEstado)
	if err != nil {
		return nil, err
	}

	a := &model.Alquiler{
		Base:             model.Base{Activo: true},
		SocioID:          req.SocioID,
		FechaSolicitud:   s.reloj.ahora(),
		FechaInicio:      inicio,
		FechaFinPrevista: fin,
		EstadoID:         estado.ID,
		Notas:            req.Notas,
		GestionadoPorID:  req.GestionadoPorID,
	}
	dias := a.DiasAlquiler()

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.SiguienteCodigo(ctx, tx)
		if err != nil {
			return err
		}
		a.Codigo = fmt.Sprintf("ALQ-%d-%06d", hoy.Year(), n)

		for _, it := range req.Items {
			r, err := s.recursos.BloquearTx(ctx, tx, it.RecursoID)
			if err != nil {
				if errors.Is(err, repository.ErrNoEncontrado) {
					return errors.New("recurso no encontrado")
				}
				return err
			}
			if !r.Vivo() {
				return fmt.Errorf("%s: %w", r.Codigo, ErrRecursoNoDisponible)
			}
			if !r.EsAlquilable() {
				return fmt.Errorf("%s: %w", r.Codigo, model.ErrNoAlquilable)
			}
			if limite := r.Tipo.TiempoMaxAlquiler; limite > 0 && dias > limite {
				return fmt.Errorf("%s: %w (%d días)", r.Codigo, ErrDuracionExcedida, limite)
			}
			comprometidas, err := s.recursos.UnidadesComprometidasTx(ctx, tx, r.ID)
			if err != nil {
				return err
			}
			r.Reconciliar(comprometidas)
			if r.Estado == nil || !r.Estado.Disponible || r.CantidadDisponible < it.Cantidad {
				return fmt.Errorf("%s: %w", r.Codigo, model.ErrSinDisponibilidad)
			}

			d := model.DetalleAlquiler{
				Base:             model.Base{Activo: true},
				RecursoID:        r.ID,
				Cantidad:         it.Cantidad,
				PrecioUnitario:   conDescuento(precioPorDias(*r.PrecioAlquiler, dias), descuento),
				DepositoUnitario: r.DepositoGarantia,
			}
			a.Detalles = append(a.Detalles, d)
			a.CostoTotal = a.CostoTotal.Add(d.Subtotal())
			a.Deposito = a.Deposito.Add(d.DepositoTotal())
		}

		if err := s.repo.CrearTx(ctx, tx, a); err != nil {
			return err
		}
		for _, d := range a.Detalles {
			if _, err := reconciliarTx(ctx, tx, s.recursos, d.RecursoID); err != nil {
				return err
			}
		}
		if despues != nil {
			return despues(tx, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.Estado = estado
	return a, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *alquilerService) Obtener(ctx context.Context, id uuid.UUID) (dto.AlquilerResponse, error) {
	a, err := s.obtener(ctx, id)
	if err != nil {
		return dto.AlquilerResponse{}, err
	}
	return mapAlquiler(*a, s.hoy()), nil
}

func (s *alquilerService) Listar(ctx context.Context, filter dto.AlquilerFilter) (dto.AlquilerListResponse, error) {
	list, total, err := s.repo.Listar(ctx, filter)
	if err != nil {
		return dto.AlquilerListResponse{}, err
	}
	hoy := s.hoy()
	data := make([]dto.AlquilerResponse, 0, len(list))
	for _, a := range list {
		data = append(data, mapAlquiler(a, hoy))
	}
	return dto.AlquilerListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *alquilerService) ListarRetrasados(ctx context.Context, hoy time.Time) ([]model.Alquiler, error) {
	list, err := s.repo.ListarRetrasados(ctx, hoy)
	if err != nil {
		return nil, err
	}
	// the store filters on dates only; keep the model as the single source of truth
	out := list[:0]
	for _, a := range list {
		if a.EstaRetrasado(hoy) {
			out = append(out, a)
		}
	}
	return out, nil
}

// ── Cierre ────────────────────────────────────────────────────────────────────

func (s *alquilerService) Devolver(ctx context.Context, id uuid.UUID, req dto.DevolverAlquilerRequest) (dto.AlquilerResponse, error) {
	if err := validar(req); err != nil {
		return dto.AlquilerResponse{}, err
	}
	a, err := s.obtener(ctx, id)
	if err != nil {
		return dto.AlquilerResponse{}, err
	}
	if a.FechaDevolucion != nil {
		return dto.AlquilerResponse{}, model.ErrYaDevuelto
	}
	if !a.CodigoEstado().Abierto() {
		return dto.AlquilerResponse{}, ErrAlquilerCerrado
	}

	hoy := s.hoy()
	devolucion := hoy
	if req.FechaDevolucion != nil {
		devolucion = model.Dia(*req.FechaDevolucion)
	}
	if devolucion.Before(model.Dia(a.FechaInicio)) {
		return dto.AlquilerResponse{}, model.ErrFechasInvalidas
	}
	finalizado, err := s.estado(ctx, model.AlquilerFinalizado)
	if err != nil {
		return dto.AlquilerResponse{}, err
	}

	var retraso *model.Penalizacion
	if dias := model.DiasEntre(a.FechaFinPrevista, devolucion); dias > 0 && s.recargo.IsPositive() {
		retraso = &model.Penalizacion{
			Base:        model.Base{Activo: true},
			AlquilerID:  a.ID,
			Motivo:      model.MotivoRetraso,
			Descripcion: fmt.Sprintf("Devolución con %d día(s) de retraso", dias),
			Monto:       s.recargo.Mul(decimal.NewFromInt(int64(dias))),
			Fecha:       devolucion,
		}
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.bloquearAbiertoTx(ctx, tx, id); err != nil {
			return err
		}
		a.FechaDevolucion = &devolucion
		a.EstadoID = finalizado.ID
		a.Estado = finalizado
		if req.DepositoDevuelto != nil {
			a.DepositoDevuelto = req.DepositoDevuelto
		} else {
			dep := a.Deposito
			a.DepositoDevuelto = &dep
		}
		if req.GestionadoPorID != nil {
			a.GestionadoPorID = req.GestionadoPorID
		}
		if err := s.repo.ActualizarTx(ctx, tx, a); err != nil {
			return err
		}
		if err := s.repo.MarcarDevueltosTx(ctx, tx, a.ID, devolucion, req.EstadoDevolucion); err != nil {
			return err
		}
		if retraso != nil {
			if err := s.repo.CrearPenalizacionTx(ctx, tx, retraso); err != nil {
				return err
			}
		}
		for _, d := range a.Detalles {
			if _, err := reconciliarTx(ctx, tx, s.recursos, d.RecursoID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dto.AlquilerResponse{}, err
	}

	for i := range a.Detalles {
		if !a.Detalles[i].Devuelto {
			a.Detalles[i].Devuelto = true
			a.Detalles[i].FechaDevolucion = &devolucion
			a.Detalles[i].EstadoDevolucion = req.EstadoDevolucion
		}
	}
	if retraso != nil {
		a.Penalizaciones = append(a.Penalizaciones, *retraso)
		log.Info().Str("alquiler", a.Codigo).Str("monto", retraso.Monto.StringFixed(2)).
			Msg("alquiler: late-return penalty applied")
	}
	return mapAlquiler(*a, hoy), nil
}

func (s *alquilerService) Cancelar(ctx context.Context, id uuid.UUID) (dto.AlquilerResponse, error) {
	a, err := s.obtener(ctx, id)
	if err != nil {
		return dto.AlquilerResponse{}, err
	}
	if !a.CodigoEstado().Abierto() || a.FechaDevolucion != nil {
		return dto.AlquilerResponse{}, ErrAlquilerCerrado
	}
	cancelado, err := s.estado(ctx, model.AlquilerCancelado)
	if err != nil {
		return dto.AlquilerResponse{}, err
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.bloquearAbiertoTx(ctx, tx, id); err != nil {
			if errors.Is(err, model.ErrYaDevuelto) {
				return ErrAlquilerCerrado
			}
			return err
		}
		a.EstadoID = cancelado.ID
		a.Estado = cancelado
		if err := s.repo.ActualizarTx(ctx, tx, a); err != nil {
			return err
		}
		return s.reconciliarDetallesTx(ctx, tx, a)
	})
	if err != nil {
		return dto.AlquilerResponse{}, err
	}
	return mapAlquiler(*a, s.hoy()), nil
}

// bloquearAbiertoTx takes the row lock and re-checks, on the locked row, that
// no other transaction returned or closed the rental since it was read.
func (s *alquilerService) bloquearAbiertoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	a, err := s.repo.BloquearTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return errors.New("alquiler no encontrado")
		}
		return err
	}
	if a.FechaDevolucion != nil {
		return model.ErrYaDevuelto
	}
	if !a.CodigoEstado().Abierto() {
		return ErrAlquilerCerrado
	}
	return nil
}

func (s *alquilerService) reconciliarDetallesTx(ctx context.Context, tx *gorm.DB, a *model.Alquiler) error {
	for _, d := range a.Detalles {
		if _, err := reconciliarTx(ctx, tx, s.recursos, d.RecursoID); err != nil {
			return err
		}
	}
	return nil
}

// Eliminar hides the rental; its units stop counting as committed.
func (s *alquilerService) Eliminar(ctx context.Context, id uuid.UUID) error {
	a, err := s.obtener(ctx, id)
	if err != nil {
		return err
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.EliminarTx(ctx, tx, &model.Alquiler{}, id); err != nil {
			return err
		}
		return s.reconciliarDetallesTx(ctx, tx, a)
	})
}

// EliminarDefinitivo removes the rental with its line items and penalties.
func (s *alquilerService) EliminarDefinitivo(ctx context.Context, id uuid.UUID) error {
	a := &model.Alquiler{}
	if err := s.repo.ObtenerConEliminados(ctx, a, id); err != nil {
		return err
	}
	full, err := s.repo.ObtenerPorID(ctx, id)
	switch {
	case err == nil:
		a = full
	case !errors.Is(err, repository.ErrNoEncontrado):
		return err
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.EliminarDefinitivoTx(ctx, tx, &model.Alquiler{}, id); err != nil {
			return err
		}
		return s.reconciliarDetallesTx(ctx, tx, a)
	})
}

// ── Penalizaciones ────────────────────────────────────────────────────────────

func (s *alquilerService) RegistrarPenalizacion(ctx context.Context, req dto.PenalizacionRequest) (dto.PenalizacionResponse, error) {
	if err := validar(req); err != nil {
		return dto.PenalizacionResponse{}, err
	}
	a, err := s.obtener(ctx, req.AlquilerID)
	if err != nil {
		return dto.PenalizacionResponse{}, err
	}
	if req.DetalleID != nil {
		ok := false
		for _, d := range a.Detalles {
			if d.ID == *req.DetalleID {
				ok = true
				break
			}
		}
		if !ok {
			return dto.PenalizacionResponse{}, ErrDetalleNoPertenece
		}
	}

	p := &model.Penalizacion{
		Base:          model.Base{Activo: true},
		AlquilerID:    a.ID,
		DetalleID:     req.DetalleID,
		Motivo:        req.Motivo,
		Descripcion:   req.Descripcion,
		Monto:         req.Monto,
		Fecha:         s.hoy(),
		AplicadaPorID: req.AplicadaPorID,
	}
	if err := s.repo.CrearPenalizacionTx(ctx, nil, p); err != nil {
		return dto.PenalizacionResponse{}, err
	}
	return mapPenalizacion(*p), nil
}

func (s *alquilerService) PagarPenalizacion(ctx context.Context, id uuid.UUID) (dto.PenalizacionResponse, error) {
	p, err := s.repo.ObtenerPenalizacion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.PenalizacionResponse{}, errors.New("penalización no encontrada")
		}
		return dto.PenalizacionResponse{}, err
	}
	if p.Pagada {
		return dto.PenalizacionResponse{}, ErrPenalizacionPagada
	}
	hoy := s.hoy()
	p.Pagada = true
	p.FechaPago = &hoy
	if err := s.repo.ActualizarPenalizacion(ctx, p); err != nil {
		return dto.PenalizacionResponse{}, err
	}
	return mapPenalizacion(*p), nil
}

// ── Reservas ──────────────────────────────────────────────────────────────────

func (s *alquilerService) Reservar(ctx context.Context, req dto.CrearReservaRequest) (*model.ReservaRecurso, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	inicio, fin := model.Dia(req.FechaInicio), model.Dia(req.FechaFin)
	if fin.Before(inicio) {
		return nil, model.ErrFechasInvalidas
	}
	if inicio.Before(s.hoy()) {
		return nil, ErrReservaVencida
	}
	r, err := s.recursos.ObtenerPorID(ctx, req.RecursoID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, errors.New("recurso no encontrado")
		}
		return nil, err
	}
	if !r.EsAlquilable() {
		return nil, model.ErrNoAlquilable
	}
	if req.Cantidad > r.CantidadTotal {
		return nil, model.ErrSinDisponibilidad
	}

	rv := &model.ReservaRecurso{
		Base:         model.Base{Activo: true},
		SocioID:      req.SocioID,
		RecursoID:    req.RecursoID,
		Cantidad:     req.Cantidad,
		FechaReserva: s.reloj.ahora(),
		FechaInicio:  inicio,
		FechaFin:     fin,
		Notas:        req.Notas,
	}
	if err := s.repo.CrearReserva(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrReferencia) {
			return nil, ErrSocioNoEncontrado
		}
		return nil, err
	}
	return rv, nil
}

func (s *alquilerService) obtenerReserva(ctx context.Context, id uuid.UUID) (*model.ReservaRecurso, error) {
	rv, err := s.repo.ObtenerReserva(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, errors.New("reserva no encontrada")
		}
		return nil, err
	}
	if rv.Convertida() {
		return nil, ErrReservaConvertida
	}
	return rv, nil
}

func (s *alquilerService) ConfirmarReserva(ctx context.Context, id uuid.UUID) (*model.ReservaRecurso, error) {
	rv, err := s.obtenerReserva(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rv.EstaVigente(s.hoy()) {
		return nil, ErrReservaVencida
	}
	rv.Confirmada = true
	if err := s.repo.ActualizarReservaTx(ctx, nil, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *alquilerService) ConvertirReserva(ctx context.Context, id uuid.UUID) (dto.AlquilerResponse, error) {
	rv, err := s.obtenerReserva(ctx, id)
	if err != nil {
		return dto.AlquilerResponse{}, err
	}
	if !rv.EstaVigente(s.hoy()) {
		return dto.AlquilerResponse{}, ErrReservaVencida
	}

	req := dto.CrearAlquilerRequest{
		SocioID:          rv.SocioID,
		FechaInicio:      rv.FechaInicio,
		FechaFinPrevista: rv.FechaFin,
		Items:            []dto.ItemAlquilerRequest{{RecursoID: rv.RecursoID, Cantidad: rv.Cantidad}},
		Notas:            rv.Notas,
	}
	a, err := s.crear(ctx, req, func(tx *gorm.DB, a *model.Alquiler) error {
		rv.AlquilerID = &a.ID
		rv.Confirmada = true
		return s.repo.ActualizarReservaTx(ctx, tx, rv)
	})
	if err != nil {
		rv.AlquilerID = nil
		return dto.AlquilerResponse{}, err
	}
	return mapAlquiler(*a, s.hoy()), nil
}

func (s *alquilerService) ExpirarReservas(ctx context.Context, hoy time.Time) (int, error) {
	list, err := s.repo.ListarReservasVencidas(ctx, hoy)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rv := range list {
		if err := s.repo.Eliminar(ctx, &model.ReservaRecurso{}, rv.ID); err != nil {
			if errors.Is(err, repository.ErrNoEncontrado) {
				continue
			}
			return n, err
		}
		n++
	}
	if n > 0 {
		log.Info().Int("reservas", n).Msg("alquiler: expired reservations removed")
	}
	return n, nil
}
