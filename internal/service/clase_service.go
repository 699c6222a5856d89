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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrClaseNoEncontrada       = errors.New("clase no encontrada")
	ErrClaseInactiva           = errors.New("la clase no está activa")
	ErrSesionNoEncontrada      = errors.New("sesión no encontrada")
	ErrInstructorNoEncontrado  = errors.New("instructor no encontrado")
	ErrInscripcionNoEncontrada = errors.New("inscripción no encontrada")
	ErrYaInscrito              = errors.New("el socio ya está inscrito en la sesión")
	ErrInscripcionCancelada    = errors.New("la inscripción está cancelada")
	ErrSoloSocios              = errors.New("la clase es solo para socios")
	ErrEdadNoAdmitida          = errors.New("la edad del socio no está admitida en la clase")
	ErrYaValorado              = errors.New("el socio ya valoró esta clase")
	ErrHorarioInvalido         = errors.New("la hora de fin debe ser distinta de la de inicio")
)

// ClaseService schedules class sessions and manages enrollments and ratings.
type ClaseService interface {
	ProgramarSesion(ctx context.Context, req dto.ProgramarSesionRequest) (dto.SesionResponse, error)
	CancelarSesion(ctx context.Context, id uuid.UUID, motivo string) (dto.SesionResponse, error)
	// Disponibilidad returns the session with a live enrollment count.
	Disponibilidad(ctx context.Context, sesionID uuid.UUID) (dto.SesionResponse, error)
	// PlazasClase sums the free seats of the class's upcoming sessions.
	PlazasClase(ctx context.Context, claseID uuid.UUID, hoy time.Time) (int, error)

	Inscribir(ctx context.Context, req dto.InscribirRequest) (dto.InscripcionResponse, error)
	CancelarInscripcion(ctx context.Context, id uuid.UUID, motivo string) (dto.InscripcionResponse, error)
	RegistrarAsistencia(ctx context.Context, id uuid.UUID, asistio bool) (dto.InscripcionResponse, error)
	MarcarPagada(ctx context.Context, id uuid.UUID) (dto.InscripcionResponse, error)

	Valorar(ctx context.Context, req dto.ValorarClaseRequest) (dto.ValoracionResponse, error)
}

type claseService struct {
	repo          repository.ClaseRepository
	socios        repository.SocioRepository
	suscripciones repository.SuscripcionRepository
	reloj         Reloj
}

// NewClaseService wires the class service. suscripciones may be nil (no
// member discounts).
func NewClaseService(repo repository.ClaseRepository, socios repository.SocioRepository, suscripciones repository.SuscripcionRepository, reloj Reloj) ClaseService {
	return &claseService{repo: repo, socios: socios, suscripciones: suscripciones, reloj: reloj}
}

func parseHora(s string) (datatypes.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("hora %q: %w", s, err)
	}
	return datatypes.NewTime(t.Hour(), t.Minute(), 0, 0), nil
}

func formatHora(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

func mapSesion(s model.SesionClase, inscritos int) dto.SesionResponse {
	resp := dto.SesionResponse{
		ID:                s.ID,
		ClaseID:           s.ClaseID,
		InstructorID:      s.InstructorID,
		Fecha:             fecha(s.Fecha),
		HoraInicio:        formatHora(s.HoraInicio),
		HoraFin:           formatHora(s.HoraFin),
		DuracionMinutos:   s.DuracionMinutos(),
		Ubicacion:         s.Ubicacion,
		PrecioFinal:       s.PrecioFinal(),
		CapacidadFinal:    s.CapacidadFinal(),
		Inscritos:         inscritos,
		PlazasDisponibles: s.PlazasDisponibles(inscritos),
		Completa:          s.Completa(inscritos),
		Cancelada:         s.Cancelada,
	}
	if s.Clase != nil {
		resp.Clase = s.Clase.Nombre
	}
	return resp
}

func mapInscripcion(in model.InscripcionClase) dto.InscripcionResponse {
	return dto.InscripcionResponse{
		ID:               in.ID,
		SocioID:          in.SocioID,
		SesionID:         in.SesionID,
		FechaInscripcion: in.FechaInscripcion,
		PrecioPagado:     in.PrecioPagado,
		Pagado:           in.Pagado,
		Asistio:          in.Asistio,
		Cancelada:        in.Cancelada,
	}
}

// edad in whole years at hoy.
func edad(nacimiento, hoy time.Time) int {
	n := hoy.Year() - nacimiento.Year()
	if hoy.Month() < nacimiento.Month() || (hoy.Month() == nacimiento.Month() && hoy.Day() < nacimiento.Day()) {
		n--
	}
	return n
}

// ── Sesiones ──────────────────────────────────────────────────────────────────

func (s *claseService) ProgramarSesion(ctx context.Context, req dto.ProgramarSesionRequest) (dto.SesionResponse, error) {
	if err := validar(req); err != nil {
		return dto.SesionResponse{}, err
	}
	inicio, err := parseHora(req.HoraInicio)
	if err != nil {
		return dto.SesionResponse{}, err
	}
	fin, err := parseHora(req.HoraFin)
	if err != nil {
		return dto.SesionResponse{}, err
	}
	if inicio == fin {
		return dto.SesionResponse{}, ErrHorarioInvalido
	}

	clase, err := s.repo.ObtenerClase(ctx, req.ClaseID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.SesionResponse{}, ErrClaseNoEncontrada
		}
		return dto.SesionResponse{}, err
	}
	if !clase.Activa {
		return dto.SesionResponse{}, ErrClaseInactiva
	}
	if _, err := s.repo.ObtenerInstructor(ctx, req.InstructorID); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.SesionResponse{}, ErrInstructorNoEncontrado
		}
		return dto.SesionResponse{}, err
	}

	ses := &model.SesionClase{
		Base:            model.Base{Activo: true},
		ClaseID:         clase.ID,
		InstructorID:    req.InstructorID,
		Fecha:           model.Dia(req.Fecha),
		HoraInicio:      inicio,
		HoraFin:         fin,
		Ubicacion:       req.Ubicacion,
		Notas:           req.Notas,
		CapacidadMaxima: req.CapacidadMaxima,
		PrecioEspecial:  req.PrecioEspecial,
	}
	if err := s.repo.CrearSesion(ctx, ses); err != nil {
		return dto.SesionResponse{}, err
	}
	ses.Clase = clase
	return mapSesion(*ses, 0), nil
}

func (s *claseService) obtenerSesion(ctx context.Context, id uuid.UUID) (*model.SesionClase, error) {
	ses, err := s.repo.ObtenerSesion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrSesionNoEncontrada
		}
		return nil, err
	}
	return ses, nil
}

func (s *claseService) CancelarSesion(ctx context.Context, id uuid.UUID, motivo string) (dto.SesionResponse, error) {
	ses, err := s.obtenerSesion(ctx, id)
	if err != nil {
		return dto.SesionResponse{}, err
	}
	if ses.Cancelada {
		return dto.SesionResponse{}, model.ErrSesionCancelada
	}
	ses.Cancelada = true
	ses.MotivoCancelacion = motivo
	if err := s.repo.ActualizarSesion(ctx, ses); err != nil {
		return dto.SesionResponse{}, err
	}
	n, err := s.repo.ContarInscritosTx(ctx, nil, ses.ID)
	if err != nil {
		return dto.SesionResponse{}, err
	}
	log.Info().Str("sesion_id", ses.ID.String()).Int("inscritos", n).Str("motivo", motivo).Msg("sesión cancelada")
	return mapSesion(*ses, n), nil
}

func (s *claseService) Disponibilidad(ctx context.Context, sesionID uuid.UUID) (dto.SesionResponse, error) {
	ses, err := s.obtenerSesion(ctx, sesionID)
	if err != nil {
		return dto.SesionResponse{}, err
	}
	n, err := s.repo.ContarInscritosTx(ctx, nil, ses.ID)
	if err != nil {
		return dto.SesionResponse{}, err
	}
	return mapSesion(*ses, n), nil
}

func (s *claseService) PlazasClase(ctx context.Context, claseID uuid.UUID, hoy time.Time) (int, error) {
	list, err := s.repo.ListarSesionesFuturas(ctx, claseID, hoy)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, ses := range list {
		n, err := s.repo.ContarInscritosTx(ctx, nil, ses.ID)
		if err != nil {
			return 0, err
		}
		total += ses.PlazasDisponibles(n)
	}
	return total, nil
}

// ── Inscripciones ─────────────────────────────────────────────────────────────

func (s *claseService) Inscribir(ctx context.Context, req dto.InscribirRequest) (dto.InscripcionResponse, error) {
	if err := validar(req); err != nil {
		return dto.InscripcionResponse{}, err
	}
	ahora := s.reloj.ahora()
	hoy := model.Dia(ahora)

	socio, err := s.socios.ObtenerPorID(ctx, req.SocioID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.InscripcionResponse{}, ErrSocioNoEncontrado
		}
		return dto.InscripcionResponse{}, err
	}
	pct := decimal.Zero
	plan, err := planActivo(ctx, s.suscripciones, socio.ID, hoy)
	if err != nil {
		return dto.InscripcionResponse{}, err
	}
	if plan != nil {
		pct = plan.DescuentoClases
	}

	var in *model.InscripcionClase
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ses, err := s.repo.BloquearSesionTx(ctx, tx, req.SesionID)
		if err != nil {
			if errors.Is(err, repository.ErrNoEncontrado) {
				return ErrSesionNoEncontrada
			}
			return err
		}
		if ses.Cancelada {
			return model.ErrSesionCancelada
		}
		if ses.Clase != nil {
			if ses.Clase.SoloSocios && !socio.EsSocio {
				return ErrSoloSocios
			}
			if socio.FechaNacimiento != nil && !ses.Clase.AdmiteEdad(edad(*socio.FechaNacimiento, hoy)) {
				return ErrEdadNoAdmitida
			}
		}

		prev, err := s.repo.ObtenerInscripcionTx(ctx, tx, socio.ID, ses.ID)
		switch {
		case errors.Is(err, repository.ErrNoEncontrado):
			prev = nil
		case err != nil:
			return err
		case !prev.Cancelada && !prev.Eliminado():
			return ErrYaInscrito
		}

		n, err := s.repo.ContarInscritosTx(ctx, tx, ses.ID)
		if err != nil {
			return err
		}
		if ses.Completa(n) {
			return model.ErrSinPlazas
		}

		precio := conDescuento(ses.PrecioFinal(), pct)
		if prev != nil {
			// the unique (socio, sesion) row is reused
			in = prev
			in.DeletedAt = gorm.DeletedAt{}
			in.Activo = true
			in.Cancelada = false
			in.FechaCancelacion = nil
			in.MotivoCancelacion = ""
			in.Reembolsado = false
			in.Pagado = false
			in.FechaPago = nil
			in.Asistio = nil
			in.FechaInscripcion = ahora
			in.PrecioPagado = precio
		} else {
			in = &model.InscripcionClase{
				Base:             model.Base{Activo: true},
				SocioID:          socio.ID,
				SesionID:         ses.ID,
				FechaInscripcion: ahora,
				PrecioPagado:     precio,
			}
		}
		return s.repo.GuardarInscripcionTx(ctx, tx, in)
	})
	if err != nil {
		return dto.InscripcionResponse{}, err
	}
	log.Info().Str("socio_id", socio.ID.String()).Str("sesion_id", req.SesionID.String()).
		Str("precio", in.PrecioPagado.StringFixed(2)).Msg("inscripción registrada")
	return mapInscripcion(*in), nil
}

func (s *claseService) obtenerInscripcion(ctx context.Context, id uuid.UUID) (*model.InscripcionClase, error) {
	in, err := s.repo.ObtenerInscripcion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrInscripcionNoEncontrada
		}
		return nil, err
	}
	return in, nil
}

func (s *claseService) CancelarInscripcion(ctx context.Context, id uuid.UUID, motivo string) (dto.InscripcionResponse, error) {
	in, err := s.obtenerInscripcion(ctx, id)
	if err != nil {
		return dto.InscripcionResponse{}, err
	}
	if in.Cancelada {
		return dto.InscripcionResponse{}, ErrInscripcionCancelada
	}
	in.Cancelar(motivo, s.reloj.ahora())
	if err := s.repo.GuardarInscripcionTx(ctx, nil, in); err != nil {
		return dto.InscripcionResponse{}, err
	}
	return mapInscripcion(*in), nil
}

func (s *claseService) RegistrarAsistencia(ctx context.Context, id uuid.UUID, asistio bool) (dto.InscripcionResponse, error) {
	in, err := s.obtenerInscripcion(ctx, id)
	if err != nil {
		return dto.InscripcionResponse{}, err
	}
	if in.Cancelada {
		return dto.InscripcionResponse{}, ErrInscripcionCancelada
	}
	in.Asistio = &asistio
	if err := s.repo.GuardarInscripcionTx(ctx, nil, in); err != nil {
		return dto.InscripcionResponse{}, err
	}
	return mapInscripcion(*in), nil
}

func (s *claseService) MarcarPagada(ctx context.Context, id uuid.UUID) (dto.InscripcionResponse, error) {
	in, err := s.obtenerInscripcion(ctx, id)
	if err != nil {
		return dto.InscripcionResponse{}, err
	}
	if in.Cancelada {
		return dto.InscripcionResponse{}, ErrInscripcionCancelada
	}
	if in.Pagado {
		return mapInscripcion(*in), nil
	}
	ahora := s.reloj.ahora()
	in.Pagado = true
	in.FechaPago = &ahora
	if err := s.repo.GuardarInscripcionTx(ctx, nil, in); err != nil {
		return dto.InscripcionResponse{}, err
	}
	return mapInscripcion(*in), nil
}

// ── Valoraciones ──────────────────────────────────────────────────────────────

// Valorar stores an approved rating and, when it names an instructor
// (through the session), recomputes that instructor's average.
func (s *claseService) Valorar(ctx context.Context, req dto.ValorarClaseRequest) (dto.ValoracionResponse, error) {
	if err := validar(req); err != nil {
		return dto.ValoracionResponse{}, err
	}
	if !model.PuntuacionValida(req.Puntuacion) {
		return dto.ValoracionResponse{}, model.ErrPuntuacionInvalida
	}
	if _, err := s.repo.ObtenerClase(ctx, req.ClaseID); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.ValoracionResponse{}, ErrClaseNoEncontrada
		}
		return dto.ValoracionResponse{}, err
	}

	v := &model.ValoracionClase{
		Base:       model.Base{Activo: true},
		SocioID:    req.SocioID,
		ClaseID:    req.ClaseID,
		SesionID:   req.SesionID,
		Puntuacion: req.Puntuacion,
		Comentario: req.Comentario,
		Fecha:      s.reloj.ahora(),
		Aprobado:   true,
	}
	if req.SesionID != nil {
		ses, err := s.obtenerSesion(ctx, *req.SesionID)
		if err != nil {
			return dto.ValoracionResponse{}, err
		}
		if ses.ClaseID != req.ClaseID {
			return dto.ValoracionResponse{}, fmt.Errorf("la sesión no pertenece a la clase: %w", ErrSesionNoEncontrada)
		}
		instructor := ses.InstructorID
		v.InstructorID = &instructor
	}

	var promedio *decimal.Decimal
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CrearValoracionTx(ctx, tx, v); err != nil {
			if errors.Is(err, repository.ErrDuplicado) {
				return ErrYaValorado
			}
			return err
		}
		if v.InstructorID == nil {
			return nil
		}
		var err error
		promedio, err = s.repo.PromedioInstructorTx(ctx, tx, *v.InstructorID)
		if err != nil {
			return err
		}
		return s.repo.ActualizarCalificacionTx(ctx, tx, *v.InstructorID, promedio)
	})
	if err != nil {
		return dto.ValoracionResponse{}, err
	}
	return dto.ValoracionResponse{
		ID:           v.ID,
		ClaseID:      v.ClaseID,
		SesionID:     v.SesionID,
		InstructorID: v.InstructorID,
		Puntuacion:   v.Puntuacion,
		Comentario:   v.Comentario,
		Promedio:     promedio,
	}, nil
}
