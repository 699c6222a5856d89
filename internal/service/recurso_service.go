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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrDisponibleExcedeTotal   = errors.New("la cantidad disponible no puede superar la cantidad total")
	ErrMantenimientoFinalizado = errors.New("el mantenimiento ya fue finalizado")
	ErrEtiquetaNoEncontrada    = errors.New("alguna etiqueta no existe")
)

// RecursoService manages club resources, their tags and maintenance windows.
type RecursoService interface {
	Crear(ctx context.Context, req dto.CrearRecursoRequest) (dto.RecursoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (dto.RecursoResponse, error)
	Listar(ctx context.Context, filter dto.RecursoFilter) (dto.RecursoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarRecursoRequest) (dto.RecursoResponse, error)
	// ActualizarDisponibilidad recomputes cantidad_disponible from the open
	// rentals and returns the new value.
	ActualizarDisponibilidad(ctx context.Context, id uuid.UUID) (int, error)
	AsignarEtiquetas(ctx context.Context, id uuid.UUID, etiquetaIDs []uuid.UUID) (dto.RecursoResponse, error)

	IniciarMantenimiento(ctx context.Context, req dto.IniciarMantenimientoRequest) (*model.MantenimientoRecurso, error)
	FinalizarMantenimiento(ctx context.Context, id uuid.UUID, fecha time.Time) (*model.MantenimientoRecurso, error)
	ListarMantenimientos(ctx context.Context, recursoID uuid.UUID) ([]model.MantenimientoRecurso, error)

	Eliminar(ctx context.Context, id uuid.UUID) error
	EliminarDefinitivo(ctx context.Context, id uuid.UUID) error
}

type recursoService struct {
	repo     repository.RecursoRepository
	catalogo repository.CatalogoRepository
}

func NewRecursoService(repo repository.RecursoRepository, catalogo repository.CatalogoRepository) RecursoService {
	return &recursoService{repo: repo, catalogo: catalogo}
}

func mapRecurso(r model.Recurso) dto.RecursoResponse {
	resp := dto.RecursoResponse{
		ID:                 r.ID,
		Codigo:             r.Codigo,
		Nombre:             r.Nombre,
		CantidadTotal:      r.CantidadTotal,
		CantidadDisponible: r.CantidadDisponible,
		PrecioAlquiler:     r.PrecioAlquiler,
		PrecioVenta:        r.PrecioVenta,
		DepositoGarantia:   r.DepositoGarantia,
		Disponible:         r.Disponible(),
		EsAlquilable:       r.EsAlquilable(),
		EsVendible:         r.EsVendible(),
		Etiquetas:          make([]string, 0, len(r.Etiquetas)),
		Activo:             r.Activo,
	}
	if r.Categoria != nil {
		resp.Categoria = r.Categoria.Nombre
	}
	if r.Tipo != nil {
		resp.Tipo = r.Tipo.Nombre
	}
	if r.Estado != nil {
		resp.Estado = r.Estado.Nombre
	}
	for _, e := range r.Etiquetas {
		resp.Etiquetas = append(resp.Etiquetas, e.Nombre)
	}
	return resp
}

func (s *recursoService) obtener(ctx context.Context, id uuid.UUID) (*model.Recurso, error) {
	r, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, errors.New("recurso no encontrado")
		}
		return nil, err
	}
	return r, nil
}

func (s *recursoService) Crear(ctx context.Context, req dto.CrearRecursoRequest) (dto.RecursoResponse, error) {
	if err := validar(req); err != nil {
		return dto.RecursoResponse{}, err
	}
	disponible := req.CantidadTotal
	if req.CantidadDisponible != nil {
		disponible = *req.CantidadDisponible
	}
	if disponible > req.CantidadTotal {
		return dto.RecursoResponse{}, ErrDisponibleExcedeTotal
	}

	r := &model.Recurso{
		Base:                 model.Base{Activo: true},
		Codigo:               req.Codigo,
		Nombre:               req.Nombre,
		Descripcion:          req.Descripcion,
		CategoriaID:          req.CategoriaID,
		TipoID:               req.TipoID,
		EstadoID:             req.EstadoID,
		CantidadTotal:        req.CantidadTotal,
		CantidadDisponible:   disponible,
		PrecioAlquiler:       req.PrecioAlquiler,
		PrecioVenta:          req.PrecioVenta,
		DepositoGarantia:     req.DepositoGarantia,
		FechaAdquisicion:     req.FechaAdquisicion,
		ValorAdquisicion:     req.ValorAdquisicion,
		Proveedor:            req.Proveedor,
		Notas:                req.Notas,
		SoloSocios:           req.SoloSocios,
		RequiereAutorizacion: req.RequiereAutorizacion,
	}
	if len(req.EtiquetaIDs) > 0 {
		etiquetas, err := s.catalogo.ObtenerEtiquetas(ctx, req.EtiquetaIDs)
		if err != nil {
			return dto.RecursoResponse{}, err
		}
		if len(etiquetas) != len(uniqueIDs(req.EtiquetaIDs)) {
			return dto.RecursoResponse{}, ErrEtiquetaNoEncontrada
		}
		r.Etiquetas = etiquetas
	}

	if err := s.repo.Crear(ctx, r); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicado):
			return dto.RecursoResponse{}, errors.New("ya existe un recurso con ese código")
		case errors.Is(err, repository.ErrReferencia):
			return dto.RecursoResponse{}, errors.New("categoría, tipo o estado inexistente")
		}
		return dto.RecursoResponse{}, err
	}

	full, err := s.repo.ObtenerPorID(ctx, r.ID)
	if err != nil {
		return mapRecurso(*r), nil
	}
	return mapRecurso(*full), nil
}

func (s *recursoService) Obtener(ctx context.Context, id uuid.UUID) (dto.RecursoResponse, error) {
	r, err := s.obtener(ctx, id)
	if err != nil {
		return dto.RecursoResponse{}, err
	}
	return mapRecurso(*r), nil
}

func (s *recursoService) Listar(ctx context.Context, filter dto.RecursoFilter) (dto.RecursoListResponse, error) {
	list, total, err := s.repo.Listar(ctx, filter)
	if err != nil {
		return dto.RecursoListResponse{}, err
	}
	data := make([]dto.RecursoResponse, 0, len(list))
	for _, r := range list {
		data = append(data, mapRecurso(r))
	}
	return dto.RecursoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *recursoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarRecursoRequest) (dto.RecursoResponse, error) {
	if err := validar(req); err != nil {
		return dto.RecursoResponse{}, err
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		r, err := s.repo.BloquearTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNoEncontrado) {
				return errors.New("recurso no encontrado")
			}
			return err
		}

		if req.Nombre != nil {
			r.Nombre = *req.Nombre
		}
		if req.Descripcion != nil {
			r.Descripcion = *req.Descripcion
		}
		if req.CategoriaID != nil {
			r.CategoriaID = *req.CategoriaID
		}
		if req.PrecioAlquiler != nil {
			r.PrecioAlquiler = req.PrecioAlquiler
		}
		if req.PrecioVenta != nil {
			r.PrecioVenta = req.PrecioVenta
		}
		if req.DepositoGarantia != nil {
			r.DepositoGarantia = *req.DepositoGarantia
		}
		if req.Notas != nil {
			r.Notas = *req.Notas
		}
		if req.SoloSocios != nil {
			r.SoloSocios = *req.SoloSocios
		}
		cambiaTotal := req.CantidadTotal != nil && *req.CantidadTotal != r.CantidadTotal
		if cambiaTotal {
			r.CantidadTotal = *req.CantidadTotal
		}

		if err := s.repo.ActualizarTx(ctx, tx, r); err != nil {
			return err
		}
		if !cambiaTotal {
			return nil
		}
		_, err = reconciliarTx(ctx, tx, s.repo, r.ID)
		return err
	})
	if err != nil {
		return dto.RecursoResponse{}, err
	}
	return s.Obtener(ctx, id)
}

func (s *recursoService) ActualizarDisponibilidad(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		n, err = reconciliarTx(ctx, tx, s.repo, id)
		return err
	})
	return n, err
}

// reconciliarTx locks the resource row and sets cantidad_disponible to the
// units not committed to open rentals, clamped to [0, cantidad_total].
func reconciliarTx(ctx context.Context, tx *gorm.DB, repo repository.RecursoRepository, id uuid.UUID) (int, error) {
	r, err := repo.BloquearTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return 0, errors.New("recurso no encontrado")
		}
		return 0, err
	}
	comprometidas, err := repo.UnidadesComprometidasTx(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	r.Reconciliar(comprometidas)
	if err := repo.ActualizarDisponibleTx(ctx, tx, id, r.CantidadDisponible); err != nil {
		return 0, err
	}
	return r.CantidadDisponible, nil
}

func (s *recursoService) AsignarEtiquetas(ctx context.Context, id uuid.UUID, etiquetaIDs []uuid.UUID) (dto.RecursoResponse, error) {
	r, err := s.obtener(ctx, id)
	if err != nil {
		return dto.RecursoResponse{}, err
	}
	etiquetas, err := s.catalogo.ObtenerEtiquetas(ctx, etiquetaIDs)
	if err != nil {
		return dto.RecursoResponse{}, err
	}
	if len(etiquetas) != len(uniqueIDs(etiquetaIDs)) {
		return dto.RecursoResponse{}, ErrEtiquetaNoEncontrada
	}
	if err := s.repo.ReemplazarEtiquetas(ctx, r, etiquetas); err != nil {
		return dto.RecursoResponse{}, err
	}
	r.Etiquetas = etiquetas
	return mapRecurso(*r), nil
}

// ── Mantenimiento ─────────────────────────────────────────────────────────────

func (s *recursoService) IniciarMantenimiento(ctx context.Context, req dto.IniciarMantenimientoRequest) (*model.MantenimientoRecurso, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	if _, err := s.catalogo.ObtenerEstado(ctx, req.EstadoID); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, fmt.Errorf("estado de recurso: %w", model.ErrEstadoNoEncontrado)
		}
		return nil, err
	}

	m := &model.MantenimientoRecurso{
		Base:         model.Base{Activo: true},
		RecursoID:    req.RecursoID,
		FechaInicio:  model.Dia(req.FechaInicio),
		Descripcion:  req.Descripcion,
		Costo:        req.Costo,
		RealizadoPor: req.RealizadoPor,
		Notas:        req.Notas,
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		r, err := s.repo.BloquearTx(ctx, tx, req.RecursoID)
		if err != nil {
			if errors.Is(err, repository.ErrNoEncontrado) {
				return errors.New("recurso no encontrado")
			}
			return err
		}
		anterior := r.EstadoID
		m.EstadoAnteriorID = &anterior
		if err := s.repo.CrearMantenimientoTx(ctx, tx, m); err != nil {
			return err
		}
		return s.repo.ActualizarEstadoTx(ctx, tx, r.ID, req.EstadoID)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *recursoService) FinalizarMantenimiento(ctx context.Context, id uuid.UUID, fecha time.Time) (*model.MantenimientoRecurso, error) {
	m, err := s.repo.ObtenerMantenimiento(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, errors.New("mantenimiento no encontrado")
		}
		return nil, err
	}
	if !m.EnCurso() {
		return nil, ErrMantenimientoFinalizado
	}
	fin := model.Dia(fecha)
	if fin.Before(model.Dia(m.FechaInicio)) {
		return nil, model.ErrFechasInvalidas
	}
	m.FechaFin = &fin

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ActualizarMantenimientoTx(ctx, tx, m); err != nil {
			return err
		}
		if m.EstadoAnteriorID == nil {
			return nil
		}
		if _, err := s.repo.BloquearTx(ctx, tx, m.RecursoID); err != nil {
			return err
		}
		return s.repo.ActualizarEstadoTx(ctx, tx, m.RecursoID, *m.EstadoAnteriorID)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *recursoService) ListarMantenimientos(ctx context.Context, recursoID uuid.UUID) ([]model.MantenimientoRecurso, error) {
	return s.repo.ListarMantenimientos(ctx, recursoID)
}

func (s *recursoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Eliminar(ctx, &model.Recurso{}, id)
}

func (s *recursoService) EliminarDefinitivo(ctx context.Context, id uuid.UUID) error {
	return s.repo.EliminarDefinitivo(ctx, &model.Recurso{}, id)
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// precioPorDias is the rental price of one unit for dias days (minimum one).
func precioPorDias(precio decimal.Decimal, dias int) decimal.Decimal {
	if dias < 1 {
		dias = 1
	}
	return precio.Mul(decimal.NewFromInt(int64(dias)))
}
