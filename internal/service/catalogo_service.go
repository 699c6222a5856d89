package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/repository"

	"github.com/google/uuid"
)

// Catalogo names one of the reference tables managed by CatalogoService.
type Catalogo string

const (
	CatalogoCategoria Catalogo = "categoria"
	CatalogoTipo      Catalogo = "tipo"
	CatalogoEstado    Catalogo = "estado"
	CatalogoEtiqueta  Catalogo = "etiqueta"
)

var (
	ErrSlugDuplicado    = errors.New("ya existe una categoría con ese slug")
	ErrCatalogoInvalido = errors.New("catálogo desconocido")
)

// CatalogoService manages the reference data that classifies resources.
type CatalogoService interface {
	CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error)
	ActualizarCategoria(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error)

	CrearTipo(ctx context.Context, req dto.CrearTipoRecursoRequest) (*model.TipoRecurso, error)
	ListarTipos(ctx context.Context) ([]model.TipoRecurso, error)
	CrearEstado(ctx context.Context, req dto.CrearEstadoRecursoRequest) (*model.EstadoRecurso, error)
	ListarEstados(ctx context.Context) ([]model.EstadoRecurso, error)
	CrearEtiqueta(ctx context.Context, req dto.CrearEtiquetaRequest) (*model.EtiquetaRecurso, error)
	ListarEtiquetas(ctx context.Context) ([]model.EtiquetaRecurso, error)

	// Eliminar is the logical delete; EliminarDefinitivo removes the row and
	// fails with repository.ErrReferencia while resources still use it.
	Eliminar(ctx context.Context, c Catalogo, id uuid.UUID) error
	EliminarDefinitivo(ctx context.Context, c Catalogo, id uuid.UUID) error
}

type catalogoService struct {
	repo repository.CatalogoRepository
}

func NewCatalogoService(repo repository.CatalogoRepository) CatalogoService {
	return &catalogoService{repo: repo}
}

func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Icono:       c.Icono,
		Slug:        c.Slug,
		PadreID:     c.PadreID,
		Activo:      c.Activo,
	}
}

// ── Categorías ────────────────────────────────────────────────────────────────

func (s *catalogoService) CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	if err := validar(req); err != nil {
		return dto.CategoriaResponse{}, err
	}
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Nombre)
	}

	// deleted rows still own their slug
	existing, err := s.repo.ObtenerCategoriaPorSlug(ctx, slug)
	if err != nil && !errors.Is(err, repository.ErrNoEncontrado) {
		return dto.CategoriaResponse{}, err
	}
	if existing != nil {
		return dto.CategoriaResponse{}, ErrSlugDuplicado
	}

	if req.PadreID != nil {
		if _, err := s.repo.ObtenerCategoria(ctx, *req.PadreID); err != nil {
			if errors.Is(err, repository.ErrNoEncontrado) {
				return dto.CategoriaResponse{}, errors.New("categoría padre no encontrada")
			}
			return dto.CategoriaResponse{}, err
		}
	}

	c := &model.Categoria{
		Base:        model.Base{Activo: true},
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Icono:       req.Icono,
		Slug:        slug,
		PadreID:     req.PadreID,
	}
	if err := s.repo.CrearCategoria(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return dto.CategoriaResponse{}, ErrSlugDuplicado
		}
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

func (s *catalogoService) ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.ListarCategorias(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *catalogoService) ActualizarCategoria(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	if err := validar(req); err != nil {
		return dto.CategoriaResponse{}, err
	}
	c, err := s.repo.ObtenerCategoria(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.CategoriaResponse{}, errors.New("categoría no encontrada")
		}
		return dto.CategoriaResponse{}, err
	}

	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = *req.Descripcion
	}
	if req.Icono != nil {
		c.Icono = *req.Icono
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}

	if err := s.repo.ActualizarCategoria(ctx, c); err != nil {
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

// ── Tipos, estados, etiquetas ─────────────────────────────────────────────────

func (s *catalogoService) CrearTipo(ctx context.Context, req dto.CrearTipoRecursoRequest) (*model.TipoRecurso, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	t := &model.TipoRecurso{
		Base:               model.Base{Activo: true},
		Nombre:             req.Nombre,
		Descripcion:        req.Descripcion,
		Alquilable:         req.Alquilable,
		Vendible:           req.Vendible,
		RequiereDevolucion: req.RequiereDevolucion,
		TiempoMaxAlquiler:  req.TiempoMaxAlquiler,
	}
	if err := s.repo.CrearTipo(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, errors.New("ya existe un tipo de recurso con ese nombre")
		}
		return nil, err
	}
	return t, nil
}

func (s *catalogoService) ListarTipos(ctx context.Context) ([]model.TipoRecurso, error) {
	return s.repo.ListarTipos(ctx)
}

func (s *catalogoService) CrearEstado(ctx context.Context, req dto.CrearEstadoRecursoRequest) (*model.EstadoRecurso, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	e := &model.EstadoRecurso{
		Base:        model.Base{Activo: true},
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Disponible:  req.Disponible,
		Color:       colorOrDefault(req.Color),
	}
	if err := s.repo.CrearEstado(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, errors.New("ya existe un estado de recurso con ese nombre")
		}
		return nil, err
	}
	return e, nil
}

func (s *catalogoService) ListarEstados(ctx context.Context) ([]model.EstadoRecurso, error) {
	return s.repo.ListarEstados(ctx)
}

func (s *catalogoService) CrearEtiqueta(ctx context.Context, req dto.CrearEtiquetaRequest) (*model.EtiquetaRecurso, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	e := &model.EtiquetaRecurso{
		Base:   model.Base{Activo: true},
		Nombre: req.Nombre,
		Color:  colorOrDefault(req.Color),
	}
	if err := s.repo.CrearEtiqueta(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, errors.New("ya existe una etiqueta con ese nombre")
		}
		return nil, err
	}
	return e, nil
}

func (s *catalogoService) ListarEtiquetas(ctx context.Context) ([]model.EtiquetaRecurso, error) {
	return s.repo.ListarEtiquetas(ctx)
}

// ── Borrado ───────────────────────────────────────────────────────────────────

func modeloCatalogo(c Catalogo) (any, error) {
	switch c {
	case CatalogoCategoria:
		return &model.Categoria{}, nil
	case CatalogoTipo:
		return &model.TipoRecurso{}, nil
	case CatalogoEstado:
		return &model.EstadoRecurso{}, nil
	case CatalogoEtiqueta:
		return &model.EtiquetaRecurso{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCatalogoInvalido, c)
}

func (s *catalogoService) Eliminar(ctx context.Context, c Catalogo, id uuid.UUID) error {
	m, err := modeloCatalogo(c)
	if err != nil {
		return err
	}
	return s.repo.Eliminar(ctx, m, id)
}

func (s *catalogoService) EliminarDefinitivo(ctx context.Context, c Catalogo, id uuid.UUID) error {
	m, err := modeloCatalogo(c)
	if err != nil {
		return err
	}
	return s.repo.EliminarDefinitivo(ctx, m, id)
}

func colorOrDefault(c string) string {
	if c == "" {
		return "#000000"
	}
	return c
}
