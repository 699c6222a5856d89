package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nycamas/club/internal/apierror"
	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProductoNoEncontrado = errors.New("producto no encontrado")

// ProductoService defines the business logic contract for shop products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (dto.ProductoResponse, error)
	// ObtenerPorCodigo is served from the Redis cache when possible.
	ObtenerPorCodigo(ctx context.Context, codigo string) (dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (dto.ProductoResponse, error)
	// AjustarStock applies a manual delta and records the movement. Stock
	// never goes below zero.
	AjustarStock(ctx context.Context, req dto.AjustarStockRequest) (dto.MovimientoStockResponse, error)
	ListarParaReponer(ctx context.Context) ([]dto.ProductoResponse, error)
	ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]dto.MovimientoStockResponse, int64, error)

	CrearCategoria(ctx context.Context, req dto.CrearCategoriaProductoRequest) (*model.CategoriaProducto, error)
	ListarCategorias(ctx context.Context) ([]model.CategoriaProducto, error)

	Eliminar(ctx context.Context, id uuid.UUID) error
	EliminarDefinitivo(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo        repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	cache       *CacheProductos
	reloj       Reloj
}

func NewProductoService(repo repository.ProductoRepository, movimientos repository.MovimientoStockRepository, cache *CacheProductos, reloj Reloj) ProductoService {
	return &productoService{repo: repo, movimientos: movimientos, cache: cache, reloj: reloj}
}

func mapProducto(p model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:                  p.ID,
		Codigo:              p.Codigo,
		Nombre:              p.Nombre,
		Descripcion:         p.Descripcion,
		CategoriaID:         p.CategoriaID,
		Precio:              p.Precio,
		PrecioOferta:        p.PrecioOferta,
		PrecioActual:        p.PrecioActual(),
		PorcentajeDescuento: p.PorcentajeDescuento(),
		Stock:               p.Stock,
		StockMinimo:         p.StockMinimo,
		NecesitaReposicion:  p.NecesitaReposicion(),
		Disponible:          p.Disponible(),
		Destacado:           p.Destacado,
		SoloSocios:          p.SoloSocios,
		Activo:              p.Activo,
	}
}

func mapMovimiento(m model.MovimientoStock) dto.MovimientoStockResponse {
	return dto.MovimientoStockResponse{
		ID:            m.ID,
		ProductoID:    m.ProductoID,
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Motivo:        m.Motivo,
		ReferenciaID:  m.ReferenciaID,
		CreatedAt:     m.CreatedAt,
	}
}

func (s *productoService) obtener(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	p, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}
	return p, nil
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (dto.ProductoResponse, error) {
	if err := validar(req); err != nil {
		return dto.ProductoResponse{}, err
	}
	if req.PrecioOferta != nil && req.PrecioOferta.IsNegative() {
		return dto.ProductoResponse{}, apierror.NewValidation(map[string]string{"PrecioOferta": "min"})
	}

	p := &model.Producto{
		Base:             model.Base{Activo: true},
		Codigo:           req.Codigo,
		Nombre:           req.Nombre,
		Descripcion:      req.Descripcion,
		CategoriaID:      req.CategoriaID,
		RecursoID:        req.RecursoID,
		Precio:           req.Precio,
		PrecioOferta:     req.PrecioOferta,
		Stock:            req.Stock,
		StockMinimo:      5,
		Destacado:        req.Destacado,
		FechaPublicacion: model.Dia(s.reloj.ahora()),
		SoloSocios:       req.SoloSocios,
		Marca:            req.Marca,
		Modelo:           req.Modelo,
		Peso:             req.Peso,
		Dimensiones:      req.Dimensiones,
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.FechaPublicacion != nil {
		p.FechaPublicacion = model.Dia(*req.FechaPublicacion)
	}

	if err := s.repo.Crear(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicado):
			return dto.ProductoResponse{}, errors.New("ya existe un producto con ese código")
		case errors.Is(err, repository.ErrReferencia):
			return dto.ProductoResponse{}, errors.New("categoría de producto inexistente")
		}
		return dto.ProductoResponse{}, err
	}
	return mapProducto(*p), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (dto.ProductoResponse, error) {
	p, err := s.obtener(ctx, id)
	if err != nil {
		return dto.ProductoResponse{}, err
	}
	return mapProducto(*p), nil
}

func (s *productoService) ObtenerPorCodigo(ctx context.Context, codigo string) (dto.ProductoResponse, error) {
	if resp, ok := s.cache.get(ctx, codigo); ok {
		return resp, nil
	}
	p, err := s.repo.ObtenerPorCodigo(ctx, codigo)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.ProductoResponse{}, ErrProductoNoEncontrado
		}
		return dto.ProductoResponse{}, err
	}
	resp := mapProducto(*p)
	s.cache.set(ctx, resp)
	return resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (dto.ProductoListResponse, error) {
	list, total, err := s.repo.Listar(ctx, filter)
	if err != nil {
		return dto.ProductoListResponse{}, err
	}
	data := make([]dto.ProductoResponse, 0, len(list))
	for _, p := range list {
		data = append(data, mapProducto(p))
	}
	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}
	pagina := filter.Page
	if pagina < 1 {
		pagina = 1
	}
	return dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       pagina,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (dto.ProductoResponse, error) {
	if err := validar(req); err != nil {
		return dto.ProductoResponse{}, err
	}
	p, err := s.obtener(ctx, id)
	if err != nil {
		return dto.ProductoResponse{}, err
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = *req.Descripcion
	}
	if req.CategoriaID != nil {
		p.CategoriaID = *req.CategoriaID
	}
	if req.Precio != nil {
		if req.Precio.IsNegative() {
			return dto.ProductoResponse{}, apierror.NewValidation(map[string]string{"Precio": "min"})
		}
		p.Precio = *req.Precio
	}
	switch {
	case req.QuitarOferta:
		p.PrecioOferta = nil
	case req.PrecioOferta != nil:
		if req.PrecioOferta.IsNegative() {
			return dto.ProductoResponse{}, apierror.NewValidation(map[string]string{"PrecioOferta": "min"})
		}
		p.PrecioOferta = req.PrecioOferta
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.Destacado != nil {
		p.Destacado = *req.Destacado
	}
	if req.SoloSocios != nil {
		p.SoloSocios = *req.SoloSocios
	}

	if err := s.repo.Actualizar(ctx, p); err != nil {
		return dto.ProductoResponse{}, err
	}
	s.cache.invalidar(ctx, p.Codigo)
	return mapProducto(*p), nil
}

func (s *productoService) AjustarStock(ctx context.Context, req dto.AjustarStockRequest) (dto.MovimientoStockResponse, error) {
	if err := validar(req); err != nil {
		return dto.MovimientoStockResponse{}, err
	}

	var mov *model.MovimientoStock
	var codigo string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.BloquearTx(ctx, tx, req.ProductoID)
		if err != nil {
			if errors.Is(err, repository.ErrNoEncontrado) {
				return ErrProductoNoEncontrado
			}
			return err
		}
		codigo = p.Codigo
		if p.Stock+req.Delta < 0 {
			return fmt.Errorf("%w: hay %d, se quieren quitar %d", model.ErrStockInsuficiente, p.Stock, -req.Delta)
		}
		if err := s.repo.AjustarStockTx(ctx, tx, p.ID, req.Delta); err != nil {
			return err
		}
		mov = &model.MovimientoStock{
			Base:          model.Base{Activo: true},
			ProductoID:    p.ID,
			Tipo:          model.MovimientoAjusteManual,
			Cantidad:      req.Delta,
			StockAnterior: p.Stock,
			StockNuevo:    p.Stock + req.Delta,
			Motivo:        req.Motivo,
		}
		return s.movimientos.CrearTx(ctx, tx, mov)
	})
	if err != nil {
		return dto.MovimientoStockResponse{}, err
	}
	s.cache.invalidar(ctx, codigo)
	return mapMovimiento(*mov), nil
}

func (s *productoService) ListarParaReponer(ctx context.Context) ([]dto.ProductoResponse, error) {
	list, err := s.repo.ListarParaReponer(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(list))
	for _, p := range list {
		out = append(out, mapProducto(p))
	}
	return out, nil
}

func (s *productoService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]dto.MovimientoStockResponse, int64, error) {
	list, total, err := s.movimientos.Listar(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.MovimientoStockResponse, 0, len(list))
	for _, m := range list {
		out = append(out, mapMovimiento(m))
	}
	return out, total, nil
}

// ── Categorías ────────────────────────────────────────────────────────────────

func (s *productoService) CrearCategoria(ctx context.Context, req dto.CrearCategoriaProductoRequest) (*model.CategoriaProducto, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Nombre)
	}
	c := &model.CategoriaProducto{
		Base:        model.Base{Activo: true},
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Slug:        slug,
		PadreID:     req.PadreID,
	}
	if err := s.repo.CrearCategoria(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrSlugDuplicado
		}
		return nil, err
	}
	return c, nil
}

func (s *productoService) ListarCategorias(ctx context.Context) ([]model.CategoriaProducto, error) {
	return s.repo.ListarCategorias(ctx)
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	p, err := s.obtener(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Eliminar(ctx, &model.Producto{}, id); err != nil {
		return err
	}
	s.cache.invalidar(ctx, p.Codigo)
	return nil
}

func (s *productoService) EliminarDefinitivo(ctx context.Context, id uuid.UUID) error {
	var p model.Producto
	if err := s.repo.ObtenerConEliminados(ctx, &p, id); err != nil {
		return err
	}
	if err := s.repo.EliminarDefinitivo(ctx, &model.Producto{}, id); err != nil {
		return err
	}
	s.cache.invalidar(ctx, p.Codigo)
	return nil
}
