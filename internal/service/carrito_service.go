package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrItemNoEnCarrito = errors.New("el producto no está en el carrito")

// CarritoService manages the per-user shopping cart and turns it into a sale.
type CarritoService interface {
	// Obtener returns the user's cart, creating an empty one on first use.
	Obtener(ctx context.Context, usuarioID uuid.UUID) (dto.CarritoResponse, error)
	Agregar(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarItemRequest) (dto.CarritoResponse, error)
	// ActualizarCantidad sets the quantity of a line; 0 removes it.
	ActualizarCantidad(ctx context.Context, usuarioID, productoID uuid.UUID, cantidad int) (dto.CarritoResponse, error)
	Quitar(ctx context.Context, usuarioID, productoID uuid.UUID) (dto.CarritoResponse, error)
	Vaciar(ctx context.Context, usuarioID uuid.UUID) error
	// ConvertirAVenta sells the cart at current prices, applies the member's
	// purchase discount and empties the cart in the same transaction.
	ConvertirAVenta(ctx context.Context, usuarioID uuid.UUID, req dto.ConvertirCarritoRequest) (dto.VentaResponse, error)
}

type carritoService struct {
	repo          repository.CarritoRepository
	suscripciones repository.SuscripcionRepository
	ventas        *ventaService
}

// NewCarritoService builds the cart service on top of the same dependencies
// as the sale service. suscripciones may be nil (no member discounts).
func NewCarritoService(repo repository.CarritoRepository, suscripciones repository.SuscripcionRepository, d VentaDeps) CarritoService {
	return &carritoService{repo: repo, suscripciones: suscripciones, ventas: newVentaService(d)}
}

func mapCarrito(c model.Carrito) dto.CarritoResponse {
	resp := dto.CarritoResponse{
		ID:         c.ID,
		UsuarioID:  c.UsuarioID,
		Items:      make([]dto.ItemCarritoResponse, 0, len(c.Items)),
		TotalItems: c.TotalItems(),
		Subtotal:   c.Subtotal(),
	}
	for _, it := range c.Items {
		if it.Eliminado() {
			continue
		}
		ir := dto.ItemCarritoResponse{
			ID:            it.ID,
			ProductoID:    it.ProductoID,
			Cantidad:      it.Cantidad,
			Subtotal:      it.Subtotal(),
			FechaAgregado: it.FechaAgregado,
			PrecioActual:  decimal.Zero,
		}
		if it.Producto != nil {
			ir.Producto = it.Producto.Nombre
			ir.PrecioActual = it.Producto.PrecioActual()
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

func (s *carritoService) obtenerOCrear(ctx context.Context, usuarioID uuid.UUID) (*model.Carrito, error) {
	c, err := s.repo.ObtenerPorUsuario(ctx, usuarioID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNoEncontrado) {
		return nil, err
	}
	c = &model.Carrito{Base: model.Base{Activo: true}, UsuarioID: usuarioID}
	if err := s.repo.Crear(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			// created concurrently
			return s.repo.ObtenerPorUsuario(ctx, usuarioID)
		}
		if errors.Is(err, repository.ErrReferencia) {
			return nil, errors.New("usuario no encontrado")
		}
		return nil, err
	}
	return c, nil
}

func (s *carritoService) recargar(ctx context.Context, usuarioID uuid.UUID) (dto.CarritoResponse, error) {
	c, err := s.repo.ObtenerPorUsuario(ctx, usuarioID)
	if err != nil {
		return dto.CarritoResponse{}, err
	}
	return mapCarrito(*c), nil
}

func (s *carritoService) Obtener(ctx context.Context, usuarioID uuid.UUID) (dto.CarritoResponse, error) {
	c, err := s.obtenerOCrear(ctx, usuarioID)
	if err != nil {
		return dto.CarritoResponse{}, err
	}
	return mapCarrito(*c), nil
}

func (s *carritoService) Agregar(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarItemRequest) (dto.CarritoResponse, error) {
	if err := validar(req); err != nil {
		return dto.CarritoResponse{}, err
	}
	p, err := s.ventas.productos.ObtenerPorID(ctx, req.ProductoID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.CarritoResponse{}, ErrProductoNoEncontrado
		}
		return dto.CarritoResponse{}, err
	}
	if !p.Disponible() {
		return dto.CarritoResponse{}, fmt.Errorf("%s: %w", p.Nombre, ErrProductoNoVendible)
	}

	c, err := s.obtenerOCrear(ctx, usuarioID)
	if err != nil {
		return dto.CarritoResponse{}, err
	}

	ahora := s.ventas.reloj.ahora()
	it, err := s.repo.ObtenerItem(ctx, c.ID, p.ID)
	switch {
	case errors.Is(err, repository.ErrNoEncontrado):
		it = &model.ItemCarrito{
			Base:          model.Base{Activo: true},
			CarritoID:     c.ID,
			ProductoID:    p.ID,
			Cantidad:      req.Cantidad,
			FechaAgregado: ahora,
		}
	case err != nil:
		return dto.CarritoResponse{}, err
	case it.Eliminado():
		// the unique (carrito, producto) row is reused
		it.DeletedAt = gorm.DeletedAt{}
		it.Activo = true
		it.Cantidad = req.Cantidad
		it.FechaAgregado = ahora
	default:
		it.Cantidad += req.Cantidad
	}
	if it.Cantidad > p.Stock {
		return dto.CarritoResponse{}, fmt.Errorf("%s: %w (hay %d)", p.Nombre, model.ErrStockInsuficiente, p.Stock)
	}

	if err := s.repo.GuardarItem(ctx, it); err != nil {
		return dto.CarritoResponse{}, err
	}
	return s.recargar(ctx, usuarioID)
}

func (s *carritoService) ActualizarCantidad(ctx context.Context, usuarioID, productoID uuid.UUID, cantidad int) (dto.CarritoResponse, error) {
	if cantidad < 0 {
		return dto.CarritoResponse{}, model.ErrCantidadInvalida
	}
	if cantidad == 0 {
		return s.Quitar(ctx, usuarioID, productoID)
	}
	c, err := s.obtenerOCrear(ctx, usuarioID)
	if err != nil {
		return dto.CarritoResponse{}, err
	}
	it, err := s.repo.ObtenerItem(ctx, c.ID, productoID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.CarritoResponse{}, ErrItemNoEnCarrito
		}
		return dto.CarritoResponse{}, err
	}
	if it.Eliminado() {
		return dto.CarritoResponse{}, ErrItemNoEnCarrito
	}
	it.Cantidad = cantidad
	if err := s.repo.GuardarItem(ctx, it); err != nil {
		return dto.CarritoResponse{}, err
	}
	return s.recargar(ctx, usuarioID)
}

func (s *carritoService) Quitar(ctx context.Context, usuarioID, productoID uuid.UUID) (dto.CarritoResponse, error) {
	c, err := s.obtenerOCrear(ctx, usuarioID)
	if err != nil {
		return dto.CarritoResponse{}, err
	}
	if err := s.repo.EliminarItem(ctx, c.ID, productoID); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.CarritoResponse{}, ErrItemNoEnCarrito
		}
		return dto.CarritoResponse{}, err
	}
	return s.recargar(ctx, usuarioID)
}

func (s *carritoService) Vaciar(ctx context.Context, usuarioID uuid.UUID) error {
	c, err := s.obtenerOCrear(ctx, usuarioID)
	if err != nil {
		return err
	}
	return s.repo.VaciarTx(ctx, nil, c.ID)
}

func (s *carritoService) ConvertirAVenta(ctx context.Context, usuarioID uuid.UUID, req dto.ConvertirCarritoRequest) (dto.VentaResponse, error) {
	c, err := s.obtenerOCrear(ctx, usuarioID)
	if err != nil {
		return dto.VentaResponse{}, err
	}
	lineas := make([]lineaVenta, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Eliminado() {
			continue
		}
		lineas = append(lineas, lineaVenta{productoID: it.ProductoID, cantidad: it.Cantidad})
	}
	if len(lineas) == 0 {
		return dto.VentaResponse{}, model.ErrCarritoVacio
	}

	pct := decimal.Zero
	plan, err := planActivo(ctx, s.suscripciones, usuarioID, model.Dia(s.ventas.reloj.ahora()))
	if err != nil {
		return dto.VentaResponse{}, err
	}
	if plan != nil {
		pct = plan.DescuentoCompras
	}

	v, cliente, err := s.ventas.registrar(ctx, lineas, nuevaVenta{
		clienteID:    usuarioID,
		metodoPagoID: req.MetodoPagoID,
		descuentoPct: pct,
		notas:        req.Notas,
		despues: func(tx *gorm.DB, _ *model.Venta) error {
			return s.repo.VaciarTx(ctx, tx, c.ID)
		},
	})
	if err != nil {
		return dto.VentaResponse{}, err
	}
	s.ventas.enviarComprobante(ctx, v, cliente.Email)
	return ventaToResponse(v), nil
}
