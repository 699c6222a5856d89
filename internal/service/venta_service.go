package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/infra"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/repository"
	"github.com/nycamas/club/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrVentaNoPendiente    = errors.New("la venta no está pendiente de pago")
	ErrVentaCancelada      = errors.New("la venta ya está cancelada")
	ErrProductoRepetido    = errors.New("el mismo producto aparece más de una vez en la venta")
	ErrProductoNoVendible  = errors.New("el producto no está a la venta")
	ErrTotalNegativo       = errors.New("el descuento supera el importe de la venta")
	ErrClienteNoEncontrado = errors.New("cliente no encontrado")
)

type VentaService interface {
	Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (dto.VentaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (dto.VentaListResponse, error)
	MarcarPagada(ctx context.Context, id uuid.UUID, req dto.MarcarPagadaRequest) (dto.VentaResponse, error)
	// Completar closes a paid sale once the goods were handed over.
	Completar(ctx context.Context, id uuid.UUID) (dto.VentaResponse, error)
	// Anular cancels the sale and puts the sold units back in stock.
	Anular(ctx context.Context, id uuid.UUID, req dto.AnularVentaRequest) (dto.VentaResponse, error)
	ListarMetodosPago(ctx context.Context) ([]model.MetodoPago, error)
	// ComprobantePDF renders the sale receipt on demand.
	ComprobantePDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// VentaDeps groups what the sale and cart services need. Cache and
// Encolador are optional.
type VentaDeps struct {
	Ventas      repository.VentaRepository
	Productos   repository.ProductoRepository
	Movimientos repository.MovimientoStockRepository
	Socios      repository.SocioRepository
	Cache       *CacheProductos
	Encolador   Encolador
	Club        string
	Reloj       Reloj
}

type ventaService struct {
	repo        repository.VentaRepository
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	socios      repository.SocioRepository
	cache       *CacheProductos
	encolador   Encolador
	club        string
	reloj       Reloj
}

func NewVentaService(d VentaDeps) VentaService { return newVentaService(d) }

func newVentaService(d VentaDeps) *ventaService {
	return &ventaService{
		repo:        d.Ventas,
		productos:   d.Productos,
		movimientos: d.Movimientos,
		socios:      d.Socios,
		cache:       d.Cache,
		encolador:   d.Encolador,
		club:        d.Club,
		reloj:       d.Reloj,
	}
}

func ventaToResponse(v *model.Venta) dto.VentaResponse {
	resp := dto.VentaResponse{
		ID:             v.ID,
		Codigo:         v.Codigo,
		ClienteID:      v.ClienteID,
		Estado:         string(v.CodigoEstado()),
		FechaVenta:     v.FechaVenta,
		FechaPago:      v.FechaPago,
		Items:          make([]dto.ItemVentaResponse, 0, len(v.Detalles)),
		Subtotal:       v.Subtotal,
		Impuestos:      v.Impuestos,
		Descuento:      v.Descuento,
		Total:          v.Total,
		ReferenciaPago: v.ReferenciaPago,
	}
	for _, d := range v.Detalles {
		it := dto.ItemVentaResponse{
			ProductoID:     d.ProductoID,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Descuento:      d.DescuentoUnitario,
			Subtotal:       d.Subtotal(),
		}
		if d.Producto != nil {
			it.Producto = d.Producto.Nombre
		}
		resp.Items = append(resp.Items, it)
	}
	return resp
}

func (s *ventaService) estado(ctx context.Context, codigo model.CodigoEstadoVenta) (*model.EstadoVenta, error) {
	e, err := s.repo.ObtenerEstado(ctx, codigo)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, fmt.Errorf("estado de venta %q: %w", codigo, model.ErrEstadoNoEncontrado)
		}
		return nil, err
	}
	return e, nil
}

func (s *ventaService) obtener(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	v, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, errors.New("venta no encontrada")
		}
		return nil, err
	}
	return v, nil
}

// ── Registro ──────────────────────────────────────────────────────────────────

// lineaVenta is one requested line before prices are captured.
type lineaVenta struct {
	productoID uuid.UUID
	cantidad   int
	descuento  decimal.Decimal
}

// nuevaVenta carries everything registrar needs besides the lines.
type nuevaVenta struct {
	clienteID    uuid.UUID
	vendedorID   *uuid.UUID
	metodoPagoID *uuid.UUID
	impuestos    decimal.Decimal
	descuento    decimal.Decimal
	// descuentoPct is applied over the subtotal on top of descuento.
	descuentoPct decimal.Decimal
	notas        string
	// despues runs inside the sale transaction, after stock was taken.
	despues func(tx *gorm.DB, v *model.Venta) error
}

func (s *ventaService) Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (dto.VentaResponse, error) {
	if err := validar(req); err != nil {
		return dto.VentaResponse{}, err
	}
	lineas := make([]lineaVenta, 0, len(req.Items))
	for _, it := range req.Items {
		lineas = append(lineas, lineaVenta{productoID: it.ProductoID, cantidad: it.Cantidad, descuento: it.Descuento})
	}
	v, cliente, err := s.registrar(ctx, lineas, nuevaVenta{
		clienteID:    req.ClienteID,
		vendedorID:   req.VendedorID,
		metodoPagoID: req.MetodoPagoID,
		impuestos:    req.Impuestos,
		descuento:    req.Descuento,
		notas:        req.Notas,
	})
	if err != nil {
		return dto.VentaResponse{}, err
	}

	email := req.ClienteEmail
	if email == nil {
		email = cliente.Email
	}
	s.enviarComprobante(ctx, v, email)
	return ventaToResponse(v), nil
}

// registrar captures current prices, takes stock under row locks and stores
// the sale, all in one transaction. A sale with a payment method is born
// paid; otherwise it stays pending.
func (s *ventaService) registrar(ctx context.Context, lineas []lineaVenta, nv nuevaVenta) (*model.Venta, *model.Usuario, error) {
	if len(lineas) == 0 {
		return nil, nil, model.ErrCarritoVacio
	}
	vistos := make(map[uuid.UUID]struct{}, len(lineas))
	for _, l := range lineas {
		if l.cantidad < 1 {
			return nil, nil, model.ErrCantidadInvalida
		}
		if _, dup := vistos[l.productoID]; dup {
			return nil, nil, ErrProductoRepetido
		}
		vistos[l.productoID] = struct{}{}
	}

	cliente, err := s.socios.ObtenerPorID(ctx, nv.clienteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, nil, ErrClienteNoEncontrado
		}
		return nil, nil, err
	}

	codigoEstado := model.VentaPendiente
	if nv.metodoPagoID != nil {
		if _, err := s.repo.ObtenerMetodoPago(ctx, *nv.metodoPagoID); err != nil {
			if errors.Is(err, repository.ErrNoEncontrado) {
				return nil, nil, errors.New("método de pago no encontrado")
			}
			return nil, nil, err
		}
		codigoEstado = model.VentaPagada
	}
	estado, err := s.estado(ctx, codigoEstado)
	if err != nil {
		return nil, nil, err
	}

	ahora := s.reloj.ahora()
	v := &model.Venta{
		Base:         model.Base{Activo: true},
		ClienteID:    nv.clienteID,
		FechaVenta:   ahora,
		EstadoID:     estado.ID,
		Notas:        nv.notas,
		Impuestos:    nv.impuestos,
		Descuento:    nv.descuento,
		MetodoPagoID: nv.metodoPagoID,
		VendedorID:   nv.vendedorID,
	}
	if nv.metodoPagoID != nil {
		v.FechaPago = &ahora
	}

	stockAntes := make(map[uuid.UUID]int, len(lineas))
	var codigos []string
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.SiguienteCodigo(ctx, tx)
		if err != nil {
			return err
		}
		v.Codigo = fmt.Sprintf("VEN-%d-%06d", ahora.Year(), n)

		for _, l := range lineas {
			p, err := s.productos.BloquearTx(ctx, tx, l.productoID)
			if err != nil {
				if errors.Is(err, repository.ErrNoEncontrado) {
					return ErrProductoNoEncontrado
				}
				return err
			}
			if !p.Vivo() {
				return fmt.Errorf("%s: %w", p.Nombre, ErrProductoNoVendible)
			}
			if p.SoloSocios && !cliente.EsSocio {
				return fmt.Errorf("%s: %w (solo socios)", p.Nombre, ErrProductoNoVendible)
			}
			if p.Stock < l.cantidad {
				return fmt.Errorf("%s: %w (hay %d)", p.Nombre, model.ErrStockInsuficiente, p.Stock)
			}
			stockAntes[p.ID] = p.Stock
			codigos = append(codigos, p.Codigo)
			v.Detalles = append(v.Detalles, model.DetalleVenta{
				Base:              model.Base{Activo: true},
				ProductoID:        p.ID,
				Cantidad:          l.cantidad,
				PrecioUnitario:    p.PrecioActual(),
				DescuentoUnitario: l.descuento,
				Producto:          p,
			})
		}

		v.CalcularTotal()
		if nv.descuentoPct.IsPositive() {
			v.Descuento = v.Descuento.Add(v.Subtotal.Sub(conDescuento(v.Subtotal, nv.descuentoPct)))
			v.CalcularTotal()
		}
		if v.Total.IsNegative() {
			return ErrTotalNegativo
		}
		for _, d := range v.Detalles {
			if d.Subtotal().IsNegative() {
				return ErrTotalNegativo
			}
		}

		if err := s.repo.CrearTx(ctx, tx, v); err != nil {
			return err
		}
		for _, d := range v.Detalles {
			if err := s.moverStockTx(ctx, tx, d.ProductoID, -d.Cantidad, stockAntes[d.ProductoID],
				model.MovimientoVenta, "Venta "+v.Codigo, v.ID); err != nil {
				return err
			}
		}
		if nv.despues != nil {
			return nv.despues(tx, v)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.cache.invalidar(ctx, codigos...)
	v.Estado = estado
	return v, cliente, nil
}

func (s *ventaService) moverStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, delta, antes int, tipo, motivo string, ventaID uuid.UUID) error {
	if err := s.productos.AjustarStockTx(ctx, tx, productoID, delta); err != nil {
		return err
	}
	ref := ventaID
	return s.movimientos.CrearTx(ctx, tx, &model.MovimientoStock{
		Base:          model.Base{Activo: true},
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      delta,
		StockAnterior: antes,
		StockNuevo:    antes + delta,
		Motivo:        motivo,
		ReferenciaID:  &ref,
	})
}

// enviarComprobante queues the receipt email with the PDF attached. It is
// best effort: the sale is already committed.
func (s *ventaService) enviarComprobante(ctx context.Context, v *model.Venta, email *string) {
	if s.encolador == nil || email == nil || strings.TrimSpace(*email) == "" {
		return
	}
	pdf, err := infra.GenerarComprobanteVentaPDF(s.club, v)
	if err != nil {
		log.Error().Err(err).Str("venta", v.Codigo).Msg("venta: receipt pdf failed")
		return
	}
	payload := worker.EmailJobPayload{
		Para:          *email,
		Asunto:        fmt.Sprintf("%s - comprobante %s", s.club, v.Codigo),
		Texto:         fmt.Sprintf("Adjuntamos el comprobante de su compra %s por %s EUR.", v.Codigo, v.Total.StringFixed(2)),
		Adjunto:       pdf,
		AdjuntoNombre: v.Codigo + ".pdf",
	}
	if err := s.encolador.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("venta", v.Codigo).Msg("venta: failed to enqueue receipt email")
	}
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (dto.VentaResponse, error) {
	v, err := s.obtener(ctx, id)
	if err != nil {
		return dto.VentaResponse{}, err
	}
	return ventaToResponse(v), nil
}

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (dto.VentaListResponse, error) {
	list, total, err := s.repo.Listar(ctx, filter)
	if err != nil {
		return dto.VentaListResponse{}, err
	}
	data := make([]dto.VentaResponse, 0, len(list))
	for i := range list {
		data = append(data, ventaToResponse(&list[i]))
	}
	return dto.VentaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ventaService) ListarMetodosPago(ctx context.Context) ([]model.MetodoPago, error) {
	return s.repo.ListarMetodosPago(ctx)
}

func (s *ventaService) ComprobantePDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	v, err := s.obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	return infra.GenerarComprobanteVentaPDF(s.club, v)
}

// ── Cambios de estado ─────────────────────────────────────────────────────────

func (s *ventaService) MarcarPagada(ctx context.Context, id uuid.UUID, req dto.MarcarPagadaRequest) (dto.VentaResponse, error) {
	if err := validar(req); err != nil {
		return dto.VentaResponse{}, err
	}
	v, err := s.obtener(ctx, id)
	if err != nil {
		return dto.VentaResponse{}, err
	}
	if v.CodigoEstado() != model.VentaPendiente {
		return dto.VentaResponse{}, ErrVentaNoPendiente
	}
	if _, err := s.repo.ObtenerMetodoPago(ctx, req.MetodoPagoID); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return dto.VentaResponse{}, errors.New("método de pago no encontrado")
		}
		return dto.VentaResponse{}, err
	}
	pagada, err := s.estado(ctx, model.VentaPagada)
	if err != nil {
		return dto.VentaResponse{}, err
	}

	ahora := s.reloj.ahora()
	metodo := req.MetodoPagoID
	v.MetodoPagoID = &metodo
	v.MetodoPago = nil
	v.ReferenciaPago = req.ReferenciaPago
	v.FechaPago = &ahora
	v.EstadoID = pagada.ID
	v.Estado = pagada
	if err := s.repo.ActualizarTx(ctx, nil, v); err != nil {
		return dto.VentaResponse{}, err
	}
	return ventaToResponse(v), nil
}

func (s *ventaService) Completar(ctx context.Context, id uuid.UUID) (dto.VentaResponse, error) {
	v, err := s.obtener(ctx, id)
	if err != nil {
		return dto.VentaResponse{}, err
	}
	if v.CodigoEstado() != model.VentaPagada {
		return dto.VentaResponse{}, errors.New("solo una venta pagada puede completarse")
	}
	completada, err := s.estado(ctx, model.VentaCompletada)
	if err != nil {
		return dto.VentaResponse{}, err
	}
	v.EstadoID = completada.ID
	v.Estado = completada
	if err := s.repo.ActualizarTx(ctx, nil, v); err != nil {
		return dto.VentaResponse{}, err
	}
	return ventaToResponse(v), nil
}

func (s *ventaService) Anular(ctx context.Context, id uuid.UUID, req dto.AnularVentaRequest) (dto.VentaResponse, error) {
	if err := validar(req); err != nil {
		return dto.VentaResponse{}, err
	}
	v, err := s.obtener(ctx, id)
	if err != nil {
		return dto.VentaResponse{}, err
	}
	if v.CodigoEstado() == model.VentaCancelada {
		return dto.VentaResponse{}, ErrVentaCancelada
	}
	cancelada, err := s.estado(ctx, model.VentaCancelada)
	if err != nil {
		return dto.VentaResponse{}, err
	}

	var codigos []string
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, d := range v.Detalles {
			p, err := s.productos.BloquearTx(ctx, tx, d.ProductoID)
			if err != nil {
				return fmt.Errorf("restaurando stock: %w", err)
			}
			codigos = append(codigos, p.Codigo)
			if err := s.moverStockTx(ctx, tx, p.ID, d.Cantidad, p.Stock,
				model.MovimientoAnulacion, "Anulación "+v.Codigo+": "+req.Motivo, v.ID); err != nil {
				return err
			}
		}
		v.EstadoID = cancelada.ID
		v.Estado = cancelada
		v.Notas = strings.TrimSpace(v.Notas + "\nAnulada: " + req.Motivo)
		return s.repo.ActualizarTx(ctx, tx, v)
	})
	if err != nil {
		return dto.VentaResponse{}, err
	}
	s.cache.invalidar(ctx, codigos...)
	return ventaToResponse(v), nil
}
