package service_test

import (
	"context"
	"sort"
	"time"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

var hoyTest = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func relojFijo(t time.Time) func() time.Time { return func() time.Time { return t } }

func dia(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func nuevoID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// stubBorrador records logical and physical deletes by id.
type stubBorrador struct {
	eliminados  map[uuid.UUID]bool
	definitivos map[uuid.UUID]bool
}

func newStubBorrador() stubBorrador {
	return stubBorrador{eliminados: map[uuid.UUID]bool{}, definitivos: map[uuid.UUID]bool{}}
}

func (b stubBorrador) Eliminar(_ context.Context, _ any, id uuid.UUID) error {
	if b.eliminados[id] {
		return repository.ErrNoEncontrado
	}
	b.eliminados[id] = true
	return nil
}

func (b stubBorrador) EliminarDefinitivo(_ context.Context, _ any, id uuid.UUID) error {
	b.definitivos[id] = true
	return nil
}

func (b stubBorrador) EliminarTx(ctx context.Context, _ *gorm.DB, modelo any, id uuid.UUID) error {
	return b.Eliminar(ctx, modelo, id)
}

func (b stubBorrador) EliminarDefinitivoTx(ctx context.Context, _ *gorm.DB, modelo any, id uuid.UUID) error {
	return b.EliminarDefinitivo(ctx, modelo, id)
}

func (b stubBorrador) ObtenerConEliminados(_ context.Context, _ any, _ uuid.UUID) error {
	return repository.ErrNoEncontrado
}

// ── Socios ────────────────────────────────────────────────────────────────────

type stubSocioRepo struct {
	stubBorrador
	usuarios   map[uuid.UUID]*model.Usuario
	contadores map[int]int
}

func newStubSocioRepo() *stubSocioRepo {
	return &stubSocioRepo{
		stubBorrador: newStubBorrador(),
		usuarios:     map[uuid.UUID]*model.Usuario{},
		contadores:   map[int]int{},
	}
}

func (r *stubSocioRepo) seed(esSocio bool) *model.Usuario {
	u := &model.Usuario{
		Base:     model.Base{ID: uuid.New(), Activo: true},
		Username: "u" + uuid.NewString()[:8],
		Nombre:   "Ana",
		Apellido: "Pérez",
		EsSocio:  esSocio,
	}
	r.usuarios[u.ID] = u
	return u
}

func (r *stubSocioRepo) Crear(_ context.Context, _ *gorm.DB, u *model.Usuario) error {
	for _, x := range r.usuarios {
		if x.Username == u.Username {
			return repository.ErrDuplicado
		}
	}
	nuevoID(&u.ID)
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubSocioRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok || r.eliminados[id] {
		return nil, repository.ErrNoEncontrado
	}
	return u, nil
}

func (r *stubSocioRepo) ObtenerPorUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubSocioRepo) Listar(_ context.Context, _ dto.SocioFilter) ([]model.Usuario, int64, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *stubSocioRepo) Actualizar(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubSocioRepo) SiguienteNumeroTx(_ context.Context, _ *gorm.DB, anio int) (int, error) {
	r.contadores[anio]++
	return r.contadores[anio], nil
}

func (r *stubSocioRepo) DB() *gorm.DB { return nil }

var _ repository.SocioRepository = (*stubSocioRepo)(nil)

// ── Suscripciones ─────────────────────────────────────────────────────────────

type stubSuscripcionRepo struct {
	stubBorrador
	suscripciones   map[uuid.UUID]*model.Suscripcion
	estados         map[model.CodigoEstadoSuscripcion]*model.EstadoSuscripcion
	tipos           map[uuid.UUID]*model.TipoSuscripcion
	formas          map[uuid.UUID]*model.FormaPago
	pagos           map[uuid.UUID]*model.PagoSuscripcion
	actualizaciones int
}

// newStubSuscripcionRepo seeds the given status codes (all of them when none
// is passed).
func newStubSuscripcionRepo(codigos ...model.CodigoEstadoSuscripcion) *stubSuscripcionRepo {
	r := &stubSuscripcionRepo{
		stubBorrador:  newStubBorrador(),
		suscripciones: map[uuid.UUID]*model.Suscripcion{},
		estados:       map[model.CodigoEstadoSuscripcion]*model.EstadoSuscripcion{},
		tipos:         map[uuid.UUID]*model.TipoSuscripcion{},
		formas:        map[uuid.UUID]*model.FormaPago{},
		pagos:         map[uuid.UUID]*model.PagoSuscripcion{},
	}
	if len(codigos) == 0 {
		for _, e := range model.EstadosSuscripcion {
			codigos = append(codigos, e.Codigo)
		}
	}
	for _, c := range codigos {
		r.estados[c] = &model.EstadoSuscripcion{Base: model.Base{ID: uuid.New(), Activo: true}, Codigo: c, Nombre: string(c)}
	}
	return r
}

func (r *stubSuscripcionRepo) seedTipo(t model.TipoSuscripcion) *model.TipoSuscripcion {
	t.ID = uuid.New()
	t.Activo = true
	if t.Nombre == "" {
		t.Nombre = "Plan"
	}
	r.tipos[t.ID] = &t
	return &t
}

func (r *stubSuscripcionRepo) seedForma(manual bool) *model.FormaPago {
	f := &model.FormaPago{Base: model.Base{ID: uuid.New(), Activo: true}, Nombre: "Transferencia", RequiereValidacionManual: manual}
	r.formas[f.ID] = f
	return f
}

// seedSuscripcion stores an active subscription of socioID on tipo.
func (r *stubSuscripcionRepo) seedSuscripcion(socioID uuid.UUID, tipo *model.TipoSuscripcion, inicio time.Time, fin *time.Time, auto bool) *model.Suscripcion {
	est := r.estados[model.SuscripcionActiva]
	s := &model.Suscripcion{
		Base:                 model.Base{ID: uuid.New(), Activo: true},
		SocioID:              socioID,
		TipoID:               tipo.ID,
		FechaInicio:          inicio,
		FechaFin:             fin,
		Periodicidad:         model.Mensual,
		Precio:               tipo.PrecioMensual,
		RenovacionAutomatica: auto,
	}
	if est != nil {
		s.EstadoID = est.ID
	}
	r.suscripciones[s.ID] = s
	return s
}

func (r *stubSuscripcionRepo) estadoPorID(id uuid.UUID) *model.EstadoSuscripcion {
	for _, e := range r.estados {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// cargar returns a detached copy with estado and tipo resolved.
func (r *stubSuscripcionRepo) cargar(s *model.Suscripcion) *model.Suscripcion {
	c := *s
	c.Estado = r.estadoPorID(s.EstadoID)
	c.Tipo = r.tipos[s.TipoID]
	return &c
}

func (r *stubSuscripcionRepo) Crear(_ context.Context, s *model.Suscripcion) error {
	nuevoID(&s.ID)
	c := *s
	r.suscripciones[s.ID] = &c
	return nil
}

func (r *stubSuscripcionRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Suscripcion, error) {
	s, ok := r.suscripciones[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return r.cargar(s), nil
}

func (r *stubSuscripcionRepo) ActualizarTx(_ context.Context, _ *gorm.DB, s *model.Suscripcion) error {
	r.actualizaciones++
	c := *s
	c.Estado, c.Tipo = nil, nil
	r.suscripciones[s.ID] = &c
	return nil
}

func (r *stubSuscripcionRepo) ListarDeSocio(_ context.Context, socioID uuid.UUID) ([]model.Suscripcion, error) {
	var out []model.Suscripcion
	for _, s := range r.suscripciones {
		if s.SocioID == socioID {
			out = append(out, *r.cargar(s))
		}
	}
	return out, nil
}

func (r *stubSuscripcionRepo) ActivaDe(_ context.Context, socioID uuid.UUID, hoy time.Time) (*model.Suscripcion, error) {
	for _, s := range r.suscripciones {
		c := r.cargar(s)
		if s.SocioID == socioID && c.Activa(hoy) {
			return c, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubSuscripcionRepo) ListarVencidas(_ context.Context, hoy time.Time, auto bool) ([]model.Suscripcion, error) {
	var out []model.Suscripcion
	for _, s := range r.suscripciones {
		c := r.cargar(s)
		if c.Estado == nil || c.Estado.Codigo != model.SuscripcionActiva || c.FechaFin == nil {
			continue
		}
		if c.FechaFin.Before(model.Dia(hoy)) && c.RenovacionAutomatica == auto {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubSuscripcionRepo) ObtenerEstado(_ context.Context, codigo model.CodigoEstadoSuscripcion) (*model.EstadoSuscripcion, error) {
	e, ok := r.estados[codigo]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return e, nil
}

func (r *stubSuscripcionRepo) ObtenerTipo(_ context.Context, id uuid.UUID) (*model.TipoSuscripcion, error) {
	t, ok := r.tipos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return t, nil
}

func (r *stubSuscripcionRepo) ListarTipos(_ context.Context) ([]model.TipoSuscripcion, error) {
	var out []model.TipoSuscripcion
	for _, t := range r.tipos {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubSuscripcionRepo) ObtenerFormaPago(_ context.Context, id uuid.UUID) (*model.FormaPago, error) {
	f, ok := r.formas[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return f, nil
}

func (r *stubSuscripcionRepo) CrearPagoTx(_ context.Context, _ *gorm.DB, p *model.PagoSuscripcion) error {
	nuevoID(&p.ID)
	c := *p
	r.pagos[p.ID] = &c
	return nil
}

func (r *stubSuscripcionRepo) ObtenerPago(_ context.Context, id uuid.UUID) (*model.PagoSuscripcion, error) {
	p, ok := r.pagos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	c := *p
	return &c, nil
}

func (r *stubSuscripcionRepo) ActualizarPagoTx(_ context.Context, _ *gorm.DB, p *model.PagoSuscripcion) error {
	c := *p
	r.pagos[p.ID] = &c
	return nil
}

func (r *stubSuscripcionRepo) DB() *gorm.DB { return nil }

var _ repository.SuscripcionRepository = (*stubSuscripcionRepo)(nil)

// ── Clases ────────────────────────────────────────────────────────────────────

type stubClaseRepo struct {
	stubBorrador
	clases         map[uuid.UUID]*model.Clase
	instructores   map[uuid.UUID]*model.Instructor
	sesiones       map[uuid.UUID]*model.SesionClase
	inscripciones  map[uuid.UUID]*model.InscripcionClase
	valoraciones   []*model.ValoracionClase
	calificaciones map[uuid.UUID]*decimal.Decimal
}

func newStubClaseRepo() *stubClaseRepo {
	return &stubClaseRepo{
		stubBorrador:   newStubBorrador(),
		clases:         map[uuid.UUID]*model.Clase{},
		instructores:   map[uuid.UUID]*model.Instructor{},
		sesiones:       map[uuid.UUID]*model.SesionClase{},
		inscripciones:  map[uuid.UUID]*model.InscripcionClase{},
		calificaciones: map[uuid.UUID]*decimal.Decimal{},
	}
}

func (r *stubClaseRepo) seedClase(capacidad int, precio string) *model.Clase {
	c := &model.Clase{
		Base:            model.Base{ID: uuid.New(), Activo: true},
		Nombre:          "Iniciación a la vela",
		CapacidadMaxima: capacidad,
		Precio:          dec(precio),
		Activa:          true,
	}
	r.clases[c.ID] = c
	return c
}

func (r *stubClaseRepo) seedInstructor() *model.Instructor {
	i := &model.Instructor{Base: model.Base{ID: uuid.New(), Activo: true}, UsuarioID: uuid.New()}
	r.instructores[i.ID] = i
	return i
}

func (r *stubClaseRepo) seedSesion(c *model.Clase, instructor *model.Instructor, fecha time.Time) *model.SesionClase {
	s := &model.SesionClase{
		Base:         model.Base{ID: uuid.New(), Activo: true},
		ClaseID:      c.ID,
		InstructorID: instructor.ID,
		Fecha:        fecha,
	}
	r.sesiones[s.ID] = s
	return s
}

func (r *stubClaseRepo) ObtenerClase(_ context.Context, id uuid.UUID) (*model.Clase, error) {
	c, ok := r.clases[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return c, nil
}

func (r *stubClaseRepo) ObtenerInstructor(_ context.Context, id uuid.UUID) (*model.Instructor, error) {
	i, ok := r.instructores[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return i, nil
}

func (r *stubClaseRepo) ActualizarCalificacionTx(_ context.Context, _ *gorm.DB, id uuid.UUID, c *decimal.Decimal) error {
	r.calificaciones[id] = c
	return nil
}

func (r *stubClaseRepo) CrearSesion(_ context.Context, s *model.SesionClase) error {
	nuevoID(&s.ID)
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubClaseRepo) ObtenerSesion(_ context.Context, id uuid.UUID) (*model.SesionClase, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	s.Clase = r.clases[s.ClaseID]
	return s, nil
}

func (r *stubClaseRepo) ActualizarSesion(_ context.Context, s *model.SesionClase) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubClaseRepo) BloquearSesionTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.SesionClase, error) {
	return r.ObtenerSesion(ctx, id)
}

func (r *stubClaseRepo) ListarSesionesFuturas(_ context.Context, claseID uuid.UUID, desde time.Time) ([]model.SesionClase, error) {
	var out []model.SesionClase
	for _, s := range r.sesiones {
		if s.ClaseID == claseID && !s.Cancelada && !s.Fecha.Before(model.Dia(desde)) {
			c := *s
			c.Clase = r.clases[s.ClaseID]
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubClaseRepo) ContarInscritosTx(_ context.Context, _ *gorm.DB, sesionID uuid.UUID) (int, error) {
	n := 0
	for _, in := range r.inscripciones {
		if in.SesionID == sesionID && !in.Cancelada && !in.Eliminado() {
			n++
		}
	}
	return n, nil
}

func (r *stubClaseRepo) ObtenerInscripcionTx(_ context.Context, _ *gorm.DB, socioID, sesionID uuid.UUID) (*model.InscripcionClase, error) {
	for _, in := range r.inscripciones {
		if in.SocioID == socioID && in.SesionID == sesionID {
			return in, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubClaseRepo) ObtenerInscripcion(_ context.Context, id uuid.UUID) (*model.InscripcionClase, error) {
	in, ok := r.inscripciones[id]
	if !ok || in.Eliminado() {
		return nil, repository.ErrNoEncontrado
	}
	return in, nil
}

func (r *stubClaseRepo) GuardarInscripcionTx(_ context.Context, _ *gorm.DB, in *model.InscripcionClase) error {
	nuevoID(&in.ID)
	r.inscripciones[in.ID] = in
	return nil
}

func (r *stubClaseRepo) CrearValoracionTx(_ context.Context, _ *gorm.DB, v *model.ValoracionClase) error {
	for _, x := range r.valoraciones {
		if x.SocioID == v.SocioID && x.ClaseID == v.ClaseID && x.SesionID != nil && v.SesionID != nil && *x.SesionID == *v.SesionID {
			return repository.ErrDuplicado
		}
	}
	nuevoID(&v.ID)
	r.valoraciones = append(r.valoraciones, v)
	return nil
}

func (r *stubClaseRepo) PromedioInstructorTx(_ context.Context, _ *gorm.DB, instructorID uuid.UUID) (*decimal.Decimal, error) {
	suma, n := 0, 0
	for _, v := range r.valoraciones {
		if v.InstructorID != nil && *v.InstructorID == instructorID && v.Aprobado {
			suma += v.Puntuacion
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	p := decimal.NewFromInt(int64(suma)).Div(decimal.NewFromInt(int64(n))).Round(2)
	return &p, nil
}

func (r *stubClaseRepo) DB() *gorm.DB { return nil }

var _ repository.ClaseRepository = (*stubClaseRepo)(nil)

// ── Productos y ventas ────────────────────────────────────────────────────────

type stubProductoRepo struct {
	stubBorrador
	productos  map[uuid.UUID]*model.Producto
	categorias []model.CategoriaProducto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{stubBorrador: newStubBorrador(), productos: map[uuid.UUID]*model.Producto{}}
}

func (r *stubProductoRepo) seed(nombre, codigo, precio string, stock int) *model.Producto {
	p := &model.Producto{
		Base:             model.Base{ID: uuid.New(), Activo: true},
		Codigo:           codigo,
		Nombre:           nombre,
		Precio:           dec(precio),
		Stock:            stock,
		StockMinimo:      5,
		FechaPublicacion: dia(2025, 1, 1),
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Crear(_ context.Context, p *model.Producto) error {
	for _, x := range r.productos {
		if x.Codigo == p.Codigo {
			return repository.ErrDuplicado
		}
	}
	nuevoID(&p.ID)
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return p, nil
}

func (r *stubProductoRepo) ObtenerPorCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo {
			return p, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubProductoRepo) Listar(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Actualizar(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) ListarParaReponer(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Vivo() && p.NecesitaReposicion() {
			out = append(out, *p)
		}
	}
	return out, nil
}

// BloquearTx hands out a copy, like a fresh row read would.
func (r *stubProductoRepo) BloquearTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, err := r.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) AjustarStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	if p.Stock+delta < 0 {
		return model.ErrStockInsuficiente
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) CrearCategoria(_ context.Context, c *model.CategoriaProducto) error {
	nuevoID(&c.ID)
	r.categorias = append(r.categorias, *c)
	return nil
}

func (r *stubProductoRepo) ListarCategorias(_ context.Context) ([]model.CategoriaProducto, error) {
	return r.categorias, nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CrearTx(_ context.Context, _ *gorm.DB, m *model.MovimientoStock) error {
	nuevoID(&m.ID)
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) Listar(_ context.Context, _ repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return r.movimientos, int64(len(r.movimientos)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

type stubVentaRepo struct {
	stubBorrador
	ventas  map[uuid.UUID]*model.Venta
	estados map[model.CodigoEstadoVenta]*model.EstadoVenta
	metodos map[uuid.UUID]*model.MetodoPago
	seq     int64
}

func newStubVentaRepo() *stubVentaRepo {
	r := &stubVentaRepo{
		stubBorrador: newStubBorrador(),
		ventas:       map[uuid.UUID]*model.Venta{},
		estados:      map[model.CodigoEstadoVenta]*model.EstadoVenta{},
		metodos:      map[uuid.UUID]*model.MetodoPago{},
	}
	for _, e := range model.EstadosVenta {
		e := e
		e.ID = uuid.New()
		r.estados[e.Codigo] = &e
	}
	return r
}

func (r *stubVentaRepo) seedMetodo(nombre string) *model.MetodoPago {
	m := &model.MetodoPago{Base: model.Base{ID: uuid.New(), Activo: true}, Nombre: nombre}
	r.metodos[m.ID] = m
	return m
}

func (r *stubVentaRepo) CrearTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	nuevoID(&v.ID)
	for i := range v.Detalles {
		nuevoID(&v.Detalles[i].ID)
		v.Detalles[i].VentaID = v.ID
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return v, nil
}

func (r *stubVentaRepo) ActualizarTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) SiguienteCodigo(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubVentaRepo) ObtenerEstado(_ context.Context, codigo model.CodigoEstadoVenta) (*model.EstadoVenta, error) {
	e, ok := r.estados[codigo]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return e, nil
}

func (r *stubVentaRepo) ObtenerMetodoPago(_ context.Context, id uuid.UUID) (*model.MetodoPago, error) {
	m, ok := r.metodos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return m, nil
}

func (r *stubVentaRepo) ListarMetodosPago(_ context.Context) ([]model.MetodoPago, error) {
	var out []model.MetodoPago
	for _, m := range r.metodos {
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubVentaRepo) Listar(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Carrito ───────────────────────────────────────────────────────────────────

type claveItem struct{ carrito, producto uuid.UUID }

type stubCarritoRepo struct {
	productos *stubProductoRepo
	carritos  map[uuid.UUID]*model.Carrito
	items     map[claveItem]*model.ItemCarrito
}

func newStubCarritoRepo(productos *stubProductoRepo) *stubCarritoRepo {
	return &stubCarritoRepo{
		productos: productos,
		carritos:  map[uuid.UUID]*model.Carrito{},
		items:     map[claveItem]*model.ItemCarrito{},
	}
}

func (r *stubCarritoRepo) ObtenerPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.Carrito, error) {
	c, ok := r.carritos[usuarioID]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	out := *c
	out.Items = nil
	for k, it := range r.items {
		if k.carrito != c.ID || it.Eliminado() {
			continue
		}
		cp := *it
		cp.Producto = r.productos.productos[it.ProductoID]
		out.Items = append(out.Items, cp)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].FechaAgregado.Before(out.Items[j].FechaAgregado) })
	return &out, nil
}

func (r *stubCarritoRepo) Crear(_ context.Context, c *model.Carrito) error {
	if _, ok := r.carritos[c.UsuarioID]; ok {
		return repository.ErrDuplicado
	}
	nuevoID(&c.ID)
	r.carritos[c.UsuarioID] = c
	return nil
}

func (r *stubCarritoRepo) ObtenerItem(_ context.Context, carritoID, productoID uuid.UUID) (*model.ItemCarrito, error) {
	it, ok := r.items[claveItem{carritoID, productoID}]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *it
	return &cp, nil
}

func (r *stubCarritoRepo) GuardarItem(_ context.Context, it *model.ItemCarrito) error {
	nuevoID(&it.ID)
	cp := *it
	r.items[claveItem{it.CarritoID, it.ProductoID}] = &cp
	return nil
}

func (r *stubCarritoRepo) EliminarItem(_ context.Context, carritoID, productoID uuid.UUID) error {
	it, ok := r.items[claveItem{carritoID, productoID}]
	if !ok || it.Eliminado() {
		return repository.ErrNoEncontrado
	}
	it.MarcarEliminado(time.Now())
	return nil
}

func (r *stubCarritoRepo) VaciarTx(_ context.Context, _ *gorm.DB, carritoID uuid.UUID) error {
	for k, it := range r.items {
		if k.carrito == carritoID && !it.Eliminado() {
			it.MarcarEliminado(time.Now())
		}
	}
	return nil
}

var _ repository.CarritoRepository = (*stubCarritoRepo)(nil)

// ── Recursos y alquileres ─────────────────────────────────────────────────────

type stubRecursoRepo struct {
	stubBorrador
	recursos       map[uuid.UUID]*model.Recurso
	mantenimientos map[uuid.UUID]*model.MantenimientoRecurso
	alquileres     *stubAlquilerRepo
	alBloquear     func(id uuid.UUID)
}

func newStubRecursoRepo(alquileres *stubAlquilerRepo) *stubRecursoRepo {
	return &stubRecursoRepo{
		stubBorrador:   newStubBorrador(),
		recursos:       map[uuid.UUID]*model.Recurso{},
		mantenimientos: map[uuid.UUID]*model.MantenimientoRecurso{},
		alquileres:     alquileres,
	}
}

// seedAlquilable stores a rentable, available resource.
func (r *stubRecursoRepo) seedAlquilable(total int, precioDia string) *model.Recurso {
	rec := &model.Recurso{
		Base:               model.Base{ID: uuid.New(), Activo: true},
		Codigo:             "KAY-" + uuid.NewString()[:4],
		Nombre:             "Kayak doble",
		CantidadTotal:      total,
		CantidadDisponible: total,
		PrecioAlquiler:     decPtr(precioDia),
		DepositoGarantia:   dec("20"),
		Tipo:               &model.TipoRecurso{Base: model.Base{ID: uuid.New()}, Alquilable: true},
		Estado:             &model.EstadoRecurso{Base: model.Base{ID: uuid.New()}, Disponible: true},
	}
	rec.TipoID, rec.EstadoID = rec.Tipo.ID, rec.Estado.ID
	r.recursos[rec.ID] = rec
	return rec
}

func (r *stubRecursoRepo) Crear(_ context.Context, rec *model.Recurso) error {
	nuevoID(&rec.ID)
	r.recursos[rec.ID] = rec
	return nil
}

func (r *stubRecursoRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Recurso, error) {
	rec, ok := r.recursos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return rec, nil
}

func (r *stubRecursoRepo) Listar(_ context.Context, _ dto.RecursoFilter) ([]model.Recurso, int64, error) {
	var out []model.Recurso
	for _, rec := range r.recursos {
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

// ActualizarTx keeps the stored cantidad_disponible, like the column omit.
func (r *stubRecursoRepo) ActualizarTx(_ context.Context, _ *gorm.DB, rec *model.Recurso) error {
	stored, ok := r.recursos[rec.ID]
	if !ok {
		return repository.ErrNoEncontrado
	}
	cp := *rec
	cp.CantidadDisponible = stored.CantidadDisponible
	*stored = cp
	return nil
}

func (r *stubRecursoRepo) ReemplazarEtiquetas(_ context.Context, rec *model.Recurso, etiquetas []model.EtiquetaRecurso) error {
	rec.Etiquetas = etiquetas
	return nil
}

// BloquearTx returns a private copy of the row; alBloquear runs first and
// stands in for a concurrent transaction that commits while we wait.
func (r *stubRecursoRepo) BloquearTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Recurso, error) {
	if r.alBloquear != nil {
		r.alBloquear(id)
	}
	rec, err := r.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *rec
	return &cp, nil
}

// UnidadesComprometidasTx derives the committed units from the rentals held
// by the alquiler stub, like the SQL aggregate does.
func (r *stubRecursoRepo) UnidadesComprometidasTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (int, error) {
	n := 0
	for _, a := range r.alquileres.alquileres {
		if a.Eliminado() || r.alquileres.eliminados[a.ID] || r.alquileres.definitivos[a.ID] {
			continue
		}
		if !r.alquileres.codigoDe(a.EstadoID).Abierto() {
			continue
		}
		for _, d := range a.Detalles {
			if d.RecursoID == id && !d.Devuelto {
				n += d.Cantidad
			}
		}
	}
	return n, nil
}

func (r *stubRecursoRepo) ActualizarDisponibleTx(_ context.Context, _ *gorm.DB, id uuid.UUID, disponible int) error {
	rec, ok := r.recursos[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	rec.CantidadDisponible = disponible
	return nil
}

func (r *stubRecursoRepo) ActualizarEstadoTx(_ context.Context, _ *gorm.DB, id, estadoID uuid.UUID) error {
	rec, ok := r.recursos[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	rec.EstadoID = estadoID
	return nil
}

func (r *stubRecursoRepo) CrearMantenimientoTx(_ context.Context, _ *gorm.DB, m *model.MantenimientoRecurso) error {
	nuevoID(&m.ID)
	r.mantenimientos[m.ID] = m
	return nil
}

func (r *stubRecursoRepo) ObtenerMantenimiento(_ context.Context, id uuid.UUID) (*model.MantenimientoRecurso, error) {
	m, ok := r.mantenimientos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return m, nil
}

func (r *stubRecursoRepo) ActualizarMantenimientoTx(_ context.Context, _ *gorm.DB, m *model.MantenimientoRecurso) error {
	r.mantenimientos[m.ID] = m
	return nil
}

func (r *stubRecursoRepo) ListarMantenimientos(_ context.Context, recursoID uuid.UUID) ([]model.MantenimientoRecurso, error) {
	var out []model.MantenimientoRecurso
	for _, m := range r.mantenimientos {
		if m.RecursoID == recursoID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubRecursoRepo) DB() *gorm.DB { return nil }

var _ repository.RecursoRepository = (*stubRecursoRepo)(nil)

type stubAlquilerRepo struct {
	stubBorrador
	alquileres     map[uuid.UUID]*model.Alquiler
	estados        map[model.CodigoEstadoAlquiler]*model.EstadoAlquiler
	penalizaciones map[uuid.UUID]*model.Penalizacion
	reservas       map[uuid.UUID]*model.ReservaRecurso
	seq            int64
	alBloquear     func(id uuid.UUID)
}

func newStubAlquilerRepo() *stubAlquilerRepo {
	r := &stubAlquilerRepo{
		stubBorrador:   newStubBorrador(),
		alquileres:     map[uuid.UUID]*model.Alquiler{},
		estados:        map[model.CodigoEstadoAlquiler]*model.EstadoAlquiler{},
		penalizaciones: map[uuid.UUID]*model.Penalizacion{},
		reservas:       map[uuid.UUID]*model.ReservaRecurso{},
	}
	for _, e := range model.EstadosAlquiler {
		e := e
		e.ID = uuid.New()
		r.estados[e.Codigo] = &e
	}
	return r
}

func (r *stubAlquilerRepo) codigoDe(estadoID uuid.UUID) model.CodigoEstadoAlquiler {
	for _, e := range r.estados {
		if e.ID == estadoID {
			return e.Codigo
		}
	}
	return ""
}

func (r *stubAlquilerRepo) SiguienteCodigo(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubAlquilerRepo) CrearTx(_ context.Context, _ *gorm.DB, a *model.Alquiler) error {
	nuevoID(&a.ID)
	for i := range a.Detalles {
		nuevoID(&a.Detalles[i].ID)
		a.Detalles[i].AlquilerID = a.ID
	}
	r.alquileres[a.ID] = a
	return nil
}

func (r *stubAlquilerRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Alquiler, error) {
	a, ok := r.alquileres[id]
	if !ok || r.eliminados[id] {
		return nil, repository.ErrNoEncontrado
	}
	for _, e := range r.estados {
		if e.ID == a.EstadoID {
			a.Estado = e
		}
	}
	return a, nil
}

func (r *stubAlquilerRepo) BloquearTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Alquiler, error) {
	if r.alBloquear != nil {
		r.alBloquear(id)
	}
	a, err := r.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *a
	return &cp, nil
}

func (r *stubAlquilerRepo) ActualizarTx(_ context.Context, _ *gorm.DB, a *model.Alquiler) error {
	r.alquileres[a.ID] = a
	return nil
}

func (r *stubAlquilerRepo) MarcarDevueltosTx(_ context.Context, _ *gorm.DB, id uuid.UUID, fecha time.Time, estado string) error {
	a, ok := r.alquileres[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	for i := range a.Detalles {
		if !a.Detalles[i].Devuelto {
			a.Detalles[i].Devuelto = true
			a.Detalles[i].FechaDevolucion = &fecha
			a.Detalles[i].EstadoDevolucion = estado
		}
	}
	return nil
}

func (r *stubAlquilerRepo) Listar(_ context.Context, _ dto.AlquilerFilter) ([]model.Alquiler, int64, error) {
	var out []model.Alquiler
	for _, a := range r.alquileres {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubAlquilerRepo) ListarRetrasados(_ context.Context, hoy time.Time) ([]model.Alquiler, error) {
	var out []model.Alquiler
	for _, a := range r.alquileres {
		if a.FechaDevolucion == nil && a.FechaFinPrevista.Before(model.Dia(hoy)) && r.codigoDe(a.EstadoID).Abierto() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAlquilerRepo) ContarAbiertosDeSocio(_ context.Context, socioID uuid.UUID) (int64, error) {
	var n int64
	for _, a := range r.alquileres {
		if a.SocioID == socioID && r.codigoDe(a.EstadoID).Abierto() && !r.eliminados[a.ID] {
			n++
		}
	}
	return n, nil
}

func (r *stubAlquilerRepo) ObtenerEstado(_ context.Context, codigo model.CodigoEstadoAlquiler) (*model.EstadoAlquiler, error) {
	e, ok := r.estados[codigo]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return e, nil
}

func (r *stubAlquilerRepo) CrearPenalizacionTx(_ context.Context, _ *gorm.DB, p *model.Penalizacion) error {
	nuevoID(&p.ID)
	cp := *p
	r.penalizaciones[p.ID] = &cp
	return nil
}

func (r *stubAlquilerRepo) ObtenerPenalizacion(_ context.Context, id uuid.UUID) (*model.Penalizacion, error) {
	p, ok := r.penalizaciones[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *p
	return &cp, nil
}

func (r *stubAlquilerRepo) ActualizarPenalizacion(_ context.Context, p *model.Penalizacion) error {
	cp := *p
	r.penalizaciones[p.ID] = &cp
	return nil
}

func (r *stubAlquilerRepo) CrearReserva(_ context.Context, rv *model.ReservaRecurso) error {
	nuevoID(&rv.ID)
	r.reservas[rv.ID] = rv
	return nil
}

func (r *stubAlquilerRepo) ObtenerReserva(_ context.Context, id uuid.UUID) (*model.ReservaRecurso, error) {
	rv, ok := r.reservas[id]
	if !ok || r.eliminados[id] {
		return nil, repository.ErrNoEncontrado
	}
	return rv, nil
}

func (r *stubAlquilerRepo) ActualizarReservaTx(_ context.Context, _ *gorm.DB, rv *model.ReservaRecurso) error {
	r.reservas[rv.ID] = rv
	return nil
}

func (r *stubAlquilerRepo) ListarReservasVencidas(_ context.Context, hoy time.Time) ([]model.ReservaRecurso, error) {
	var out []model.ReservaRecurso
	for _, rv := range r.reservas {
		if !rv.Confirmada && rv.AlquilerID == nil && rv.FechaInicio.Before(model.Dia(hoy)) && !r.eliminados[rv.ID] {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *stubAlquilerRepo) DB() *gorm.DB { return nil }

var _ repository.AlquilerRepository = (*stubAlquilerRepo)(nil)

// ── Catálogo ──────────────────────────────────────────────────────────────────

type stubCatalogoRepo struct {
	stubBorrador
	categorias map[uuid.UUID]*model.Categoria
	tipos      map[uuid.UUID]*model.TipoRecurso
	estados    map[uuid.UUID]*model.EstadoRecurso
	etiquetas  map[uuid.UUID]*model.EtiquetaRecurso
	// enUso marks rows a resource still points to; a hard delete of them
	// fails the way the RESTRICT foreign keys do.
	enUso map[uuid.UUID]bool
}

func newStubCatalogoRepo() *stubCatalogoRepo {
	return &stubCatalogoRepo{
		stubBorrador: newStubBorrador(),
		categorias:   map[uuid.UUID]*model.Categoria{},
		tipos:        map[uuid.UUID]*model.TipoRecurso{},
		estados:      map[uuid.UUID]*model.EstadoRecurso{},
		etiquetas:    map[uuid.UUID]*model.EtiquetaRecurso{},
		enUso:        map[uuid.UUID]bool{},
	}
}

func (r *stubCatalogoRepo) seedEstado(nombre string, disponible bool) *model.EstadoRecurso {
	e := &model.EstadoRecurso{Base: model.Base{ID: uuid.New(), Activo: true}, Nombre: nombre, Disponible: disponible}
	r.estados[e.ID] = e
	return e
}

func (r *stubCatalogoRepo) seedEtiqueta(nombre string) *model.EtiquetaRecurso {
	e := &model.EtiquetaRecurso{Base: model.Base{ID: uuid.New(), Activo: true}, Nombre: nombre}
	r.etiquetas[e.ID] = e
	return e
}

func (r *stubCatalogoRepo) EliminarDefinitivo(ctx context.Context, modelo any, id uuid.UUID) error {
	if r.enUso[id] {
		return repository.ErrReferencia
	}
	return r.stubBorrador.EliminarDefinitivo(ctx, modelo, id)
}

func (r *stubCatalogoRepo) CrearCategoria(_ context.Context, c *model.Categoria) error {
	for _, x := range r.categorias {
		if x.Slug == c.Slug {
			return repository.ErrDuplicado
		}
	}
	nuevoID(&c.ID)
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCatalogoRepo) ListarCategorias(_ context.Context) ([]model.Categoria, error) {
	var out []model.Categoria
	for _, c := range r.categorias {
		if !r.eliminados[c.ID] {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubCatalogoRepo) ObtenerCategoria(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	c, ok := r.categorias[id]
	if !ok || r.eliminados[id] {
		return nil, repository.ErrNoEncontrado
	}
	return c, nil
}

// ObtenerCategoriaPorSlug also sees logically deleted rows.
func (r *stubCatalogoRepo) ObtenerCategoriaPorSlug(_ context.Context, slug string) (*model.Categoria, error) {
	for _, c := range r.categorias {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubCatalogoRepo) ActualizarCategoria(_ context.Context, c *model.Categoria) error {
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCatalogoRepo) CrearTipo(_ context.Context, t *model.TipoRecurso) error {
	for _, x := range r.tipos {
		if x.Nombre == t.Nombre {
			return repository.ErrDuplicado
		}
	}
	nuevoID(&t.ID)
	r.tipos[t.ID] = t
	return nil
}

func (r *stubCatalogoRepo) ListarTipos(_ context.Context) ([]model.TipoRecurso, error) {
	var out []model.TipoRecurso
	for _, t := range r.tipos {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubCatalogoRepo) CrearEstado(_ context.Context, e *model.EstadoRecurso) error {
	nuevoID(&e.ID)
	r.estados[e.ID] = e
	return nil
}

func (r *stubCatalogoRepo) ListarEstados(_ context.Context) ([]model.EstadoRecurso, error) {
	var out []model.EstadoRecurso
	for _, e := range r.estados {
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubCatalogoRepo) ObtenerEstado(_ context.Context, id uuid.UUID) (*model.EstadoRecurso, error) {
	e, ok := r.estados[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	return e, nil
}

func (r *stubCatalogoRepo) CrearEtiqueta(_ context.Context, e *model.EtiquetaRecurso) error {
	nuevoID(&e.ID)
	r.etiquetas[e.ID] = e
	return nil
}

func (r *stubCatalogoRepo) ListarEtiquetas(_ context.Context) ([]model.EtiquetaRecurso, error) {
	var out []model.EtiquetaRecurso
	for _, e := range r.etiquetas {
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubCatalogoRepo) ObtenerEtiquetas(_ context.Context, ids []uuid.UUID) ([]model.EtiquetaRecurso, error) {
	var out []model.EtiquetaRecurso
	visto := map[uuid.UUID]bool{}
	for _, id := range ids {
		e, ok := r.etiquetas[id]
		if !ok || visto[id] || r.eliminados[id] {
			continue
		}
		visto[id] = true
		out = append(out, *e)
	}
	return out, nil
}

var _ repository.CatalogoRepository = (*stubCatalogoRepo)(nil)
