package service_test

import (
	"context"
	"time"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"
	"almacenpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductoRepo is an in-memory ProductoRepository. Tx methods accept the
// nil *gorm.DB that runTx passes when no real database is wired.
type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	if _, ok := r.productos[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = true
	return nil
}

func (r *stubProductoRepo) ListBajoStock(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.Stock <= p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

// FindByIDTx returns a snapshot, mirroring the stable read a FOR UPDATE lock
// gives: later mutations through the repo must not change the caller's copy.
func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) (bool, error) {
	p, ok := r.productos[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if p.Stock < cantidad {
		return false, nil
	}
	p.Stock -= cantidad
	return true, nil
}

func (r *stubProductoRepo) IncrementarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += cantidad
	return nil
}

func (r *stubProductoRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, stock int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = stock
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func seedProducto(r *stubProductoRepo, nombre, codigo string, stock, minimo int) *model.Producto {
	p := &model.Producto{
		ID:          uuid.New(),
		Codigo:      codigo,
		Nombre:      nombre,
		Categoria:   "abarrotes",
		Precio:      decimal.NewFromFloat(15),
		PrecioCosto: decimal.NewFromFloat(10),
		Stock:       stock,
		StockMinimo: minimo,
		Activo:      true,
	}
	r.productos[p.ID] = p
	return p
}

// stubMovimientoRepo captures ledger entries for assertion.
type stubMovimientoRepo struct {
	movimientos []model.Movimiento
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.Movimiento) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error) {
	var out []model.Movimiento
	for _, m := range r.movimientos {
		if filter.ProductoID != "" && m.ProductoID.String() != filter.ProductoID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovimientoRepo) SumDelta(_ context.Context, productoID uuid.UUID) (int, error) {
	sum := 0
	for i := range r.movimientos {
		if r.movimientos[i].ProductoID == productoID {
			sum += r.movimientos[i].Delta()
		}
	}
	return sum, nil
}

var _ repository.MovimientoRepository = (*stubMovimientoRepo)(nil)

// stubVentaRepo is an in-memory VentaRepository.
type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
	seq    int
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	cp := *v
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) NextNumeroVenta(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) SumPorMetodo(_ context.Context, sesionID uuid.UUID) (map[model.MetodoPago]decimal.Decimal, error) {
	sums := make(map[model.MetodoPago]decimal.Decimal)
	for _, v := range r.ventas {
		if v.SesionCajaID == sesionID {
			sums[v.MetodoPago] = sums[v.MetodoPago].Add(v.Total)
		}
	}
	return sums, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// stubCajaRepo holds sessions and manual movements in memory. afterFindAbierta
// lets a test mutate state between the open-session read and the conditional
// close, the window a concurrent writer would hit.
type stubCajaRepo struct {
	sesiones         map[uuid.UUID]*model.SesionCaja
	manuales         []model.MovimientoManual
	afterFindAbierta func()
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *stubCajaRepo) CreateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sesiones[s.ID] = &cp
	return nil
}

func (r *stubCajaRepo) FindSesionAbiertaPorFecha(_ context.Context, fecha string) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.Fecha == fecha && s.Estado == model.SesionAbierta {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCajaRepo) FindSesionAbiertaPorFechaTx(_ *gorm.DB, fecha string) (*model.SesionCaja, error) {
	s, err := r.FindSesionAbiertaPorFecha(context.Background(), fecha)
	if r.afterFindAbierta != nil {
		r.afterFindAbierta()
	}
	return s, err
}

func (r *stubCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubCajaRepo) FindSesionByIDTx(_ *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	return r.FindSesionByID(context.Background(), id)
}

func (r *stubCajaRepo) UpdateTotalesTx(_ *gorm.DB, id uuid.UUID, t *dto.TotalesCaja, diferencia *decimal.Decimal) error {
	s, ok := r.sesiones[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	aplicarTotales(s, t)
	if diferencia != nil {
		d := *diferencia
		s.Diferencia = &d
	}
	return nil
}

func (r *stubCajaRepo) CerrarSesionTx(_ *gorm.DB, id uuid.UUID, montoFinal, diferencia decimal.Decimal, t *dto.TotalesCaja, at time.Time) (bool, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if s.Estado != model.SesionAbierta {
		return false, nil
	}
	aplicarTotales(s, t)
	s.Estado = model.SesionCerrada
	s.MontoFinal = &montoFinal
	s.Diferencia = &diferencia
	s.CerradaAt = &at
	return true, nil
}

func aplicarTotales(s *model.SesionCaja, t *dto.TotalesCaja) {
	s.TotalVentas = t.TotalVentas
	s.TotalEfectivo = t.TotalEfectivo
	s.TotalTarjeta = t.TotalTarjeta
	s.TotalTransferencia = t.TotalTransferencia
	s.TotalGastos = t.TotalGastos
	s.TotalIngresosExtra = t.TotalIngresosExtra
	s.TotalCalculado = t.TotalCalculado
}

func (r *stubCajaRepo) ListSesiones(_ context.Context, _, _ int) ([]model.SesionCaja, int64, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubCajaRepo) CreateMovimientoManual(_ context.Context, m *model.MovimientoManual) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.manuales = append(r.manuales, *m)
	return nil
}

func (r *stubCajaRepo) ListMovimientosManuales(_ context.Context, sesionID uuid.UUID) ([]model.MovimientoManual, error) {
	var out []model.MovimientoManual
	for _, m := range r.manuales {
		if m.SesionCajaID == sesionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) SumMovimientosManuales(_ context.Context, sesionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	ingresos, gastos := decimal.Zero, decimal.Zero
	for _, m := range r.manuales {
		if m.SesionCajaID != sesionID {
			continue
		}
		if m.Tipo == model.ManualIngreso {
			ingresos = ingresos.Add(m.Monto)
		} else {
			gastos = gastos.Add(m.Monto)
		}
	}
	return ingresos, gastos, nil
}

func (r *stubCajaRepo) DB() *gorm.DB { return nil }

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

// stubOrdenRepo is an in-memory OrdenRepository with a CAS MarcarRecibidaTx.
type stubOrdenRepo struct {
	ordenes map[uuid.UUID]*model.OrdenCompra
	seq     int
}

func newStubOrdenRepo() *stubOrdenRepo {
	return &stubOrdenRepo{ordenes: make(map[uuid.UUID]*model.OrdenCompra)}
}

func (r *stubOrdenRepo) Create(_ context.Context, _ *gorm.DB, o *model.OrdenCompra) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	r.ordenes[o.ID] = &cp
	return nil
}

func (r *stubOrdenRepo) FindByID(_ context.Context, id uuid.UUID) (*model.OrdenCompra, error) {
	o, ok := r.ordenes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrdenRepo) NextNumeroOrden(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubOrdenRepo) List(_ context.Context, _ dto.OrdenFilter) ([]model.OrdenCompra, int64, error) {
	var out []model.OrdenCompra
	for _, o := range r.ordenes {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrdenRepo) MarcarRecibidaTx(_ *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	o, ok := r.ordenes[id]
	if !ok || o.Estado != model.OrdenPendiente {
		return false, nil
	}
	o.Estado = model.OrdenRecibida
	o.RecibidaAt = &at
	return true, nil
}

func (r *stubOrdenRepo) DB() *gorm.DB { return nil }

var _ repository.OrdenRepository = (*stubOrdenRepo)(nil)

// stubAjusteRepo is an in-memory AjusteRepository with a CAS ResolverTx.
type stubAjusteRepo struct {
	ajustes map[uuid.UUID]*model.Ajuste
}

func newStubAjusteRepo() *stubAjusteRepo {
	return &stubAjusteRepo{ajustes: make(map[uuid.UUID]*model.Ajuste)}
}

func (r *stubAjusteRepo) Create(_ context.Context, a *model.Ajuste) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.ajustes[a.ID] = &cp
	return nil
}

func (r *stubAjusteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Ajuste, error) {
	a, ok := r.ajustes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubAjusteRepo) List(_ context.Context, _ dto.AjusteFilter) ([]model.Ajuste, int64, error) {
	var out []model.Ajuste
	for _, a := range r.ajustes {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubAjusteRepo) ResolverTx(_ *gorm.DB, id uuid.UUID, estado model.EstadoAjuste, resueltoPor uuid.UUID, at time.Time) (bool, error) {
	a, ok := r.ajustes[id]
	if !ok || a.Estado != model.AjustePendiente {
		return false, nil
	}
	a.Estado = estado
	a.ResueltoPor = &resueltoPor
	a.ResueltoAt = &at
	return true, nil
}

func (r *stubAjusteRepo) DB() *gorm.DB { return nil }

var _ repository.AjusteRepository = (*stubAjusteRepo)(nil)

// stubClienteRepo / stubProveedorRepo back the FK validations.
type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) List(_ context.Context, _ string, _, _ int) ([]model.Cliente, int64, error) {
	return nil, 0, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.clientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

type stubProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProveedorRepo) List(_ context.Context, _, _ int) ([]model.Proveedor, int64, error) {
	return nil, 0, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.proveedores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

var _ repository.ProveedorRepository = (*stubProveedorRepo)(nil)
