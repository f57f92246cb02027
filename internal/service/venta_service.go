package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"
	"almacenpos/internal/repository"
	"almacenpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	movRepo      repository.MovimientoRepository
	cajaRepo     repository.CajaRepository
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	movRepo repository.MovimientoRepository,
	cajaRepo repository.CajaRepository,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		movRepo:      movRepo,
		cajaRepo:     cajaRepo,
		dispatcher:   dispatcher,
	}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// Full ACID transaction:
//  1. Validate an open sesión de caja exists for today
//  2. Resolve products and calculate line subtotals (pre-flight, outside TX)
//  3. BEGIN TX: nextval numero_venta, create venta+items; per line: lock
//     product, decrement stock with floor check, write salida movement
//  4. COMMIT — any insufficient line aborts the whole sale
//  5. (async) enqueue caja rollup + low-stock alerts

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	hoy := time.Now().Format("2006-01-02")
	sesion, err := s.cajaRepo.FindSesionAbiertaPorFecha(ctx, hoy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSinSesionAbierta
		}
		return nil, err
	}

	var clienteID *uuid.UUID
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		if _, err := s.clienteRepo.FindByID(ctx, cid); err != nil {
			return nil, fmt.Errorf("cliente %s no encontrado", cid)
		}
		clienteID = &cid
	}

	// Resolve products and calculate totals (pre-flight, outside TX).
	// Price is captured here; the stock check happens inside the TX where it
	// is authoritative.
	type resolvedItem struct {
		productoID uuid.UUID
		nombre     string
		precio     decimal.Decimal
		cantidad   int
		subtotal   decimal.Decimal
	}

	var resolved []resolvedItem
	total := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.ProductoID)
		}
		if !p.Activo {
			return nil, fmt.Errorf("producto %s está inactivo y no puede venderse", p.Nombre)
		}
		subtotal := p.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))).Round(2)
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedItem{
			productoID: pid,
			nombre:     p.Nombre,
			precio:     p.Precio,
			cantidad:   item.Cantidad,
			subtotal:   subtotal,
		})
	}

	var venta model.Venta
	var bajoStock []uuid.UUID

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numeroVenta, err := s.repo.NextNumeroVenta(ctx, tx)
		if err != nil {
			return err
		}

		venta = model.Venta{
			NumeroVenta:  numeroVenta,
			ClienteID:    clienteID,
			SesionCajaID: sesion.ID,
			UsuarioID:    usuarioID,
			MetodoPago:   model.MetodoPago(req.MetodoPago),
			Total:        total,
		}
		for _, r := range resolved {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     r.productoID,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.precio,
				Subtotal:       r.subtotal,
			})
		}
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		documento := fmt.Sprintf("Venta #%d", numeroVenta)
		for _, r := range resolved {
			// SELECT ... FOR UPDATE: stock_anterior must be the value this
			// decrement is applied against, not a stale pre-flight read.
			p, err := s.productoRepo.FindByIDTx(tx, r.productoID)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrProductoNoEncontrado, r.productoID)
			}

			applied, err := s.productoRepo.DescontarStockTx(tx, r.productoID, r.cantidad)
			if err != nil {
				return err
			}
			if !applied {
				return fmt.Errorf("%w: %s (disponible %d, solicitado %d)",
					ErrStockInsuficiente, r.nombre, p.Stock, r.cantidad)
			}

			nuevo := p.Stock - r.cantidad
			mov := model.Movimiento{
				ProductoID:     r.productoID,
				Tipo:           model.MovimientoSalida,
				Concepto:       model.ConceptoVenta,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.precio,
				Total:          r.subtotal,
				StockAnterior:  p.Stock,
				StockNuevo:     nuevo,
				Documento:      documento,
				ReferenciaID:   &venta.ID,
				UsuarioID:      usuarioID,
			}
			if err := s.movRepo.CreateTx(tx, &mov); err != nil {
				return err
			}

			if nuevo <= p.StockMinimo {
				bajoStock = append(bajoStock, r.productoID)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Post-commit, best effort: the sale is already durable.
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueRollupCaja(ctx, sesion.ID); err != nil {
			log.Warn().Err(err).Str("sesion_id", sesion.ID.String()).Msg("venta: failed to enqueue rollup")
		}
		for _, pid := range bajoStock {
			if err := s.dispatcher.EnqueueAlertaStock(ctx, pid); err != nil {
				log.Warn().Err(err).Str("producto_id", pid.String()).Msg("venta: failed to enqueue stock alert")
			}
		}
	}

	// Re-read with preloads for the response; fall back to the in-memory
	// model when running without a real DB.
	if full, err := s.repo.FindByID(ctx, venta.ID); err == nil {
		return ventaToResponse(full), nil
	}
	resp := ventaToResponse(&venta)
	for i, r := range resolved {
		resp.Items[i].Producto = r.nombre
	}
	return resp, nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVentaNoEncontrada
		}
		return nil, err
	}
	return ventaToResponse(v), nil
}

func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.VentaListResponse{
		Data:  make([]dto.VentaResponse, 0, len(ventas)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range ventas {
		resp.Data = append(resp.Data, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:           v.ID.String(),
		NumeroVenta:  v.NumeroVenta,
		SesionCajaID: v.SesionCajaID.String(),
		UsuarioID:    v.UsuarioID.String(),
		MetodoPago:   string(v.MetodoPago),
		Total:        v.Total,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
	if v.ClienteID != nil {
		cid := v.ClienteID.String()
		resp.ClienteID = &cid
	}
	if v.Cliente != nil {
		resp.Cliente = v.Cliente.Nombre
	}
	for _, item := range v.Items {
		ir := dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		}
		if item.Producto != nil {
			ir.Producto = item.Producto.Nombre
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
