package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"
	"almacenpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrdenService interface {
	CrearOrden(ctx context.Context, usuarioID uuid.UUID, req dto.CrearOrdenRequest) (*dto.OrdenResponse, error)
	RecibirOrden(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID) (*dto.OrdenResponse, error)
	ObtenerOrden(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error)
	ListOrdenes(ctx context.Context, filter dto.OrdenFilter) (*dto.OrdenListResponse, error)
}

type ordenService struct {
	repo          repository.OrdenRepository
	productoRepo  repository.ProductoRepository
	proveedorRepo repository.ProveedorRepository
	movRepo       repository.MovimientoRepository
}

func NewOrdenService(
	repo repository.OrdenRepository,
	productoRepo repository.ProductoRepository,
	proveedorRepo repository.ProveedorRepository,
	movRepo repository.MovimientoRepository,
) OrdenService {
	return &ordenService{
		repo:          repo,
		productoRepo:  productoRepo,
		proveedorRepo: proveedorRepo,
		movRepo:       movRepo,
	}
}

// CrearOrden registers a purchase order in estado pendiente. Creating it has
// no stock effect; only RecibirOrden touches the ledger.
func (s *ordenService) CrearOrden(ctx context.Context, usuarioID uuid.UUID, req dto.CrearOrdenRequest) (*dto.OrdenResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, fmt.Errorf("proveedor_id inválido: %w", err)
	}
	if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
		return nil, fmt.Errorf("proveedor %s no encontrado", proveedorID)
	}

	type resolvedItem struct {
		productoID uuid.UUID
		cantidad   int
		costo      decimal.Decimal
		subtotal   decimal.Decimal
	}
	var resolved []resolvedItem
	total := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		if _, err := s.productoRepo.FindByID(ctx, pid); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.ProductoID)
		}
		subtotal := item.CostoUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad))).Round(2)
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedItem{
			productoID: pid,
			cantidad:   item.Cantidad,
			costo:      item.CostoUnitario,
			subtotal:   subtotal,
		})
	}

	var orden model.OrdenCompra
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumeroOrden(ctx, tx)
		if err != nil {
			return err
		}
		orden = model.OrdenCompra{
			NumeroOrden: numero,
			ProveedorID: proveedorID,
			Estado:      model.OrdenPendiente,
			Total:       total,
			UsuarioID:   usuarioID,
		}
		for _, r := range resolved {
			orden.Items = append(orden.Items, model.OrdenCompraItem{
				ProductoID:    r.productoID,
				Cantidad:      r.cantidad,
				CostoUnitario: r.costo,
				Subtotal:      r.subtotal,
			})
		}
		return s.repo.Create(ctx, tx, &orden)
	})
	if txErr != nil {
		return nil, txErr
	}

	if full, err := s.repo.FindByID(ctx, orden.ID); err == nil {
		return ordenToResponse(full), nil
	}
	return ordenToResponse(&orden), nil
}

// RecibirOrden flips the order to recibido exactly once and applies the stock
// entries. The compare-and-set on estado makes a repeated call (double click,
// retried request) a no-op that reports ErrYaResuelto instead of doubling
// the stock.
func (s *ordenService) RecibirOrden(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID) (*dto.OrdenResponse, error) {
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrdenNoEncontrada
		}
		return nil, err
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		applied, err := s.repo.MarcarRecibidaTx(tx, id, now)
		if err != nil {
			return err
		}
		if !applied {
			return ErrYaResuelto
		}

		documento := fmt.Sprintf("Orden #%d", orden.NumeroOrden)
		for _, item := range orden.Items {
			p, err := s.productoRepo.FindByIDTx(tx, item.ProductoID)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.ProductoID)
			}
			if err := s.productoRepo.IncrementarStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}
			mov := model.Movimiento{
				ProductoID:     item.ProductoID,
				Tipo:           model.MovimientoEntrada,
				Concepto:       model.ConceptoCompra,
				Cantidad:       item.Cantidad,
				PrecioUnitario: item.CostoUnitario,
				Total:          item.Subtotal,
				StockAnterior:  p.Stock,
				StockNuevo:     p.Stock + item.Cantidad,
				Documento:      documento,
				ReferenciaID:   &orden.ID,
				UsuarioID:      usuarioID,
			}
			if err := s.movRepo.CreateTx(tx, &mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if full, err := s.repo.FindByID(ctx, id); err == nil {
		return ordenToResponse(full), nil
	}
	orden.Estado = model.OrdenRecibida
	orden.RecibidaAt = &now
	return ordenToResponse(orden), nil
}

func (s *ordenService) ObtenerOrden(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrdenNoEncontrada
		}
		return nil, err
	}
	return ordenToResponse(o), nil
}

func (s *ordenService) ListOrdenes(ctx context.Context, filter dto.OrdenFilter) (*dto.OrdenListResponse, error) {
	ordenes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrdenListResponse{
		Data:  make([]dto.OrdenResponse, 0, len(ordenes)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range ordenes {
		resp.Data = append(resp.Data, *ordenToResponse(&ordenes[i]))
	}
	return resp, nil
}

func ordenToResponse(o *model.OrdenCompra) *dto.OrdenResponse {
	resp := &dto.OrdenResponse{
		ID:          o.ID.String(),
		NumeroOrden: o.NumeroOrden,
		ProveedorID: o.ProveedorID.String(),
		Estado:      string(o.Estado),
		Total:       o.Total,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
	if o.Proveedor != nil {
		resp.Proveedor = o.Proveedor.RazonSocial
	}
	if o.RecibidaAt != nil {
		at := o.RecibidaAt.Format(time.RFC3339)
		resp.RecibidaAt = &at
	}
	for _, item := range o.Items {
		ir := dto.ItemOrdenResponse{
			ProductoID:    item.ProductoID.String(),
			Cantidad:      item.Cantidad,
			CostoUnitario: item.CostoUnitario,
			Subtotal:      item.Subtotal,
		}
		if item.Producto != nil {
			ir.Producto = item.Producto.Nombre
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
