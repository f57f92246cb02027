package service

import (
	"context"
	"errors"
	"time"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"
	"almacenpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type InventarioService interface {
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	RecomputarDesdeLedger(ctx context.Context, productoID uuid.UUID) (*dto.RecalculoResponse, error)
}

type inventarioService struct {
	movRepo      repository.MovimientoRepository
	productoRepo repository.ProductoRepository
}

func NewInventarioService(movRepo repository.MovimientoRepository, productoRepo repository.ProductoRepository) InventarioService {
	return &inventarioService{movRepo: movRepo, productoRepo: productoRepo}
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	movs, total, err := s.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovimientoListResponse{
		Data:  make([]dto.MovimientoResponse, 0, len(movs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range movs {
		resp.Data = append(resp.Data, movimientoToResponse(&movs[i]))
	}
	return resp, nil
}

func (s *inventarioService) Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListBajoStock(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for i := range productos {
		p := &productos[i]
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
			Estado:      string(p.Estado()),
		})
	}
	return alertas, nil
}

// RecomputarDesdeLedger repairs a product whose stored stock drifted from the
// movement stream: stock must equal the signed sum of its movements over a
// zero baseline. The product row is locked while the sum runs so a concurrent
// sale cannot slip a movement between the read and the write.
func (s *inventarioService) RecomputarDesdeLedger(ctx context.Context, productoID uuid.UUID) (*dto.RecalculoResponse, error) {
	var resp dto.RecalculoResponse

	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		p, err := s.productoRepo.FindByIDTx(tx, productoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductoNoEncontrado
			}
			return err
		}

		ledgerStock, err := s.movRepo.SumDelta(ctx, productoID)
		if err != nil {
			return err
		}

		resp = dto.RecalculoResponse{
			ProductoID:      productoID.String(),
			StockAlmacenado: p.Stock,
			StockLedger:     ledgerStock,
		}
		if p.Stock == ledgerStock {
			return nil
		}

		resp.Corregido = true
		log.Warn().
			Str("producto_id", productoID.String()).
			Int("stock_almacenado", p.Stock).
			Int("stock_ledger", ledgerStock).
			Msg("inventario: stock drift corrected from ledger")
		return s.productoRepo.SetStockTx(tx, productoID, ledgerStock)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &resp, nil
}

func movimientoToResponse(m *model.Movimiento) dto.MovimientoResponse {
	resp := dto.MovimientoResponse{
		ID:             m.ID.String(),
		ProductoID:     m.ProductoID.String(),
		Tipo:           string(m.Tipo),
		Concepto:       string(m.Concepto),
		Cantidad:       m.Cantidad,
		PrecioUnitario: m.PrecioUnitario,
		Total:          m.Total,
		StockAnterior:  m.StockAnterior,
		StockNuevo:     m.StockNuevo,
		Documento:      m.Documento,
		UsuarioID:      m.UsuarioID.String(),
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
	if m.Producto != nil {
		resp.Producto = m.Producto.Nombre
	}
	return resp
}
