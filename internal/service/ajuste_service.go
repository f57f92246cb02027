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

type AjusteService interface {
	CrearAjuste(ctx context.Context, usuarioID uuid.UUID, req dto.CrearAjusteRequest) (*dto.AjusteResponse, error)
	AprobarAjuste(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID) (*dto.AjusteResponse, error)
	RechazarAjuste(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID) (*dto.AjusteResponse, error)
	ObtenerAjuste(ctx context.Context, id uuid.UUID) (*dto.AjusteResponse, error)
	ListAjustes(ctx context.Context, filter dto.AjusteFilter) (*dto.AjusteListResponse, error)
}

type ajusteService struct {
	repo         repository.AjusteRepository
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoRepository
}

func NewAjusteService(
	repo repository.AjusteRepository,
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoRepository,
) AjusteService {
	return &ajusteService{repo: repo, productoRepo: productoRepo, movRepo: movRepo}
}

// CrearAjuste proposes a stock correction from a physical count. The system
// stock, difference and valuation (at precio de costo) are frozen here; a
// sale landing between proposal and approval does NOT refresh them. The count
// is ground truth: approval sets stock to StockFisico regardless.
func (s *ajusteService) CrearAjuste(ctx context.Context, usuarioID uuid.UUID, req dto.CrearAjusteRequest) (*dto.AjusteResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %w", err)
	}
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, productoID)
	}

	diferencia := req.StockFisico - p.Stock
	valor := p.PrecioCosto.Mul(decimal.NewFromInt(int64(abs(diferencia)))).Round(2)

	ajuste := model.Ajuste{
		ProductoID:     productoID,
		StockSistema:   p.Stock,
		StockFisico:    req.StockFisico,
		Diferencia:     diferencia,
		PrecioUnitario: p.PrecioCosto,
		Valor:          valor,
		Motivo:         req.Motivo,
		Estado:         model.AjustePendiente,
		UsuarioID:      usuarioID,
	}
	if err := s.repo.Create(ctx, &ajuste); err != nil {
		return nil, err
	}

	resp := ajusteToResponse(&ajuste)
	resp.Producto = p.Nombre
	return resp, nil
}

// AprobarAjuste resolves a pending adjustment exactly once. The compare-and-set
// on estado guarantees terminality: a second approve (or an approve racing a
// reject) reports ErrYaResuelto and leaves stock untouched.
func (s *ajusteService) AprobarAjuste(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID) (*dto.AjusteResponse, error) {
	ajuste, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAjusteNoEncontrado
		}
		return nil, err
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		applied, err := s.repo.ResolverTx(tx, id, model.AjusteAprobado, usuarioID, now)
		if err != nil {
			return err
		}
		if !applied {
			return ErrYaResuelto
		}

		p, err := s.productoRepo.FindByIDTx(tx, ajuste.ProductoID)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrProductoNoEncontrado, ajuste.ProductoID)
		}
		if err := s.productoRepo.SetStockTx(tx, ajuste.ProductoID, ajuste.StockFisico); err != nil {
			return err
		}

		// The ledger entry records the REAL jump (current stock → físico),
		// which can differ from the frozen Diferencia when stock moved between
		// proposal and approval. Valuation stays as captured at proposal time.
		delta := ajuste.StockFisico - p.Stock
		if delta == 0 {
			return nil
		}
		tipo := model.MovimientoEntrada
		if delta < 0 {
			tipo = model.MovimientoSalida
		}
		mov := model.Movimiento{
			ProductoID:     ajuste.ProductoID,
			Tipo:           tipo,
			Concepto:       model.ConceptoAjuste,
			Cantidad:       abs(delta),
			PrecioUnitario: ajuste.PrecioUnitario,
			Total:          ajuste.PrecioUnitario.Mul(decimal.NewFromInt(int64(abs(delta)))).Round(2),
			StockAnterior:  p.Stock,
			StockNuevo:     ajuste.StockFisico,
			Documento:      "Ajuste: " + ajuste.Motivo,
			ReferenciaID:   &ajuste.ID,
			UsuarioID:      usuarioID,
		}
		return s.movRepo.CreateTx(tx, &mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	if full, err := s.repo.FindByID(ctx, id); err == nil {
		return ajusteToResponse(full), nil
	}
	ajuste.Estado = model.AjusteAprobado
	ajuste.ResueltoPor = &usuarioID
	ajuste.ResueltoAt = &now
	return ajusteToResponse(ajuste), nil
}

// RechazarAjuste closes the proposal without touching stock. Same terminality
// guarantee as AprobarAjuste.
func (s *ajusteService) RechazarAjuste(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID) (*dto.AjusteResponse, error) {
	ajuste, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAjusteNoEncontrado
		}
		return nil, err
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		applied, err := s.repo.ResolverTx(tx, id, model.AjusteRechazado, usuarioID, now)
		if err != nil {
			return err
		}
		if !applied {
			return ErrYaResuelto
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	ajuste.Estado = model.AjusteRechazado
	ajuste.ResueltoPor = &usuarioID
	ajuste.ResueltoAt = &now
	return ajusteToResponse(ajuste), nil
}

func (s *ajusteService) ObtenerAjuste(ctx context.Context, id uuid.UUID) (*dto.AjusteResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAjusteNoEncontrado
		}
		return nil, err
	}
	return ajusteToResponse(a), nil
}

func (s *ajusteService) ListAjustes(ctx context.Context, filter dto.AjusteFilter) (*dto.AjusteListResponse, error) {
	ajustes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.AjusteListResponse{
		Data:  make([]dto.AjusteResponse, 0, len(ajustes)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range ajustes {
		resp.Data = append(resp.Data, *ajusteToResponse(&ajustes[i]))
	}
	return resp, nil
}

func ajusteToResponse(a *model.Ajuste) *dto.AjusteResponse {
	resp := &dto.AjusteResponse{
		ID:             a.ID.String(),
		ProductoID:     a.ProductoID.String(),
		StockSistema:   a.StockSistema,
		StockFisico:    a.StockFisico,
		Diferencia:     a.Diferencia,
		PrecioUnitario: a.PrecioUnitario,
		Valor:          a.Valor,
		Motivo:         a.Motivo,
		Estado:         string(a.Estado),
		UsuarioID:      a.UsuarioID.String(),
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
	if a.Producto != nil {
		resp.Producto = a.Producto.Nombre
	}
	if a.ResueltoPor != nil {
		rp := a.ResueltoPor.String()
		resp.ResueltoPor = &rp
	}
	if a.ResueltoAt != nil {
		at := a.ResueltoAt.Format(time.RFC3339)
		resp.ResueltoAt = &at
	}
	return resp
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
