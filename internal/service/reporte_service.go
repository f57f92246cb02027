package service

import (
	"context"
	"fmt"
	"time"

	"almacenpos/internal/dto"
	"almacenpos/internal/repository"
)

type ReporteService interface {
	ResumenInventario(ctx context.Context) (*dto.ResumenInventarioResponse, error)
	VentasDiarias(ctx context.Context, desde, hasta string) (*dto.VentasDiariasResponse, error)
	TopProductos(ctx context.Context, desde, hasta string, limit int) (*dto.TopProductosResponse, error)
}

type reporteService struct {
	repo repository.ReporteRepository
}

func NewReporteService(repo repository.ReporteRepository) ReporteService {
	return &reporteService{repo: repo}
}

func (s *reporteService) ResumenInventario(ctx context.Context) (*dto.ResumenInventarioResponse, error) {
	return s.repo.ResumenInventario(ctx)
}

func (s *reporteService) VentasDiarias(ctx context.Context, desde, hasta string) (*dto.VentasDiariasResponse, error) {
	desde, hasta, err := normalizeRange(desde, hasta)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.VentasDiarias(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	return &dto.VentasDiariasResponse{Desde: desde, Hasta: hasta, Data: rows}, nil
}

func (s *reporteService) TopProductos(ctx context.Context, desde, hasta string, limit int) (*dto.TopProductosResponse, error) {
	desde, hasta, err := normalizeRange(desde, hasta)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.repo.TopProductos(ctx, desde, hasta, limit)
	if err != nil {
		return nil, err
	}
	return &dto.TopProductosResponse{Desde: desde, Hasta: hasta, Data: rows}, nil
}

// normalizeRange defaults to the last 30 days and rejects inverted ranges.
func normalizeRange(desde, hasta string) (string, string, error) {
	const layout = "2006-01-02"
	if hasta == "" {
		hasta = time.Now().Format(layout)
	}
	if desde == "" {
		desde = time.Now().AddDate(0, 0, -30).Format(layout)
	}
	d, err := time.Parse(layout, desde)
	if err != nil {
		return "", "", fmt.Errorf("desde inválido: %w", err)
	}
	h, err := time.Parse(layout, hasta)
	if err != nil {
		return "", "", fmt.Errorf("hasta inválido: %w", err)
	}
	if d.After(h) {
		return "", "", fmt.Errorf("rango inválido: desde %s posterior a hasta %s", desde, hasta)
	}
	return desde, hasta, nil
}
