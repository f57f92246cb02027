package repository

import (
	"context"

	"almacenpos/internal/dto"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReporteRepository holds the read-only aggregate queries behind the
// dashboard endpoints. Nothing here mutates state.
type ReporteRepository interface {
	ResumenInventario(ctx context.Context) (*dto.ResumenInventarioResponse, error)
	VentasDiarias(ctx context.Context, desde, hasta string) ([]dto.VentaDiariaRow, error)
	TopProductos(ctx context.Context, desde, hasta string, limit int) ([]dto.TopProductoRow, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) ResumenInventario(ctx context.Context) (*dto.ResumenInventarioResponse, error) {
	var row struct {
		TotalProductos  int64
		TotalUnidades   int64
		ValorInventario decimal.Decimal
		StockBajo       int64
		Agotados        int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                                                   AS total_productos,
		       COALESCE(SUM(stock), 0)                                    AS total_unidades,
		       COALESCE(SUM(precio_costo * stock), 0)                     AS valor_inventario,
		       COUNT(*) FILTER (WHERE stock > 0 AND stock <= stock_minimo) AS stock_bajo,
		       COUNT(*) FILTER (WHERE stock <= 0)                         AS agotados
		FROM productos
		WHERE activo = true`).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &dto.ResumenInventarioResponse{
		TotalProductos:  row.TotalProductos,
		TotalUnidades:   row.TotalUnidades,
		ValorInventario: row.ValorInventario.Round(2),
		StockBajo:       row.StockBajo,
		Agotados:        row.Agotados,
	}, nil
}

func (r *reporteRepo) VentasDiarias(ctx context.Context, desde, hasta string) ([]dto.VentaDiariaRow, error) {
	var rows []dto.VentaDiariaRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') AS fecha,
		       COUNT(*)                                AS num_ventas,
		       COALESCE(SUM(total), 0)                 AS total_ventas
		FROM ventas
		WHERE created_at::date BETWEEN ?::date AND ?::date
		GROUP BY created_at::date
		ORDER BY created_at::date`, desde, hasta).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) TopProductos(ctx context.Context, desde, hasta string, limit int) ([]dto.TopProductoRow, error) {
	var rows []dto.TopProductoRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id::text                    AS producto_id,
		       p.nombre                      AS nombre,
		       COALESCE(SUM(vi.cantidad), 0) AS unidades_vendidas,
		       COALESCE(SUM(vi.subtotal), 0) AS total_vendido
		FROM venta_items vi
		JOIN ventas v   ON v.id = vi.venta_id
		JOIN productos p ON p.id = vi.producto_id
		WHERE v.created_at::date BETWEEN ?::date AND ?::date
		GROUP BY p.id, p.nombre
		ORDER BY unidades_vendidas DESC
		LIMIT ?`, desde, hasta, limit).Scan(&rows).Error
	return rows, err
}
