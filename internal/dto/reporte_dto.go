package dto

import "github.com/shopspring/decimal"

// ResumenInventarioResponse is the valuation rollup of the whole catalog.
type ResumenInventarioResponse struct {
	TotalProductos  int64           `json:"total_productos"`
	TotalUnidades   int64           `json:"total_unidades"`
	ValorInventario decimal.Decimal `json:"valor_inventario"`
	StockBajo       int64           `json:"stock_bajo"`
	Agotados        int64           `json:"agotados"`
}

// VentaDiariaRow aggregates the sales of one calendar day.
type VentaDiariaRow struct {
	Fecha       string          `json:"fecha"`
	NumVentas   int64           `json:"num_ventas"`
	TotalVentas decimal.Decimal `json:"total_ventas"`
}

type VentasDiariasResponse struct {
	Desde string           `json:"desde"`
	Hasta string           `json:"hasta"`
	Data  []VentaDiariaRow `json:"data"`
}

// TopProductoRow is one row of the best-sellers report.
type TopProductoRow struct {
	ProductoID      string          `json:"producto_id"`
	Nombre          string          `json:"nombre"`
	UnidadesVendidas int64          `json:"unidades_vendidas"`
	TotalVendido    decimal.Decimal `json:"total_vendido"`
}

type TopProductosResponse struct {
	Desde string           `json:"desde"`
	Hasta string           `json:"hasta"`
	Data  []TopProductoRow `json:"data"`
}
