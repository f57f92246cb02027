package service

import "errors"

// Sentinel errors of the inventory-ledger protocol. Handlers map these to
// HTTP status codes; services wrap them with %w so callers can errors.Is.
var (
	// ErrStockInsuficiente aborts a sale whose requested quantity exceeds the
	// current stock of any cart line. The whole transaction rolls back.
	ErrStockInsuficiente = errors.New("stock insuficiente")

	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrOrdenNoEncontrada    = errors.New("orden de compra no encontrada")
	ErrAjusteNoEncontrado   = errors.New("ajuste no encontrado")
	ErrVentaNoEncontrada    = errors.New("venta no encontrada")
	ErrSesionNoEncontrada   = errors.New("sesión de caja no encontrada")

	// ErrYaResuelto guards the one-way transitions: receiving an orden that is
	// already recibida, or resolving an ajuste that is no longer pendiente.
	ErrYaResuelto = errors.New("la operación ya fue resuelta")

	ErrCajaYaAbierta    = errors.New("ya existe una caja abierta para hoy")
	ErrSinSesionAbierta = errors.New("no hay sesión de caja abierta")
	ErrCajaCerrada      = errors.New("la sesión de caja ya está cerrada")

	ErrNoAutenticado = errors.New("autenticación requerida")
)
