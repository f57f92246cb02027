package service_test

import (
	"context"
	"testing"

	"almacenpos/internal/dto"
	"almacenpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProductoSvc() (service.ProductoService, *stubProductoRepo) {
	repo := newStubProductoRepo()
	return service.NewProductoService(repo, nil), repo
}

func TestCrearProducto_StockInicialCero(t *testing.T) {
	svc, repo := buildProductoSvc()

	resp, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:      "7501234567890",
		Nombre:      "Detergente 1kg",
		Categoria:   "limpieza",
		Precio:      decimal.NewFromFloat(18),
		PrecioCosto: decimal.NewFromFloat(12),
	})
	require.NoError(t, err)

	// stock enters only through the ledger: a new product always starts at 0
	assert.Equal(t, 0, resp.Stock)
	assert.Equal(t, "agotado", resp.Estado)
	assert.Equal(t, 5, resp.StockMinimo) // default when not provided
	assert.True(t, resp.Activo)
	assert.Equal(t, 0, repo.productos[uuid.MustParse(resp.ID)].Stock)
}

func TestCrearProducto_CodigoDuplicado(t *testing.T) {
	svc, repo := buildProductoSvc()
	seedProducto(repo, "Shampoo 400ml", "7509876543210", 10, 3)

	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:      "7509876543210",
		Nombre:      "Otro shampoo",
		Categoria:   "cuidado personal",
		Precio:      decimal.NewFromFloat(25),
		PrecioCosto: decimal.NewFromFloat(17),
	})
	assert.ErrorContains(t, err, "ya existe")
}

func TestConsultaPorCodigo(t *testing.T) {
	svc, repo := buildProductoSvc()
	p := seedProducto(repo, "Cepillo dental", "7505554443332", 12, 3)

	resp, err := svc.ConsultaPorCodigo(context.Background(), "7505554443332")
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), resp.ID)
	assert.Equal(t, "Cepillo dental", resp.Nombre)

	_, err = svc.ConsultaPorCodigo(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)
}

func TestActualizarProducto_NoTocaStock(t *testing.T) {
	svc, repo := buildProductoSvc()
	p := seedProducto(repo, "Jabón de barra", "7501112223334", 40, 5)

	nuevoPrecio := decimal.NewFromFloat(9.5)
	resp, err := svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{
		Nombre: "Jabón de barra x3",
		Precio: &nuevoPrecio,
	})
	require.NoError(t, err)

	assert.Equal(t, "Jabón de barra x3", resp.Nombre)
	assert.Equal(t, "9.5", resp.Precio.String())
	// stock is managed by the ledger, the update never changes it
	assert.Equal(t, 40, resp.Stock)
}

func TestDesactivarYReactivarProducto(t *testing.T) {
	svc, repo := buildProductoSvc()
	p := seedProducto(repo, "Encendedor", "7500009998887", 5, 2)

	require.NoError(t, svc.Desactivar(context.Background(), p.ID))
	assert.False(t, repo.productos[p.ID].Activo)

	require.NoError(t, svc.Reactivar(context.Background(), p.ID))
	assert.True(t, repo.productos[p.ID].Activo)
}
