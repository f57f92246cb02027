package service_test

import (
	"context"
	"testing"

	"almacenpos/internal/dto"
	"almacenpos/internal/model"
	"almacenpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOrdenSvc() (service.OrdenService, *stubOrdenRepo, *stubProductoRepo, *stubProveedorRepo, *stubMovimientoRepo) {
	ordenRepo := newStubOrdenRepo()
	productoRepo := newStubProductoRepo()
	proveedorRepo := newStubProveedorRepo()
	movRepo := &stubMovimientoRepo{}

	svc := service.NewOrdenService(ordenRepo, productoRepo, proveedorRepo, movRepo)
	return svc, ordenRepo, productoRepo, proveedorRepo, movRepo
}

func seedProveedor(r *stubProveedorRepo) *model.Proveedor {
	p := &model.Proveedor{
		ID:          uuid.New(),
		RazonSocial: "Distribuidora Central SAC",
		RUC:         "20123456789",
		Activo:      true,
	}
	r.proveedores[p.ID] = p
	return p
}

func TestCrearOrden_SinEfectoDeStock(t *testing.T) {
	svc, _, productoRepo, proveedorRepo, movRepo := buildOrdenSvc()
	prov := seedProveedor(proveedorRepo)
	p := seedProducto(productoRepo, "Arroz 5kg", "1111111111111", 10, 5)

	resp, err := svc.CrearOrden(context.Background(), uuid.New(), dto.CrearOrdenRequest{
		ProveedorID: prov.ID.String(),
		Items: []dto.ItemOrdenRequest{
			{ProductoID: p.ID.String(), Cantidad: 20, CostoUnitario: decimal.NewFromFloat(8.5)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "pendiente", resp.Estado)
	assert.Equal(t, 1, resp.NumeroOrden)
	assert.Equal(t, "170", resp.Total.String()) // 8.50 × 20

	// creating an order must not touch stock or the ledger
	assert.Equal(t, 10, productoRepo.productos[p.ID].Stock)
	assert.Empty(t, movRepo.movimientos)
}

func TestCrearOrden_ProveedorInexistente(t *testing.T) {
	svc, _, productoRepo, _, _ := buildOrdenSvc()
	p := seedProducto(productoRepo, "Azúcar 1kg", "2222222222222", 10, 5)

	_, err := svc.CrearOrden(context.Background(), uuid.New(), dto.CrearOrdenRequest{
		ProveedorID: uuid.New().String(),
		Items: []dto.ItemOrdenRequest{
			{ProductoID: p.ID.String(), Cantidad: 5, CostoUnitario: decimal.NewFromFloat(3)},
		},
	})
	assert.ErrorContains(t, err, "no encontrado")
}

func TestRecibirOrden_IncrementaStockYEscribeLedger(t *testing.T) {
	svc, _, productoRepo, proveedorRepo, movRepo := buildOrdenSvc()
	prov := seedProveedor(proveedorRepo)
	p := seedProducto(productoRepo, "Aceite 1L", "3333333333333", 4, 5)

	creada, err := svc.CrearOrden(context.Background(), uuid.New(), dto.CrearOrdenRequest{
		ProveedorID: prov.ID.String(),
		Items: []dto.ItemOrdenRequest{
			{ProductoID: p.ID.String(), Cantidad: 30, CostoUnitario: decimal.NewFromFloat(6)},
		},
	})
	require.NoError(t, err)

	resp, err := svc.RecibirOrden(context.Background(), uuid.New(), uuid.MustParse(creada.ID))
	require.NoError(t, err)
	assert.Equal(t, "recibido", resp.Estado)
	require.NotNil(t, resp.RecibidaAt)

	assert.Equal(t, 34, productoRepo.productos[p.ID].Stock)

	require.Len(t, movRepo.movimientos, 1)
	m := movRepo.movimientos[0]
	assert.Equal(t, model.MovimientoEntrada, m.Tipo)
	assert.Equal(t, model.ConceptoCompra, m.Concepto)
	assert.Equal(t, 30, m.Cantidad)
	assert.Equal(t, 4, m.StockAnterior)
	assert.Equal(t, 34, m.StockNuevo)
	assert.Equal(t, "Orden #1", m.Documento)
}

func TestRecibirOrden_Idempotente(t *testing.T) {
	svc, _, productoRepo, proveedorRepo, movRepo := buildOrdenSvc()
	prov := seedProveedor(proveedorRepo)
	p := seedProducto(productoRepo, "Harina 1kg", "4444444444444", 0, 5)

	creada, err := svc.CrearOrden(context.Background(), uuid.New(), dto.CrearOrdenRequest{
		ProveedorID: prov.ID.String(),
		Items: []dto.ItemOrdenRequest{
			{ProductoID: p.ID.String(), Cantidad: 12, CostoUnitario: decimal.NewFromFloat(2.5)},
		},
	})
	require.NoError(t, err)
	id := uuid.MustParse(creada.ID)

	_, err = svc.RecibirOrden(context.Background(), uuid.New(), id)
	require.NoError(t, err)
	assert.Equal(t, 12, productoRepo.productos[p.ID].Stock)

	// a double click / retried request must not double the stock
	_, err = svc.RecibirOrden(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, service.ErrYaResuelto)
	assert.Equal(t, 12, productoRepo.productos[p.ID].Stock)
	assert.Len(t, movRepo.movimientos, 1)
}

func TestRecibirOrden_NoExiste(t *testing.T) {
	svc, _, _, _, _ := buildOrdenSvc()
	_, err := svc.RecibirOrden(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, service.ErrOrdenNoEncontrada)
}
