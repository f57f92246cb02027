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

func buildAjusteSvc() (service.AjusteService, *stubAjusteRepo, *stubProductoRepo, *stubMovimientoRepo) {
	ajusteRepo := newStubAjusteRepo()
	productoRepo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}

	svc := service.NewAjusteService(ajusteRepo, productoRepo, movRepo)
	return svc, ajusteRepo, productoRepo, movRepo
}

func TestCrearAjuste_CongelaValores(t *testing.T) {
	svc, _, productoRepo, movRepo := buildAjusteSvc()
	p := seedProducto(productoRepo, "Leche 1L", "1212121212121", 10, 3)
	p.PrecioCosto = decimal.NewFromFloat(4)

	resp, err := svc.CrearAjuste(context.Background(), uuid.New(), dto.CrearAjusteRequest{
		ProductoID:  p.ID.String(),
		StockFisico: 7,
		Motivo:      "conteo físico mensual",
	})
	require.NoError(t, err)

	assert.Equal(t, "pendiente", resp.Estado)
	assert.Equal(t, 10, resp.StockSistema)
	assert.Equal(t, 7, resp.StockFisico)
	assert.Equal(t, -3, resp.Diferencia)
	assert.Equal(t, "4", resp.PrecioUnitario.String())
	assert.Equal(t, "12", resp.Valor.String()) // |−3| × 4.00

	// proposing has no stock effect
	assert.Equal(t, 10, productoRepo.productos[p.ID].Stock)
	assert.Empty(t, movRepo.movimientos)
}

func TestAprobarAjuste_FijaStockAbsoluto(t *testing.T) {
	svc, _, productoRepo, movRepo := buildAjusteSvc()
	p := seedProducto(productoRepo, "Yogurt 1L", "3434343434343", 10, 3)

	creado, err := svc.CrearAjuste(context.Background(), uuid.New(), dto.CrearAjusteRequest{
		ProductoID:  p.ID.String(),
		StockFisico: 7,
		Motivo:      "merma por vencimiento",
	})
	require.NoError(t, err)

	resp, err := svc.AprobarAjuste(context.Background(), uuid.New(), uuid.MustParse(creado.ID))
	require.NoError(t, err)
	assert.Equal(t, "aprobado", resp.Estado)
	require.NotNil(t, resp.ResueltoAt)

	assert.Equal(t, 7, productoRepo.productos[p.ID].Stock)

	require.Len(t, movRepo.movimientos, 1)
	m := movRepo.movimientos[0]
	assert.Equal(t, model.MovimientoSalida, m.Tipo)
	assert.Equal(t, model.ConceptoAjuste, m.Concepto)
	assert.Equal(t, 3, m.Cantidad)
	assert.Equal(t, 10, m.StockAnterior)
	assert.Equal(t, 7, m.StockNuevo)
	assert.Equal(t, "Ajuste: merma por vencimiento", m.Documento)
}

// Stock can move between proposal and approval. The count stays ground truth:
// approval lands on StockFisico and the ledger entry records the jump that
// actually happened, not the one frozen in the proposal.
func TestAprobarAjuste_StockMovioEntrePropuestaYAprobacion(t *testing.T) {
	svc, _, productoRepo, movRepo := buildAjusteSvc()
	p := seedProducto(productoRepo, "Mantequilla 250g", "5656565656565", 10, 3)
	p.PrecioCosto = decimal.NewFromFloat(5)

	creado, err := svc.CrearAjuste(context.Background(), uuid.New(), dto.CrearAjusteRequest{
		ProductoID:  p.ID.String(),
		StockFisico: 7,
		Motivo:      "diferencia de inventario",
	})
	require.NoError(t, err)
	assert.Equal(t, -3, creado.Diferencia)

	// sales landed in the meantime: 10 → 5
	productoRepo.productos[p.ID].Stock = 5

	_, err = svc.AprobarAjuste(context.Background(), uuid.New(), uuid.MustParse(creado.ID))
	require.NoError(t, err)

	assert.Equal(t, 7, productoRepo.productos[p.ID].Stock)

	require.Len(t, movRepo.movimientos, 1)
	m := movRepo.movimientos[0]
	assert.Equal(t, model.MovimientoEntrada, m.Tipo) // real jump is 5 → 7
	assert.Equal(t, 2, m.Cantidad)
	assert.Equal(t, 5, m.StockAnterior)
	assert.Equal(t, 7, m.StockNuevo)
	// valuation stays frozen at the proposal's precio de costo
	assert.Equal(t, "5", m.PrecioUnitario.String())
	assert.Equal(t, "10", m.Total.String())
}

func TestAprobarAjuste_Terminal(t *testing.T) {
	svc, _, productoRepo, movRepo := buildAjusteSvc()
	p := seedProducto(productoRepo, "Queso 500g", "7878787878787", 10, 3)

	creado, err := svc.CrearAjuste(context.Background(), uuid.New(), dto.CrearAjusteRequest{
		ProductoID:  p.ID.String(),
		StockFisico: 8,
		Motivo:      "rotura en almacén",
	})
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	_, err = svc.AprobarAjuste(context.Background(), uuid.New(), id)
	require.NoError(t, err)

	// second approve: terminal, no second stock write, no second ledger entry
	_, err = svc.AprobarAjuste(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, service.ErrYaResuelto)
	assert.Equal(t, 8, productoRepo.productos[p.ID].Stock)
	assert.Len(t, movRepo.movimientos, 1)

	// and a reject after an approve is equally rejected
	_, err = svc.RechazarAjuste(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, service.ErrYaResuelto)
}

func TestRechazarAjuste_NoTocaStock(t *testing.T) {
	svc, ajusteRepo, productoRepo, movRepo := buildAjusteSvc()
	p := seedProducto(productoRepo, "Pan de molde", "9090909090901", 15, 3)

	creado, err := svc.CrearAjuste(context.Background(), uuid.New(), dto.CrearAjusteRequest{
		ProductoID:  p.ID.String(),
		StockFisico: 2,
		Motivo:      "conteo dudoso, repetir",
	})
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	resp, err := svc.RechazarAjuste(context.Background(), uuid.New(), id)
	require.NoError(t, err)
	assert.Equal(t, "rechazado", resp.Estado)

	assert.Equal(t, 15, productoRepo.productos[p.ID].Stock)
	assert.Empty(t, movRepo.movimientos)

	stored, err := ajusteRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.AjusteRechazado, stored.Estado)
}
