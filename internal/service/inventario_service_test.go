package service_test

import (
	"context"
	"testing"

	"almacenpos/internal/model"
	"almacenpos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInventarioSvc() (service.InventarioService, *stubMovimientoRepo, *stubProductoRepo) {
	movRepo := &stubMovimientoRepo{}
	productoRepo := newStubProductoRepo()
	return service.NewInventarioService(movRepo, productoRepo), movRepo, productoRepo
}

func seedMovimiento(movRepo *stubMovimientoRepo, productoID uuid.UUID, tipo model.TipoMovimiento, cantidad int) {
	movRepo.movimientos = append(movRepo.movimientos, model.Movimiento{
		ID:         uuid.New(),
		ProductoID: productoID,
		Tipo:       tipo,
		Concepto:   model.ConceptoVenta,
		Cantidad:   cantidad,
		UsuarioID:  uuid.New(),
	})
}

func TestRecomputarDesdeLedger_CorrigeDeriva(t *testing.T) {
	svc, movRepo, productoRepo := buildInventarioSvc()
	p := seedProducto(productoRepo, "Fideos 500g", "1357913579135", 10, 3)

	// ledger says 20 in − 12 out = 8, but the stored counter drifted to 10
	seedMovimiento(movRepo, p.ID, model.MovimientoEntrada, 20)
	seedMovimiento(movRepo, p.ID, model.MovimientoSalida, 12)

	resp, err := svc.RecomputarDesdeLedger(context.Background(), p.ID)
	require.NoError(t, err)

	assert.True(t, resp.Corregido)
	assert.Equal(t, 10, resp.StockAlmacenado)
	assert.Equal(t, 8, resp.StockLedger)
	assert.Equal(t, 8, productoRepo.productos[p.ID].Stock)
}

func TestRecomputarDesdeLedger_SinDeriva(t *testing.T) {
	svc, movRepo, productoRepo := buildInventarioSvc()
	p := seedProducto(productoRepo, "Atún en lata", "2468024680246", 8, 3)

	seedMovimiento(movRepo, p.ID, model.MovimientoEntrada, 10)
	seedMovimiento(movRepo, p.ID, model.MovimientoSalida, 2)

	resp, err := svc.RecomputarDesdeLedger(context.Background(), p.ID)
	require.NoError(t, err)

	assert.False(t, resp.Corregido)
	assert.Equal(t, 8, productoRepo.productos[p.ID].Stock)
}

func TestRecomputarDesdeLedger_ProductoNoExiste(t *testing.T) {
	svc, _, _ := buildInventarioSvc()
	_, err := svc.RecomputarDesdeLedger(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)
}

func TestAlertas_SoloActivosEnOBajoMinimo(t *testing.T) {
	svc, _, productoRepo := buildInventarioSvc()
	seedProducto(productoRepo, "Sal 1kg", "1112223334445", 2, 5)      // bajo mínimo
	seedProducto(productoRepo, "Café 250g", "5554443332221", 0, 5)    // agotado
	seedProducto(productoRepo, "Té verde", "9998887776665", 50, 5)    // sano
	inactivo := seedProducto(productoRepo, "Retirado", "0001112223334", 1, 5)
	inactivo.Activo = false

	alertas, err := svc.Alertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 2)

	estados := map[string]string{}
	for _, a := range alertas {
		estados[a.Nombre] = a.Estado
	}
	assert.Equal(t, "stock_bajo", estados["Sal 1kg"])
	assert.Equal(t, "agotado", estados["Café 250g"])
}
