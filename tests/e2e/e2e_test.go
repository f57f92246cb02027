//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered:
//   - Full cycle: login → proveedor → producto → orden → recibir → caja → venta
//   - Idempotent order receipt (second recibir → 409, stock not doubled)
//   - Sale rejected without an open caja
//   - Multi-line sale with one short line leaves every line untouched
//   - Two concurrent sales of the last unit: exactly one wins
//   - Adjustment approval is terminal
//   - Cierre de caja records the counted difference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"almacenpos/internal/config"
	"almacenpos/internal/infra"
	"almacenpos/internal/router"
	"almacenpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("almacenpos_test"),
		tcPostgres.WithUsername("almacenpos"),
		tcPostgres.WithPassword("almacenpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		NombreNegocio:      "Almacén E2E",
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-e2e"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO usuarios (username, nombre, password_hash, rol, activo)
		VALUES ('admin', 'Admin E2E', ?, 'administrador', true)
		ON CONFLICT (username) DO NOTHING`, string(hash)).Error)

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	r := router.New(cfg, db, rdb, mailer, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "admin-e2e"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server: srv,
		token:  loginBody.AccessToken,
		engine: r,
	}
}

func crearProveedor(t *testing.T, env *testEnv) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/proveedores",
		jsonBody(t, map[string]any{
			"razon_social": "Distribuidora E2E SAC",
			"ruc":          fmt.Sprintf("20%09d", time.Now().UnixNano()%1e9),
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prov struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prov)
	return prov.ID
}

func crearProducto(t *testing.T, env *testEnv, nombre, codigo string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"codigo":       codigo,
			"nombre":       nombre,
			"categoria":    "abarrotes",
			"precio":       25.0,
			"precio_costo": 15.0,
			"stock_minimo": 3,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func recibirStock(t *testing.T, env *testEnv, proveedorID, productoID string, cantidad int) {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/ordenes",
		jsonBody(t, map[string]any{
			"proveedor_id": proveedorID,
			"items": []map[string]any{
				{"producto_id": productoID, "cantidad": cantidad, "costo_unitario": 15.0},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var orden struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &orden)

	recResp := do(t, env.server, "POST", "/v1/ordenes/"+orden.ID+"/recibir", nil, env.token)
	require.Equal(t, http.StatusOK, recResp.StatusCode)
	recResp.Body.Close()
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompraVenta(t *testing.T) {
	env := setupTestEnv(t)

	provID := crearProveedor(t, env)
	prodID := crearProducto(t, env, "Gaseosa 500ml", "7890001000001")
	recibirStock(t, env, provID, prodID, 20)

	// stock landed via the orden
	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		Stock  int    `json:"stock"`
		Estado string `json:"estado"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 20, prod.Stock)
	assert.Equal(t, "activo", prod.Estado)

	// open caja and sell
	cajaResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": 100.0}), env.token)
	require.Equal(t, http.StatusCreated, cajaResp.StatusCode)
	cajaResp.Body.Close()

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"metodo_pago": "efectivo",
			"items":       []map[string]any{{"producto_id": prodID, "cantidad": 3}},
		}), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		NumeroVenta int     `json:"numero_venta"`
		Total       float64 `json:"total,string"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, 1, venta.NumeroVenta)
	assert.Equal(t, 75.0, venta.Total) // 25 × 3

	// stock went down and the ledger has entrada + salida
	prodResp2 := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	decodeJSON(t, prodResp2, &prod)
	assert.Equal(t, 17, prod.Stock)

	movResp := do(t, env.server, "GET", "/v1/inventario/movimientos?producto_id="+prodID, nil, env.token)
	require.Equal(t, http.StatusOK, movResp.StatusCode)
	var movs struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, movResp, &movs)
	assert.Equal(t, int64(2), movs.Total)
}

func TestE2E_RecepcionIdempotente(t *testing.T) {
	env := setupTestEnv(t)

	provID := crearProveedor(t, env)
	prodID := crearProducto(t, env, "Agua Mineral", "7890001000002")

	ordenResp := do(t, env.server, "POST", "/v1/ordenes",
		jsonBody(t, map[string]any{
			"proveedor_id": provID,
			"items": []map[string]any{
				{"producto_id": prodID, "cantidad": 10, "costo_unitario": 5.0},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, ordenResp.StatusCode)
	var orden struct {
		ID string `json:"id"`
	}
	decodeJSON(t, ordenResp, &orden)

	r1 := do(t, env.server, "POST", "/v1/ordenes/"+orden.ID+"/recibir", nil, env.token)
	require.Equal(t, http.StatusOK, r1.StatusCode)
	r1.Body.Close()

	// the double click
	r2 := do(t, env.server, "POST", "/v1/ordenes/"+orden.ID+"/recibir", nil, env.token)
	assert.Equal(t, http.StatusConflict, r2.StatusCode)
	r2.Body.Close()

	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	var prod struct {
		Stock int `json:"stock"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 10, prod.Stock)
}

func TestE2E_VentaSinCajaAbierta(t *testing.T) {
	env := setupTestEnv(t)

	provID := crearProveedor(t, env)
	prodID := crearProducto(t, env, "Jugo 1L", "7890001000003")
	recibirStock(t, env, provID, prodID, 5)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"metodo_pago": "efectivo",
			"items":       []map[string]any{{"producto_id": prodID, "cantidad": 1}},
		}), env.token)
	assert.Equal(t, http.StatusConflict, ventaResp.StatusCode)
	ventaResp.Body.Close()
}

// A cart where one line exceeds its stock must fail as a whole: no venta, no
// movements, and the lines that did have stock keep theirs.
func TestE2E_VentaMultilineaSinStockNoDejaEfectos(t *testing.T) {
	env := setupTestEnv(t)

	provID := crearProveedor(t, env)
	conStockID := crearProducto(t, env, "Arroz 1kg", "7890001000006")
	sinStockID := crearProducto(t, env, "Azúcar 1kg", "7890001000007")
	recibirStock(t, env, provID, conStockID, 10)
	recibirStock(t, env, provID, sinStockID, 2)

	cajaResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": 100.0}), env.token)
	require.Equal(t, http.StatusCreated, cajaResp.StatusCode)
	cajaResp.Body.Close()

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"metodo_pago": "efectivo",
			"items": []map[string]any{
				{"producto_id": conStockID, "cantidad": 4},
				{"producto_id": sinStockID, "cantidad": 5}, // only 2 on hand
			},
		}), env.token)
	assert.Equal(t, http.StatusConflict, ventaResp.StatusCode)
	ventaResp.Body.Close()

	// both stocks intact, including the line that could have been served
	var prod struct {
		Stock int `json:"stock"`
	}
	p1 := do(t, env.server, "GET", "/v1/productos/"+conStockID, nil, env.token)
	decodeJSON(t, p1, &prod)
	assert.Equal(t, 10, prod.Stock)
	p2 := do(t, env.server, "GET", "/v1/productos/"+sinStockID, nil, env.token)
	decodeJSON(t, p2, &prod)
	assert.Equal(t, 2, prod.Stock)

	// only the two entrada movements from the receipts, no salidas
	var movs struct {
		Total int64 `json:"total"`
	}
	m1 := do(t, env.server, "GET", "/v1/inventario/movimientos?producto_id="+conStockID, nil, env.token)
	decodeJSON(t, m1, &movs)
	assert.Equal(t, int64(1), movs.Total)
	m2 := do(t, env.server, "GET", "/v1/inventario/movimientos?producto_id="+sinStockID, nil, env.token)
	decodeJSON(t, m2, &movs)
	assert.Equal(t, int64(1), movs.Total)

	// and no venta was recorded
	listResp := do(t, env.server, "GET", "/v1/ventas", nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var ventas struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &ventas)
	assert.Equal(t, int64(0), ventas.Total)
}

// Two cashiers sell the last unit at the same time. The floor-checked UPDATE
// lets exactly one through; the loser gets 409 and stock never goes negative.
func TestE2E_VentaConcurrenteUltimaUnidad(t *testing.T) {
	env := setupTestEnv(t)

	provID := crearProveedor(t, env)
	prodID := crearProducto(t, env, "Vino Reserva", "7890001000008")
	recibirStock(t, env, provID, prodID, 1)

	cajaResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": 100.0}), env.token)
	require.Equal(t, http.StatusCreated, cajaResp.StatusCode)
	cajaResp.Body.Close()

	statuses := make([]int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			// plain http here: test helpers must not fail from a goroutine
			body, _ := json.Marshal(map[string]any{
				"metodo_pago": "efectivo",
				"items":       []map[string]any{{"producto_id": prodID, "cantidad": 1}},
			})
			req, err := http.NewRequest(http.MethodPost, env.server.URL+"/v1/ventas", bytes.NewReader(body))
			if err != nil {
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+env.token)
			resp, err := env.server.Client().Do(req)
			if err != nil {
				return
			}
			statuses[idx] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			wins++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	var prod struct {
		Stock  int    `json:"stock"`
		Estado string `json:"estado"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 0, prod.Stock)
	assert.Equal(t, "agotado", prod.Estado)
}

func TestE2E_AjusteAprobacionTerminal(t *testing.T) {
	env := setupTestEnv(t)

	provID := crearProveedor(t, env)
	prodID := crearProducto(t, env, "Leche 1L", "7890001000004")
	recibirStock(t, env, provID, prodID, 10)

	ajResp := do(t, env.server, "POST", "/v1/ajustes",
		jsonBody(t, map[string]any{
			"producto_id":  prodID,
			"stock_fisico": 7,
			"motivo":       "conteo físico e2e",
		}), env.token)
	require.Equal(t, http.StatusCreated, ajResp.StatusCode)
	var ajuste struct {
		ID         string `json:"id"`
		Diferencia int    `json:"diferencia"`
	}
	decodeJSON(t, ajResp, &ajuste)
	assert.Equal(t, -3, ajuste.Diferencia)

	a1 := do(t, env.server, "POST", "/v1/ajustes/"+ajuste.ID+"/aprobar", nil, env.token)
	require.Equal(t, http.StatusOK, a1.StatusCode)
	a1.Body.Close()

	a2 := do(t, env.server, "POST", "/v1/ajustes/"+ajuste.ID+"/aprobar", nil, env.token)
	assert.Equal(t, http.StatusConflict, a2.StatusCode)
	a2.Body.Close()

	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	var prod struct {
		Stock int `json:"stock"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 7, prod.Stock)
}

func TestE2E_CierreDeCajaConDiferencia(t *testing.T) {
	env := setupTestEnv(t)

	provID := crearProveedor(t, env)
	prodID := crearProducto(t, env, "Café 250g", "7890001000005")
	recibirStock(t, env, provID, prodID, 10)

	cajaResp := do(t, env.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_inicial": 100.0}), env.token)
	require.Equal(t, http.StatusCreated, cajaResp.StatusCode)
	cajaResp.Body.Close()

	// 2 × 25 = 50 en efectivo
	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"metodo_pago": "efectivo",
			"items":       []map[string]any{{"producto_id": prodID, "cantidad": 2}},
		}), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	ventaResp.Body.Close()

	movResp := do(t, env.server, "POST", "/v1/caja/movimiento",
		jsonBody(t, map[string]any{"tipo": "gasto", "concepto": "flete e2e", "monto": 30.0}), env.token)
	require.Equal(t, http.StatusCreated, movResp.StatusCode)
	movResp.Body.Close()

	// calculado = 100 + 50 − 30 = 120; counted 115 → diferencia −5
	cierreResp := do(t, env.server, "POST", "/v1/caja/cerrar",
		jsonBody(t, map[string]any{"monto_final": 115.0}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cierre struct {
		Estado  string `json:"estado"`
		Totales struct {
			TotalCalculado float64 `json:"total_calculado,string"`
		} `json:"totales"`
		Diferencia float64 `json:"diferencia,string"`
	}
	decodeJSON(t, cierreResp, &cierre)
	assert.Equal(t, "cerrada", cierre.Estado)
	assert.Equal(t, 120.0, cierre.Totales.TotalCalculado)
	assert.Equal(t, -5.0, cierre.Diferencia)

	// no session left active after the close
	activaResp := do(t, env.server, "GET", "/v1/caja/activa", nil, env.token)
	assert.Equal(t, http.StatusConflict, activaResp.StatusCode)
	activaResp.Body.Close()
}
