package router

import (
	"time"

	"almacenpos/internal/config"
	"almacenpos/internal/handler"
	"almacenpos/internal/infra"
	"almacenpos/internal/middleware"
	"almacenpos/internal/repository"
	"almacenpos/internal/service"
	"almacenpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	ordenRepo := repository.NewOrdenRepository(db)
	ajusteRepo := repository.NewAjusteRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, rdb)
	inventarioSvc := service.NewInventarioService(movimientoRepo, productoRepo)
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo, mailer, cfg)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, clienteRepo, movimientoRepo, cajaRepo, dispatcher)
	ordenSvc := service.NewOrdenService(ordenRepo, productoRepo, proveedorRepo, movimientoRepo)
	ajusteSvc := service.NewAjusteService(ajusteRepo, productoRepo, movimientoRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	reporteSvc := service.NewReporteService(reporteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	ordenesH := handler.NewOrdenesHandler(ordenSvc)
	ajustesH := handler.NewAjustesHandler(ajusteSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	todos := middleware.RequireRole(middleware.RolVendedor, middleware.RolSupervisor, middleware.RolAdministrador)
	gestion := middleware.RequireRole(middleware.RolSupervisor, middleware.RolAdministrador)
	admin := middleware.RequireRole(middleware.RolAdministrador)

	v1 := r.Group("/v1", jwtMW)
	{
		// Ventas — any role operates the register
		v1.POST("/ventas", todos, ventasH.RegistrarVenta)
		v1.GET("/ventas", todos, ventasH.ListarVentas)
		v1.GET("/ventas/:id", todos, ventasH.ObtenerVenta)

		// Productos — reads for everyone, writes for gestión
		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/:id", todos, productosH.Obtener)
		v1.GET("/productos/codigo/:codigo", todos, productosH.ConsultaPorCodigo)
		prods := v1.Group("/productos", gestion)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		// Órdenes de compra — gestión only; recepción is the stock entry point
		ordenes := v1.Group("/ordenes", gestion)
		{
			ordenes.POST("", ordenesH.CrearOrden)
			ordenes.GET("", ordenesH.ListarOrdenes)
			ordenes.GET("/:id", ordenesH.ObtenerOrden)
			ordenes.POST("/:id/recibir", ordenesH.RecibirOrden)
		}

		// Ajustes — anyone proposes, gestión resolves
		v1.POST("/ajustes", todos, ajustesH.CrearAjuste)
		v1.GET("/ajustes", todos, ajustesH.ListarAjustes)
		v1.GET("/ajustes/:id", todos, ajustesH.ObtenerAjuste)
		v1.POST("/ajustes/:id/aprobar", gestion, ajustesH.AprobarAjuste)
		v1.POST("/ajustes/:id/rechazar", gestion, ajustesH.RechazarAjuste)

		// Inventario
		inv := v1.Group("/inventario")
		{
			inv.GET("/movimientos", todos, inventarioH.ListarMovimientos)
			inv.GET("/alertas", todos, inventarioH.Alertas)
			inv.POST("/recalcular/:id", gestion, inventarioH.Recalcular)
		}

		// Caja
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", todos, cajaH.AbrirCaja)
			caja.GET("/activa", todos, cajaH.SesionActiva)
			caja.POST("/movimiento", todos, cajaH.RegistrarMovimiento)
			caja.POST("/cerrar", todos, cajaH.CerrarCaja)
			caja.GET("/historial", gestion, cajaH.Historial)
			caja.GET("/:id", gestion, cajaH.ObtenerSesion)
			caja.GET("/:id/reporte", gestion, cajaH.ReporteCierre)
		}

		// Clientes — any role manages buyers at the register
		clientes := v1.Group("/clientes", todos)
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", clientesH.Desactivar)
		}

		// Proveedores — gestión
		prov := v1.Group("/proveedores", gestion)
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.Obtener)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Desactivar)
		}

		// Reportes — gestión
		rep := v1.Group("/reportes", gestion)
		{
			rep.GET("/inventario", reportesH.ResumenInventario)
			rep.GET("/ventas-diarias", reportesH.VentasDiarias)
			rep.GET("/top-productos", reportesH.TopProductos)
		}

		// Usuarios — administrador only
		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
			usuarios.PATCH("/:id/reactivar", authH.ReactivarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
