package router

import (
	"time"

	"ceats/internal/config"
	"ceats/internal/handler"
	"ceats/internal/infra"
	"ceats/internal/middleware"
	"ceats/internal/repository"
	"ceats/internal/service"
	"ceats/internal/worker"
	"ceats/internal/ws"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// The token cipher and the websocket hub are built at the composition root
// because the worker pool shares them.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, cipher *infra.TokenCipher, hub *ws.Hub) *gin.Engine {
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
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	restauranteRepo := repository.NewRestauranteRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	whatsappRepo := repository.NewWhatsAppRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	registroSvc := service.NewRegistroService(restauranteRepo, usuarioRepo, dispatcher, cfg)
	sucursalSvc := service.NewSucursalService(sucursalRepo, usuarioRepo, db, dispatcher, cfg)
	usuarioSvc := service.NewUsuarioService(usuarioRepo, sucursalRepo)
	pedidoSvc := service.NewPedidoService(pedidoRepo, sucursalRepo, hub)
	whatsappSvc := service.NewWhatsAppService(
		whatsappRepo, sucursalRepo, pedidoSvc, dispatcher, cipher, rdb,
		cfg.WhatsAppAppSecret, cfg.GraphAPIVersion,
	)
	reporteSvc := service.NewReporteService(pedidoRepo, restauranteRepo, cfg.PDFStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	registroH := handler.NewRegistroHandler(registroSvc)
	sucursalesH := handler.NewSucursalesHandler(sucursalSvc)
	usuariosH := handler.NewUsuariosHandler(usuarioSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc, hub, cfg.JWTSecret)
	whatsappH := handler.NewWhatsAppHandler(whatsappSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Meta webhook — both the legacy root path and the namespaced one point to
	// the same handlers (the dashboard registers whichever Meta has saved).
	r.GET("/webhook", whatsappH.WebhookVerify)
	r.POST("/webhook", whatsappH.WebhookReceive)
	r.GET("/api/whatsapp/webhook", whatsappH.WebhookVerify)
	r.POST("/api/whatsapp/webhook", whatsappH.WebhookReceive)

	api := r.Group("/api")

	// Auth + signup (public)
	api.POST("/register-restaurantero", registroH.Registrar)
	api.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	api.POST("/cambiar-password", authH.CambiarPassword)
	api.POST("/verificar-email", authH.VerificarEmail)

	// Branch verification is public: the emailed code is the credential.
	api.POST("/sucursales/:id/verificar", sucursalesH.Verificar)

	// Live order board — token travels as query param (websocket dial)
	r.GET("/ws/pedidos", pedidosH.Board)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	priv := api.Group("", jwtMW)
	{
		// Restaurant profile — admin only
		rest := priv.Group("/restaurante", middleware.RequireRole("admin"))
		{
			rest.GET("", registroH.ObtenerRestaurante)
			rest.PUT("", registroH.ActualizarRestaurante)
			rest.DELETE("", registroH.EliminarRestaurante)
		}

		// Sucursales — admin manages; empleado/gerente can read their own
		// (the service re-checks branch ownership on every read)
		priv.GET("/sucursales/:id", sucursalesH.Obtener)
		suc := priv.Group("/sucursales", middleware.RequireRole("admin"))
		{
			suc.POST("", sucursalesH.Crear)
			suc.GET("", sucursalesH.Listar)
			suc.PUT("/:id", sucursalesH.Actualizar)
			suc.DELETE("/:id", sucursalesH.Eliminar)
		}

		// Usuarios — admin only
		usuarios := priv.Group("/usuarios", middleware.RequireRole("admin"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.GET("/:id", usuariosH.Obtener)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Eliminar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}

		// Pedidos — tenant scope enforced per-operation in the service.
		// Gin requires one param name per tree position, so :id is a
		// sucursal_id on create and a codigo everywhere else.
		priv.GET("/pedidos.json", middleware.RequireRole("admin"), pedidosH.ListarTodos)
		priv.GET("/pedidos/sucursal/:sucursal_id", pedidosH.ListarPorSucursal)
		priv.POST("/pedidos/:id", pedidosH.Crear)
		priv.GET("/pedidos/:id", pedidosH.ObtenerPorCodigo)
		priv.POST("/pedidos/:id/estado", pedidosH.ActualizarEstado)
		priv.DELETE("/pedidos/:id", middleware.RequireRole("admin"), pedidosH.Eliminar)

		// WhatsApp integration management — admin only
		wa := priv.Group("/whatsapp", middleware.RequireRole("admin"))
		{
			wa.POST("/integraciones", whatsappH.Configurar)
			wa.GET("/integraciones", whatsappH.Listar)
			wa.DELETE("/integraciones/:id", whatsappH.Eliminar)
			wa.POST("/signup/iniciar", whatsappH.SignupIniciar)
			wa.POST("/signup/completar", whatsappH.SignupCompletar)
		}

		// Reports — admin only
		priv.GET("/reportes/pedidos.pdf", middleware.RequireRole("admin"), reportesH.PedidosPDF)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
