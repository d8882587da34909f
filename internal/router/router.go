package router

import (
	"time"

	"drugbee/internal/config"
	"drugbee/internal/handler"
	"drugbee/internal/middleware"
	"drugbee/internal/repository"
	"drugbee/internal/service"
	"drugbee/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
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

	gstRate := decimal.NewFromInt(int64(cfg.GSTRatePct))
	draftTTL := time.Duration(cfg.DraftTTLHours) * time.Hour

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	draftStore := repository.NewRedisDraftStore(rdb, draftTTL)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, rdb)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo)
	draftSvc := service.NewDraftService(draftStore, productRepo, gstRate)
	saleSvc := service.NewSaleService(saleRepo, productRepo, movementRepo, draftStore, dispatcher, cfg.BillPrefix, gstRate)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	draftsH := handler.NewDraftsHandler(draftSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog — cashiers read, admins write
		v1.GET("/products", middleware.RequireRole("cashier", "admin"), productsH.List)
		v1.GET("/products/search", middleware.RequireRole("cashier", "admin"), productsH.Search)
		v1.GET("/products/:id", middleware.RequireRole("cashier", "admin"), productsH.Get)
		prods := v1.Group("/products", middleware.RequireRole("admin"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		// Drafts — the live billing screen
		drafts := v1.Group("/drafts", middleware.RequireRole("cashier", "admin"))
		{
			drafts.POST("", draftsH.Start)
			drafts.GET("/:id", draftsH.Get)
			drafts.POST("/:id/items", draftsH.AddItem)
			drafts.PUT("/:id/items/:index", draftsH.UpdateQuantity)
			drafts.DELETE("/:id/items/:index", draftsH.RemoveItem)
			drafts.PUT("/:id/discount", draftsH.SetDiscount)
			drafts.PUT("/:id/customer", draftsH.UpdateCustomer)
			drafts.DELETE("/:id", draftsH.Discard)
		}

		// Sales
		v1.POST("/sales/finalize/:draft_id", middleware.RequireRole("cashier", "admin"), salesH.Finalize)
		v1.GET("/sales", middleware.RequireRole("cashier", "admin"), salesH.List)
		v1.GET("/sales/:id", middleware.RequireRole("cashier", "admin"), salesH.Get)
		v1.POST("/sales/:id/pay", middleware.RequireRole("cashier", "admin"), salesH.MarkPaid)
		v1.POST("/sales/:id/reprint", middleware.RequireRole("cashier", "admin"), salesH.Reprint)
		v1.DELETE("/sales/:id", middleware.RequireRole("admin"), salesH.Void)

		// Inventory — admin only
		inv := v1.Group("/inventory", middleware.RequireRole("admin"))
		{
			inv.POST("/:id/adjust", inventoryH.AdjustStock)
			inv.GET("/:id/movements", inventoryH.Movements)
			inv.GET("/low-stock", inventoryH.LowStock)
			inv.GET("/expiring", inventoryH.Expiring)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
