package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onlinestore/pkg/logger"
	"onlinestore/pkg/metrics"
)

// Scopes, требуемые для мутирующих операций
const (
	ScopeEditProducts  = "edit_products"
	ScopeCreateReviews = "create_reviews"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	productHandler *ProductHandler,
	reviewHandler *ReviewHandler,
	authMiddleware *AuthMiddleware,
	syncMiddleware *SyncMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("online-store"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "online-store",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	products := router.Group("/products")

	// Публичные эндпоинты: токен не обязателен, но предъявленный
	// всё равно проходит валидацию и синхронизацию покупателя
	public := products.Group("")
	public.Use(authMiddleware.AuthenticateOptional(), syncMiddleware.Sync())
	{
		public.GET("", productHandler.GetAllProducts)
		public.GET("/:productId", productHandler.GetProduct)
		public.GET("/:productId/reviews", reviewHandler.GetProductReviews)
	}

	// Управление товарами: требуется scope edit_products
	editors := products.Group("")
	editors.Use(
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(ScopeEditProducts),
		syncMiddleware.Sync(),
	)
	{
		editors.POST("", productHandler.CreateProduct)
		editors.PATCH("/:productId", productHandler.UpdateProduct)
		editors.DELETE("/:productId", productHandler.DeleteProduct)
	}

	// Создание отзывов: требуется scope create_reviews
	reviewers := products.Group("")
	reviewers.Use(
		authMiddleware.Authenticate(),
		authMiddleware.RequireScope(ScopeCreateReviews),
		syncMiddleware.Sync(),
	)
	{
		reviewers.POST("/:productId/reviews", reviewHandler.CreateReview)
	}

	return router
}
