package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"tracemap/internal/anomaly"
	"tracemap/internal/config"
	"tracemap/internal/handler"
	"tracemap/internal/middleware"
	"tracemap/internal/repository"
	"tracemap/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Tracemap API is running",
		})
	})

	// Wire the ingestion and query pipelines over the shared point store
	pointRepo := repository.NewPointRepository(db)

	var classifier *anomaly.Classifier
	if cfg.OracleURL != "" {
		classifier = anomaly.NewClassifier(pointRepo, anomaly.NewHTTPOracle(cfg.OracleURL))
	}

	pointService := service.NewPointService(pointRepo, classifier)
	mapService := service.NewMapService(pointRepo)

	pointHandler := handler.NewPointHandler(pointService)
	mapHandler := handler.NewMapHandler(mapService)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		// 轨迹点接收接口
		points := api.Group("/points")
		if cfg.JWTSecret != "" {
			points.Use(middleware.JWTAuth(cfg.JWTSecret))
		}
		points.POST("", pointHandler.PushPoints)

		// 地图覆盖层查询接口
		api.GET("/heatmap", mapHandler.GetHeatmap)
		api.GET("/trafficmap", mapHandler.GetTrafficmap)
		api.GET("/speedmap", mapHandler.GetSpeedmap)
		api.GET("/anomalies", mapHandler.GetAnomalies)

		// 分类服务桩：本地联调时代替 ML 服务，总是返回 1
		api.POST("/oracle/stub", func(c *gin.Context) {
			c.JSON(http.StatusOK, 1)
		})
	}

	return r
}
