// Package router wires handlers to routes and applies the global middleware
// chain.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Anikesh0001/test-practice/internal/config"
	"github.com/Anikesh0001/test-practice/internal/handler"
	"github.com/Anikesh0001/test-practice/internal/middleware"
	"github.com/Anikesh0001/test-practice/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Test    *handler.TestHandler
	Session *handler.SessionHandler
	Result  *handler.ResultHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the endpoints that fan out to the evaluation
	// service (10 requests per minute per IP).
	evalLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Tests ──────────────────────────────────────────────────────
	tests := router.Group("/api/v1/tests")
	{
		tests.POST("/upload", evalLimiter.Middleware(), handlers.Test.UploadTest)
		tests.POST("/company", evalLimiter.Middleware(), handlers.Test.CreateCompanyTest)
		tests.GET("/company/cached", middleware.CacheControl(300), handlers.Test.ListCachedCompanies)
		tests.GET("/company/:company_name/profile", evalLimiter.Middleware(), handlers.Test.GetCompanyProfile)

		tests.GET("/:test_id", handlers.Session.GetTest)
		tests.GET("/:test_id/state", handlers.Session.GetState)
		tests.POST("/:test_id/start", handlers.Test.StartTest)
		tests.POST("/:test_id/submit", handlers.Session.SubmitTest)
		tests.POST("/:test_id/retry", handlers.Test.RetryTest)
	}

	// ─── 2. Results ────────────────────────────────────────────────────
	results := router.Group("/api/v1/results")
	{
		results.GET("/latest", handlers.Result.LatestResult)
		results.GET("/:result_id", handlers.Result.GetResult)
		results.GET("/:result_id/review", handlers.Result.ReviewResult)
		results.GET("/:result_id/report", handlers.Result.DownloadReport)
	}

	// ─── 3. Explanations ───────────────────────────────────────────────
	router.POST("/api/v1/explanations", evalLimiter.Middleware(), handlers.Result.Explain)

	// ─── 4. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/tests/:test_id/stream", handlers.WS.TestStream)
	}

	// ─── 5. System ─────────────────────────────────────────────────────
	router.GET("/api/v1/system/metrics", handlers.System.SystemMetricsSSE)

	return router
}
