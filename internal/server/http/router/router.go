package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/metrics"
	pkgAuth "github.com/polkiloo/flashrent/internal/pkg/auth"
	"github.com/polkiloo/flashrent/internal/server/http/handlers"
	"github.com/polkiloo/flashrent/internal/server/http/middleware"
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade   handlers.FlashRentFacade
	Verifier pkgAuth.KeyVerifier
	Metrics  *metrics.Collector `optional:"true"`
	Logger   *zap.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger.Named("http")))
	engine.Use(middleware.DecompressRequest(middleware.DefaultMaxBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)

	engine.GET("/healthz", handlers.Health(p.Facade))
	if p.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))
	}

	api := engine.Group("/api")
	api.Use(middleware.APIKeyRequired(p.Verifier))
	api.POST("/payments", paymentHandler.Submit)
	api.GET("/orders/:number", orderHandler.Get)
	api.POST("/orders/:id/redelegate", orderHandler.Redelegate)

	engine.NoRoute(func(c *gin.Context) { c.Status(http.StatusNotFound) })

	return engine
}
