package handlers

import (
	"net/http"

	"github.com/SscSPs/sms_wallet_app/cmd/docs"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/gateway"
	"github.com/SscSPs/sms_wallet_app/internal/middleware"
	"github.com/SscSPs/sms_wallet_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOption customises RegisterRoutes.
type RouteOption func(*routeOptions)

type routeOptions struct {
	verifier gateway.Verifier
}

// WithPaymentVerifier makes /payments/verify settle the gateway's own view of a payment
// instead of the result the client reports.
func WithPaymentVerifier(verifier gateway.Verifier) RouteOption {
	return func(o *routeOptions) {
		o.verifier = verifier
	}
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// limiterInstance may be nil to disable rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	limiterInstance *limiter.Limiter,
	options ...RouteOption,
) {
	var opts routeOptions
	for _, option := range options {
		option(&opts)
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	var limited []gin.HandlerFunc
	if limiterInstance != nil {
		limited = append(limited, middleware.RateLimit(limiterInstance))
	}

	// Gateway callbacks authenticate by signature, not by user token
	webhooks := r.Group("/webhooks", limited...)
	registerWebhookRoutes(webhooks, cfg.PaymentWebhookSecret, services.Settlement)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	v1 := r.Group("/api/v1", append(limited, middleware.AuthMiddleware(cfg.JWTSecret))...)
	registerWalletRoutes(v1, services.Wallet, services.Monitor)
	registerPaymentRoutes(v1, services.Settlement, opts.verifier)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
