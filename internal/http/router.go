package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/config"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/domain"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/http/handler"
	httpmiddleware "github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/http/middleware"
	"github.com/Harshit24Soni/Electric-Vehicle-Showroom-ERP/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, authMiddleware *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/health", authHandler.Health)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		// The PIN change endpoint admits tokens still flagged with
		// force_pin_change; everything else behind the guard does not.
		authGroup.POST("/pin/change", authMiddleware.ValidateJWTForPinChange, authHandler.ChangePin)
		authGroup.GET("/me", authMiddleware.ValidateJWT, authHandler.Me)
	}

	admin := r.Group("/admin", authMiddleware.ValidateJWT, authMiddleware.RequireRoles(domain.DesignationAdmin))
	{
		admin.POST("/staff", authHandler.CreateStaff)
		admin.GET("/staff", authHandler.ListStaff)
		admin.POST("/staff/:id/reset-pin", authHandler.ResetPin)
	}

	return r
}
