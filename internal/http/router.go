package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"authgate/internal/config"
	"authgate/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas bajo el
// prefijo configurado.
func NewRouter(
	logger *zap.Logger,
	cfg *config.Config,
	authH *AuthHandler,
	adminH *AdminHandler,
	tokenServ *service.TokenService,
	userServ *service.UserService,
	counters service.CounterStore,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	sources := TokenSources{
		CookieName: cfg.TokenCookieName,
		QueryParam: cfg.TokenQueryParam,
		HeaderName: cfg.TokenHeaderName,
	}
	authenticate := AuthMiddleware(logger, tokenServ, userServ, sources)
	rateLimit := RateLimitMiddleware(counters, cfg.RateLimitMax, time.Duration(cfg.RateLimitWindowMS)*time.Millisecond)

	base := r.Group(cfg.BasePath)

	if cfg.EnableHealth {
		base.GET("/health", authH.Health)
	}
	base.GET("/config", authH.ClientConfig)

	// Endpoints publicos de login, con limite por cliente.
	login := base.Group("", rateLimit)
	login.GET("/login", authH.LoginStart)
	login.GET("/callback", authH.Callback)
	login.POST("/sso-login", authH.SSOLogin)
	login.POST("/logout", authH.Logout)

	base.GET("/me", authenticate, authH.Me)

	if cfg.EnableUserManagement {
		users := base.Group("/users", authenticate)
		users.GET("", RequireSuperAdmin(), adminH.ListUsers)
		users.PUT("/:id/role", RequireSuperAdmin(), adminH.UpdateRole)
		users.POST("/:id/deactivate", RequireAdmin(), adminH.Deactivate)
		users.POST("/:id/reactivate", RequireAdmin(), adminH.Reactivate)
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
