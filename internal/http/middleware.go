package http

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"authgate/internal/domain"
	"authgate/internal/service"
)

const authUserKey = "auth_user"

// TokenSources define de donde se extrae el token, en orden de prioridad:
// header Authorization, cookie, query param y header propio.
type TokenSources struct {
	CookieName string
	QueryParam string
	HeaderName string
}

func extractToken(c *gin.Context, src TokenSources) (string, bool) {
	if token, ok := service.ExtractFromHeader(c.GetHeader("Authorization")); ok {
		return token, true
	}
	if src.CookieName != "" {
		if v, err := c.Cookie(src.CookieName); err == nil && v != "" {
			return v, true
		}
	}
	if src.QueryParam != "" {
		if v := c.Query(src.QueryParam); v != "" {
			return v, true
		}
	}
	if src.HeaderName != "" {
		if v := c.GetHeader(src.HeaderName); v != "" {
			return v, true
		}
	}
	return "", false
}

// AuthMiddleware valida el token, carga el usuario y lo deja en el contexto.
func AuthMiddleware(logger *zap.Logger, tokenSvc *service.TokenService, userSvc *service.UserService, src TokenSources) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c, src)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			c.Abort()
			return
		}

		claims, err := tokenSvc.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			case errors.Is(err, service.ErrTokenInvalid):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			default:
				logger.Error("token verify failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			c.Abort()
			return
		}

		user, err := userSvc.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			} else {
				logger.Error("load user failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			c.Abort()
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account deactivated"})
			c.Abort()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// OptionalAuthMiddleware intenta autenticar pero nunca corta el pipeline:
// cualquier fallo deja la request sin usuario y continua.
func OptionalAuthMiddleware(tokenSvc *service.TokenService, userSvc *service.UserService, src TokenSources) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c, src)
		if !ok {
			c.Next()
			return
		}
		claims, err := tokenSvc.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		user, err := userSvc.GetUser(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}
		c.Set(authUserKey, user)
		c.Next()
	}
}

// RequireRole exige un rol minimo sobre el usuario ya autenticado.
func RequireRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetAuthUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if !user.Role.AtLeast(min) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin continua solo con rol admin o superior.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

// RequireSuperAdmin continua solo con rol super_admin.
func RequireSuperAdmin() gin.HandlerFunc {
	return RequireRole(domain.RoleSuperAdmin)
}

// RateLimitMiddleware limita requests por cliente dentro de una ventana fija.
func RateLimitMiddleware(store service.CounterStore, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || max <= 0 {
			c.Next()
			return
		}
		count, retryAfter, err := store.Incr(c.ClientIP(), window)
		if err == nil && count > max {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"retryAfter": seconds,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAuthUser obtiene el usuario autenticado desde el contexto.
func GetAuthUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}
