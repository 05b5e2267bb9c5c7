package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"authgate/internal/config"
	"authgate/internal/oauth"
	"authgate/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticacion.
type AuthHandler struct {
	logger    *zap.Logger
	providers *oauth.Registry
	tokenServ *service.TokenService
	userServ  *service.UserService
	cfg       *config.Config
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, providers *oauth.Registry, tokenServ *service.TokenService, userServ *service.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		providers: providers,
		tokenServ: tokenServ,
		userServ:  userServ,
		cfg:       cfg,
	}
}

// Health maneja GET /health.
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"providers": h.providers.Names(),
	})
}

// ClientConfig maneja GET /config. Solo expone configuracion apta para
// el cliente; nunca secretos.
func (h *AuthHandler) ClientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": h.providers.Names(),
		"base_path": h.cfg.BasePath,
		"branding": gin.H{
			"title":    h.cfg.BrandTitle,
			"logo_url": h.cfg.BrandLogoURL,
		},
		"features": gin.H{
			"health":          h.cfg.EnableHealth,
			"user_management": h.cfg.EnableUserManagement,
		},
	})
}

// LoginStart maneja GET /login: genera state y par PKCE y redirige al proveedor.
func (h *AuthHandler) LoginStart(c *gin.Context) {
	provider, err := h.pickProvider(c.Query("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		h.logger.Error("generate state failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	verifier, err := oauth.GenerateCodeVerifier()
	if err != nil {
		h.logger.Error("generate code verifier failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	setFlowCookie(c, stateCookieName, state)
	setFlowCookie(c, pkceCookieName, verifier)

	c.Redirect(http.StatusFound, provider.AuthCodeURL(state, oauth.CodeChallenge(verifier)))
}

// Callback maneja GET /callback: valida state, canjea el codigo, consulta el
// perfil, evalua la politica de acceso y emite el token de sesion.
func (h *AuthHandler) Callback(c *gin.Context) {
	if provErr := c.Query("error"); provErr != "" {
		h.logger.Warn("provider returned error",
			zap.String("error", provErr),
			zap.String("description", c.Query("error_description")),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization failed"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	state := c.Query("state")
	if state == "" || state != flowCookie(c, stateCookieName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	verifier := flowCookie(c, pkceCookieName)
	clearFlowCookie(c, stateCookieName)
	clearFlowCookie(c, pkceCookieName)

	provider, err := h.pickProvider(c.Query("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	token, err := provider.Exchange(c.Request.Context(), code, verifier)
	if err != nil {
		// El detalle del proveedor se queda en el log del servidor.
		h.logger.Error("code exchange failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete login"})
		return
	}

	info, err := provider.FetchUserInfo(c.Request.Context(), token.AccessToken)
	if err != nil {
		h.logger.Error("fetch user info failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete login"})
		return
	}

	h.completeLogin(c, service.SSOInput{
		Email:    info.Email,
		Name:     info.Name,
		Provider: info.Provider,
		Avatar:   info.Avatar,
	})
}

// SSOLogin maneja POST /sso-login: canjea una identidad ya verificada por
// el proveedor por un token de sesion.
func (h *AuthHandler) SSOLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		Provider string `json:"provider"`
		Avatar   string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sso login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": "email and name are required"})
		return
	}

	h.completeLogin(c, service.SSOInput{
		Email:    req.Email,
		Name:     req.Name,
		Provider: req.Provider,
		Avatar:   req.Avatar,
	})
}

// Me maneja GET /me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout maneja POST /logout. No hay sesion del lado servidor que invalidar:
// el cliente descarta su token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (h *AuthHandler) completeLogin(c *gin.Context, input service.SSOInput) {
	user, err := h.userServ.UpsertSSOUser(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "access denied",
				"message": "this email is not allowed to sign in",
			})
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": "a valid email is required"})
		default:
			h.logger.Error("upsert sso user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete login"})
		}
		return
	}

	token, err := h.tokenServ.Issue(user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	h.userServ.RecordSession(c.Request.Context(), user, token, time.Now().UTC().Add(h.tokenServ.Expiry()))

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) pickProvider(name string) (oauth.Provider, error) {
	if name == "" {
		names := h.providers.Names()
		if len(names) == 0 {
			return nil, errors.New("no providers configured")
		}
		name = names[0]
	}
	return h.providers.Get(name)
}
