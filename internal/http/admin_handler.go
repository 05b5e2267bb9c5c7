package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"authgate/internal/service"
)

// AdminHandler mantiene dependencias para la administracion de usuarios.
type AdminHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

// NewAdminHandler crea una instancia de AdminHandler.
func NewAdminHandler(logger *zap.Logger, userServ *service.UserService) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// ListUsers maneja GET /users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userServ.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateRole maneja PUT /users/:id/role.
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": "role is required"})
		return
	}

	user, err := h.userServ.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role", "message": "role must be user, admin or super_admin"})
		case errors.Is(err, service.ErrLastSuperAdmin):
			c.JSON(http.StatusBadRequest, gin.H{"error": "last super_admin", "message": "cannot remove the last super_admin"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			h.logger.Error("update role failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update role"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Deactivate maneja POST /users/:id/deactivate.
func (h *AdminHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Reactivate maneja POST /users/:id/reactivate.
func (h *AdminHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *AdminHandler) setActive(c *gin.Context, active bool) {
	user, err := h.userServ.SetActive(c.Request.Context(), c.Param("id"), active)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("set active failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
