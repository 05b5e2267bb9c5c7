package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"authgate/internal/domain"
	"authgate/internal/repository"
)

// UserService coordina reglas de negocio para el directorio de usuarios.
type UserService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	sessions repository.SessionRepository
	policy   *AccessPolicy
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, sessions repository.SessionRepository, policy *AccessPolicy) *UserService {
	if policy == nil {
		policy = NewAccessPolicy(nil, nil)
	}
	return &UserService{
		logger:   logger,
		users:    users,
		sessions: sessions,
		policy:   policy,
	}
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAccessDenied   = errors.New("email not allowed")
	ErrInvalidRole    = errors.New("invalid role")
	ErrLastSuperAdmin = errors.New("cannot remove the last super_admin")
	ErrInvalidEmail   = errors.New("invalid email")
)

type SSOInput struct {
	Email    string
	Name     string
	Provider string
	Avatar   string
}

// UpsertSSOUser crea o actualiza un usuario a partir de una identidad
// verificada por el proveedor y deja estampado el ultimo login.
// El primer usuario del directorio recibe super_admin; el resto, user.
func (s *UserService) UpsertSSOUser(ctx context.Context, input SSOInput) (domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !s.policy.IsAllowed(email) {
		// Denegado: no se crea ni se toca ninguna fila.
		return domain.User{}, ErrAccessDenied
	}

	now := time.Now().UTC()
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		existing.LastLogin = &now
		existing.UpdatedAt = now
		if name := strings.TrimSpace(input.Name); name != "" {
			existing.Name = name
		}
		if avatar := strings.TrimSpace(input.Avatar); avatar != "" {
			existing.Avatar = avatar
		}
		if provider := strings.ToLower(strings.TrimSpace(input.Provider)); provider != "" {
			existing.Provider = provider
		}
		if err := s.users.Update(ctx, existing); err != nil {
			return domain.User{}, err
		}
		return existing, nil
	}
	if !repository.IsNotFound(err) {
		return domain.User{}, err
	}

	role := domain.RoleUser
	count, err := s.users.Count(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if count == 0 {
		role = domain.RoleSuperAdmin
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(input.Name),
		Role:      role,
		Avatar:    strings.TrimSpace(input.Avatar),
		Provider:  strings.ToLower(strings.TrimSpace(input.Provider)),
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: &now,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// GetUser busca un usuario por id.
func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ListUsers devuelve todos los usuarios del directorio.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateRole cambia el rol de un usuario. Rechaza el cambio que dejaria
// al directorio sin ningun super_admin.
func (s *UserService) UpdateRole(ctx context.Context, id, roleName string) (domain.User, error) {
	role, ok := domain.ParseRole(strings.TrimSpace(roleName))
	if !ok {
		return domain.User{}, ErrInvalidRole
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if user.Role == domain.RoleSuperAdmin && role != domain.RoleSuperAdmin {
		supers, err := s.users.CountByRole(ctx, domain.RoleSuperAdmin)
		if err != nil {
			return domain.User{}, err
		}
		if supers <= 1 {
			return domain.User{}, ErrLastSuperAdmin
		}
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		if repository.IsNotFound(err) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	user.Role = role
	return user, nil
}

// SetActive activa o desactiva un usuario.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		if repository.IsNotFound(err) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	user.IsActive = active
	return user, nil
}

// RecordSession guarda un registro informativo del token emitido.
// Es best-effort: un fallo aqui no interrumpe el login.
func (s *UserService) RecordSession(ctx context.Context, user domain.User, token string, expiresAt time.Time) {
	if s.sessions == nil || token == "" {
		return
	}
	sum := sha256.Sum256([]byte(token))
	record := domain.SessionRecord{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hex.EncodeToString(sum[:]),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, record); err != nil && s.logger != nil {
		s.logger.Warn("record session failed", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
