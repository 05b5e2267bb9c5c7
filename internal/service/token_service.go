package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authgate/internal/domain"
)

// TokenService emite y valida tokens de sesion firmados.
type TokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrSecretTooShort = errors.New("jwt secret must be at least 32 characters")
)

const (
	minSecretLength = 32
	defaultExpiry   = 7 * 24 * time.Hour
)

func NewTokenService(secret string, expiry time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	if expiry <= 0 {
		expiry = defaultExpiry
	}
	return &TokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: "authgate",
	}, nil
}

// Expiry devuelve la duracion configurada para los tokens emitidos.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue firma un token con la identidad del usuario.
func (s *TokenService) Issue(user domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify valida firma y expiracion y devuelve los claims.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// DecodeUnsafe parsea claims sin validar la firma. Solo para introspeccion,
// nunca para decisiones de autorizacion.
func (s *TokenService) DecodeUnsafe(tokenString string) (Claims, bool) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, false
	}
	var claims Claims
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(tokenString, &claims)
	if err != nil {
		return Claims{}, false
	}
	return claims, true
}

// ExtractFromHeader acepta solo la forma "Bearer <token>".
// Cualquier otra forma devuelve vacio, no error.
func ExtractFromHeader(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
