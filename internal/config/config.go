package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	BasePath    string `env:"BASE_PATH" envDefault:"/auth"`

	JWTSecret      string `env:"JWT_SECRET,required"`
	JWTExpiryHours int    `env:"JWT_EXPIRY_HOURS" envDefault:"168"`

	OAuthClientID     string   `env:"OAUTH_CLIENT_ID"`
	OAuthClientSecret string   `env:"OAUTH_CLIENT_SECRET"`
	OAuthTenant       string   `env:"OAUTH_TENANT" envDefault:"common"`
	OAuthRedirectURL  string   `env:"OAUTH_REDIRECT_URL"`
	OAuthScopes       []string `env:"OAUTH_SCOPES" envSeparator:"," envDefault:"openid,profile,email"`

	AllowedDomains []string `env:"ALLOWED_DOMAINS" envSeparator:","`
	AllowedEmails  []string `env:"ALLOWED_EMAILS" envSeparator:","`

	TokenCookieName string `env:"TOKEN_COOKIE_NAME" envDefault:"auth_token"`
	TokenQueryParam string `env:"TOKEN_QUERY_PARAM" envDefault:"token"`
	TokenHeaderName string `env:"TOKEN_HEADER_NAME" envDefault:"X-Auth-Token"`

	BrandTitle   string `env:"BRAND_TITLE" envDefault:"Sign in"`
	BrandLogoURL string `env:"BRAND_LOGO_URL"`

	EnableHealth         bool `env:"ENABLE_HEALTH" envDefault:"true"`
	EnableUserManagement bool `env:"ENABLE_USER_MANAGEMENT" envDefault:"true"`

	RateLimitMax      int `env:"RATE_LIMIT_MAX" envDefault:"60"`
	RateLimitWindowMS int `env:"RATE_LIMIT_WINDOW_MS" envDefault:"60000"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
