package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const microsoftName = "microsoft"

// Timeout para todas las llamadas HTTP al proveedor.
const providerHTTPTimeout = 10 * time.Second

// MicrosoftConfig configura el proveedor contra la plataforma de identidad
// de Microsoft. Las URLs se derivan del tenant salvo que se indiquen.
type MicrosoftConfig struct {
	ClientID     string
	ClientSecret string
	Tenant       string
	RedirectURL  string
	Scopes       []string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// MicrosoftProvider implementa Provider con el flujo authorization_code + PKCE.
// Soporta cliente publico: el secret es opcional.
type MicrosoftProvider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewMicrosoftProvider(cfg MicrosoftConfig) (*MicrosoftProvider, error) {
	if cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("microsoft oauth config missing required fields")
	}

	tenant := cfg.Tenant
	if tenant == "" {
		tenant = "common"
	}
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/authorize", tenant)
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenant)
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = "https://graph.microsoft.com/oidc/userinfo"
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
			// Credenciales en el cuerpo del POST, como espera el
			// endpoint v2.0 para clientes publicos.
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &MicrosoftProvider{
		oauthConfig: oauthCfg,
		userInfoURL: userInfoURL,
		httpClient:  &http.Client{Timeout: providerHTTPTimeout},
	}, nil
}

// Name devuelve el identificador usado por el registry.
func (p *MicrosoftProvider) Name() string {
	return microsoftName
}

// AuthCodeURL construye la URL de autorizacion con response_type=code y,
// si hay challenge, los parametros PKCE S256.
func (p *MicrosoftProvider) AuthCodeURL(state, codeChallenge string) string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if codeChallenge != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", codeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
	}
	return p.oauthConfig.AuthCodeURL(state, opts...)
}

// Exchange canjea el codigo por tokens. Incluye code_verifier si esta
// presente y el client secret solo si fue configurado.
func (p *MicrosoftProvider) Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}

	token, err := p.oauthConfig.Exchange(ctx, code, opts...)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, &ExchangeError{StatusCode: status, Body: string(retrieveErr.Body)}
		}
		return nil, err
	}
	return token, nil
}

// FetchUserInfo consulta el endpoint de perfil y normaliza los campos.
func (p *MicrosoftProvider) FetchUserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return UserInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return UserInfo{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return UserInfo{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UserInfo{}, &ProfileFetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var raw struct {
		Sub               string `json:"sub"`
		Name              string `json:"name"`
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
		Picture           string `json:"picture"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return UserInfo{}, err
	}

	email := strings.TrimSpace(raw.Email)
	if email == "" {
		// Algunos tenants solo devuelven preferred_username.
		email = strings.TrimSpace(raw.PreferredUsername)
	}

	return UserInfo{
		ID:       raw.Sub,
		Email:    email,
		Name:     raw.Name,
		Avatar:   raw.Picture,
		Provider: microsoftName,
	}, nil
}
