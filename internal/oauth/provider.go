package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// UserInfo es la forma canonica del perfil devuelto por un proveedor.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Provider string `json:"provider"`
}

// Provider define el contrato que implementa cada proveedor externo.
// Un proveedor devuelve hechos de identidad; no crea usuarios ni sesiones.
type Provider interface {
	// Name devuelve el identificador del proveedor (p.ej. "microsoft").
	Name() string

	// AuthCodeURL construye la URL de autorizacion. El state y los
	// parametros PKCE los aporta quien llama; codeChallenge vacio
	// omite PKCE.
	AuthCodeURL(state, codeChallenge string) string

	// Exchange canjea el codigo de autorizacion por tokens del proveedor.
	Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error)

	// FetchUserInfo consulta el perfil con el access token y lo normaliza.
	FetchUserInfo(ctx context.Context, accessToken string) (UserInfo, error)
}

// Registry mantiene los proveedores configurados indexados por nombre.
type Registry struct {
	providers map[string]Provider
	names     []string
}

// NewRegistry registra los proveedores dados. Los nombres deben ser unicos.
func NewRegistry(list ...Provider) *Registry {
	m := make(map[string]Provider)
	var names []string
	for _, p := range list {
		if _, ok := m[p.Name()]; !ok {
			names = append(names, p.Name())
		}
		m[p.Name()] = p
	}
	return &Registry{providers: m, names: names}
}

// Get devuelve el proveedor por nombre o error si no esta registrado.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}
	return p, nil
}

// Names lista los nombres de proveedores registrados, en orden de registro.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
