package oauth

import "fmt"

// ExchangeError conserva la respuesta cruda del proveedor cuando el canje
// del codigo falla. El cuerpo se registra del lado servidor, nunca se expone.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: status %d: %s", e.StatusCode, e.Body)
}

// ProfileFetchError indica que el endpoint de perfil respondio sin exito.
type ProfileFetchError struct {
	StatusCode int
	Body       string
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("profile fetch failed: status %d: %s", e.StatusCode, e.Body)
}
