package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestProvider(t *testing.T, cfg MicrosoftConfig) *MicrosoftProvider {
	t.Helper()
	if cfg.ClientID == "" {
		cfg.ClientID = "client-1"
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "https://app.example.com/auth/callback"
	}
	p, err := NewMicrosoftProvider(cfg)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestMicrosoftProvider_RequiresClientIDAndRedirect(t *testing.T) {
	if _, err := NewMicrosoftProvider(MicrosoftConfig{RedirectURL: "https://x"}); err == nil {
		t.Fatalf("expected error without client id")
	}
	if _, err := NewMicrosoftProvider(MicrosoftConfig{ClientID: "id"}); err == nil {
		t.Fatalf("expected error without redirect url")
	}
}

func TestMicrosoftProvider_AuthCodeURL(t *testing.T) {
	p := newTestProvider(t, MicrosoftConfig{Tenant: "contoso"})

	raw := p.AuthCodeURL("state-1", "challenge-1")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "login.microsoftonline.com" {
		t.Fatalf("unexpected host: %s", u.Host)
	}
	q := u.Query()
	if q.Get("response_type") != "code" {
		t.Fatalf("expected response_type=code, got %s", q.Get("response_type"))
	}
	if q.Get("state") != "state-1" {
		t.Fatalf("expected state, got %s", q.Get("state"))
	}
	if q.Get("code_challenge") != "challenge-1" || q.Get("code_challenge_method") != "S256" {
		t.Fatalf("expected PKCE params, got %s / %s", q.Get("code_challenge"), q.Get("code_challenge_method"))
	}
	if q.Get("client_id") != "client-1" {
		t.Fatalf("expected client_id, got %s", q.Get("client_id"))
	}
}

func TestMicrosoftProvider_AuthCodeURLWithoutPKCE(t *testing.T) {
	p := newTestProvider(t, MicrosoftConfig{})

	u, err := url.Parse(p.AuthCodeURL("state-1", ""))
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Query().Get("code_challenge") != "" {
		t.Fatalf("expected no PKCE params")
	}
}

func TestMicrosoftProvider_Exchange(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, MicrosoftConfig{TokenURL: srv.URL})

	token, err := p.Exchange(context.Background(), "code-1", "verifier-1")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if token.AccessToken != "at-1" {
		t.Fatalf("unexpected access token: %s", token.AccessToken)
	}
	if form.Get("grant_type") != "authorization_code" {
		t.Fatalf("expected authorization_code grant, got %s", form.Get("grant_type"))
	}
	if form.Get("code") != "code-1" || form.Get("code_verifier") != "verifier-1" {
		t.Fatalf("expected code and verifier, got %s / %s", form.Get("code"), form.Get("code_verifier"))
	}
	// Cliente publico: sin secret configurado no debe enviarse.
	if form.Get("client_secret") != "" {
		t.Fatalf("expected no client_secret, got %s", form.Get("client_secret"))
	}
}

func TestMicrosoftProvider_ExchangeSendsConfiguredSecret(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, MicrosoftConfig{TokenURL: srv.URL, ClientSecret: "s3cret"})

	if _, err := p.Exchange(context.Background(), "code-1", ""); err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if form.Get("client_secret") != "s3cret" {
		t.Fatalf("expected client_secret, got %s", form.Get("client_secret"))
	}
	if form.Get("code_verifier") != "" {
		t.Fatalf("expected no code_verifier when absent")
	}
}

func TestMicrosoftProvider_ExchangeErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"expired code"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, MicrosoftConfig{TokenURL: srv.URL})

	_, err := p.Exchange(context.Background(), "bad-code", "")
	var exchangeErr *ExchangeError
	if !errors.As(err, &exchangeErr) {
		t.Fatalf("expected ExchangeError, got %v", err)
	}
	if exchangeErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", exchangeErr.StatusCode)
	}
	if exchangeErr.Body == "" {
		t.Fatalf("expected raw provider body preserved")
	}
}

func TestMicrosoftProvider_FetchUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer at-1" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"sub-1","name":"Ada Lovelace","email":"ada@acme.com","picture":"https://p/a.png"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, MicrosoftConfig{UserInfoURL: srv.URL})

	info, err := p.FetchUserInfo(context.Background(), "at-1")
	if err != nil {
		t.Fatalf("fetch user info: %v", err)
	}
	if info.ID != "sub-1" || info.Email != "ada@acme.com" || info.Name != "Ada Lovelace" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Provider != "microsoft" {
		t.Fatalf("expected provider tag, got %s", info.Provider)
	}
}

func TestMicrosoftProvider_FetchUserInfoFallsBackToPreferredUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"sub-1","name":"Ada","preferred_username":"ada@acme.com"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, MicrosoftConfig{UserInfoURL: srv.URL})

	info, err := p.FetchUserInfo(context.Background(), "at-1")
	if err != nil {
		t.Fatalf("fetch user info: %v", err)
	}
	if info.Email != "ada@acme.com" {
		t.Fatalf("expected fallback email, got %s", info.Email)
	}
}

func TestMicrosoftProvider_FetchUserInfoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, MicrosoftConfig{UserInfoURL: srv.URL})

	_, err := p.FetchUserInfo(context.Background(), "bad")
	var profileErr *ProfileFetchError
	if !errors.As(err, &profileErr) {
		t.Fatalf("expected ProfileFetchError, got %v", err)
	}
	if profileErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", profileErr.StatusCode)
	}
}

func TestRegistry(t *testing.T) {
	p := newTestProvider(t, MicrosoftConfig{})
	r := NewRegistry(p)

	got, err := r.Get("microsoft")
	if err != nil {
		t.Fatalf("get provider: %v", err)
	}
	if got.Name() != "microsoft" {
		t.Fatalf("unexpected provider: %s", got.Name())
	}
	if _, err := r.Get("github"); err == nil {
		t.Fatalf("expected error for unregistered provider")
	}
	names := r.Names()
	if len(names) != 1 || names[0] != "microsoft" {
		t.Fatalf("unexpected names: %+v", names)
	}
}
