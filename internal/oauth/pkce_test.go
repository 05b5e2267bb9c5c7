package oauth

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
)

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("generate state: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected 32 bytes in hex (64 chars), got %d", len(a))
	}
	if _, err := hex.DecodeString(a); err != nil {
		t.Fatalf("expected hex string: %v", err)
	}

	b, err := GenerateState()
	if err != nil {
		t.Fatalf("generate state: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct states")
	}
}

func TestGenerateCodeVerifier(t *testing.T) {
	v, err := GenerateCodeVerifier()
	if err != nil {
		t.Fatalf("generate verifier: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		t.Fatalf("expected base64url verifier: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 random bytes, got %d", len(raw))
	}
}

func TestCodeChallenge(t *testing.T) {
	// Vector de RFC 7636 apendice B.
	const verifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	const want = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	got := CodeChallenge(verifier)
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got != CodeChallenge(verifier) {
		t.Fatalf("expected deterministic challenge")
	}
	if strings.Contains(got, "=") {
		t.Fatalf("expected unpadded base64url")
	}
}
