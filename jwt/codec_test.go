package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func signHS(t *testing.T, claims gjwt.Claims) string {
	t.Helper()
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("codec-test-secret-codec-test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestDecodeReadsClaimsWithoutVerification(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	iat := time.Now().Truncate(time.Second)
	token := signHS(t, Claims{
		Role: "ROLE_ADMIN",
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "ana",
			IssuedAt:  gjwt.NewNumericDate(iat),
			ExpiresAt: gjwt.NewNumericDate(exp),
		},
	})

	claims, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Role != "ROLE_ADMIN" {
		t.Fatalf("expected raw role ROLE_ADMIN, got %q", claims.Role)
	}
	if claims.NormalizedRole() != "ADMIN" {
		t.Fatalf("expected normalized role ADMIN, got %q", claims.NormalizedRole())
	}
	if claims.Subject != "ana" {
		t.Fatalf("expected subject ana, got %q", claims.Subject)
	}
	if !claims.Expiry().Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, claims.Expiry())
	}
	if !claims.Issued().Equal(iat) {
		t.Fatalf("expected issued-at %v, got %v", iat, claims.Issued())
	}
}

func TestDecodeAcceptsUnsignedToken(t *testing.T) {
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, Claims{Role: "MESERO"}).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	claims, err := Decode(token)
	if err != nil {
		t.Fatalf("decode unsigned token: %v", err)
	}
	if claims.Role != "MESERO" {
		t.Fatalf("expected MESERO, got %q", claims.Role)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not-a-token",
		"a.b",
		"a.b.c.d",
		"eyJhbGciOiJIUzI1NiJ9.%%%.sig",
		"eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig",
		"eyJhbGciOiJIUzI1NiJ9.eyJleHAiOiJzb29uIn0.sig",
	}

	for _, input := range cases {
		_, err := Decode(input)
		if !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("input %q: expected ErrMalformedToken, got %v", input, err)
		}
	}
}

func TestClaimsExpiredAtBoundary(t *testing.T) {
	exp := time.Unix(1_700_000_000, 0)
	claims := &Claims{RegisteredClaims: gjwt.RegisteredClaims{ExpiresAt: gjwt.NewNumericDate(exp)}}

	if claims.ExpiredAt(exp.Add(-time.Second)) {
		t.Fatal("expected credential to be valid one second before exp")
	}
	if !claims.ExpiredAt(exp) {
		t.Fatal("expected credential to be expired exactly at exp")
	}
	if !claims.ExpiredAt(exp.Add(time.Second)) {
		t.Fatal("expected credential to be expired after exp")
	}

	noExp := &Claims{}
	if noExp.ExpiredAt(time.Now().Add(100 * 365 * 24 * time.Hour)) {
		t.Fatal("credential without exp must never expire")
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "ADMIN", want: "ADMIN"},
		{raw: "ROLE_ADMIN", want: "ADMIN"},
		{raw: " ROLE_MESERO ", want: "MESERO"},
		{raw: "ROLE_", want: ""},
		{raw: "", want: ""},
		{raw: "role_admin", want: "role_admin"},
	}

	for _, tt := range tests {
		if got := NormalizeRole(tt.raw); got != tt.want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPrefixedRole(t *testing.T) {
	if got := PrefixedRole("ADMIN"); got != "ROLE_ADMIN" {
		t.Fatalf("expected ROLE_ADMIN, got %q", got)
	}
	if got := PrefixedRole("ROLE_ADMIN"); got != "ROLE_ADMIN" {
		t.Fatalf("expected prefix not to double, got %q", got)
	}
	if got := PrefixedRole(""); got != "" {
		t.Fatalf("expected empty role to stay empty, got %q", got)
	}
}
