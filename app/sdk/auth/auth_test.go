package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/mail"
	"os"
	"testing"

	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/foundation/keystore"
	"github.com/lyracrm/lyra/foundation/logger"
)

const (
	kid    = "54bb2165-71e1-41a6-af3e-7da4a0e1e2c1"
	issuer = "https://lyracrm.com/auth/"
)

func newTestAuth(t *testing.T) *auth.Auth {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %s", err)
	}

	block := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	ks := keystore.New()
	if err := ks.AddPrivateKeyPEM(kid, pem.EncodeToMemory(&block)); err != nil {
		t.Fatalf("adding key: %s", err)
	}

	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	return auth.New(auth.Config{
		Log:       log,
		KeyLookup: ks,
		Issuer:    issuer,
		ActiveKID: kid,
	})
}

func Test_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := newTestAuth(t)

	usr := userbus.User{
		ID:    42,
		Name:  name.MustParse("Ada Lovelace"),
		Email: mail.Address{Address: "ada@example.com"},
		Role:  role.Operator,
	}

	token, err := a.GenerateToken(usr)
	if err != nil {
		t.Fatalf("generating token: %s", err)
	}

	claims, err := a.Authenticate(ctx, "Bearer "+token)
	if err != nil {
		t.Fatalf("authenticate: %s", err)
	}

	if claims.Subject != "42" {
		t.Errorf("subject: got %q, exp %q", claims.Subject, "42")
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("email: got %q, exp %q", claims.Email, "ada@example.com")
	}
	if claims.Role != role.Operator.String() {
		t.Errorf("role: got %q, exp %q", claims.Role, role.Operator)
	}
	if claims.Issuer != issuer {
		t.Errorf("issuer: got %q, exp %q", claims.Issuer, issuer)
	}
}

func Test_Authenticate_Malformed(t *testing.T) {
	ctx := context.Background()
	a := newTestAuth(t)

	if _, err := a.Authenticate(ctx, "not-a-bearer-token"); err == nil {
		t.Error("expected failure without the Bearer prefix")
	}

	if _, err := a.Authenticate(ctx, "Bearer garbage"); err == nil {
		t.Error("expected failure on a malformed token")
	}
}

func Test_Authenticate_WrongIssuer(t *testing.T) {
	ctx := context.Background()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %s", err)
	}

	block := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	ks := keystore.New()
	if err := ks.AddPrivateKeyPEM(kid, pem.EncodeToMemory(&block)); err != nil {
		t.Fatalf("adding key: %s", err)
	}

	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	signer := auth.New(auth.Config{Log: log, KeyLookup: ks, Issuer: "https://evil.example.com/", ActiveKID: kid})
	verifier := auth.New(auth.Config{Log: log, KeyLookup: ks, Issuer: issuer, ActiveKID: kid})

	token, err := signer.GenerateToken(userbus.User{ID: 1, Role: role.Viewer})
	if err != nil {
		t.Fatalf("generating token: %s", err)
	}

	if _, err := verifier.Authenticate(ctx, "Bearer "+token); err == nil {
		t.Error("expected failure on an issuer mismatch")
	}
}

func Test_Authorize(t *testing.T) {
	ctx := context.Background()
	a := newTestAuth(t)

	claims := auth.Claims{Role: role.Operator.String()}

	if err := a.Authorize(ctx, claims, role.Admin, role.Operator); err != nil {
		t.Errorf("allowed role: %s", err)
	}

	err := a.Authorize(ctx, claims, role.Admin)
	if !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("denied role: got %v, exp %v", err, auth.ErrForbidden)
	}

	if err := a.Authorize(ctx, claims); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("no allowed roles: got %v, exp %v", err, auth.ErrForbidden)
	}
}
