package auth

import (
	"errors"
	"testing"
	"time"

	"shophub/internal/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m := newTestManager(t)

	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, "user-1", "seller")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(1*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "seller" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m, _ := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	p, err := m.IssuePair(time.Now(), "u", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.RefreshToken, TokenTypeAccess, time.Now()); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Fatalf("expected token_type mismatch, got %v", err)
	}
}

func TestIdentifyAcceptsAnyValidTokenType(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p, err := m.IssuePair(now, "u1", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, tok := range []string{p.AccessToken, p.RefreshToken} {
		id, err := m.Identify(tok, now)
		if err != nil {
			t.Fatalf("identify: %v", err)
		}
		if id != "u1" {
			t.Fatalf("expected u1, got %q", id)
		}
	}
}

func TestIdentifyRejectsExpiredToken(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p, err := m.IssuePair(now, "u1", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Identify(p.AccessToken, now.Add(time.Hour)); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestIdentifyRejectsForeignSecret(t *testing.T) {
	m := newTestManager(t)
	other, _ := NewManager(config.AuthConfig{JWTSecret: "other", JWTIssuer: "issuer", JWTAudience: "aud", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})

	now := time.Unix(1700000000, 0).UTC()
	p, err := other.IssuePair(now, "u1", "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Identify(p.AccessToken, now); err == nil {
		t.Fatalf("expected signature failure")
	}
	if _, err := m.Identify("not-a-jwt", now); err == nil {
		t.Fatalf("expected malformed token failure")
	}
}

func TestDecodeEnforcesIssuerAndAudience(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	other, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "someone-else",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	pair, err := other.IssuePair(now, "user-1", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m := newTestManager(t)
	if _, err := m.Decode(pair.AccessToken, now); err == nil {
		t.Fatalf("expected issuer mismatch to be rejected")
	}
	if _, err := other.Decode(pair.AccessToken, now); err != nil {
		t.Fatalf("expected own token to decode, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"":               false,
		"Bearer":         false,
		"Bearer ":        false,
		"Basic abc":      false,
		"Bearer abc.def": true,
	}
	for header, ok := range cases {
		tok, err := BearerToken(header)
		if ok && (err != nil || tok == "") {
			t.Fatalf("%q: expected token, got %q %v", header, tok, err)
		}
		if !ok && !errors.Is(err, ErrMissingBearer) {
			t.Fatalf("%q: expected ErrMissingBearer, got %v", header, err)
		}
	}
}
