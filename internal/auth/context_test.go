package auth

import (
	"context"
	"errors"
	"testing"
)

func TestIdentityRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), "u1", "seller")

	uid, err := UserID(ctx)
	if err != nil || uid != "u1" {
		t.Fatalf("user id: got %q, %v", uid, err)
	}
	role, err := Role(ctx)
	if err != nil || role != "seller" {
		t.Fatalf("role: got %q, %v", role, err)
	}
}

func TestIdentityMissing(t *testing.T) {
	if _, err := UserID(context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
	if _, err := Role(WithIdentity(context.Background(), "u1", "")); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity for empty role, got %v", err)
	}
}
