package auth

import (
	"context"
	"errors"
)

// ErrNoIdentity means RequireAccessToken did not run for this request.
var ErrNoIdentity = errors.New("auth: no caller identity in request context")

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxRole
)

// WithIdentity attaches the verified caller to ctx.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	return identityValue(ctx, ctxUserID)
}

func Role(ctx context.Context) (string, error) {
	return identityValue(ctx, ctxRole)
}

func identityValue(ctx context.Context, key ctxKey) (string, error) {
	if s, ok := ctx.Value(key).(string); ok && s != "" {
		return s, nil
	}
	return "", ErrNoIdentity
}
