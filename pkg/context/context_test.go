package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: "u-1", Email: "a@x.com"})

	identity, ok := GetIdentity(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-1", identity.UserID)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "u-1", GetUserID(ctx))
}

func TestGetIdentity_Missing(t *testing.T) {
	_, ok := GetIdentity(context.Background())
	assert.False(t, ok)
	assert.Empty(t, GetUserID(context.Background()))
}

func TestWithOperationAndRequestInfo(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithRequestInfo(ctx, "10.0.0.1", "curl/8")
	ctx = WithOperation(ctx, "service", "Login")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "10.0.0.1", GetClientIP(ctx))
	assert.Equal(t, "curl/8", GetUserAgent(ctx))
	assert.Equal(t, "service", GetModule(ctx))
	assert.Equal(t, "Login", GetFunction(ctx))
	assert.False(t, GetStartTime(ctx).IsZero())
}
