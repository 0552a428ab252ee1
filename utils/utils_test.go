package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantOK     bool
	}{
		{"not found", NotFound("Order #%d not found", 3), http.StatusNotFound, true},
		{"invalid", Invalid("bad"), http.StatusBadRequest, true},
		{"unauthorized", Unauthorized("no"), http.StatusUnauthorized, true},
		{"ai unavailable", AIUnavailable(errors.New("down")), http.StatusServiceUnavailable, true},
		{"rate limited", RateLimited(12), http.StatusTooManyRequests, true},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("gone")), http.StatusNotFound, true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, true},
		{"internal", errors.New("boom"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, ok := StatusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := AIUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "AI service unavailable: quota exceeded", err.Error())
	assert.Equal(t, 12, RateLimited(12).RetryAfter)
}

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)

	token, expiresAt, err := tm.GenerateToken("admin", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)

	_, err = NewTokenManager("other", time.Minute).ParseToken(token)
	assert.Error(t, err)

	expired, _, err := NewTokenManager("secret", -time.Minute).GenerateToken("admin", "admin")
	require.NoError(t, err)
	_, err = tm.ParseToken(expired)
	assert.Error(t, err)
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFrom(ctx))
	assert.Len(t, NewRequestID(), 36)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, logrus.FatalLevel, ParseLevel("CRITICAL"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("verbose"))

	InitLogger("ERROR", "json")
	assert.Equal(t, logrus.ErrorLevel, InfoLogger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, InfoLogger.Formatter)
}
