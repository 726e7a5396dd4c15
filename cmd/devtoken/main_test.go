package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"observer-console.backend/internal/config"
	"observer-console.backend/pkg/jwt"
)

func testDeps(secret string, out *bytes.Buffer) devTokenDeps {
	return devTokenDeps{
		loadEnv: func() error { return errors.New("no .env") },
		loadCfg: func() *config.Config {
			return &config.Config{JWT: config.JWTConfig{Secret: secret, Issuer: "observer-console", Expiry: time.Hour}}
		},
		out: out,
	}
}

func tokenFrom(t *testing.T, output string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if after, ok := strings.CutPrefix(line, "TOKEN="); ok {
			return after
		}
	}
	t.Fatalf("no token in output: %s", output)
	return ""
}

func TestRun_IssuesValidToken(t *testing.T) {
	var out bytes.Buffer
	userID := uuid.New()

	err := run(testDeps("secret", &out), devTokenOptions{userID: userID.String(), email: "a@example.org", role: "admin"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "USER_ID="+userID.String())

	claims, err := jwt.NewJWTService("secret", "observer-console", time.Hour).ValidateToken(tokenFrom(t, out.String()))
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "admin", claims.Role)
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	err := run(testDeps("", &out), devTokenOptions{role: "observer"})
	assert.ErrorContains(t, err, "JWT_SECRET")

	err = run(testDeps("secret", &out), devTokenOptions{role: "root"})
	assert.ErrorContains(t, err, "invalid role")

	err = run(testDeps("secret", &out), devTokenOptions{userID: "nope", role: "observer"})
	assert.ErrorContains(t, err, "invalid user id")
	assert.Empty(t, out.String())
}
