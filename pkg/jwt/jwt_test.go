package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := NewJWTService("secret", "observer-console", time.Minute)
	userID := uuid.New()

	token, err := svc.IssueToken(userID, "ana@example.org", "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "ana@example.org", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTService_ValidateInvalidToken(t *testing.T) {
	svc := NewJWTService("secret", "", time.Minute)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService("other-secret", "", time.Minute)
	token, err := other.IssueToken(uuid.New(), "x@y.z", "observer")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("secret", "", -time.Second)

	token, err := svc.IssueToken(uuid.New(), "expired@example.org", "observer")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_IssuerMismatch(t *testing.T) {
	issuer := NewJWTService("secret", "someone-else", time.Minute)
	token, err := issuer.IssueToken(uuid.New(), "x@y.z", "observer")
	require.NoError(t, err)

	_, err = NewJWTService("secret", "observer-console", time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsNonUUIDSubject(t *testing.T) {
	claims := gjwt.MapClaims{
		"sub":   "not-a-uuid",
		"email": "x@y.z",
		"exp":   time.Now().Add(time.Minute).Unix(),
	}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", "", time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateWrongSigningMethod(t *testing.T) {
	claims := gjwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Minute).Unix(),
	}
	unsigned, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService("secret", "", time.Minute).ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_SignFailure(t *testing.T) {
	orig := signJWTToken
	t.Cleanup(func() { signJWTToken = orig })
	signJWTToken = func(*gjwt.Token, []byte) (string, error) {
		return "", errors.New("sign failed")
	}

	_, err := NewJWTService("secret", "", time.Minute).IssueToken(uuid.New(), "x@y.z", "observer")
	assert.Error(t, err)
}
