// Package signature verifies HMAC-SHA256 webhook signatures of the form "sha256=<hex>".
package signature

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"observer-console.backend/pkg/logger"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Prefix is the scheme marker at the start of a signature header value
const Prefix = "sha256="

// Sign returns the header value for body under secret
func Sign(secret string, body []byte) string {
	return Prefix + hex.EncodeToString(digest(secret, body))
}

// Verify checks header against the HMAC of the raw body bytes.
// An empty secret disables the check; the server only allows that when explicitly configured.
func Verify(ctx context.Context, secret string, body []byte, header string) error {
	if secret == "" {
		logger.Warn(ctx, "Webhook secret not configured, accepting unsigned webhook")
		return nil
	}

	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}

	if !strings.HasPrefix(header, Prefix) {
		return ErrInvalidSignature
	}

	provided, err := hex.DecodeString(strings.TrimPrefix(header, Prefix))
	if err != nil {
		return ErrInvalidSignature
	}

	if !hmac.Equal(provided, digest(secret, body)) {
		return ErrInvalidSignature
	}
	return nil
}

func digest(secret string, body []byte) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return h.Sum(nil)
}
