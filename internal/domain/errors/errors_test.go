package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"observer-console.backend/pkg/signature"
)

func TestAppError_Constructors(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, CodeInvalidInput, "bad", ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeInvalidInput, err.Code)
	assert.Equal(t, "bad", err.Message)
	assert.Equal(t, ErrInvalidInput.Error(), err.Error())
	assert.True(t, stderrors.Is(err, ErrInvalidInput))

	notFound := NotFound("missing")
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.Equal(t, CodeNotFound, notFound.Code)

	internal := InternalError(stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, CodeInternalError, internal.Code)

	forbidden := Forbidden("forbidden")
	assert.Equal(t, http.StatusForbidden, forbidden.Status)
	assert.Equal(t, CodeForbidden, forbidden.Code)

	unauth := Unauthorized("unauthorized")
	assert.Equal(t, http.StatusUnauthorized, unauth.Status)

	noErr := &AppError{Message: "plain"}
	assert.Equal(t, "plain", noErr.Error())
}

func TestVendorError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("start: %w", &VendorError{StatusCode: 422, Body: `{"detail":"bad workflow"}`})
	assert.True(t, stderrors.Is(err, ErrVendor))

	var vendorErr *VendorError
	assert.True(t, stderrors.As(err, &vendorErr))
	assert.Equal(t, 422, vendorErr.StatusCode)
	assert.Contains(t, vendorErr.Error(), "bad workflow")

	transport := &VendorError{Err: stderrors.New("dial tcp: refused")}
	assert.Contains(t, transport.Error(), "dial tcp")
}

func TestFromError_Taxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrConfiguration, http.StatusInternalServerError, CodeConfigurationError},
		{Invalid("verification_method is required"), http.StatusBadRequest, CodeInvalidInput},
		{ErrMethodNotEnabled, http.StatusBadRequest, CodeMethodNotEnabled},
		{ErrDocumentTypeNotEnabled, http.StatusBadRequest, CodeDocumentTypeNotEnabled},
		{fmt.Errorf("name missing: %w", ErrIncompleteProfile), http.StatusBadRequest, CodeIncompleteProfile},
		{&VendorError{StatusCode: 500, Body: "oops"}, http.StatusBadGateway, CodeVendorError},
		{ErrMissingSignature, http.StatusUnauthorized, CodeMissingSignature},
		{ErrInvalidSignature, http.StatusUnauthorized, CodeInvalidSignature},
		{ErrUnknownSession, http.StatusNotFound, CodeUnknownSession},
		{ErrNotFound, http.StatusNotFound, CodeNotFound},
		{ErrForbidden, http.StatusForbidden, CodeForbidden},
		{ErrInvalidState, http.StatusConflict, CodeInvalidState},
		{ErrInvalidTransition, http.StatusConflict, CodeInvalidTransition},
		{stderrors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			appErr := FromError(tc.err)
			assert.Equal(t, tc.status, appErr.Status)
			assert.Equal(t, tc.code, appErr.Code)
		})
	}

	existing := Forbidden("nope")
	assert.Same(t, existing, FromError(existing))
}

func TestFromError_SignatureFailures(t *testing.T) {
	ctx := context.Background()
	body := []byte(`{"session_id":"abc123"}`)

	missing := FromError(signature.Verify(ctx, "s3cret", body, ""))
	assert.Equal(t, http.StatusUnauthorized, missing.Status)
	assert.Equal(t, CodeMissingSignature, missing.Code)

	invalid := FromError(signature.Verify(ctx, "s3cret", body, signature.Sign("other", body)))
	assert.Equal(t, http.StatusUnauthorized, invalid.Status)
	assert.Equal(t, CodeInvalidSignature, invalid.Code)
}
