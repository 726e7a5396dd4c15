package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"observer-console.backend/internal/domain/entities"
	domainerrors "observer-console.backend/internal/domain/errors"
	"observer-console.backend/internal/interfaces/http/response"
)

// MaxWebhookBodyBytes bounds the callback body read before signature verification
const MaxWebhookBodyBytes = 1 << 20

// WebhookService applies signed vendor callbacks
type WebhookService interface {
	HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (*entities.WebhookOutcome, error)
}

// WebhookHandler handles webhook endpoints
type WebhookHandler struct {
	service         WebhookService
	signatureHeader string
}

// NewWebhookHandler creates a new webhook handler reading the signature from signatureHeader
func NewWebhookHandler(service WebhookService, signatureHeader string) *WebhookHandler {
	return &WebhookHandler{service: service, signatureHeader: signatureHeader}
}

// HandleVerificationWebhook handles status callbacks from the verification vendor.
// The body is read raw so the signature is checked over the exact bytes sent.
// POST /api/v1/webhooks/verification
func (h *WebhookHandler) HandleVerificationWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ErrorWithCode(c, http.StatusRequestEntityTooLarge, domainerrors.CodeInvalidInput, "webhook body too large")
			return
		}
		response.Error(c, domainerrors.BadRequest("unreadable webhook body"))
		return
	}

	outcome, err := h.service.HandleWebhook(c.Request.Context(), body, c.GetHeader(h.signatureHeader))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"applied": outcome.Applied,
		"status":  outcome.Status,
	})
}
