package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"observer-console.backend/internal/domain/entities"
	domainerrors "observer-console.backend/internal/domain/errors"
	"observer-console.backend/internal/domain/repositories"
	"observer-console.backend/internal/infrastructure/metrics"
	"observer-console.backend/pkg/logger"
	"observer-console.backend/pkg/signature"
)

// WebhookUsecase applies signed vendor callbacks to verification sessions
type WebhookUsecase struct {
	sessionRepo repositories.VerificationSessionRepository
	profileRepo repositories.UserProfileRepository
	uow         repositories.UnitOfWork
	publisher   StatusEventPublisher
	secret      string
	now         func() time.Time
}

// NewWebhookUsecase creates a new webhook usecase
func NewWebhookUsecase(
	sessionRepo repositories.VerificationSessionRepository,
	profileRepo repositories.UserProfileRepository,
	uow repositories.UnitOfWork,
	publisher StatusEventPublisher,
	secret string,
) *WebhookUsecase {
	return &WebhookUsecase{
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		uow:         uow,
		publisher:   publisher,
		secret:      secret,
		now:         time.Now,
	}
}

// SetClock replaces the time source (used by tests)
func (u *WebhookUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// HandleWebhook verifies, parses and applies one vendor callback.
// The session update and profile propagation commit together; the status event
// is published afterwards.
func (u *WebhookUsecase) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (*entities.WebhookOutcome, error) {
	if err := signature.Verify(ctx, u.secret, rawBody, signatureHeader); err != nil {
		metrics.Webhooks.WithLabelValues(metrics.WebhookRejectedAuth).Inc()
		logger.Warn(ctx, "Rejected webhook signature", zap.Error(err))
		return nil, err
	}

	payload, status, err := parseWebhookPayload(rawBody)
	if err != nil {
		metrics.Webhooks.WithLabelValues(metrics.WebhookRejectedPayload).Inc()
		return nil, err
	}

	var (
		outcome  *entities.WebhookOutcome
		previous entities.VerificationStatus
		session  *entities.VerificationSession
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		current, err := u.sessionRepo.GetByVendorSessionID(lockCtx, payload.SessionID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrUnknownSession
		}
		if err != nil {
			return err
		}
		session, previous = current, current.Status

		switch current.DecideTransition(status) {
		case entities.TransitionIgnore:
			logger.Info(txCtx, "Ignoring stale webhook for terminal session",
				zap.String("vendor_session_id", payload.SessionID),
				zap.String("current_status", string(current.Status)),
				zap.String("incoming_status", string(status)),
			)
			outcome = &entities.WebhookOutcome{VerificationID: current.ID, Status: current.Status}
			return nil
		case entities.TransitionReject:
			return domainerrors.ErrInvalidTransition
		}

		now := u.now()
		update := &entities.VerificationUpdate{
			Status:               status,
			ConfidenceScore:      payload.ConfidenceScore,
			ExtractedData:        payload.ExtractedData,
			VerificationMetadata: payload.VerificationMetadata,
			VendorRawResponse:    json.RawMessage(rawBody),
			UpdatedAt:            now,
		}
		if status == entities.VerificationStatusVerified {
			update.VerifiedAt = current.VerifiedAt
			if !update.VerifiedAt.Valid {
				update.VerifiedAt.SetValid(now)
			}
		}

		err = u.sessionRepo.ApplyUpdate(lockCtx, current.ID, current.Status, update)
		if errors.Is(err, domainerrors.ErrInvalidState) {
			return domainerrors.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if profileUpdate, ok := entities.ProfileUpdateFor(status, now, payload.ConfidenceScore); ok {
			if status == entities.VerificationStatusVerified {
				profileUpdate.Date = update.VerifiedAt
			}
			if err := u.profileRepo.UpdateVerificationStatus(lockCtx, current.UserID, profileUpdate); err != nil {
				return err
			}
		}

		outcome = &entities.WebhookOutcome{VerificationID: current.ID, Status: status, Applied: true}
		return nil
	})
	if err != nil {
		metrics.Webhooks.WithLabelValues(webhookFailureResult(err)).Inc()
		logger.Warn(ctx, "Webhook processing failed",
			zap.String("vendor_session_id", payload.SessionID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, err
	}

	if !outcome.Applied {
		metrics.Webhooks.WithLabelValues(metrics.WebhookIgnored).Inc()
		return outcome, nil
	}
	metrics.Webhooks.WithLabelValues(metrics.WebhookApplied).Inc()

	if previous != status {
		publishStatusChanged(ctx, u.publisher, entities.StatusChangedEvent{
			VerificationID:  session.ID,
			VendorSessionID: session.VendorSessionID,
			UserID:          session.UserID,
			PreviousStatus:  previous,
			Status:          status,
			Source:          entities.EventSourceWebhook,
			OccurredAt:      u.now(),
		})
	}
	return outcome, nil
}

func parseWebhookPayload(rawBody []byte) (*entities.WebhookPayload, entities.VerificationStatus, error) {
	var payload entities.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, "", domainerrors.Invalid("malformed webhook body")
	}

	payload.SessionID = strings.TrimSpace(payload.SessionID)
	if payload.SessionID == "" {
		return nil, "", domainerrors.Invalid("session_id is required")
	}

	status := entities.VerificationStatus(strings.ToLower(strings.TrimSpace(payload.Status)))
	if !status.IsValid() {
		return nil, "", domainerrors.Invalid("unknown status %q", payload.Status)
	}

	if payload.ConfidenceScore.Valid && (payload.ConfidenceScore.Float64 < 0 || payload.ConfidenceScore.Float64 > 1) {
		return nil, "", domainerrors.Invalid("confidence_score must be between 0 and 1")
	}

	payload.ExtractedData = nonNullJSON(payload.ExtractedData)
	payload.VerificationMetadata = nonNullJSON(payload.VerificationMetadata)
	return &payload, status, nil
}

func nonNullJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

func webhookFailureResult(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrUnknownSession):
		return metrics.WebhookUnknownSession
	case errors.Is(err, domainerrors.ErrInvalidTransition):
		return metrics.WebhookConflict
	default:
		return metrics.WebhookProcessingFailed
	}
}
