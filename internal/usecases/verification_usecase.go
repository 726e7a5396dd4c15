package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"observer-console.backend/internal/domain/entities"
	domainerrors "observer-console.backend/internal/domain/errors"
	"observer-console.backend/internal/domain/repositories"
	"observer-console.backend/internal/infrastructure/metrics"
	"observer-console.backend/pkg/logger"
	"observer-console.backend/pkg/utils"
)

// VerificationSettings is the process configuration the session lifecycle depends on
type VerificationSettings struct {
	VendorAPIKey            string
	WorkflowID              string
	WebhookURL              string
	SessionTTL              time.Duration
	CancelPropagatesProfile bool
	PhoneDefaultRegion      string
}

// VerificationUsecase starts, reads, cancels and expires verification sessions
type VerificationUsecase struct {
	sessionRepo repositories.VerificationSessionRepository
	profileRepo repositories.UserProfileRepository
	configRepo  repositories.VerificationConfigRepository
	uow         repositories.UnitOfWork
	vendor      VerificationVendor
	publisher   StatusEventPublisher
	settings    VerificationSettings
	now         func() time.Time
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	sessionRepo repositories.VerificationSessionRepository,
	profileRepo repositories.UserProfileRepository,
	configRepo repositories.VerificationConfigRepository,
	uow repositories.UnitOfWork,
	vendor VerificationVendor,
	publisher StatusEventPublisher,
	settings VerificationSettings,
) *VerificationUsecase {
	return &VerificationUsecase{
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		configRepo:  configRepo,
		uow:         uow,
		vendor:      vendor,
		publisher:   publisher,
		settings:    settings,
		now:         time.Now,
	}
}

// SetClock replaces the time source (used by tests)
func (u *VerificationUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// StartVerification opens a vendor session for the caller and records it as pending
func (u *VerificationUsecase) StartVerification(ctx context.Context, input *entities.StartVerificationInput) (*entities.StartVerificationResult, error) {
	result, err := u.startVerification(ctx, input)
	if err != nil {
		metrics.StartFailures.WithLabelValues(domainerrors.FromError(err).Code).Inc()
		return nil, err
	}
	metrics.SessionsStarted.WithLabelValues(string(result.Verification.VerificationMethod)).Inc()
	return result, nil
}

func (u *VerificationUsecase) startVerification(ctx context.Context, input *entities.StartVerificationInput) (*entities.StartVerificationResult, error) {
	if u.settings.VendorAPIKey == "" || u.settings.WorkflowID == "" {
		logger.Error(ctx, "Verification vendor credentials are not configured")
		return nil, domainerrors.ErrConfiguration
	}

	rawMethod := strings.TrimSpace(input.VerificationMethod)
	if rawMethod == "" {
		return nil, domainerrors.Invalid("verification_method is required")
	}

	cfg, err := u.configRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	method := entities.VerificationMethod(rawMethod)
	if !cfg.MethodEnabled(method) {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrMethodNotEnabled, rawMethod)
	}

	var documentType entities.DocumentType
	if method == entities.VerificationMethodDocument && strings.TrimSpace(input.DocumentType) != "" {
		documentType = entities.DocumentType(strings.TrimSpace(input.DocumentType))
		if !cfg.DocumentTypeAllowed(documentType) {
			return nil, fmt.Errorf("%w: %s", domainerrors.ErrDocumentTypeNotEnabled, documentType)
		}
	}

	profile, err := u.profileRepo.GetByID(ctx, input.UserID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: profile not found", domainerrors.ErrIncompleteProfile)
	}
	if err != nil {
		return nil, err
	}
	if !profile.HasIdentity() {
		return nil, fmt.Errorf("%w: name and email are required", domainerrors.ErrIncompleteProfile)
	}

	phone, phoneErr := utils.NormalizePhone(profile.Phone, u.settings.PhoneDefaultRegion)
	if phoneErr != nil {
		if method == entities.VerificationMethodPhone {
			return nil, fmt.Errorf("%w: a valid phone number is required", domainerrors.ErrIncompleteProfile)
		}
		phone = ""
	}

	firstName, lastName := profile.SplitName()
	vendorSession, err := u.vendor.CreateSession(ctx, &entities.VendorSessionRequest{
		WorkflowID:         u.settings.WorkflowID,
		CallbackURL:        u.settings.WebhookURL,
		UserID:             profile.ID,
		FirstName:          firstName,
		LastName:           lastName,
		Email:              strings.TrimSpace(profile.Email),
		Phone:              phone,
		VerificationMethod: method,
		DocumentType:       documentType,
	})
	if err != nil {
		logger.Error(ctx, "Vendor session creation failed",
			zap.String("user_id", input.UserID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	now := u.now()
	session := &entities.VerificationSession{
		ID:                 utils.GenerateUUIDv7(),
		UserID:             profile.ID,
		VendorSessionID:    vendorSession.SessionID,
		VerificationMethod: method,
		Status:             entities.VerificationStatusPending,
		VendorRawResponse:  vendorSession.Raw,
		ExpiresAt:          now.Add(u.settings.SessionTTL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if documentType != "" {
		session.DocumentType = null.StringFrom(string(documentType))
	}

	if err := u.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Verification session started",
		zap.String("verification_id", session.ID.String()),
		zap.String("vendor_session_id", session.VendorSessionID),
		zap.String("method", string(method)),
	)

	return &entities.StartVerificationResult{
		SessionID:    session.VendorSessionID,
		ClientURL:    vendorSession.VerificationURL,
		Verification: session,
	}, nil
}

// CheckStatus returns the session for a vendor session id
func (u *VerificationUsecase) CheckStatus(ctx context.Context, vendorSessionID string) (*entities.VerificationSession, error) {
	vendorSessionID = strings.TrimSpace(vendorSessionID)
	if vendorSessionID == "" {
		return nil, domainerrors.Invalid("session_id is required")
	}
	return u.sessionRepo.GetByVendorSessionID(ctx, vendorSessionID)
}

// CheckStatusAs is CheckStatus restricted to the session owner and admins
func (u *VerificationUsecase) CheckStatusAs(ctx context.Context, actingUserID uuid.UUID, vendorSessionID string) (*entities.VerificationSession, error) {
	session, err := u.CheckStatus(ctx, vendorSessionID)
	if err != nil {
		return nil, err
	}
	if err := u.authorize(ctx, actingUserID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CancelVerification cancels a pending session on behalf of its owner or an admin.
// verificationID is the internal id; anything else is looked up as a vendor session id.
func (u *VerificationUsecase) CancelVerification(ctx context.Context, actingUserID uuid.UUID, verificationID string) error {
	session, err := u.findForCancel(ctx, strings.TrimSpace(verificationID))
	if err != nil {
		return err
	}

	if err := u.authorize(ctx, actingUserID, session); err != nil {
		return err
	}

	if session.Status != entities.VerificationStatusPending {
		return domainerrors.ErrInvalidState
	}

	now := u.now()
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.sessionRepo.TransitionStatus(txCtx, session.ID, entities.VerificationStatusPending, entities.VerificationStatusCancelled, now); err != nil {
			return err
		}
		if !u.settings.CancelPropagatesProfile {
			return nil
		}
		update, _ := entities.ProfileUpdateFor(entities.VerificationStatusCancelled, now, null.Float64{})
		return u.profileRepo.UpdateVerificationStatus(txCtx, session.UserID, update)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "Verification cancelled",
		zap.String("verification_id", session.ID.String()),
		zap.String("acting_user_id", actingUserID.String()),
	)

	publishStatusChanged(ctx, u.publisher, entities.StatusChangedEvent{
		VerificationID:  session.ID,
		VendorSessionID: session.VendorSessionID,
		UserID:          session.UserID,
		PreviousStatus:  entities.VerificationStatusPending,
		Status:          entities.VerificationStatusCancelled,
		Source:          entities.EventSourceCancel,
		OccurredAt:      u.now(),
	})
	return nil
}

func (u *VerificationUsecase) findForCancel(ctx context.Context, verificationID string) (*entities.VerificationSession, error) {
	if verificationID == "" {
		return nil, domainerrors.Invalid("verification_id is required")
	}
	if id, ok := utils.ParseUUID(verificationID); ok {
		session, err := u.sessionRepo.GetByID(ctx, id)
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return session, err
		}
	}
	return u.sessionRepo.GetByVendorSessionID(ctx, verificationID)
}

// authorize allows the owner, or any profile holding an admin role
func (u *VerificationUsecase) authorize(ctx context.Context, actingUserID uuid.UUID, session *entities.VerificationSession) error {
	if session.IsOwnedBy(actingUserID) {
		return nil
	}
	actor, err := u.profileRepo.GetByID(ctx, actingUserID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.ErrForbidden
	}
	if err != nil {
		return err
	}
	if !actor.Role.IsAdmin() {
		return domainerrors.ErrForbidden
	}
	return nil
}

// ListVerifications returns a page of sessions for the admin review screen
func (u *VerificationUsecase) ListVerifications(ctx context.Context, filter entities.VerificationFilter, page utils.PaginationParams) ([]*entities.VerificationSession, utils.PaginationMeta, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, utils.PaginationMeta{}, domainerrors.Invalid("unknown status %q", filter.Status)
	}
	sessions, total, err := u.sessionRepo.List(ctx, filter, page.Limit, page.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return sessions, utils.CalculateMeta(total, page), nil
}

// GetActiveConfig returns the verification policy currently in force
func (u *VerificationUsecase) GetActiveConfig(ctx context.Context) (*entities.VerificationConfig, error) {
	return u.configRepo.GetActive(ctx)
}

// RefreshConfig drops any cached policy and reloads it from storage
func (u *VerificationUsecase) RefreshConfig(ctx context.Context) (*entities.VerificationConfig, error) {
	if inv, ok := u.configRepo.(ConfigCacheInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			return nil, fmt.Errorf("invalidate verification config cache: %w", err)
		}
		logger.Info(ctx, "Verification config cache invalidated")
	}
	return u.configRepo.GetActive(ctx)
}

// ExpireStaleSessions moves up to limit pending sessions past their expiry to expired.
// Each session is expired in its own transaction; a lost race with a webhook is skipped.
func (u *VerificationUsecase) ExpireStaleSessions(ctx context.Context, limit int) (int, error) {
	now := u.now()
	stale, err := u.sessionRepo.GetExpiredPending(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, session := range stale {
		err := u.uow.Do(ctx, func(txCtx context.Context) error {
			if err := u.sessionRepo.TransitionStatus(txCtx, session.ID, entities.VerificationStatusPending, entities.VerificationStatusExpired, now); err != nil {
				return err
			}
			update, _ := entities.ProfileUpdateFor(entities.VerificationStatusExpired, now, null.Float64{})
			err := u.profileRepo.UpdateVerificationStatus(txCtx, session.UserID, update)
			if errors.Is(err, domainerrors.ErrNotFound) {
				logger.Warn(txCtx, "Profile missing for expired verification", zap.String("user_id", session.UserID.String()))
				return nil
			}
			return err
		})
		if errors.Is(err, domainerrors.ErrInvalidState) {
			continue
		}
		if err != nil {
			logger.Error(ctx, "Failed to expire verification session",
				zap.String("verification_id", session.ID.String()),
				zap.Error(err),
			)
			continue
		}

		expired++
		publishStatusChanged(ctx, u.publisher, entities.StatusChangedEvent{
			VerificationID:  session.ID,
			VendorSessionID: session.VendorSessionID,
			UserID:          session.UserID,
			PreviousStatus:  entities.VerificationStatusPending,
			Status:          entities.VerificationStatusExpired,
			Source:          entities.EventSourceExpiry,
			OccurredAt:      now,
		})
	}
	return expired, nil
}
