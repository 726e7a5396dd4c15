package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"observer-console.backend/internal/domain/entities"
)

// VerificationSessionRepository persists verification attempts.
// Writes are conditional on the status the caller observed; a zero-row update
// is reported as errors.ErrInvalidState.
type VerificationSessionRepository interface {
	Create(ctx context.Context, session *entities.VerificationSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationSession, error)
	GetByVendorSessionID(ctx context.Context, vendorSessionID string) (*entities.VerificationSession, error)
	List(ctx context.Context, filter entities.VerificationFilter, limit, offset int) ([]*entities.VerificationSession, int64, error)
	ApplyUpdate(ctx context.Context, id uuid.UUID, expected entities.VerificationStatus, update *entities.VerificationUpdate) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.VerificationStatus, at time.Time) error
	GetExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entities.VerificationSession, error)
}
