package repositories

import (
	"context"

	"observer-console.backend/internal/domain/entities"
)

// VerificationConfigRepository loads the active verification policy
type VerificationConfigRepository interface {
	GetActive(ctx context.Context) (*entities.VerificationConfig, error)
}
