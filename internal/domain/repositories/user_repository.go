package repositories

import (
	"context"

	"github.com/google/uuid"
	"observer-console.backend/internal/domain/entities"
)

// UserProfileRepository reads console profiles and writes their verification snapshot
type UserProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.UserProfile, error)
	UpdateVerificationStatus(ctx context.Context, id uuid.UUID, update entities.ProfileVerificationUpdate) error
}
