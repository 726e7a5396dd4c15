package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"observer-console.backend/internal/domain/entities"
	domainerrors "observer-console.backend/internal/domain/errors"
	"observer-console.backend/internal/infrastructure/models"
)

// UserProfileRepository implements profile reads and verification snapshot writes
type UserProfileRepository struct {
	db *gorm.DB
}

// NewUserProfileRepository creates a new profile repository
func NewUserProfileRepository(db *gorm.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

// GetByID gets a profile by ID
func (r *UserProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.UserProfile, error) {
	var m models.UserProfile
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// UpdateVerificationStatus writes the denormalized verification snapshot.
// Date and confidence are only touched when the update carries them.
func (r *UserProfileRepository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, update entities.ProfileVerificationUpdate) error {
	updates := map[string]interface{}{
		"verification_status": string(update.Status),
		"updated_at":          update.UpdatedAt,
	}
	if update.Date.Valid {
		updates["verification_date"] = update.Date.Time
	}
	if update.Confidence.Valid {
		updates["verification_confidence"] = update.Confidence.Float64
	}

	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *UserProfileRepository) toEntity(m *models.UserProfile) *entities.UserProfile {
	return &entities.UserProfile{
		ID:                     m.ID,
		Name:                   m.Name,
		Email:                  m.Email,
		Phone:                  m.Phone,
		Role:                   entities.UserRole(m.Role),
		VerificationStatus:     null.StringFromPtr(m.VerificationStatus),
		VerificationDate:       null.TimeFromPtr(m.VerificationDate),
		VerificationConfidence: null.Float64FromPtr(m.VerificationConfidence),
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}
