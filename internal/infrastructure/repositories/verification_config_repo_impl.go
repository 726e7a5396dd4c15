package repositories

import (
	"context"
	"errors"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"observer-console.backend/internal/domain/entities"
	"observer-console.backend/internal/infrastructure/models"
	"observer-console.backend/pkg/logger"
)

// VerificationConfigRepository reads the active verification policy
type VerificationConfigRepository struct {
	db       *gorm.DB
	defaults *entities.VerificationConfig
}

// NewVerificationConfigRepository creates a config repository that falls back to defaults
// when no active row exists.
func NewVerificationConfigRepository(db *gorm.DB, defaults *entities.VerificationConfig) *VerificationConfigRepository {
	return &VerificationConfigRepository{db: db, defaults: defaults}
}

// GetActive returns the most recently updated active configuration
func (r *VerificationConfigRepository) GetActive(ctx context.Context) (*entities.VerificationConfig, error) {
	var m models.VerificationConfiguration
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.fallback(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg, dropped := entities.NewVerificationConfig(m.EnabledVerificationMethods, m.DocumentTypesAllowed)
	if len(dropped) > 0 {
		logger.Warn(ctx, "Dropped unknown values from verification configuration",
			zap.String("config_id", m.ID.String()),
			zap.Strings("values", dropped),
		)
	}
	cfg.ID = m.ID
	cfg.RequiredConfidenceThreshold = null.Float64FromPtr(m.RequiredConfidenceThreshold)
	cfg.AutoApproveThreshold = null.Float64FromPtr(m.AutoApproveThreshold)
	cfg.UpdatedAt = m.UpdatedAt
	return cfg, nil
}

func (r *VerificationConfigRepository) fallback() *entities.VerificationConfig {
	if r.defaults == nil {
		return &entities.VerificationConfig{
			EnabledVerificationMethods: []entities.VerificationMethod{},
			DocumentTypesAllowed:       []entities.DocumentType{},
			IsDefault:                  true,
		}
	}
	cfg := *r.defaults
	cfg.EnabledVerificationMethods = append([]entities.VerificationMethod(nil), r.defaults.EnabledVerificationMethods...)
	cfg.DocumentTypesAllowed = append([]entities.DocumentType(nil), r.defaults.DocumentTypesAllowed...)
	cfg.IsDefault = true
	return &cfg
}
