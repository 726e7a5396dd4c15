package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type VerificationConfiguration struct {
	ID                          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EnabledVerificationMethods  pq.StringArray `gorm:"type:text[];default:'{}'"`
	DocumentTypesAllowed        pq.StringArray `gorm:"type:text[];default:'{}'"`
	RequiredConfidenceThreshold *float64       `gorm:"type:numeric(5,4)"`
	AutoApproveThreshold        *float64       `gorm:"type:numeric(5,4)"`
	IsActive                    bool           `gorm:"not null;default:true;index"`
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}
