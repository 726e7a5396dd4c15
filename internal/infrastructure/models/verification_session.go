package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationSession is the identity_verifications row.
// ExtractedData and VendorRawResponse hold keyring-sealed text when field encryption is on.
type VerificationSession struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index"`
	VendorSessionID      string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	VerificationMethod   string    `gorm:"type:varchar(50);not null"`
	DocumentType         *string   `gorm:"type:varchar(50)"`
	Status               string    `gorm:"type:varchar(50);not null;index"`
	ConfidenceScore      *float64  `gorm:"type:numeric(5,4)"`
	ExtractedData        *string   `gorm:"type:text"`
	VerificationMetadata *string   `gorm:"type:jsonb"`
	VendorRawResponse    *string   `gorm:"type:text"`
	ExpiresAt            time.Time `gorm:"not null;index"`
	VerifiedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (VerificationSession) TableName() string {
	return "identity_verifications"
}
