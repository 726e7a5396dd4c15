package models

import (
	"time"

	"github.com/google/uuid"
)

type UserProfile struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                   string    `gorm:"type:varchar(255)"`
	Email                  string    `gorm:"type:varchar(255);index"`
	Phone                  string    `gorm:"type:varchar(32)"`
	Role                   string    `gorm:"type:varchar(50);not null;default:'observer'"`
	VerificationStatus     *string   `gorm:"type:varchar(50)"`
	VerificationDate       *time.Time
	VerificationConfidence *float64 `gorm:"type:numeric(5,4)"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (UserProfile) TableName() string {
	return "profiles"
}
