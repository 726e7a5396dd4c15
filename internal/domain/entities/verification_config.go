package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VerificationConfig is the active verification policy.
// Confidence thresholds are carried for the review screens; no handler enforces them.
type VerificationConfig struct {
	ID                          uuid.UUID            `json:"id"`
	EnabledVerificationMethods  []VerificationMethod `json:"enabledVerificationMethods"`
	DocumentTypesAllowed        []DocumentType       `json:"documentTypesAllowed"`
	RequiredConfidenceThreshold null.Float64         `json:"requiredConfidenceThreshold"`
	AutoApproveThreshold        null.Float64         `json:"autoApproveThreshold"`
	IsDefault                   bool                 `json:"isDefault"`
	UpdatedAt                   time.Time            `json:"updatedAt"`
}

// MethodEnabled reports whether m may be used to start a session
func (c *VerificationConfig) MethodEnabled(m VerificationMethod) bool {
	for _, enabled := range c.EnabledVerificationMethods {
		if enabled == m {
			return true
		}
	}
	return false
}

// DocumentTypeAllowed reports whether d may be used with the document method
func (c *VerificationConfig) DocumentTypeAllowed(d DocumentType) bool {
	for _, allowed := range c.DocumentTypesAllowed {
		if allowed == d {
			return true
		}
	}
	return false
}

// NewVerificationConfig builds a typed config from raw stored values, dropping unknown entries.
// The dropped values are returned so callers can log them.
func NewVerificationConfig(methods, documentTypes []string) (*VerificationConfig, []string) {
	cfg := &VerificationConfig{
		EnabledVerificationMethods: []VerificationMethod{},
		DocumentTypesAllowed:       []DocumentType{},
	}
	var dropped []string
	for _, raw := range methods {
		m := VerificationMethod(raw)
		if !m.IsValid() {
			dropped = append(dropped, raw)
			continue
		}
		cfg.EnabledVerificationMethods = append(cfg.EnabledVerificationMethods, m)
	}
	for _, raw := range documentTypes {
		d := DocumentType(raw)
		if !d.IsValid() {
			dropped = append(dropped, raw)
			continue
		}
		cfg.DocumentTypesAllowed = append(cfg.DocumentTypesAllowed, d)
	}
	return cfg, dropped
}
