package entities

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// StartVerificationInput is a request to open a verification session
type StartVerificationInput struct {
	UserID             uuid.UUID
	VerificationMethod string
	DocumentType       string
}

// StartVerificationResult is returned once the vendor session is open and the row persisted
type StartVerificationResult struct {
	SessionID    string               `json:"sessionId"`
	ClientURL    string               `json:"clientUrl"`
	Verification *VerificationSession `json:"verification"`
}

// WebhookPayload is the vendor callback body
type WebhookPayload struct {
	SessionID            string          `json:"session_id"`
	Status               string          `json:"status"`
	ConfidenceScore      null.Float64    `json:"confidence_score"`
	ExtractedData        json.RawMessage `json:"extracted_data"`
	VerificationMetadata json.RawMessage `json:"verification_metadata"`
}

// WebhookOutcome describes what a webhook did to the session
type WebhookOutcome struct {
	VerificationID uuid.UUID          `json:"verificationId"`
	Status         VerificationStatus `json:"status"`
	Applied        bool               `json:"applied"`
}
