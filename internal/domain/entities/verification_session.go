package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VerificationMethod represents how a user proves their identity
type VerificationMethod string

const (
	VerificationMethodDocument  VerificationMethod = "document"
	VerificationMethodBiometric VerificationMethod = "biometric"
	VerificationMethodLiveness  VerificationMethod = "liveness"
	VerificationMethodAddress   VerificationMethod = "address"
	VerificationMethodPhone     VerificationMethod = "phone"
	VerificationMethodEmail     VerificationMethod = "email"
)

// AllVerificationMethods lists every method the vendor integration understands.
var AllVerificationMethods = []VerificationMethod{
	VerificationMethodDocument,
	VerificationMethodBiometric,
	VerificationMethodLiveness,
	VerificationMethodAddress,
	VerificationMethodPhone,
	VerificationMethodEmail,
}

// IsValid reports whether m is a known verification method
func (m VerificationMethod) IsValid() bool {
	for _, known := range AllVerificationMethods {
		if m == known {
			return true
		}
	}
	return false
}

// DocumentType represents the identity document submitted for a document verification
type DocumentType string

const (
	DocumentTypePassport         DocumentType = "passport"
	DocumentTypeDriversLicense   DocumentType = "drivers_license"
	DocumentTypeNationalID       DocumentType = "national_id"
	DocumentTypeVotersID         DocumentType = "voters_id"
	DocumentTypeBirthCertificate DocumentType = "birth_certificate"
	DocumentTypeUtilityBill      DocumentType = "utility_bill"
	DocumentTypeBankStatement    DocumentType = "bank_statement"
)

// AllDocumentTypes lists every supported document type.
var AllDocumentTypes = []DocumentType{
	DocumentTypePassport,
	DocumentTypeDriversLicense,
	DocumentTypeNationalID,
	DocumentTypeVotersID,
	DocumentTypeBirthCertificate,
	DocumentTypeUtilityBill,
	DocumentTypeBankStatement,
}

// IsValid reports whether d is a known document type
func (d DocumentType) IsValid() bool {
	for _, known := range AllDocumentTypes {
		if d == known {
			return true
		}
	}
	return false
}

// VerificationStatus represents the state of a verification session
type VerificationStatus string

const (
	VerificationStatusPending   VerificationStatus = "pending"
	VerificationStatusVerified  VerificationStatus = "verified"
	VerificationStatusFailed    VerificationStatus = "failed"
	VerificationStatusExpired   VerificationStatus = "expired"
	VerificationStatusCancelled VerificationStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusVerified, VerificationStatusFailed,
		VerificationStatusExpired, VerificationStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are expected from s
func (s VerificationStatus) IsTerminal() bool {
	return s.IsValid() && s != VerificationStatusPending
}

// VerificationSession is one attempt by a user to complete identity verification.
type VerificationSession struct {
	ID                   uuid.UUID          `json:"id"`
	UserID               uuid.UUID          `json:"userId"`
	VendorSessionID      string             `json:"vendorSessionId"`
	VerificationMethod   VerificationMethod `json:"verificationMethod"`
	DocumentType         null.String        `json:"documentType"`
	Status               VerificationStatus `json:"status"`
	ConfidenceScore      null.Float64       `json:"confidenceScore"`
	ExtractedData        json.RawMessage    `json:"extractedData,omitempty"`
	VerificationMetadata json.RawMessage    `json:"verificationMetadata,omitempty"`
	VendorRawResponse    json.RawMessage    `json:"vendorRawResponse,omitempty"`
	ExpiresAt            time.Time          `json:"expiresAt"`
	VerifiedAt           null.Time          `json:"verifiedAt"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// IsOwnedBy reports whether userID created the session
func (s *VerificationSession) IsOwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}

// TransitionDecision is the outcome of checking an incoming status against the current one.
type TransitionDecision int

const (
	// TransitionApply writes the incoming status and payload.
	TransitionApply TransitionDecision = iota
	// TransitionIgnore drops a stale update without error.
	TransitionIgnore
	// TransitionReject refuses the update.
	TransitionReject
)

// DecideTransition applies the forward-only ordering pending < terminal.
// A terminal session accepts a re-delivery of its own status, silently drops a stale
// pending update and rejects any other terminal status.
func (s *VerificationSession) DecideTransition(next VerificationStatus) TransitionDecision {
	if !next.IsValid() {
		return TransitionReject
	}
	if s.Status == VerificationStatusPending {
		return TransitionApply
	}
	switch {
	case next == s.Status:
		return TransitionApply
	case next == VerificationStatusPending:
		return TransitionIgnore
	default:
		return TransitionReject
	}
}

// VerificationUpdate is the set of vendor-reported fields written by a webhook.
type VerificationUpdate struct {
	Status               VerificationStatus
	ConfidenceScore      null.Float64
	ExtractedData        json.RawMessage
	VerificationMetadata json.RawMessage
	VendorRawResponse    json.RawMessage
	VerifiedAt           null.Time
	UpdatedAt            time.Time
}

// VerificationFilter narrows admin listings
type VerificationFilter struct {
	Status VerificationStatus
	UserID *uuid.UUID
}

// StatusChangedEvent is published whenever a session reaches a new status.
type StatusChangedEvent struct {
	VerificationID  uuid.UUID          `json:"verificationId"`
	VendorSessionID string             `json:"vendorSessionId"`
	UserID          uuid.UUID          `json:"userId"`
	PreviousStatus  VerificationStatus `json:"previousStatus"`
	Status          VerificationStatus `json:"status"`
	Source          string             `json:"source"`
	OccurredAt      time.Time          `json:"occurredAt"`
}

// Event sources
const (
	EventSourceWebhook = "webhook"
	EventSourceCancel  = "cancel"
	EventSourceExpiry  = "expiry_sweep"
)
