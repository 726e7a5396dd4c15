package entities

import (
	"encoding/json"

	"github.com/google/uuid"
)

// VendorSessionRequest is what the identity vendor needs to open a hosted verification flow
type VendorSessionRequest struct {
	WorkflowID         string
	CallbackURL        string
	UserID             uuid.UUID
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	VerificationMethod VerificationMethod
	DocumentType       DocumentType
}

// VendorSession is the vendor's answer to a session-creation request
type VendorSession struct {
	SessionID       string
	VerificationURL string
	Raw             json.RawMessage
}
