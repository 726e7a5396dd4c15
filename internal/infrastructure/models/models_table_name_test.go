package models

import "testing"

func TestTableNames(t *testing.T) {
	if got := (VerificationSession{}).TableName(); got != "identity_verifications" {
		t.Fatalf("unexpected verification session table: %s", got)
	}
	if got := (UserProfile{}).TableName(); got != "profiles" {
		t.Fatalf("unexpected profile table: %s", got)
	}
}
