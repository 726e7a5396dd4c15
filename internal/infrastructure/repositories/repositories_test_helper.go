package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createProfilesTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		name TEXT,
		email TEXT,
		phone TEXT,
		role TEXT NOT NULL DEFAULT 'observer',
		verification_status TEXT,
		verification_date DATETIME,
		verification_confidence REAL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createVerificationSessionsTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE identity_verifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		vendor_session_id TEXT NOT NULL UNIQUE,
		verification_method TEXT NOT NULL,
		document_type TEXT,
		status TEXT NOT NULL,
		confidence_score REAL,
		extracted_data TEXT,
		verification_metadata TEXT,
		vendor_raw_response TEXT,
		expires_at DATETIME NOT NULL,
		verified_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createVerificationConfigTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE verification_configurations (
		id TEXT PRIMARY KEY,
		enabled_verification_methods TEXT DEFAULT '{}',
		document_types_allowed TEXT DEFAULT '{}',
		required_confidence_threshold REAL,
		auto_approve_threshold REAL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
