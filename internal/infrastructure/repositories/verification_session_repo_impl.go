package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"observer-console.backend/internal/domain/entities"
	domainerrors "observer-console.backend/internal/domain/errors"
	"observer-console.backend/internal/infrastructure/models"
	"observer-console.backend/pkg/crypto"
)

// FieldSealer encrypts opaque payload columns at rest
type FieldSealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}

// VerificationSessionRepository implements VerificationSessionRepository
type VerificationSessionRepository struct {
	db     *gorm.DB
	sealer FieldSealer
}

// NewVerificationSessionRepository creates a new verification session repository.
// sealer may be nil, in which case payloads are stored as plain JSON.
func NewVerificationSessionRepository(db *gorm.DB, sealer FieldSealer) *VerificationSessionRepository {
	return &VerificationSessionRepository{db: db, sealer: sealer}
}

// Create inserts a new session row
func (r *VerificationSessionRepository) Create(ctx context.Context, session *entities.VerificationSession) error {
	m, err := r.toModel(session)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID gets a session by internal id
func (r *VerificationSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationSession, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByVendorSessionID gets a session by the vendor's session id
func (r *VerificationSessionRepository) GetByVendorSessionID(ctx context.Context, vendorSessionID string) (*entities.VerificationSession, error) {
	return r.first(ctx, "vendor_session_id = ?", vendorSessionID)
}

func (r *VerificationSessionRepository) first(ctx context.Context, query string, arg interface{}) (*entities.VerificationSession, error) {
	var m models.VerificationSession
	if err := lockedQuery(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// List returns sessions matching filter, newest first, with the total count
func (r *VerificationSessionRepository) List(ctx context.Context, filter entities.VerificationFilter, limit, offset int) ([]*entities.VerificationSession, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", string(filter.Status))
		}
		if filter.UserID != nil {
			db = db.Where("user_id = ?", *filter.UserID)
		}
		return db
	}

	var total int64
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.VerificationSession{}).
		Scopes(filtered).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.VerificationSession
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Scopes(filtered).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]*entities.VerificationSession, 0, len(ms))
	for i := range ms {
		s, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, nil
}

// ApplyUpdate writes a webhook update if the row still has the expected status
func (r *VerificationSessionRepository) ApplyUpdate(ctx context.Context, id uuid.UUID, expected entities.VerificationStatus, update *entities.VerificationUpdate) error {
	extracted, err := r.sealPayload(update.ExtractedData)
	if err != nil {
		return err
	}
	raw, err := r.sealPayload(update.VendorRawResponse)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"status":                string(update.Status),
		"confidence_score":      update.ConfidenceScore.Ptr(),
		"extracted_data":        extracted,
		"verification_metadata": plainPayload(update.VerificationMetadata),
		"vendor_raw_response":   raw,
		"verified_at":           update.VerifiedAt.Ptr(),
		"updated_at":            update.UpdatedAt,
	}

	return r.conditionalUpdate(ctx, id, expected, updates)
}

// TransitionStatus moves a row from one status to another, failing with ErrInvalidState
// when the row is no longer in from. at stamps updated_at.
func (r *VerificationSessionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.VerificationStatus, at time.Time) error {
	return r.conditionalUpdate(ctx, id, from, map[string]interface{}{
		"status":     string(to),
		"updated_at": at,
	})
}

func (r *VerificationSessionRepository) conditionalUpdate(ctx context.Context, id uuid.UUID, expected entities.VerificationStatus, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.VerificationSession{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidState
	}
	return nil
}

// GetExpiredPending returns up to limit pending sessions whose expiry has passed, oldest first
func (r *VerificationSessionRepository) GetExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entities.VerificationSession, error) {
	var ms []models.VerificationSession
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(entities.VerificationStatusPending), now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]*entities.VerificationSession, 0, len(ms))
	for i := range ms {
		s, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *VerificationSessionRepository) sealPayload(data json.RawMessage) (*string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if r.sealer == nil {
		return plainPayload(data), nil
	}
	sealed, err := r.sealer.Seal(data)
	if err != nil {
		return nil, fmt.Errorf("seal payload: %w", err)
	}
	return &sealed, nil
}

func (r *VerificationSessionRepository) openPayload(stored *string) (json.RawMessage, error) {
	if stored == nil || *stored == "" {
		return nil, nil
	}
	if !crypto.IsSealed(*stored) {
		return json.RawMessage(*stored), nil
	}
	if r.sealer == nil {
		return nil, errors.New("sealed payload found but field encryption is not configured")
	}
	plain, err := r.sealer.Open(*stored)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	return json.RawMessage(plain), nil
}

func plainPayload(data json.RawMessage) *string {
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	return &s
}

func (r *VerificationSessionRepository) toModel(s *entities.VerificationSession) (*models.VerificationSession, error) {
	extracted, err := r.sealPayload(s.ExtractedData)
	if err != nil {
		return nil, err
	}
	raw, err := r.sealPayload(s.VendorRawResponse)
	if err != nil {
		return nil, err
	}

	return &models.VerificationSession{
		ID:                   s.ID,
		UserID:               s.UserID,
		VendorSessionID:      s.VendorSessionID,
		VerificationMethod:   string(s.VerificationMethod),
		DocumentType:         s.DocumentType.Ptr(),
		Status:               string(s.Status),
		ConfidenceScore:      s.ConfidenceScore.Ptr(),
		ExtractedData:        extracted,
		VerificationMetadata: plainPayload(s.VerificationMetadata),
		VendorRawResponse:    raw,
		ExpiresAt:            s.ExpiresAt,
		VerifiedAt:           s.VerifiedAt.Ptr(),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}, nil
}

func (r *VerificationSessionRepository) toEntity(m *models.VerificationSession) (*entities.VerificationSession, error) {
	extracted, err := r.openPayload(m.ExtractedData)
	if err != nil {
		return nil, err
	}
	raw, err := r.openPayload(m.VendorRawResponse)
	if err != nil {
		return nil, err
	}

	s := &entities.VerificationSession{
		ID:                   m.ID,
		UserID:               m.UserID,
		VendorSessionID:      m.VendorSessionID,
		VerificationMethod:   entities.VerificationMethod(m.VerificationMethod),
		DocumentType:         null.StringFromPtr(m.DocumentType),
		Status:               entities.VerificationStatus(m.Status),
		ConfidenceScore:      null.Float64FromPtr(m.ConfidenceScore),
		ExtractedData:        extracted,
		VendorRawResponse:    raw,
		ExpiresAt:            m.ExpiresAt,
		VerifiedAt:           null.TimeFromPtr(m.VerifiedAt),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if m.VerificationMetadata != nil && *m.VerificationMetadata != "" {
		s.VerificationMetadata = json.RawMessage(*m.VerificationMetadata)
	}
	return s, nil
}
