package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"observer-console.backend/internal/domain/entities"
	domainerrors "observer-console.backend/internal/domain/errors"
	"observer-console.backend/internal/interfaces/http/middleware"
	"observer-console.backend/internal/interfaces/http/response"
	"observer-console.backend/pkg/utils"
)

// Actions accepted by POST /api/v1/verifications
const (
	ActionStartVerification  = "start_verification"
	ActionCheckStatus        = "check_status"
	ActionCancelVerification = "cancel_verification"
)

// VerificationService is the session lifecycle the handler drives
type VerificationService interface {
	StartVerification(ctx context.Context, input *entities.StartVerificationInput) (*entities.StartVerificationResult, error)
	CheckStatusAs(ctx context.Context, actingUserID uuid.UUID, vendorSessionID string) (*entities.VerificationSession, error)
	CancelVerification(ctx context.Context, actingUserID uuid.UUID, verificationID string) error
	ListVerifications(ctx context.Context, filter entities.VerificationFilter, page utils.PaginationParams) ([]*entities.VerificationSession, utils.PaginationMeta, error)
	GetActiveConfig(ctx context.Context) (*entities.VerificationConfig, error)
	RefreshConfig(ctx context.Context) (*entities.VerificationConfig, error)
}

type VerificationHandler struct {
	service VerificationService
}

func NewVerificationHandler(service VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// VerificationActionRequest is the union of all action bodies
type VerificationActionRequest struct {
	Action             string `json:"action" binding:"required"`
	UserID             string `json:"user_id"`
	VerificationMethod string `json:"verification_method"`
	DocumentType       string `json:"document_type"`
	SessionID          string `json:"session_id"`
	VerificationID     string `json:"verification_id"`
}

// HandleAction dispatches on the request action
// POST /api/v1/verifications
func (h *VerificationHandler) HandleAction(c *gin.Context) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var req VerificationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest("action is required"))
		return
	}

	switch strings.TrimSpace(req.Action) {
	case ActionStartVerification:
		h.startVerification(c, callerID, &req)
	case ActionCheckStatus:
		h.checkStatus(c, callerID, &req)
	case ActionCancelVerification:
		h.cancelVerification(c, callerID, &req)
	default:
		response.Error(c, domainerrors.BadRequest("unknown action"))
	}
}

func (h *VerificationHandler) startVerification(c *gin.Context, callerID uuid.UUID, req *VerificationActionRequest) {
	if err := requireSelf(callerID, req.UserID); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.StartVerification(c.Request.Context(), &entities.StartVerificationInput{
		UserID:             callerID,
		VerificationMethod: req.VerificationMethod,
		DocumentType:       req.DocumentType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"sessionId":    result.SessionID,
		"clientUrl":    result.ClientURL,
		"verification": result.Verification,
	})
}

func (h *VerificationHandler) checkStatus(c *gin.Context, callerID uuid.UUID, req *VerificationActionRequest) {
	session, err := h.service.CheckStatusAs(c.Request.Context(), callerID, req.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"verification": session})
}

func (h *VerificationHandler) cancelVerification(c *gin.Context, callerID uuid.UUID, req *VerificationActionRequest) {
	if err := requireSelf(callerID, req.UserID); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.CancelVerification(c.Request.Context(), callerID, req.VerificationID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, nil)
}

// requireSelf checks the body user_id names the authenticated caller
func requireSelf(callerID uuid.UUID, rawUserID string) error {
	rawUserID = strings.TrimSpace(rawUserID)
	if rawUserID == "" {
		return domainerrors.BadRequest("user_id is required")
	}
	userID, ok := utils.ParseUUID(rawUserID)
	if !ok || userID != callerID {
		return domainerrors.Forbidden("user_id must match the authenticated user")
	}
	return nil
}

// ListVerifications lists sessions for review
// GET /api/v1/admin/verifications
func (h *VerificationHandler) ListVerifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultPageLimit)))

	filter := entities.VerificationFilter{
		Status: entities.VerificationStatus(strings.TrimSpace(c.Query("status"))),
	}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		userID, ok := utils.ParseUUID(raw)
		if !ok {
			response.Error(c, domainerrors.BadRequest("invalid user_id"))
			return
		}
		filter.UserID = &userID
	}

	sessions, meta, err := h.service.ListVerifications(c.Request.Context(), filter, utils.GetPaginationParams(page, limit))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"items": sessions,
		"meta":  meta,
	})
}

// GetConfig returns the active verification configuration
// GET /api/v1/admin/verification-config
func (h *VerificationHandler) GetConfig(c *gin.Context) {
	cfg, err := h.service.GetActiveConfig(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"config": cfg})
}

// RefreshConfig drops the cached configuration and returns the reloaded one
// POST /api/v1/admin/verification-config/refresh
func (h *VerificationHandler) RefreshConfig(c *gin.Context) {
	cfg, err := h.service.RefreshConfig(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"config": cfg})
}
