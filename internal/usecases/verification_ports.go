package usecases

import (
	"context"

	"go.uber.org/zap"
	"observer-console.backend/internal/domain/entities"
	"observer-console.backend/internal/infrastructure/metrics"
	"observer-console.backend/pkg/logger"
)

// VerificationVendor opens hosted verification sessions at the identity vendor
type VerificationVendor interface {
	CreateSession(ctx context.Context, req *entities.VendorSessionRequest) (*entities.VendorSession, error)
}

// StatusEventPublisher announces committed status changes to downstream consumers
type StatusEventPublisher interface {
	PublishStatusChanged(ctx context.Context, event entities.StatusChangedEvent) error
}

// ConfigCacheInvalidator is implemented by config repositories that cache the active policy
type ConfigCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// publishStatusChanged runs after commit. A failed publish is logged and counted,
// never surfaced to the caller.
func publishStatusChanged(ctx context.Context, publisher StatusEventPublisher, event entities.StatusChangedEvent) {
	metrics.StatusTransitions.WithLabelValues(string(event.Status), event.Source).Inc()
	if publisher == nil {
		return
	}
	if err := publisher.PublishStatusChanged(ctx, event); err != nil {
		metrics.EventPublishFailures.Inc()
		logger.Error(ctx, "Failed to publish verification status event",
			zap.String("verification_id", event.VerificationID.String()),
			zap.String("status", string(event.Status)),
			zap.Error(err),
		)
	}
}
