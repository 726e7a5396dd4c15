package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(SessionsStarted.WithLabelValues("document"))
	SessionsStarted.WithLabelValues("document").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SessionsStarted.WithLabelValues("document")))

	before = testutil.ToFloat64(Webhooks.WithLabelValues(WebhookApplied))
	Webhooks.WithLabelValues(WebhookApplied).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Webhooks.WithLabelValues(WebhookApplied)))

	before = testutil.ToFloat64(EventPublishFailures)
	EventPublishFailures.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(EventPublishFailures))
}
