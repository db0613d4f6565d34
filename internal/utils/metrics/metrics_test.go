package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/calshare/server/internal/shared/events"
)

func TestMetrics(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	t.Run("http_request", func(t *testing.T) {
		m.RecordHTTPRequest("GET", "/api/v1/calendars/:id", http.StatusOK, 20*time.Millisecond)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/calendars/:id", "200")))
	})

	t.Run("unit_outcome", func(t *testing.T) {
		m.ObserveUnit("accept_invitation", "committed", 2)
		m.ObserveUnit("accept_invitation", "committed", 1)
		assert.Equal(t, float64(2), testutil.ToFloat64(m.UnitsTotal.WithLabelValues("accept_invitation", "committed")))
	})

	t.Run("event_counter", func(t *testing.T) {
		bus := events.NewBus(nil)
		bus.Register(NewEventCounter(m))

		bus.Publish(events.InvitationAnsweredEvent{
			BaseEvent: events.NewBaseEvent(events.InvitationAcceptedType, uuid.New(), events.AggregateInvitation),
		})
		assert.Equal(t, float64(1), testutil.ToFloat64(m.DomainEventsTotal.WithLabelValues(events.InvitationAcceptedType)))
	})

	t.Run("separate_registries_do_not_collide", func(t *testing.T) {
		assert.NotPanics(t, func() {
			New("test", prometheus.NewRegistry())
		})
	})
}
