package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes admission-control metrics.
type Collector struct {
	roomsActive        prometheus.Gauge
	admissionDecisions *prometheus.CounterVec
	credentialsIssued  prometheus.Counter
	credentialsClaimed prometheus.Counter
	webhookEvents      *prometheus.CounterVec
	roomsEnded         *prometheus.CounterVec
}

// NewCollector registers the collectors on reg. Pass
// prometheus.DefaultRegisterer in production; tests use a private registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		roomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "roomgate_rooms_active",
			Help: "Number of rooms currently recorded as active",
		}),

		admissionDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roomgate_admission_decisions_total",
			Help: "Admission decisions by outcome",
		}, []string{"outcome"}),

		credentialsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "roomgate_credentials_issued_total",
			Help: "Join credentials minted into the handoff slot",
		}),

		credentialsClaimed: factory.NewCounter(prometheus.CounterOpts{
			Name: "roomgate_credentials_claimed_total",
			Help: "Join credentials successfully claimed by guests",
		}),

		webhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roomgate_webhook_events_total",
			Help: "Provider lifecycle events received, by type",
		}, []string{"type"}),

		roomsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roomgate_rooms_ended_total",
			Help: "Rooms torn down, by reason",
		}, []string{"reason"}),
	}
}

func (c *Collector) RoomCreated() {
	c.roomsActive.Inc()
	c.admissionDecisions.WithLabelValues("created").Inc()
}

func (c *Collector) RoomEnded(reason string) {
	c.roomsActive.Dec()
	c.roomsEnded.WithLabelValues(reason).Inc()
}

func (c *Collector) AdmissionDecision(outcome string) {
	c.admissionDecisions.WithLabelValues(outcome).Inc()
}

func (c *Collector) CredentialIssued() {
	c.credentialsIssued.Inc()
}

func (c *Collector) CredentialClaimed() {
	c.credentialsClaimed.Inc()
}

func (c *Collector) WebhookEvent(eventType string) {
	c.webhookEvents.WithLabelValues(eventType).Inc()
}
