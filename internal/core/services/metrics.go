package services

// MetricsRecorder receives admission and lifecycle counters. Implemented by
// the Prometheus collector in infrastructure/monitoring.
type MetricsRecorder interface {
	RoomCreated()
	RoomEnded(reason string)
	AdmissionDecision(outcome string)
	CredentialIssued()
	CredentialClaimed()
	WebhookEvent(eventType string)
}
