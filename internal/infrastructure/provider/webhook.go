package provider

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"roomgate/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// WebhookReceiver validates and decodes provider lifecycle notifications. The
// provider signs each delivery with a JWT in the Authorization header whose
// sha256 claim must match the request body.
type WebhookReceiver struct {
	apiKey    string
	apiSecret []byte
}

func NewWebhookReceiver(apiKey, apiSecret string) *WebhookReceiver {
	return &WebhookReceiver{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
	}
}

type webhookPayload struct {
	Event string `json:"event"`
	Room  struct {
		Name string `json:"name"`
	} `json:"room"`
	Participant struct {
		Identity string `json:"identity"`
	} `json:"participant"`
}

// Receive verifies the signature and decodes the event.
func (r *WebhookReceiver) Receive(body []byte, authHeader string) (*domain.LifecycleEvent, error) {
	if err := r.verify(body, authHeader); err != nil {
		return nil, err
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if payload.Event == "" || payload.Room.Name == "" {
		return nil, ErrMalformedEvent
	}

	return &domain.LifecycleEvent{
		Type:        domain.LifecycleEventType(payload.Event),
		Room:        domain.RoomName(payload.Room.Name),
		Participant: domain.Identity(payload.Participant.Identity),
	}, nil
}

func (r *WebhookReceiver) verify(body []byte, authHeader string) error {
	if authHeader == "" {
		return ErrInvalidSignature
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(authHeader, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return r.apiSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidSignature
	}

	digest, ok := claims["sha256"].(string)
	if !ok {
		return ErrInvalidSignature
	}

	sum := sha256.Sum256(body)
	if digest != base64.StdEncoding.EncodeToString(sum[:]) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign produces the Authorization header value for a webhook body. Used by
// tests and by providers emulating the event feed.
func (r *WebhookReceiver) Sign(body []byte) (string, error) {
	sum := sha256.Sum256(body)
	claims := jwt.MapClaims{
		"iss":    r.apiKey,
		"sha256": base64.StdEncoding.EncodeToString(sum[:]),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.apiSecret)
}
