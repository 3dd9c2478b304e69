package services

import (
	"time"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// VideoGrant mirrors the provider's per-room authorization claims.
type VideoGrant struct {
	Room         string `json:"room,omitempty"`
	RoomCreate   bool   `json:"roomCreate,omitempty"`
	RoomJoin     bool   `json:"roomJoin,omitempty"`
	CanPublish   bool   `json:"canPublish,omitempty"`
	CanSubscribe bool   `json:"canSubscribe,omitempty"`
}

// CredentialClaims is the payload of a minted join credential.
type CredentialClaims struct {
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

type credentialService struct {
	apiKey    string
	apiSecret []byte
	ttl       time.Duration
}

// NewCredentialService mints provider-compatible credentials signed with the
// provider API secret. ttl bounds every credential's validity.
func NewCredentialService(apiKey, apiSecret string, ttl time.Duration) ports.CredentialService {
	return &credentialService{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		ttl:       ttl,
	}
}

func (s *credentialService) MintHostCredential(room domain.RoomName, host domain.Identity) (string, error) {
	return s.mint(string(host), string(host), VideoGrant{
		Room:         string(room),
		RoomCreate:   true,
		RoomJoin:     true,
		CanPublish:   true,
		CanSubscribe: true,
	})
}

func (s *credentialService) MintJoinCredential(room domain.RoomName, identity domain.Identity, name string) (string, error) {
	if name == "" {
		name = string(identity)
	}
	return s.mint(string(identity), name, VideoGrant{
		Room:         string(room),
		RoomJoin:     true,
		CanPublish:   true,
		CanSubscribe: true,
	})
}

func (s *credentialService) mint(identity, name string, grant VideoGrant) (string, error) {
	now := time.Now()
	claims := &CredentialClaims{
		Name:  name,
		Video: grant,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   identity,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.apiSecret)
}
