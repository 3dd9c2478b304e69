package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
	"roomgate/pkg/circuitbreaker"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Config holds the media provider connection settings.
type Config struct {
	Host           string
	APIKey         string
	APISecret      string
	RequestTimeout time.Duration
}

// Client talks to the external media provider's room service. Teardown calls
// are retried with exponential backoff and guarded by a circuit breaker; a
// 404 from the provider means "already gone" and is treated as success.
type Client struct {
	http    *resty.Client
	cfg     Config
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewClient(cfg Config, logger *zap.SugaredLogger) ports.RoomProvider {
	httpClient := resty.New().
		SetBaseURL(cfg.Host).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig())
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("provider circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return &Client{
		http:    httpClient,
		cfg:     cfg,
		breaker: breaker,
		logger:  logger,
	}
}

func (c *Client) DeleteRoom(ctx context.Context, room domain.RoomName) error {
	return c.call(ctx, "/twirp/livekit.RoomService/DeleteRoom", map[string]string{
		"room": string(room),
	})
}

func (c *Client) RemoveParticipant(ctx context.Context, room domain.RoomName, identity domain.Identity) error {
	return c.call(ctx, "/twirp/livekit.RoomService/RemoveParticipant", map[string]string{
		"room":     string(room),
		"identity": string(identity),
	})
}

func (c *Client) call(ctx context.Context, path string, body map[string]string) error {
	token, err := c.adminToken()
	if err != nil {
		return fmt.Errorf("failed to sign provider token: %w", err)
	}

	operation := func() error {
		return c.breaker.Execute(ctx, func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetAuthToken(token).
				SetBody(body).
				Post(path)
			if err != nil {
				return err
			}
			// Not found means the session is already gone; teardown is
			// idempotent by contract.
			if resp.StatusCode() == http.StatusNotFound {
				return nil
			}
			if resp.IsError() {
				return fmt.Errorf("provider returned %d: %s", resp.StatusCode(), resp.String())
			}
			return nil
		})
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("provider call %s failed: %w", path, err)
	}
	return nil
}

// adminToken mints a short-lived server token authorizing room administration.
func (c *Client) adminToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": c.cfg.APIKey,
		"nbf": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
		"video": map[string]interface{}{
			"roomAdmin": true,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.cfg.APISecret))
}
