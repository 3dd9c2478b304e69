package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"roomgate/internal/core/ports"
	"roomgate/internal/infrastructure/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const cleanupTimeout = 30 * time.Second

// WebhookHandler receives provider lifecycle notifications. Delivery is
// acknowledged before cleanup runs so a slow provider call cannot make the
// source retry and duplicate work; cleanup itself is idempotent regardless.
type WebhookHandler struct {
	receiver  *provider.WebhookReceiver
	lifecycle ports.LifecycleService
	logger    *zap.SugaredLogger
}

func NewWebhookHandler(receiver *provider.WebhookReceiver, lifecycle ports.LifecycleService, logger *zap.SugaredLogger) *WebhookHandler {
	return &WebhookHandler{
		receiver:  receiver,
		lifecycle: lifecycle,
		logger:    logger,
	}
}

func (h *WebhookHandler) SetupRoutes(router *gin.Engine) {
	router.POST("/webhooks/provider", h.HandleEvent)
}

func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	event, err := h.receiver.Receive(body, c.GetHeader("Authorization"))
	if err != nil {
		if errors.Is(err, provider.ErrInvalidSignature) {
			h.logger.Warnw("webhook signature verification failed")
			c.Status(http.StatusForbidden)
			return
		}
		// Malformed events are acknowledged anyway; the source must not
		// retry them forever.
		h.logger.Warnw("ignoring malformed webhook event", "error", err)
		c.Status(http.StatusOK)
		return
	}

	c.Status(http.StatusOK)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		if err := h.lifecycle.HandleEvent(ctx, *event); err != nil {
			h.logger.Errorw("lifecycle event processing failed",
				"type", event.Type,
				"room", event.Room,
				"error", err,
			)
		}
	}()
}
