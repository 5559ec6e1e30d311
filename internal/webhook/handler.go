// Package webhook terminates the inbound LINE webhook: it verifies the
// request signature against the raw body, acknowledges immediately, and
// hands the decoded events to the processor asynchronously.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/kentyisapen/line-chatbot-workshop/internal/config"
	domerrors "github.com/kentyisapen/line-chatbot-workshop/internal/errors"
	"github.com/kentyisapen/line-chatbot-workshop/internal/event"
	"github.com/kentyisapen/line-chatbot-workshop/internal/logger"
	"github.com/kentyisapen/line-chatbot-workshop/internal/metrics"
	"github.com/kentyisapen/line-chatbot-workshop/internal/sentry"
	"github.com/kentyisapen/line-chatbot-workshop/internal/signature"
)

// EventProcessor handles one decoded webhook event.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, ev event.Event)
}

// Handler handles LINE webhook requests
type Handler struct {
	channelSecret string
	processor     EventProcessor
	logger        *logger.Logger
	metrics       *metrics.Metrics
	wg            sync.WaitGroup // WaitGroup for async event processing

	maxEventsPerWebhook int
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	ChannelSecret string
	BotConfig     *config.BotConfig
	Processor     EventProcessor
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		channelSecret:       cfg.ChannelSecret,
		processor:           cfg.Processor,
		logger:              cfg.Logger.WithModule("webhook"),
		metrics:             cfg.Metrics,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
	}
}

// Handle is the Gin handler for the webhook endpoint.
//
// The signature is verified against the raw body before anything is parsed.
// A verified request is acknowledged with 200 immediately; event processing
// happens afterwards so a slow outbound call never delays the platform's
// delivery pipeline.
func (h *Handler) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.WithError(err).Error("Failed to read webhook body")
		h.metrics.RecordHTTPError("read_error")
		c.Status(http.StatusBadRequest)
		return
	}

	sig := c.GetHeader(signature.HeaderName)
	if !signature.Verify(body, sig, h.channelSecret) {
		h.logger.WithError(domerrors.ErrInvalidSignature).Warn("Invalid webhook signature")
		h.metrics.RecordHTTPError("invalid_signature")
		c.Status(http.StatusBadRequest)
		return
	}

	// Return 200 OK immediately (LINE requirement)
	c.Status(http.StatusOK)

	events, err := event.DecodeBatch(body)
	if err != nil {
		// The request was already acknowledged; the body is dropped.
		h.logger.WithError(err).Error("Failed to decode webhook body")
		h.metrics.RecordHTTPError("malformed_body")
		return
	}
	if len(events) == 0 {
		// Verification requests from the LINE console carry no events.
		h.logger.Debug("Webhook batch with no events")
		return
	}

	if len(events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		events = events[:h.maxEventsPerWebhook]
	}

	// Process events asynchronously
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
				sentry.CaptureMessage(fmt.Sprintf("panic in async event processing: %v", r))
			}
		}()

		ctx := context.Background()
		for _, ev := range events {
			h.processor.ProcessEvent(ctx, ev)
		}
	}()
}

// Shutdown waits for all async event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
