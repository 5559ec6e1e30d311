// Package bot dispatches decoded webhook events to the consultation flow.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kentyisapen/line-chatbot-workshop/internal/config"
	"github.com/kentyisapen/line-chatbot-workshop/internal/consult"
	domerrors "github.com/kentyisapen/line-chatbot-workshop/internal/errors"
	"github.com/kentyisapen/line-chatbot-workshop/internal/event"
	"github.com/kentyisapen/line-chatbot-workshop/internal/logger"
	"github.com/kentyisapen/line-chatbot-workshop/internal/metrics"
	"github.com/kentyisapen/line-chatbot-workshop/internal/sentry"
)

// Processor routes each inbound event to the consultation machine.
type Processor struct {
	machine *consult.Machine
	logger  *logger.Logger
	metrics *metrics.Metrics

	webhookTimeout      time.Duration
	maxPostbackDataSize int
}

// ProcessorConfig holds configuration for creating a new Processor
type ProcessorConfig struct {
	Machine   *consult.Machine
	BotConfig *config.BotConfig
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
}

// NewProcessor creates a new event processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		machine:             cfg.Machine,
		logger:              cfg.Logger.WithModule("bot"),
		metrics:             cfg.Metrics,
		webhookTimeout:      cfg.BotConfig.WebhookTimeout,
		maxPostbackDataSize: cfg.BotConfig.MaxPostbackDataSize,
	}
}

// ProcessEvent handles one webhook event, recording per-event metrics.
// Processing of a single event is bounded by the webhook timeout so a stuck
// outbound call cannot stall the rest of the batch forever.
func (p *Processor) ProcessEvent(ctx context.Context, ev event.Event) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.webhookTimeout)
	defer cancel()

	status := "success"
	if err := p.process(ctx, ev); err != nil {
		switch {
		case isSkip(err):
			status = "skipped"
			p.logger.WithError(err).WithField("event_type", ev.RawType).Debug("Event skipped")
		default:
			status = "error"
			p.logger.WithError(err).WithField("event_type", ev.RawType).Error("Failed to handle event")
			sentry.CaptureException(err)
		}
	}

	p.metrics.RecordWebhook(string(ev.Type), status, time.Since(start).Seconds())
}

func (p *Processor) process(ctx context.Context, ev event.Event) error {
	// Group, room, and account-less events carry no user id. The flow is
	// strictly one-to-one, so those are skipped wholesale.
	if ev.UserID == "" {
		return domerrors.ErrMissingSource
	}

	if ev.Type == event.TypeUnknown {
		return fmt.Errorf("event type %q: %w", ev.RawType, domerrors.ErrUnsupportedEvent)
	}

	log := p.logger.WithUserID(ev.UserID).WithField("event_type", string(ev.Type))

	// Unfollow is a pure no-op: no record is created and any existing state
	// stays, so it survives a block/unblock cycle.
	if ev.Type == event.TypeUnfollow {
		log.Info("User unfollowed")
		return nil
	}

	user, err := p.machine.EnsureUser(ctx, ev.UserID)
	if err != nil {
		return err
	}

	// The reply token is an opaque credential; the machine skips the reply
	// when an event carries none.
	switch ev.Type {
	case event.TypeFollow:
		p.machine.HandleFollow(ctx, user, ev.ReplyToken)

	case event.TypeMessage:
		p.machine.HandleMessage(ctx, user, ev.ReplyToken)

	case event.TypePostback:
		if len(ev.PostbackData) > p.maxPostbackDataSize {
			return fmt.Errorf("postback data %d bytes exceeds limit %d: %w",
				len(ev.PostbackData), p.maxPostbackDataSize, domerrors.ErrInvalidInput)
		}
		action := consult.ParseAction(ev.PostbackData)
		return p.machine.HandlePostback(ctx, user, ev.ReplyToken, action)
	}

	return nil
}

func isSkip(err error) bool {
	return errors.Is(err, domerrors.ErrMissingSource) ||
		errors.Is(err, domerrors.ErrUnsupportedEvent)
}
