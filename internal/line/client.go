// Package line wraps the outbound LINE Messaging API surface the bot uses:
// reply messages, rich menu management, and rich menu image upload.
package line

import (
	"context"
	"fmt"
	"io"
	"strings"

	domerrors "github.com/kentyisapen/line-chatbot-workshop/internal/errors"
	"github.com/kentyisapen/line-chatbot-workshop/internal/logger"
	"github.com/kentyisapen/line-chatbot-workshop/internal/metrics"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Client wraps the LINE Messaging API clients
type Client struct {
	api     *messaging_api.MessagingApiAPI
	blob    *messaging_api.MessagingApiBlobAPI
	logger  *logger.Logger
	metrics *metrics.Metrics

	maxMessagesPerReply int
}

// ClientConfig holds configuration for creating a new Client
type ClientConfig struct {
	ChannelToken        string
	MaxMessagesPerReply int
	Logger              *logger.Logger
	Metrics             *metrics.Metrics
}

// NewClient creates the messaging and blob API clients.
func NewClient(cfg ClientConfig) (*Client, error) {
	api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging blob API client: %w", err)
	}

	return &Client{
		api:                 api,
		blob:                blob,
		logger:              cfg.Logger.WithModule("line"),
		metrics:             cfg.Metrics,
		maxMessagesPerReply: cfg.MaxMessagesPerReply,
	}, nil
}

// Reply sends messages for a one-time reply token. The token is consumed by
// the first successful call, so all messages for one event must go out in a
// single batch.
func (c *Client) Reply(_ context.Context, replyToken string, messages []messaging_api.MessageInterface) error {
	if len(messages) == 0 {
		return nil
	}
	if len(messages) > c.maxMessagesPerReply {
		c.logger.WithField("message_count", len(messages)).
			WithField("limit", c.maxMessagesPerReply).
			Warn("Message count exceeds limit; truncating")
		messages = messages[:c.maxMessagesPerReply]
	}

	if _, err := c.api.ReplyMessage(
		&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages:   messages,
		},
	); err != nil {
		c.metrics.RecordReply("error")
		if strings.Contains(err.Error(), "Invalid reply token") {
			c.logger.WithError(err).Debug("Reply token already used or invalid")
		}
		return domerrors.NewLineAPIError("reply", 0, err)
	}

	c.metrics.RecordReply("success")
	return nil
}

// LinkRichMenuToUser binds a platform rich menu id to a user.
func (c *Client) LinkRichMenuToUser(_ context.Context, userID, richMenuID string) error {
	if _, err := c.api.LinkRichMenuIdToUser(userID, richMenuID); err != nil {
		return domerrors.NewLineAPIError("link rich menu", 0, err)
	}
	return nil
}

// CreateRichMenu registers a rich menu definition and returns the
// platform-assigned id.
func (c *Client) CreateRichMenu(_ context.Context, req *messaging_api.RichMenuRequest) (string, error) {
	resp, err := c.api.CreateRichMenu(req)
	if err != nil {
		return "", domerrors.NewLineAPIError("create rich menu", 0, err)
	}
	return resp.RichMenuId, nil
}

// UploadRichMenuImage attaches the menu background image to a created menu.
// A menu cannot be linked to users until it has an image.
func (c *Client) UploadRichMenuImage(_ context.Context, richMenuID, contentType string, image io.Reader) error {
	if _, err := c.blob.SetRichMenuImage(richMenuID, contentType, image); err != nil {
		return domerrors.NewLineAPIError("set rich menu image", 0, err)
	}
	return nil
}

// DeleteRichMenu removes a rich menu from the platform.
func (c *Client) DeleteRichMenu(_ context.Context, richMenuID string) error {
	if _, err := c.api.DeleteRichMenu(richMenuID); err != nil {
		return domerrors.NewLineAPIError("delete rich menu", 0, err)
	}
	return nil
}
