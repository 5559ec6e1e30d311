// Package event defines the inbound webhook event model and decodes the raw
// event batch the platform delivers. Decoding is tolerant: events with
// missing fields or unrecognized types survive as values the dispatcher can
// inspect and skip, so one malformed event never aborts a batch.
package event

import (
	"encoding/json"
	"fmt"
)

// Type identifies the kind of webhook event.
type Type string

// Known webhook event types. Anything else decodes as TypeUnknown.
const (
	TypeFollow   Type = "follow"
	TypeUnfollow Type = "unfollow"
	TypeMessage  Type = "message"
	TypePostback Type = "postback"
	TypeUnknown  Type = "unknown"
)

// Event is a single inbound webhook event. It is transient and never
// persisted.
type Event struct {
	Type    Type
	RawType string // the wire value, kept for logging unknown types

	UserID     string
	ReplyToken string

	// Message payload (TypeMessage only)
	MessageType string
	Text        string

	// Postback payload (TypePostback only)
	PostbackData string
}

// wire structures mirroring the platform JSON (see the webhook reference).

type wireBatch struct {
	Events []wireEvent `json:"events"`
}

type wireEvent struct {
	Type       string        `json:"type"`
	ReplyToken string        `json:"replyToken"`
	Source     *wireSource   `json:"source"`
	Message    *wireMessage  `json:"message"`
	Postback   *wirePostback `json:"postback"`
}

type wireSource struct {
	UserID string `json:"userId"`
}

type wireMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wirePostback struct {
	Data string `json:"data"`
}

// DecodeBatch decodes the raw webhook body into events. It returns an error
// only when the envelope itself is not valid JSON; individual events are
// never rejected here.
func DecodeBatch(body []byte) ([]Event, error) {
	var batch wireBatch
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("decode event batch: %w", err)
	}

	events := make([]Event, 0, len(batch.Events))
	for _, we := range batch.Events {
		events = append(events, fromWire(we))
	}
	return events, nil
}

func fromWire(we wireEvent) Event {
	ev := Event{
		RawType:    we.Type,
		ReplyToken: we.ReplyToken,
	}

	switch Type(we.Type) {
	case TypeFollow, TypeUnfollow, TypeMessage, TypePostback:
		ev.Type = Type(we.Type)
	default:
		ev.Type = TypeUnknown
	}

	if we.Source != nil {
		ev.UserID = we.Source.UserID
	}
	if we.Message != nil {
		ev.MessageType = we.Message.Type
		ev.Text = we.Message.Text
	}
	if we.Postback != nil {
		ev.PostbackData = we.Postback.Data
	}

	return ev
}
