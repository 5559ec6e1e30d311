// Package lineutil provides utility functions for building LINE messages and actions.
package lineutil

import (
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// NewTextMessage creates a simple text message.
// LINE API limits: max 5000 characters per text message.
// Limits are counted in characters, so all checks use runes.
func NewTextMessage(text string) *messaging_api.TextMessage {
	if utf8.RuneCountInString(text) > 5000 {
		text = TruncateRunes(text, 4997) + "..."
	}

	return &messaging_api.TextMessage{
		Text: text,
	}
}

// NewButtonsTemplate creates a buttons template message.
// The altText is displayed in push notifications and chat lists.
// LINE API limits: max 4 actions, title max 40 chars, text max 160 chars
func NewButtonsTemplate(altText, title, text string, actions []Action) messaging_api.MessageInterface {
	if len(actions) > 4 {
		actions = actions[:4]
	}
	if utf8.RuneCountInString(text) > 160 {
		text = TruncateRunes(text, 157) + "..."
	}
	if utf8.RuneCountInString(title) > 40 {
		title = TruncateRunes(title, 37) + "..."
	}
	if utf8.RuneCountInString(altText) > 400 {
		altText = TruncateRunes(altText, 397) + "..."
	}

	template := &messaging_api.ButtonsTemplate{
		Text:    text,
		Actions: actions,
	}
	if title != "" {
		template.Title = title
	}

	return &messaging_api.TemplateMessage{
		AltText:  altText,
		Template: template,
	}
}

// NewPostbackAction creates a postback action that sends data to the bot when clicked.
// The label is displayed on the button, and data is sent as postback data.
func NewPostbackAction(label, data string) Action {
	return &messaging_api.PostbackAction{
		Label: label,
		Data:  data,
	}
}

// NewPostbackActionWithDisplayText creates a postback action with custom display text.
// The label is displayed on the button, displayText is shown in the chat when clicked.
func NewPostbackActionWithDisplayText(label, displayText, data string) Action {
	return &messaging_api.PostbackAction{
		Label:       label,
		DisplayText: displayText,
		Data:        data,
	}
}

// TruncateRunes truncates s to at most n runes, never splitting a multi-byte
// character.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
