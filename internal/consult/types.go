// Package consult implements the consultation conversation flow: a small
// cyclic state machine advanced by rich menu postbacks. Given the user's
// current state and an inbound action it decides the next state, the reply
// messages, and the rich menu to bind.
package consult

import (
	"context"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// State is the per-user conversation state.
type State string

// The two consultation states. The machine is cyclic:
// idle -> started_consultation -> idle.
const (
	StateIdle    State = "idle"
	StateStarted State = "started_consultation"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	return s == StateIdle || s == StateStarted
}

// Logical rich menu names. A menu must be registered (remote id present in
// the menu store) before it can be linked to a user.
const (
	MenuStartConsultation     = "start_consultation"
	MenuInterruptConsultation = "interrupt_consultation"
)

// User is the persisted per-user record the machine operates on.
type User struct {
	ID    string // opaque platform user id
	State State
}

// MenuBinding associates a logical menu name with its platform-assigned id.
type MenuBinding struct {
	Name     string
	RemoteID string
}

// Store is the narrow persistence interface the machine depends on.
// GetUser returns (nil, nil) when the user does not exist.
type Store interface {
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, id string, state State) error
	SetState(ctx context.Context, id string, state State) error
}

// ReplySender posts reply messages back to the platform using a one-time
// reply token.
type ReplySender interface {
	Reply(ctx context.Context, replyToken string, messages []messaging_api.MessageInterface) error
}

// MenuLinker binds a named rich menu to a user on the platform.
type MenuLinker interface {
	Link(ctx context.Context, userID, menuName string) error
}
