package consult

import (
	"net/url"
	"strings"
)

// Action is the closed postback vocabulary of the consultation flow.
// Postback data is parsed into an Action exactly once, at the boundary;
// everything downstream switches over this type, never over raw strings.
type Action string

// All actions the rich menus and button templates can send.
const (
	ActionUnknown               Action = "unknown"
	ActionStartConsultation     Action = "start_consultation"
	ActionInterruptConsultation Action = "interrupt_consultation"
	ActionCallNoResponse        Action = "call_no_response"
	ActionOtherSituation        Action = "other_situation"
)

// actionLabels maps each action to the display label used for message echo.
// The labels match the rich menu and button labels shown to the user.
var actionLabels = map[Action]string{
	ActionStartConsultation:     "受診を開始する",
	ActionInterruptConsultation: "受診を中断する",
	ActionCallNoResponse:        "呼びかけに応答がない",
	ActionOtherSituation:        "その他の様子",
}

// unknownActionLabel is the sentinel label for actions outside the vocabulary.
const unknownActionLabel = "不明な操作"

// ParseAction parses postback data of the form "action=<name>" into an
// Action. Anything unparseable or outside the vocabulary yields
// ActionUnknown; parsing never fails.
func ParseAction(data string) Action {
	values, err := url.ParseQuery(strings.TrimSpace(data))
	if err != nil {
		return ActionUnknown
	}

	switch Action(values.Get("action")) {
	case ActionStartConsultation:
		return ActionStartConsultation
	case ActionInterruptConsultation:
		return ActionInterruptConsultation
	case ActionCallNoResponse:
		return ActionCallNoResponse
	case ActionOtherSituation:
		return ActionOtherSituation
	default:
		return ActionUnknown
	}
}

// PostbackData returns the wire form of the action for button and rich menu
// definitions ("action=<name>").
func (a Action) PostbackData() string {
	return "action=" + string(a)
}

// Label returns the human-readable display label for the action.
// Actions outside the vocabulary resolve to a fixed sentinel label.
func (a Action) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return unknownActionLabel
}

func (a Action) String() string {
	return string(a)
}
