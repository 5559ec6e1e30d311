package consult

import (
	"context"
	"fmt"

	"github.com/kentyisapen/line-chatbot-workshop/internal/lineutil"
	"github.com/kentyisapen/line-chatbot-workshop/internal/logger"
	"github.com/kentyisapen/line-chatbot-workshop/internal/metrics"
	"github.com/kentyisapen/line-chatbot-workshop/internal/sentry"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Machine advances the consultation flow for one user at a time.
//
// Side effects of a postback are applied in a fixed order: the state write is
// persisted first, then a single reply call carrying the content messages and
// the label echo, then the rich menu link. The calls are independent remote
// operations; a later failure never rolls back an earlier one. Each failure
// is logged and absorbed so the webhook acknowledgment is never held hostage
// to a platform-side problem.
type Machine struct {
	store   Store
	sender  ReplySender
	linker  MenuLinker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// MachineConfig holds the collaborators for creating a new Machine.
type MachineConfig struct {
	Store   Store
	Sender  ReplySender
	Linker  MenuLinker
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// NewMachine creates a new consultation state machine.
func NewMachine(cfg MachineConfig) *Machine {
	return &Machine{
		store:   cfg.Store,
		sender:  cfg.Sender,
		linker:  cfg.Linker,
		logger:  cfg.Logger.WithModule("consult"),
		metrics: cfg.Metrics,
	}
}

// EnsureUser returns the user record for id, lazily creating it with the
// default idle state on first contact. Creation is idempotent under
// concurrent webhook deliveries: the insert is a no-op when the record
// already exists and the record is re-read afterwards.
func (m *Machine) EnsureUser(ctx context.Context, id string) (*User, error) {
	user, err := m.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	if err := m.store.CreateUser(ctx, id, StateIdle); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user, err = m.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reread user after create: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q missing after create", id)
	}
	return user, nil
}

// HandleFollow greets a new follower and links the start menu.
// The user stays at (or starts in) the idle state.
func (m *Machine) HandleFollow(ctx context.Context, user *User, replyToken string) {
	m.reply(ctx, user, replyToken, welcomeMessages())
	m.link(ctx, user, MenuStartConsultation)
}

// HandleMessage answers a free-form message according to the current state.
// Messages never mutate state: an idle user is pointed at the start menu, a
// consulting user is reminded to use the button choices.
func (m *Machine) HandleMessage(ctx context.Context, user *User, replyToken string) {
	if user.State == StateStarted {
		m.reply(ctx, user, replyToken, busyMessages())
		return
	}
	m.reply(ctx, user, replyToken, pleaseStartMessages())
}

// HandlePostback runs the guard and the transition table for one postback.
// It returns an error only when the state write fails; remote side-effect
// failures are logged and absorbed.
func (m *Machine) HandlePostback(ctx context.Context, user *User, replyToken string, action Action) error {
	log := m.logger.WithUserID(user.ID).
		WithField("action", action.String()).
		WithField("state", string(user.State))

	// Hard gate: while idle, only start_consultation is accepted.
	if user.State != StateStarted && action != ActionStartConsultation {
		log.Info("Postback rejected by idle guard")
		m.metrics.RecordTransition(action.String(), "guard_rejected")
		m.reply(ctx, user, replyToken, pleaseStartMessages())
		return nil
	}

	var (
		next     State
		messages []messaging_api.MessageInterface
		menu     string
	)

	switch action {
	case ActionStartConsultation:
		next = StateStarted
		messages = []messaging_api.MessageInterface{situationButtons(), echoMessage(action)}
		menu = MenuInterruptConsultation
	case ActionInterruptConsultation:
		next = StateIdle
		messages = []messaging_api.MessageInterface{lineutil.NewTextMessage(msgInterrupted), echoMessage(action)}
		menu = MenuStartConsultation
	case ActionCallNoResponse:
		next = StateIdle
		messages = []messaging_api.MessageInterface{lineutil.NewTextMessage(msgCallNoResponse), echoMessage(action)}
		menu = MenuStartConsultation
	case ActionOtherSituation:
		next = StateIdle
		messages = []messaging_api.MessageInterface{lineutil.NewTextMessage(msgOtherSituation), echoMessage(action)}
		menu = MenuStartConsultation
	default:
		// Unknown action inside a consultation: answer, change nothing.
		log.Warn("Unknown postback action")
		m.metrics.RecordTransition(action.String(), "unknown_action")
		m.reply(ctx, user, replyToken, []messaging_api.MessageInterface{lineutil.NewTextMessage(msgUnknownAction)})
		return nil
	}

	// State write comes first; reply and menu link follow and are never
	// rolled back if the write succeeded but a remote call fails.
	if next != user.State {
		if err := m.store.SetState(ctx, user.ID, next); err != nil {
			m.metrics.RecordTransition(action.String(), "store_error")
			return fmt.Errorf("set state %s -> %s: %w", user.State, next, err)
		}
		user.State = next
	}
	m.metrics.RecordTransition(action.String(), "applied")
	log.WithField("next_state", string(next)).Info("Consultation transition applied")

	m.reply(ctx, user, replyToken, messages)
	m.link(ctx, user, menu)
	return nil
}

// reply sends messages for one reply token, logging failures.
// Empty tokens are skipped (some events, e.g. unfollow, carry none).
func (m *Machine) reply(ctx context.Context, user *User, replyToken string, messages []messaging_api.MessageInterface) {
	if replyToken == "" {
		m.logger.WithUserID(user.ID).Debug("Empty reply token, skipping reply")
		return
	}
	if err := m.sender.Reply(ctx, replyToken, messages); err != nil {
		m.logger.WithError(err).WithUserID(user.ID).Error("Failed to send reply")
		sentry.CaptureExceptionWithContext(ctx, err)
	}
}

// link binds a named rich menu to the user, logging failures.
func (m *Machine) link(ctx context.Context, user *User, menuName string) {
	if err := m.linker.Link(ctx, user.ID, menuName); err != nil {
		m.logger.WithError(err).WithUserID(user.ID).
			WithField("menu", menuName).Error("Failed to link rich menu")
		sentry.CaptureExceptionWithContext(ctx, err)
	}
}
