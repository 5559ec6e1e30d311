package bot

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kentyisapen/line-chatbot-workshop/internal/config"
	"github.com/kentyisapen/line-chatbot-workshop/internal/consult"
	"github.com/kentyisapen/line-chatbot-workshop/internal/event"
	"github.com/kentyisapen/line-chatbot-workshop/internal/logger"
	"github.com/kentyisapen/line-chatbot-workshop/internal/metrics"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
)

type memStore struct {
	users map[string]consult.State
}

func (s *memStore) GetUser(_ context.Context, id string) (*consult.User, error) {
	state, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &consult.User{ID: id, State: state}, nil
}

func (s *memStore) CreateUser(_ context.Context, id string, state consult.State) error {
	if _, ok := s.users[id]; !ok {
		s.users[id] = state
	}
	return nil
}

func (s *memStore) SetState(_ context.Context, id string, state consult.State) error {
	s.users[id] = state
	return nil
}

type recordingSender struct {
	tokens   []string
	messages [][]messaging_api.MessageInterface
}

func (s *recordingSender) Reply(_ context.Context, token string, messages []messaging_api.MessageInterface) error {
	s.tokens = append(s.tokens, token)
	s.messages = append(s.messages, messages)
	return nil
}

type recordingLinker struct {
	menus []string
}

func (l *recordingLinker) Link(_ context.Context, _, menuName string) error {
	l.menus = append(l.menus, menuName)
	return nil
}

type fixture struct {
	processor *Processor
	store     *memStore
	sender    *recordingSender
	linker    *recordingLinker
}

func newFixture() *fixture {
	log := logger.NewWithWriter("error", io.Discard)
	m := metrics.New(prometheus.NewRegistry())
	store := &memStore{users: map[string]consult.State{}}
	sender := &recordingSender{}
	linker := &recordingLinker{}

	machine := consult.NewMachine(consult.MachineConfig{
		Store:   store,
		Sender:  sender,
		Linker:  linker,
		Logger:  log,
		Metrics: m,
	})

	processor := NewProcessor(ProcessorConfig{
		Machine: machine,
		BotConfig: &config.BotConfig{
			WebhookTimeout:      5 * time.Second,
			MaxMessagesPerReply: 5,
			MaxEventsPerWebhook: 100,
			MaxPostbackDataSize: 300,
		},
		Logger:  log,
		Metrics: m,
	})

	return &fixture{processor: processor, store: store, sender: sender, linker: linker}
}

const testToken = "T1"

func TestProcessFollow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.processor.ProcessEvent(context.Background(), event.Event{
		Type:       event.TypeFollow,
		RawType:    "follow",
		UserID:     "U1",
		ReplyToken: "T1",
	})

	if f.store.users["U1"] != consult.StateIdle {
		t.Errorf("Expected user created idle, got %q", f.store.users["U1"])
	}
	// The token is opaque; even a two-character one gets the reply.
	if len(f.sender.tokens) != 1 || f.sender.tokens[0] != "T1" {
		t.Fatalf("Expected one welcome reply with token T1, got %v", f.sender.tokens)
	}
	if len(f.linker.menus) != 1 || f.linker.menus[0] != consult.MenuStartConsultation {
		t.Errorf("Expected start menu link, got %v", f.linker.menus)
	}
}

func TestProcessPostbackStartsConsultation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.processor.ProcessEvent(context.Background(), event.Event{
		Type:         event.TypePostback,
		RawType:      "postback",
		UserID:       "U1",
		ReplyToken:   "T2",
		PostbackData: "action=start_consultation",
	})

	if f.store.users["U1"] != consult.StateStarted {
		t.Errorf("Expected started_consultation, got %q", f.store.users["U1"])
	}
	if len(f.sender.tokens) != 1 || f.sender.tokens[0] != "T2" {
		t.Fatalf("Expected one reply with token T2, got %v", f.sender.tokens)
	}
	if len(f.linker.menus) != 1 || f.linker.menus[0] != consult.MenuInterruptConsultation {
		t.Errorf("Expected interrupt menu link, got %v", f.linker.menus)
	}
}

func TestProcessSkipsEventsWithoutUser(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.processor.ProcessEvent(context.Background(), event.Event{
		Type:       event.TypeMessage,
		RawType:    "message",
		ReplyToken: testToken,
	})

	if len(f.store.users) != 0 {
		t.Errorf("Expected no user records, got %d", len(f.store.users))
	}
	if len(f.sender.tokens) != 0 {
		t.Errorf("Expected no replies, got %v", f.sender.tokens)
	}
}

func TestProcessSkipsUnknownEventType(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.processor.ProcessEvent(context.Background(), event.Event{
		Type:    event.TypeUnknown,
		RawType: "memberJoined",
		UserID:  "U1",
	})

	if len(f.sender.tokens) != 0 {
		t.Errorf("Expected no replies for unsupported event, got %v", f.sender.tokens)
	}
	if len(f.linker.menus) != 0 {
		t.Errorf("Expected no menu links for unsupported event, got %v", f.linker.menus)
	}
}

func TestProcessRejectsOversizedPostbackData(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.store.users["U1"] = consult.StateIdle

	f.processor.ProcessEvent(context.Background(), event.Event{
		Type:         event.TypePostback,
		RawType:      "postback",
		UserID:       "U1",
		ReplyToken:   testToken,
		PostbackData: "action=" + strings.Repeat("a", 300),
	})

	if f.store.users["U1"] != consult.StateIdle {
		t.Errorf("Expected state untouched, got %q", f.store.users["U1"])
	}
	if len(f.sender.tokens) != 0 {
		t.Errorf("Expected no reply for oversized payload, got %v", f.sender.tokens)
	}
}

func TestProcessEmptyReplyTokenSkipsReplyOnly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.processor.ProcessEvent(context.Background(), event.Event{
		Type:         event.TypePostback,
		RawType:      "postback",
		UserID:       "U1",
		ReplyToken:   "",
		PostbackData: "action=start_consultation",
	})

	// The transition and menu link still apply; only the reply is dropped.
	if f.store.users["U1"] != consult.StateStarted {
		t.Errorf("Expected started_consultation, got %q", f.store.users["U1"])
	}
	if len(f.sender.tokens) != 0 {
		t.Errorf("Expected no reply without a token, got %v", f.sender.tokens)
	}
	if len(f.linker.menus) != 1 {
		t.Errorf("Expected menu link despite missing token, got %v", f.linker.menus)
	}
}

func TestProcessUnfollowIsNoOp(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.store.users["U1"] = consult.StateStarted

	f.processor.ProcessEvent(context.Background(), event.Event{
		Type:    event.TypeUnfollow,
		RawType: "unfollow",
		UserID:  "U1",
	})

	if f.store.users["U1"] != consult.StateStarted {
		t.Errorf("Expected state preserved across unfollow, got %q", f.store.users["U1"])
	}
	if len(f.sender.tokens) != 0 {
		t.Errorf("Expected no reply on unfollow, got %v", f.sender.tokens)
	}
	if len(f.linker.menus) != 0 {
		t.Errorf("Expected no menu link on unfollow, got %v", f.linker.menus)
	}

	// Unfollow from an unseen user must not create a record either.
	f.processor.ProcessEvent(context.Background(), event.Event{
		Type:    event.TypeUnfollow,
		RawType: "unfollow",
		UserID:  "U2",
	})
	if _, ok := f.store.users["U2"]; ok {
		t.Error("Expected no record created for unfollow from unseen user")
	}
}
