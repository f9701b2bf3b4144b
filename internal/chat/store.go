// Package chat holds the blog assistant conversation.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	"github.com/angelmondragon/finblog-client/internal/validation"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	basePath = "/chat"
	// historyWindow is how many earlier messages travel with each question.
	historyWindow = 10
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m Message) Identity() string { return m.ID }

type State struct {
	Open     bool      `json:"open"`
	Messages []Message `json:"messages"`
}

type Store struct {
	*lifecycle.Store[State]
	api      apiclient.API
	validate *validation.Validator
	limiter  *rate.Limiter
	now      func() time.Time
}

// New builds the store. perMinute bounds how many questions can be sent per
// minute; zero or less disables throttling.
func New(api apiclient.API, v *validation.Validator, perMinute int, tr *i18n.Translator, logg *logger.Logger) *Store {
	if v == nil {
		v = validation.New(tr)
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &Store{
		Store:    lifecycle.NewStore("chat", State{Messages: []Message{}}, tr, logg),
		api:      api,
		validate: v,
		limiter:  limiter,
		now:      time.Now,
	}
}

func (s *Store) SetOpen(open bool) {
	s.Update(func(st *State) { st.Open = open })
}

// Reset drops the conversation and the status flags.
func (s *Store) Reset() {
	s.Update(func(st *State) { st.Messages = []Message{} })
	s.Clear()
}

type wireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Message string        `json:"message"`
	History []wireMessage `json:"history,omitempty"`
}

type reply struct {
	Reply   string `json:"reply"`
	Message string `json:"message"`
}

// Send appends the question right away and the assistant's answer once it
// arrives. A rejected question stays in the conversation.
func (s *Store) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if err := s.validate.Var("message", text, "required,max=1000"); err != nil {
		return s.reject(ctx, err)
	}
	if !s.limiter.Allow() {
		return s.reject(ctx, pkgerrors.New(pkgerrors.CodeRateLimited, s.Translator().T(i18n.KeyChatRateLimited)))
	}

	history := s.history()
	question := Message{ID: uuid.NewString(), Role: RoleUser, Content: text, CreatedAt: s.now().UTC()}
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, Message]{
		Name:     "send",
		Fallback: i18n.KeyChatFailed,
		Pending: func(st *State) {
			st.Messages = append(append([]Message(nil), st.Messages...), question)
		},
		Call: func(ctx context.Context) (Message, error) {
			resp, err := s.api.Post(ctx, basePath, request{Message: text, History: history})
			if err != nil {
				return Message{}, err
			}
			body, err := apiclient.DecodeData[reply](resp)
			if err != nil {
				return Message{}, err
			}
			content := body.Reply
			if content == "" {
				content = body.Message
			}
			if content == "" {
				return Message{}, pkgerrors.New(pkgerrors.CodeDecode, s.Translator().T(i18n.KeyChatFailed))
			}
			return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: content, CreatedAt: s.now().UTC()}, nil
		},
		Fulfilled: func(st *State, answer Message) {
			st.Messages = append(append([]Message(nil), st.Messages...), answer)
		},
	})
}

func (s *Store) history() []wireMessage {
	msgs := s.Snapshot().Data.Messages
	if len(msgs) > historyWindow {
		msgs = msgs[len(msgs)-historyWindow:]
	}
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, wireMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *Store) reject(ctx context.Context, err error) (Message, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, Message]{
		Name: "send",
		Call: func(context.Context) (Message, error) { return Message{}, err },
	})
}
