package server

import (
	"context"
	"strings"

	"github.com/lumenio-ai/lumen/internal/app"
	"github.com/lumenio-ai/lumen/internal/chat"
	"github.com/lumenio-ai/lumen/internal/config"
	"github.com/lumenio-ai/lumen/internal/domain"
)

// Roles used for conversation bookkeeping at the request boundary.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Service is the request boundary over the active runtime. It resolves the
// runtime once per call, so requests in flight are unaffected by a
// concurrent reconfiguration, and it owns conversation mutation: the
// question and the accumulated answer are appended only after generation
// completes.
type Service struct {
	app *app.App
}

func NewService(a *app.App) *Service {
	return &Service{app: a}
}

func (s *Service) Ask(ctx context.Context, question string, domains []string) (string, []chat.Source, error) {
	rt := s.app.Current()

	answer, sources, err := rt.Engine.AskQuestion(ctx, question, domains, rt.Conversation)
	if err != nil {
		return "", nil, err
	}

	rt.Conversation.AddMessage(roleUser, question)
	rt.Conversation.AddMessage(roleAssistant, answer)
	return answer, sources, nil
}

func (s *Service) AskStream(ctx context.Context, question string, domains []string) (<-chan chat.StreamEvent, error) {
	rt := s.app.Current()

	events, err := rt.Engine.AskQuestionStream(ctx, question, domains, rt.Conversation)
	if err != nil {
		return nil, err
	}

	out := make(chan chat.StreamEvent)
	go func() {
		defer close(out)
		var answer strings.Builder
		for ev := range events {
			answer.WriteString(ev.Fragment)
			if ev.Done && ev.Err == nil {
				rt.Conversation.AddMessage(roleUser, question)
				rt.Conversation.AddMessage(roleAssistant, answer.String())
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Done {
				return
			}
		}
	}()
	return out, nil
}

func (s *Service) ListDomains(ctx context.Context) []*domain.Domain {
	return s.app.Current().Manager.GetDomains()
}

func (s *Service) GetDomain(ctx context.Context, name string) (*domain.Domain, error) {
	return s.app.Current().Manager.GetDomain(name)
}

func (s *Service) AddDomain(ctx context.Context, name, description string) error {
	return s.app.Current().Manager.AddDomain(name, description)
}

func (s *Service) DeleteDomain(ctx context.Context, name string) error {
	return s.app.Current().Manager.DeleteDomain(name)
}

func (s *Service) Reindex(ctx context.Context) error {
	return s.app.Reindex(ctx)
}

func (s *Service) Settings(ctx context.Context) config.Config {
	return *s.app.Current().Config
}

func (s *Service) Setup(ctx context.Context, cfg *config.Config) error {
	return s.app.Rebuild(ctx, cfg)
}

func (s *Service) History(ctx context.Context) []domain.Message {
	return s.app.Current().Conversation.History()
}

func (s *Service) ClearConversation(ctx context.Context) {
	s.app.Current().Conversation.Clear()
}
