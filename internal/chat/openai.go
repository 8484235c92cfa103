package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lumenio-ai/lumen/internal/domain"
)

// DefaultChatModel is the model used when no override is configured.
const DefaultChatModel = openai.GPT4oMini

// ErrNoChoices is returned when the API responds without any completion.
var ErrNoChoices = errors.New("no completion choices returned")

// CompletionAPI is the slice of the OpenAI client this package uses, kept
// narrow for testing.
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// OpenAIModel implements Model over the OpenAI chat completions API.
type OpenAIModel struct {
	api   CompletionAPI
	model string
}

// NewOpenAIModel creates a chat client for the given model name.
func NewOpenAIModel(apiKey, model string) *OpenAIModel {
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenAIModel{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// NewOpenAIModelWithAPI creates a chat client over a custom API implementation.
func NewOpenAIModelWithAPI(api CompletionAPI, model string) *OpenAIModel {
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenAIModel{api: api, model: model}
}

// Chat runs a buffered completion.
func (m *OpenAIModel) Chat(ctx context.Context, req Request) (string, error) {
	resp, err := m.api.CreateChatCompletion(ctx, m.buildRequest(req, false))
	if err != nil {
		return "", domain.NewUpstreamError("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewUpstreamError("chat completion", ErrNoChoices)
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatStream runs a streamed completion. Fragments are forwarded in
// generation order; the channel is closed after the terminal event. The
// request context cancels the upstream stream on client disconnect.
func (m *OpenAIModel) ChatStream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	stream, err := m.api.CreateChatCompletionStream(ctx, m.buildRequest(req, true))
	if err != nil {
		return nil, domain.NewUpstreamError("chat completion stream", err)
	}

	events := make(chan StreamEvent)
	go func() {
		defer close(events)
		defer stream.Close()

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				events <- StreamEvent{Done: true}
				return
			}
			if err != nil {
				events <- StreamEvent{Done: true, Err: domain.NewUpstreamError("chat completion stream", err)}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			fragment := chunk.Choices[0].Delta.Content
			if fragment == "" {
				continue
			}
			select {
			case events <- StreamEvent{Fragment: fragment}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func (m *OpenAIModel) buildRequest(req Request, stream bool) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = m.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, 8)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	if req.Conversation != nil {
		for _, msg := range req.Conversation.History() {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    mapRole(msg.Role),
				Content: msg.Content,
			})
		}
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Query,
	})

	return openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Stream:   stream,
	}
}

// mapRole folds caller-supplied role strings onto the API's closed set.
func mapRole(role string) string {
	switch strings.ToLower(role) {
	case "assistant", "ai":
		return openai.ChatMessageRoleAssistant
	case "system":
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
