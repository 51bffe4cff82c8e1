package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/llm/llmhttp"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/resilience"
)

const (
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 2048
)

// Generator calls the Anthropic Messages API.
type Generator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, timeout time.Duration, executor *resilience.Executor) *Generator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return "", errors.New("anthropic api key is not configured")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	payload := messagesRequest{
		Model:     g.model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  make([]message, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, message{Role: m.Role, Content: m.Content})
	}

	var response messagesResponse
	err := llmhttp.Guard(ctx, g.executor, "anthropic.messages", func(ctx context.Context) error {
		return llmhttp.PostJSON(ctx, g.httpClient, llmhttp.Request{
			Provider:  "anthropic",
			Operation: "messages",
			URL:       g.baseURL + "/v1/messages",
			Headers: map[string]string{
				"x-api-key":         g.apiKey,
				"anthropic-version": apiVersion,
			},
			Payload: payload,
		}, &response)
	})
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(response.Content))
	for _, block := range response.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
