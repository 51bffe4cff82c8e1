package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/llm/llmhttp"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/resilience"
)

// Generator talks to a local Ollama server through /api/chat.
type Generator struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel string, timeout time.Duration, executor *resilience.Executor) *Generator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	reqBody := map[string]any{
		"model":    g.genModel,
		"messages": messages,
		"stream":   false,
	}
	if req.MaxTokens > 0 {
		reqBody["options"] = map[string]any{"num_predict": req.MaxTokens}
	}

	var response struct {
		Message chatMessage `json:"message"`
	}
	err := llmhttp.Guard(ctx, g.executor, "ollama.chat", func(ctx context.Context) error {
		return llmhttp.PostJSON(ctx, g.httpClient, llmhttp.Request{
			Provider:  "ollama",
			Operation: "chat",
			URL:       g.baseURL + "/api/chat",
			Payload:   reqBody,
		}, &response)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Message.Content), nil
}
