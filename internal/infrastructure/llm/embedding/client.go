package embedding

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/llm/llmhttp"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/resilience"
)

// Client embeds query text against an OpenAI-compatible /embeddings endpoint.
type Client struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(url, apiKey, model string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:        url,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("embedding api key is not configured")
	}

	var response embeddingResponse
	err := llmhttp.Guard(ctx, c.executor, "embedding.create", func(ctx context.Context) error {
		return llmhttp.PostJSON(ctx, c.httpClient, llmhttp.Request{
			Provider:  "embedding",
			Operation: "create",
			URL:       c.url,
			Headers:   map[string]string{"Authorization": "Bearer " + c.apiKey},
			Payload:   map[string]string{"input": text, "model": c.model},
		}, &response)
	})
	if err != nil {
		return nil, err
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, errors.New("empty embedding result")
	}
	return response.Data[0].Embedding, nil
}
