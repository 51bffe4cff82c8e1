package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/llm/llmhttp"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/infrastructure/resilience"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator calls Gemini through the genai SDK.
type Generator struct {
	models   contentGenerator
	model    string
	executor *resilience.Executor
}

func New(ctx context.Context, apiKey, model string, executor *resilience.Executor) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{models: client.Models, model: model, executor: executor}, nil
}

func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.RoleUser
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	var text string
	err := llmhttp.Guard(ctx, g.executor, "gemini.generate", func(ctx context.Context) error {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return asStatusError(err)
		}
		text = resp.Text()
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// asStatusError lets the shared classifier see Gemini API status codes.
func asStatusError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llmhttp.HTTPStatusError{
			Provider: "gemini", Operation: "generate",
			StatusCode: apiErr.Code, Status: apiErr.Status, Body: apiErr.Message,
		}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &llmhttp.HTTPStatusError{
			Provider: "gemini", Operation: "generate",
			StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Body: apiErrPtr.Message,
		}
	}
	return fmt.Errorf("gemini generate: %w", err)
}
