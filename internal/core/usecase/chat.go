package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/ports"
)

type ChatConfig struct {
	EmbeddingModel  string
	ContextLimit    int
	SourceLimit     int
	HistoryLimit    int
	HistoryMaxChars int
	MaxTokens       int
}

func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		EmbeddingModel:  "gte-base",
		ContextLimit:    20,
		SourceLimit:     10,
		HistoryLimit:    20,
		HistoryMaxChars: 5000,
		MaxTokens:       2048,
	}
}

func (c ChatConfig) normalize() ChatConfig {
	out := c
	def := DefaultChatConfig()
	if strings.TrimSpace(out.EmbeddingModel) == "" {
		out.EmbeddingModel = def.EmbeddingModel
	}
	if out.ContextLimit <= 0 {
		out.ContextLimit = def.ContextLimit
	}
	if out.SourceLimit <= 0 {
		out.SourceLimit = def.SourceLimit
	}
	if out.HistoryLimit <= 0 {
		out.HistoryLimit = def.HistoryLimit
	}
	if out.HistoryMaxChars <= 0 {
		out.HistoryMaxChars = def.HistoryMaxChars
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = def.MaxTokens
	}
	return out
}

// ChatUseCase answers free-form questions grounded in retrieved reviews.
// It keeps no state between requests.
type ChatUseCase struct {
	repo      ports.ReviewRepository
	embedder  ports.Embedder
	generator ports.TextGenerator
	observer  ports.ChatObserver
	cfg       ChatConfig
}

// NewChatUseCase builds the orchestrator. A nil embedder disables semantic
// retrieval; a nil observer disables telemetry.
func NewChatUseCase(
	repo ports.ReviewRepository,
	embedder ports.Embedder,
	generator ports.TextGenerator,
	observer ports.ChatObserver,
	cfg ChatConfig,
) *ChatUseCase {
	return &ChatUseCase{
		repo:      repo,
		embedder:  embedder,
		generator: generator,
		observer:  observer,
		cfg:       cfg.normalize(),
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.NewValidationError(domain.FieldError{Field: "message", Message: "is required"})
	}
	started := time.Now()

	reviews, mode := uc.retrieve(ctx, req)

	reviewContext := buildReviewContext(reviews, uc.cfg.ContextLimit)
	messages := buildMessages(req.History, uc.cfg.HistoryLimit, uc.cfg.HistoryMaxChars, buildUserTurn(reviewContext, req.Message))

	answer, err := uc.generator.Generate(ctx, domain.GenerationRequest{
		System:    chatSystemPrompt,
		Messages:  messages,
		MaxTokens: uc.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate chat answer: %w", err)
	}

	usedIDs := make([]int64, 0, len(reviews))
	for _, r := range reviews {
		usedIDs = append(usedIDs, r.ID)
	}

	if uc.observer != nil {
		uc.observer.ObserveChat(mode, len(reviews), time.Since(started))
	}
	slog.InfoContext(ctx, "chat_answered",
		"retrieval_mode", string(mode),
		"retrieved", len(reviews),
		"history_turns", len(messages)-1,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return &domain.ChatResponse{
		Answer:        answer,
		UsedReviewIDs: usedIDs,
		Sources:       buildSources(reviews, uc.cfg.SourceLimit),
		RetrievalMode: mode,
	}, nil
}

// retrieve never fails: semantic search first, then the most recent
// matching reviews, then an empty context.
func (uc *ChatUseCase) retrieve(ctx context.Context, req domain.ChatRequest) ([]domain.Review, domain.RetrievalMode) {
	if uc.embedder != nil {
		reviews, err := uc.semantic(ctx, req)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "chat_retrieval_failed", "mode", string(domain.RetrievalSemantic), "error", err)
		case len(reviews) > 0:
			return reviews, domain.RetrievalSemantic
		default:
			slog.InfoContext(ctx, "chat_semantic_empty", "embedding_model", uc.cfg.EmbeddingModel)
		}
	}

	page, err := uc.repo.List(ctx, req.Filter, domain.PageRequest{
		Page:          1,
		PageSize:      uc.cfg.ContextLimit,
		SortBy:        domain.SortByReviewDate,
		SortDirection: domain.SortDesc,
	})
	if err != nil {
		slog.WarnContext(ctx, "chat_retrieval_failed", "mode", string(domain.RetrievalRecent), "error", err)
		return nil, domain.RetrievalNone
	}
	if len(page.Items) == 0 {
		return nil, domain.RetrievalNone
	}
	return page.Items, domain.RetrievalRecent
}

func (uc *ChatUseCase) semantic(ctx context.Context, req domain.ChatRequest) ([]domain.Review, error) {
	vector, err := uc.embedder.EmbedQuery(ctx, req.Message)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vector) == 0 {
		return nil, errors.New("embed query: empty vector")
	}
	reviews, err := uc.repo.Similar(ctx, vector, uc.cfg.EmbeddingModel, req.Filter, uc.cfg.ContextLimit)
	if err != nil {
		return nil, fmt.Errorf("similar reviews: %w", err)
	}
	return reviews, nil
}
