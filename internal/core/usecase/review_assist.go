package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/ports"
)

const (
	summaryMaxTokens = 100
	answerMaxTokens  = 500
)

// ReviewAssistUseCase runs single-review LLM helpers without retrieval.
type ReviewAssistUseCase struct {
	repo      ports.ReviewRepository
	generator ports.TextGenerator
}

func NewReviewAssistUseCase(repo ports.ReviewRepository, generator ports.TextGenerator) *ReviewAssistUseCase {
	return &ReviewAssistUseCase{repo: repo, generator: generator}
}

func (uc *ReviewAssistUseCase) Summarize(ctx context.Context, id int64, reviewText string) (string, error) {
	text, err := uc.resolveText(ctx, id, reviewText)
	if err != nil {
		return "", err
	}

	prompt := "Summarize this customer review in exactly 25 words or less. Focus on the key issue and sentiment:\n\n" + text
	summary, err := uc.generator.Generate(ctx, domain.GenerationRequest{
		Messages:  []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}},
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate review summary: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

func (uc *ReviewAssistUseCase) Answer(ctx context.Context, id int64, reviewText, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.NewValidationError(domain.FieldError{Field: "question", Message: "is required"})
	}
	text, err := uc.resolveText(ctx, id, reviewText)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"You are analyzing a specific customer review. Here is the review:\n\n\"%s\"\n\n"+
			"Please answer the following question about this specific review. "+
			"Keep your answer concise and relevant to the review content:\n\n%s",
		text, question,
	)
	answer, err := uc.generator.Generate(ctx, domain.GenerationRequest{
		Messages:  []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}},
		MaxTokens: answerMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate review answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// resolveText prefers the caller-supplied text and otherwise loads the stored review.
func (uc *ReviewAssistUseCase) resolveText(ctx context.Context, id int64, reviewText string) (string, error) {
	if id <= 0 {
		return "", domain.NewValidationError(domain.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	if strings.TrimSpace(reviewText) != "" {
		return reviewText, nil
	}
	review, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load review text: %w", err)
	}
	return review.ReviewText, nil
}
