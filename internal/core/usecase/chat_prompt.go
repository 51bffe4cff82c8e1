package usecase

import (
	"fmt"
	"strings"

	"github.com/JesseAnalyzes/Pegasus-hack-ai-thon/internal/core/domain"
)

const (
	contextSnippetLen = 200
	sourceSnippetLen  = 150
	noContextText     = "No relevant reviews found."
)

const chatSystemPrompt = `You are Nimbus, an AI assistant that helps analyze customer reviews for Frontier Communications.

You have access to a PostgreSQL database table called ` + "`team_pegasus.frontier_reviews_processed`" + ` with the following key fields:

**Core Review Data:**
- review_id, platform, review_date, rating (1-5), reviewer_name, location
- review_text, title, review_url, helpful_count

**Geographic & Temporal:**
- city, state, region, area_type (urban/suburban/rural)
- year, month, quarter, week_of_year, days_ago

**AI-Enriched Fields:**
- sentiment_score (-1.0 to 1.0), overall_sentiment (very_negative/negative/neutral/positive/very_positive)
- churn_risk (low/medium/high/critical), churn_probability_score (0.0 to 1.0)
- primary_category (problem category), nps_indicator (detractor/passive/promoter)
- urgency_level, reputation_risk, issue_severity, resolution_status
- ai_attributes (JSONB with additional extracted data)

**Instructions:**
1. Answer questions about trends, patterns, and insights in the review data
2. Cite specific review IDs when referencing individual reviews
3. Use the provided context reviews to ground your answers
4. If asked about aggregations or trends not in the context, acknowledge that you're working with a sample
5. Be concise but informative
6. Format numbers and percentages clearly
7. If the question requires data not in context, suggest what additional queries might help

**Important:** Do not hallucinate data. Only reference information from the provided context or explicitly state when you don't have that information.`

// buildReviewContext renders up to limit reviews as the grounding block.
func buildReviewContext(reviews []domain.Review, limit int) string {
	if len(reviews) == 0 {
		return noContextText
	}
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}

	blocks := make([]string, 0, len(reviews))
	for _, r := range reviews {
		var b strings.Builder
		fmt.Fprintf(&b, "Review %d (%s):\n", r.ID, r.ReviewDate.String())
		fmt.Fprintf(&b, "- Rating: %d/5\n", r.Rating)
		fmt.Fprintf(&b, "- Platform: %s\n", r.Platform)
		fmt.Fprintf(&b, "- Location: %s\n", r.LocationLabel())
		fmt.Fprintf(&b, "- Sentiment: %s\n", orNA(r.OverallSentiment))
		fmt.Fprintf(&b, "- Churn Risk: %s\n", orNA(r.ChurnRisk))
		fmt.Fprintf(&b, "- Category: %s\n", orNA(r.PrimaryCategory))
		fmt.Fprintf(&b, "- Text: \"%s\"", truncateWithEllipsis(r.ReviewText, contextSnippetLen))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func buildUserTurn(reviewContext, message string) string {
	return "Context from relevant reviews:\n\n" + reviewContext + "\n\n\nUser question: " + message
}

// buildMessages keeps the most recent history turns and appends the grounded question.
func buildMessages(history []domain.ChatMessage, historyLimit, contentLimit int, userTurn string) []domain.ChatMessage {
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	out := make([]domain.ChatMessage, 0, len(history)+1)
	for _, h := range history {
		out = append(out, domain.ChatMessage{Role: h.Role, Content: truncateRunes(h.Content, contentLimit)})
	}
	return append(out, domain.ChatMessage{Role: domain.RoleUser, Content: userTurn})
}

func buildSources(reviews []domain.Review, limit int) []domain.ChatSource {
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}
	out := make([]domain.ChatSource, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, domain.ChatSource{
			ID:               r.ID,
			ReviewDate:       r.ReviewDate,
			Rating:           r.Rating,
			OverallSentiment: r.OverallSentiment,
			ChurnRisk:        r.ChurnRisk,
			PrimaryCategory:  r.PrimaryCategory,
			Snippet:          truncateRunes(r.ReviewText, sourceSnippetLen),
		})
	}
	return out
}

func orNA(v *string) string {
	if v == nil || *v == "" {
		return "N/A"
	}
	return *v
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func truncateWithEllipsis(s string, n int) string {
	cut := truncateRunes(s, n)
	if len(cut) < len(s) {
		return cut + "..."
	}
	return cut
}
