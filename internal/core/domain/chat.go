package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string
	Filter  ReviewFilter
	History []ChatMessage
}

type RetrievalMode string

const (
	RetrievalSemantic RetrievalMode = "semantic"
	RetrievalRecent   RetrievalMode = "recent"
	RetrievalNone     RetrievalMode = "none"
)

type ChatSource struct {
	ID               int64   `json:"id"`
	ReviewDate       Date    `json:"review_date"`
	Rating           int     `json:"rating"`
	OverallSentiment *string `json:"overall_sentiment"`
	ChurnRisk        *string `json:"churn_risk"`
	PrimaryCategory  *string `json:"primary_category"`
	Snippet          string  `json:"snippet"`
}

type ChatResponse struct {
	Answer        string        `json:"answer"`
	UsedReviewIDs []int64       `json:"usedReviewIds"`
	Sources       []ChatSource  `json:"sources"`
	RetrievalMode RetrievalMode `json:"retrievalMode"`
}

// GenerationRequest is a single provider-neutral LLM call.
type GenerationRequest struct {
	System    string
	Messages  []ChatMessage
	MaxTokens int
}
