package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/omkarr10/Vagabond/internal/domain"
)

// GroqConfig holds configuration for the Groq gateway
type GroqConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GroqGateway implements Gateway against the Groq OpenAI-compatible
// chat-completions API. No official Go SDK exists for this API, so it
// speaks JSON over HTTP directly with an explicit timeout.
type GroqGateway struct {
	config *GroqConfig
	client *http.Client
}

// NewGroqGateway creates a new GroqGateway
func NewGroqGateway(cfg *GroqConfig) *GroqGateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &GroqGateway{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the gateway name
func (g *GroqGateway) Name() string {
	return "groq"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GeneratePlan calls the model and returns the plan as JSON
func (g *GroqGateway) GeneratePlan(ctx context.Context, prefs *Preferences) ([]byte, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a travel planner. Respond with a single valid JSON object describing a day-by-day itinerary; no markdown, no code fences.",
			},
			{
				Role:    "user",
				Content: buildPrompt(prefs),
			},
		},
		Temperature: 0.7,
		MaxTokens:   4000,
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(g.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlannerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Body is drained for logging upstream but not leaked to clients
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", domain.ErrPlannerUnavailable, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlannerUnavailable, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrPlannerUnavailable)
	}

	return CleanPlan(chat.Choices[0].Message.Content), nil
}

func buildPrompt(prefs *Preferences) string {
	interests := strings.Join(prefs.Interests, ", ")
	if interests == "" {
		interests = "general sightseeing"
	}
	return fmt.Sprintf(
		"Create a %d-day travel itinerary for %s. Budget: %s. Interests: %s. Group type: %s. Start date: %s. "+
			"Include an overview, a total estimated cost, per-day activities with times and costs, meal suggestions, a packing list and important notes.",
		prefs.Duration, prefs.Destination, prefs.Budget, interests, prefs.GroupSize, prefs.StartDate,
	)
}

// CleanPlan strips markdown code fences the model sometimes wraps its JSON
// in, then validates the result. Unparseable output is preserved under a
// rawContent fallback rather than discarded.
func CleanPlan(content string) []byte {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	if json.Valid([]byte(cleaned)) {
		return []byte(cleaned)
	}

	fallback, _ := json.Marshal(map[string]interface{}{
		"overview":   "Custom itinerary generated",
		"rawContent": cleaned,
		"days":       []interface{}{},
	})
	return fallback
}
