package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

const systemPrompt = `You classify community health observations reported in Philippine barangays.
Reply with a single JSON object: {"category": "<one short lowercase label such as fever, cough, diarrhea, rash, dengue, respiratory, injury, other>", "isSpam": <true|false>}.
Mark isSpam true only for text that is clearly not a health observation (ads, gibberish, tests).`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type verdict struct {
	Category string `json:"category"`
	IsSpam   bool   `json:"isSpam"`
}

// OpenAI categorizes through the chat completions API.
type OpenAI struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

func NewOpenAI(baseURL, apiKey, model string, logger *zap.Logger) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(20 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OpenAI{httpClient: client, model: model, logger: logger}
}

func (c *OpenAI) Categorize(ctx context.Context, text, fallbackType string) (string, bool, error) {
	user := text
	if fallbackType != "" {
		user = fmt.Sprintf("Reported type: %s\nDescription: %s", fallbackType, text)
	}
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var response chatResponse
	var errBody apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		SetError(&errBody).
		Post("/chat/completions")
	if err != nil {
		return "", false, fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	if resp.IsError() {
		return "", false, fmt.Errorf("OpenAI API error: %s (status: %d)", errBody.Error.Message, resp.StatusCode())
	}
	if len(response.Choices) == 0 {
		return "", false, fmt.Errorf("OpenAI API returned no choices")
	}

	var v verdict
	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return "", false, fmt.Errorf("failed to parse categorization %q: %w", content, err)
	}

	category := domain.NormalizeCategory(v.Category)
	if category == "" {
		category = domain.NormalizeCategory(fallbackType)
	}

	c.logger.Debug("Observation categorized",
		zap.String("category", category),
		zap.Bool("spam", v.IsSpam),
	)
	return category, v.IsSpam, nil
}
