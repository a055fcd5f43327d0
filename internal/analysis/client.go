package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mealsnap/internal/config"
	"mealsnap/internal/model"

	"github.com/rs/zerolog"
)

// systemPrompt is the fixed instruction sent with every request. The
// "JSON only" constraint is a prompt-level contract with the model, not
// something the API enforces, so replies are still validated after
// parsing.
const systemPrompt = `You are a nutrition expert AI. Analyze the food image and identify all visible food items.
For each food item, provide the name and estimated calorie count based on standard portion sizes.

Respond ONLY with the JSON object, no markdown formatting, no code blocks, no explanations.
Format: {"foods": [{"name": "food name", "calories": number}], "totalCalories": number}`

const userPrompt = "Analyze this meal and provide calorie information for each food item."

// message is one chat message. Content is either a plain string
// (system message) or a list of content parts (user message with an
// image attached).
type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []message `json:"messages"`
	MaxCompletionTokens int       `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completions endpoint with a
// vision-capable model. One attempt per invocation; the only
// resilience here is the HTTP client timeout.
type Client struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
	logger    zerolog.Logger
}

// NewClient creates a vision-analysis client from configuration.
func NewClient(cfg config.AnalysisConfig, logger zerolog.Logger) *Client {
	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "analysis-client").Logger(),
	}
}

// Analyze sends the image to the vision service and parses the reply
// into a structured result.
func (c *Client) Analyze(ctx context.Context, image []byte) (*model.Analysis, error) {
	content, err := c.complete(ctx, image)
	if err != nil {
		return nil, err
	}

	result, err := parseReply(content)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("reply", truncate(content, 512)).
			Msg("failed to parse analysis reply")
		return nil, err
	}

	c.logger.Debug().
		Int("food_count", len(result.Foods)).
		Float64("total_calories", result.TotalCalories).
		Msg("image analysed")

	return result, nil
}

// complete performs the chat completions call and returns the raw
// reply text.
func (c *Client) complete(ctx context.Context, image []byte) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		http.DetectContentType(image),
		base64.StdEncoding.EncodeToString(image),
	)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: userPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			}},
		},
		MaxCompletionTokens: c.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("analysis request failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(body), 512)).
			Msg("analysis service returned non-success status")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response envelope: %v", ErrUnavailable, err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no response content", ErrUnavailable)
	}

	return chatResp.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
