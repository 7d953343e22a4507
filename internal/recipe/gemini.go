// Package recipe suggests a short recipe for a product using Google Gemini.
// Generation is best-effort: every failure turns into a readable fallback
// text and is only logged.
package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"

	apiKeyHeader = "x-goog-api-key"

	FailureText = "Sorry, I couldn’t generate a recipe right now."
	EmptyText   = "Recipe generation failed."
)

type Generator interface {
	Generate(ctx context.Context, ingredient string) string
}

// MockRecipe is returned when no API key is configured.
func MockRecipe(ingredient string) string {
	return fmt.Sprintf("**Mock Recipe for %s:**\n1. Wash the %s.\n2. Slice thinly.\n3. Season and enjoy!", ingredient, ingredient)
}

func Prompt(ingredient string) string {
	return fmt.Sprintf("Suggest a simple, healthy recipe using %s as the main ingredient. Keep it under 100 words. Format with simple steps.", ingredient)
}

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type GeminiRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

type GeminiClient struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewGeminiClient(apiKey, baseURL, model string, logger *slog.Logger) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{
		APIKey:     apiKey,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger.With("component", "recipe", "provider", "gemini"),
	}
}

func (c *GeminiClient) Generate(ctx context.Context, ingredient string) string {
	if c.APIKey == "" {
		return MockRecipe(ingredient)
	}

	text, err := c.generateContent(ctx, Prompt(ingredient))
	if err != nil {
		c.Logger.ErrorContext(ctx, "recipe_generate_error", "ingredient", ingredient, "error", err)
		return FailureText
	}
	if strings.TrimSpace(text) == "" {
		c.Logger.WarnContext(ctx, "recipe_generate_empty", "ingredient", ingredient)
		return EmptyText
	}
	return text
}

func (c *GeminiClient) generateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(GeminiRequest{
		Contents:         []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{MaxOutputTokens: 1000},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The key stays out of the URL so transport errors never carry it.
	req.Header.Set(apiKeyHeader, c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed GeminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
