package narrative

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/rshade/energyprophet/internal/units"
)

// GenAI defaults.
const (
	DefaultModel           = "gemini-2.0-flash"
	DefaultTemperature     = 0.2
	DefaultTopP            = 0.95
	DefaultMaxOutputTokens = 2048

	minOutputTokens = 16
	maxOutputTokens = 20000
	maxTemperature  = 2.0
)

// GenAIConfig configures the Gemini-backed generator.
type GenAIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int

	// HTTPClient overrides the transport. Nil uses the library default.
	HTTPClient *http.Client
}

// DefaultGenAIConfig returns the standard sampling settings without a key.
func DefaultGenAIConfig() GenAIConfig {
	return GenAIConfig{
		Model:           DefaultModel,
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// Clamped returns c with the sampling settings forced into their valid ranges
// and an empty model replaced by DefaultModel.
func (c GenAIConfig) Clamped() GenAIConfig {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	c.Temperature = units.Clamp(c.Temperature, 0, maxTemperature)
	c.TopP = units.Clamp(c.TopP, 0, 1)
	c.MaxOutputTokens = min(max(c.MaxOutputTokens, minOutputTokens), maxOutputTokens)
	return c
}

// GenAI generates text with the Gemini generateContent API.
type GenAI struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGenAI creates a generator. The configuration is clamped first.
func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	cfg = cfg.Clamped()

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAI{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(cfg.Temperature)),
			TopP:            genai.Ptr(float32(cfg.TopP)),
			MaxOutputTokens: int32(cfg.MaxOutputTokens), //nolint:gosec // clamped to 20000 above
			CandidateCount:  1,
		},
	}, nil
}

// Model returns the model name requests are sent to.
func (g *GenAI) Model() string {
	return g.model
}

// Generate implements Generator.
func (g *GenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
