package services

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-1.5-pro"

// Generator is the only contract the coach needs from a language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiOptions tunes generation.
type GeminiOptions struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// GeminiClient implements Generator on the Gemini API. It is built once at
// startup and shared by every session.
type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiClient creates the shared Gemini client.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	config := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if opts.APIKey != "" {
		config.APIKey = opts.APIKey
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, err
	}

	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiClient{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(opts.Temperature),
			TopK:            genai.Ptr(opts.TopK),
			TopP:            genai.Ptr(opts.TopP),
			MaxOutputTokens: opts.MaxOutputTokens,
			SafetySettings: []*genai.SafetySetting{
				{
					Category:  genai.HarmCategoryHateSpeech,
					Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
				},
				{
					Category:  genai.HarmCategoryHarassment,
					Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
				},
			},
		},
	}, nil
}

// Generate sends one prompt and returns the cleaned text. An empty reply is an error.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini client not initialized")
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", err
	}
	text := cleanModelOutput(resp.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
