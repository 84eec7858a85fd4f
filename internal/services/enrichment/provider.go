package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/papajo/clmonetizer-app/internal/common"
)

// providerKind is the tagged variant resolved once at startup. The pipeline
// never re-probes availability per call.
type providerKind int

const (
	kindUnconfigured providerKind = iota
	kindClaude
	kindGemini
)

func (k providerKind) String() string {
	switch k {
	case kindClaude:
		return "claude"
	case kindGemini:
		return "gemini"
	default:
		return "unconfigured"
	}
}

// provider wraps the resolved AI backend behind a single generate call
type provider struct {
	kind         providerKind
	claudeClient anthropic.Client
	geminiClient *genai.Client
	claudeConfig *common.ClaudeConfig
	geminiConfig *common.GeminiConfig
	limiter      *rate.Limiter
	logger       arbor.ILogger
}

// resolveProvider picks the backend from configured API keys, honoring the
// preferred provider when both are available. Resolution happens exactly
// once; an unconfigured result is a fixed fact for the process lifetime.
func resolveProvider(ctx context.Context, config *common.Config, logger arbor.ILogger) (*provider, error) {
	hasClaude := config.Claude.APIKey != ""
	hasGemini := config.Gemini.APIKey != ""

	order := []common.LLMProvider{common.LLMProviderClaude, common.LLMProviderGemini}
	if config.LLM.PreferredProvider == common.LLMProviderGemini {
		order = []common.LLMProvider{common.LLMProviderGemini, common.LLMProviderClaude}
	}

	for _, candidate := range order {
		switch candidate {
		case common.LLMProviderClaude:
			if !hasClaude {
				continue
			}
			client := anthropic.NewClient(
				option.WithAPIKey(config.Claude.APIKey),
			)
			logger.Info().
				Str("provider", "claude").
				Str("model", config.Claude.Model).
				Msg("AI provider resolved")
			return &provider{
				kind:         kindClaude,
				claudeClient: client,
				claudeConfig: &config.Claude,
				limiter:      newLimiter(config.Claude.RateLimit),
				logger:       logger,
			}, nil

		case common.LLMProviderGemini:
			if !hasGemini {
				continue
			}
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  config.Gemini.APIKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create Gemini client: %w", err)
			}
			logger.Info().
				Str("provider", "gemini").
				Str("model", config.Gemini.Model).
				Msg("AI provider resolved")
			return &provider{
				kind:         kindGemini,
				geminiClient: client,
				geminiConfig: &config.Gemini,
				limiter:      newLimiter(config.Gemini.RateLimit),
				logger:       logger,
			}, nil
		}
	}

	logger.Warn().Msg("No AI provider API key configured, enrichment will return degraded results")
	return &provider{kind: kindUnconfigured, logger: logger}, nil
}

// newLimiter builds a rate limiter from a minimum-interval string like "4s"
func newLimiter(interval string) *rate.Limiter {
	d, err := time.ParseDuration(interval)
	if err != nil || d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// generate issues a single completion call against the resolved backend.
// One attempt per call: rate-limit failures surface to the caller, which
// degrades the result instead of retrying mid-batch.
func (p *provider) generate(ctx context.Context, system, prompt string) (string, error) {
	if p.kind == kindUnconfigured {
		return "", ErrUnconfigured
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	switch p.kind {
	case kindClaude:
		return p.generateWithClaude(ctx, system, prompt)
	case kindGemini:
		return p.generateWithGemini(ctx, system, prompt)
	default:
		return "", ErrUnconfigured
	}
}

func (p *provider) generateWithClaude(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.claudeConfig.Model),
		MaxTokens: int64(p.claudeConfig.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.claudeConfig.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.claudeConfig.Temperature))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	resp, err := p.claudeClient.Messages.New(ctx, params)
	if err != nil {
		if IsRateLimitError(err) {
			if delay := ExtractRetryDelay(err); delay > 0 {
				p.logger.Warn().Dur("suggested_delay", delay).Msg("Claude rate limited")
			}
		}
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}
	return text.String(), nil
}

func (p *provider) generateWithGemini(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(p.geminiConfig.Temperature),
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := p.geminiClient.Models.GenerateContent(ctx, p.geminiConfig.Model, contents, config)
	if err != nil {
		if IsRateLimitError(err) {
			if delay := ExtractRetryDelay(err); delay > 0 {
				p.logger.Warn().Dur("suggested_delay", delay).Msg("Gemini rate limited")
			}
		}
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}
	responseText := resp.Text()
	if responseText == "" {
		return "", fmt.Errorf("empty text in Gemini response")
	}
	return responseText, nil
}
