package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/voocel/litellm"
)

// LiteLLM adapts the litellm unified client to the Client interface.
type LiteLLM struct {
	client *litellm.Client
	config Config
}

// NewLiteLLM builds a client for the configured model. The provider is
// picked from the model name; unknown names fall back to an
// OpenAI-compatible endpoint.
func NewLiteLLM(config Config) (*LiteLLM, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("llm: API key not set")
	}
	config.setDefaults()

	var opt litellm.ClientOption
	switch {
	case isAnthropicModel(config.Model):
		if config.BaseURL != "" {
			opt = litellm.WithAnthropic(config.APIKey, config.BaseURL)
		} else {
			opt = litellm.WithAnthropic(config.APIKey)
		}
	case isGeminiModel(config.Model):
		if config.BaseURL != "" {
			opt = litellm.WithGemini(config.APIKey, config.BaseURL)
		} else {
			opt = litellm.WithGemini(config.APIKey)
		}
	default:
		if config.BaseURL != "" {
			opt = litellm.WithOpenAI(config.APIKey, config.BaseURL)
		} else {
			opt = litellm.WithOpenAI(config.APIKey)
		}
	}

	client := litellm.New(opt, litellm.WithDefaults(config.MaxTokens, config.Temperature))
	return &LiteLLM{client: client, config: config}, nil
}

// Generate renders the template and runs one completion. The configured
// timeout bounds the call; a deadline hit surfaces as a context error for
// the caller's degradation path.
func (c *LiteLLM) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}
	prompt := req.Template.Render(req.Variables)
	if req.Structured {
		prompt += "\n\nRespond with a single JSON object and nothing else."
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	litellmReq := &litellm.Request{
		Model: model,
		Messages: []litellm.Message{
			{Role: "user", Content: prompt},
		},
	}
	if req.Temperature != 0 {
		litellmReq.Temperature = litellm.Float64Ptr(req.Temperature)
	}
	if req.MaxTokens != 0 {
		litellmReq.MaxTokens = litellm.IntPtr(req.MaxTokens)
	}

	resp, err := c.client.Complete(ctx, litellmReq)
	if err != nil {
		return "", fmt.Errorf("llm: completion failed: %w", err)
	}
	return resp.Content, nil
}

// Model returns the configured default model.
func (c *LiteLLM) Model() string { return c.config.Model }

func isAnthropicModel(model string) bool {
	return strings.HasPrefix(model, "claude")
}

func isGeminiModel(model string) bool {
	return strings.HasPrefix(model, "gemini")
}
