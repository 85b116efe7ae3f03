package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PromptTemplate is a plain-text template with {name} placeholders.
type PromptTemplate struct {
	Text string
}

// Render substitutes the variables into the template. Unknown placeholders
// are left in place so a missing variable is visible in the rendered prompt.
func (t PromptTemplate) Render(vars map[string]string) string {
	out := t.Text
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// Request describes one generation call.
type Request struct {
	Model       string
	Template    PromptTemplate
	Variables   map[string]string
	Temperature float64
	MaxTokens   int
	// Structured asks the model for a single JSON object. Callers decode it
	// with GenerateInto.
	Structured bool
}

// Client is the text-generation service every component consumes. Errors
// surface as plain errors; callers in this module always wrap them into
// degraded results rather than failing the episode.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config carries the knobs shared by concrete clients.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (c *Config) setDefaults() {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
}

// GenerateInto runs the request and decodes the response as JSON into out.
// Model output wrapped in markdown fences or surrounded by prose is
// tolerated; the first top-level JSON object is used.
func GenerateInto(ctx context.Context, client Client, req Request, out any) error {
	req.Structured = true
	raw, err := client.Generate(ctx, req)
	if err != nil {
		return err
	}
	payload := ExtractJSON(raw)
	if payload == "" {
		return fmt.Errorf("llm: no JSON object in response")
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("llm: decode structured response: %w", err)
	}
	return nil
}

// ExtractJSON pulls the first balanced top-level JSON object out of model
// text, skipping markdown fences and leading prose.
func ExtractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
