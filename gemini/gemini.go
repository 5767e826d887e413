// Package gemini implements prospect analysis and email drafting with
// Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/prospect"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultSeller describes the company on whose behalf prospects are analyzed.
const DefaultSeller = `an AI engineering firm that helps businesses scale with AI. It specializes in:

- AI transformation and strategy consulting
- Custom AI/ML model development and deployment
- Workflow automation powered by AI
- Data pipeline engineering and analytics
- AI-powered product features and integrations
- LLM application development (chatbots, agents, RAG systems)`

// DefaultRetryDelays are the waits between attempts on transient API errors.
var DefaultRetryDelays = []time.Duration{2 * time.Second, 4 * time.Second}

// ContentGenerator generates model content. *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Option configures an Analyzer or a Drafter.
type Option func(*client)

// WithModel sets the Gemini model name.
func WithModel(model string) Option {
	return func(c *client) {
		c.model = model
	}
}

// WithSeller sets the description of the selling company used in prompts.
func WithSeller(desc string) Option {
	return func(c *client) {
		c.seller = desc
	}
}

// WithRetryDelays sets the waits between attempts on transient errors.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(c *client) {
		c.delays = delays
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

// client holds what the Analyzer and the Drafter share.
type client struct {
	gen    ContentGenerator
	model  string
	seller string
	delays []time.Duration
	logger *slog.Logger
}

func newClient(gen ContentGenerator, opts []Option) client {
	c := client{
		gen:    gen,
		model:  DefaultModel,
		seller: DefaultSeller,
		delays: DefaultRetryDelays,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// generateJSON sends prompt, retrying transient failures, and decodes the
// JSON object in the response into v.
func (c *client) generateJSON(ctx context.Context, system, prompt string, v any) error {
	temp := float32(0.7)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	var text string
	err := prospect.Retry(ctx, c.delays,
		func(attempt int, err error) {
			c.logger.Warn("gemini request failed, retrying", "attempt", attempt, "err", err)
		},
		func(ctx context.Context) error {
			result, err := c.gen.GenerateContent(ctx, c.model, contents, config)
			if err != nil {
				return classify(err)
			}
			if result == nil {
				return prospect.Errorf(prospect.EUNAVAILABLE, "gemini returned nil result")
			}
			text = result.Text()
			return nil
		},
	)
	if err != nil {
		return err
	}

	return ParseJSON(text, v)
}

// classify maps API failures to application error codes. Rate limits and
// server errors stay retryable.
func classify(err error) error {
	code, ok := apiErrorCode(err)
	if !ok {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return prospect.Errorf(prospect.EUNAVAILABLE, "gemini request failed: %v", err)
	}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return prospect.Errorf(prospect.EAUTH, "gemini rejected credentials: %v", err)
	case code == http.StatusTooManyRequests || code >= 500:
		return prospect.Errorf(prospect.EUNAVAILABLE, "gemini unavailable: %v", err)
	default:
		return prospect.Errorf(prospect.EINVALID, "gemini rejected request: %v", err)
	}
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}

// ParseJSON decodes a model response into v. Markdown code fences are
// stripped; when the text is still not valid JSON, the outermost braces
// are tried.
func ParseJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		} else {
			text = strings.TrimSpace(strings.Trim(text, "`"))
		}
	}

	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), v); err == nil {
			return nil
		}
	}

	return prospect.Errorf(prospect.EINVALID, "model did not return valid JSON: %s", preview(text, 200))
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return fmt.Sprintf("%s...", string(r[:n]))
}
