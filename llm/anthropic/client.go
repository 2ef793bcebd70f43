// Package anthropic adapts the Anthropic Messages API to llm.Client.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/llm"
)

// Client wraps the Anthropic SDK as an llm.Client.
type Client struct {
	sdk   anthropic.Client
	model string
}

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// New constructs an Anthropic-backed llm.Client. httpClient may be nil, in
// which case http.DefaultClient is used.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(httpClient),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	return &Client{sdk: anthropic.NewClient(opts...), model: model}
}

// Generate sends a single-turn user message and returns the concatenated
// text content of the response.
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	ctx, cancel := llm.WithTimeout(ctx, opts)
	defer cancel()

	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	resp, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return "", classifyError(err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), nil
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.KindLLMTimeout, err, "anthropic request timed out")
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return errs.Wrap(errs.KindLLMHTTP, err, "anthropic returned an error response")
	}
	return errs.Wrap(errs.KindLLMConnection, err, "anthropic request failed")
}
