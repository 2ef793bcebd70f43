// Package openai adapts the OpenAI Chat Completions API to llm.Client.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/llm"
)

// Client wraps the OpenAI SDK as an llm.Client.
type Client struct {
	sdk   openai.Client
	model string
}

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// New constructs an OpenAI-backed llm.Client.
func New(cfg Config) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{sdk: openai.NewClient(opts...), model: model}
}

// Generate sends a single-turn user message and returns the first choice's
// content.
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	ctx, cancel := llm.WithTimeout(ctx, opts)
	defer cancel()

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		MaxTokens:   param.NewOpt(int64(maxTokens)),
		Temperature: param.NewOpt(opts.Temperature),
	}
	resp, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errs.New(errs.KindLLMParse, "openai response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.KindLLMTimeout, err, "openai request timed out")
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return errs.Wrap(errs.KindLLMHTTP, err, "openai returned an error response")
	}
	return errs.Wrap(errs.KindLLMConnection, err, "openai request failed")
}
