// Package bedrock adapts the AWS Bedrock Converse API to llm.Client.
package bedrock

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithy "github.com/aws/smithy-go"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/llm"
)

// RuntimeClient is the subset of *bedrockruntime.Client this adapter needs,
// matching the interface-over-concrete-client pattern so tests can supply a
// fake.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client wraps a Bedrock Converse runtime client as an llm.Client.
type Client struct {
	runtime RuntimeClient
	modelID string
}

// New constructs a Bedrock-backed llm.Client for the given model identifier.
func New(runtime RuntimeClient, modelID string) (*Client, error) {
	if runtime == nil {
		return nil, errors.New("bedrock: runtime client is required")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("bedrock: model identifier is required")
	}
	return &Client{runtime: runtime, modelID: modelID}, nil
}

// Generate issues a single-turn Converse request and returns the
// concatenated text of the assistant's reply.
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	ctx, cancel := llm.WithTimeout(ctx, opts)
	defer cancel()

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []brtypes.Message{
			{
				Role:    brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: prompt}},
			},
		},
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		cfg := &brtypes.InferenceConfiguration{}
		if opts.MaxTokens > 0 {
			mt := int32(opts.MaxTokens)
			cfg.MaxTokens = &mt
		}
		if opts.Temperature > 0 {
			t := float32(opts.Temperature)
			cfg.Temperature = &t
		}
		input.InferenceConfig = cfg
	}

	out, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return "", classifyError(err)
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return "", errs.New(errs.KindLLMParse, "bedrock response did not contain a message")
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	return sb.String(), nil
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.KindLLMTimeout, err, "bedrock request timed out")
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ServiceUnavailableException", "ModelTimeoutException":
			return errs.Wrap(errs.KindLLMTimeout, err, "bedrock throttled or timed out")
		default:
			return errs.Wrap(errs.KindLLMHTTP, err, "bedrock returned an error response")
		}
	}
	return errs.Wrap(errs.KindLLMConnection, err, "bedrock request failed")
}
