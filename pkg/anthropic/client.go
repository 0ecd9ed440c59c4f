package anthropic

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client defines the Anthropic API operations used by the generators.
type Client interface {
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
}

// MessageRequest is our own request type for CreateMessage.
type MessageRequest struct {
	Model     string
	MaxTokens int64
	System    string
	Messages  []Message

	// EnableWebSearch attaches the server-side web search tool so the model
	// can research the business before generating.
	EnableWebSearch bool
	MaxWebSearches  int64
}

// Message represents a single conversational message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// MessageResponse is our own response type from CreateMessage.
type MessageResponse struct {
	ID         string
	Model      string
	Content    []ContentBlock
	StopReason string
	Usage      TokenUsage
}

// ContentBlock represents a block of content in a response. Tool-use and
// thinking blocks come through with an empty Text.
type ContentBlock struct {
	Type string
	Text string
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// PrimaryText returns the last text-bearing content block: earlier blocks are
// thinking and tool-use segments emitted while the model researched. Errors
// when the response carries no text at all.
func (r *MessageResponse) PrimaryText() (string, error) {
	for i := len(r.Content) - 1; i >= 0; i-- {
		if r.Content[i].Type == "text" && r.Content[i].Text != "" {
			return r.Content[i].Text, nil
		}
	}
	return "", eris.New("anthropic: response has no text content block")
}

// LogUsage logs token consumption with structured zap fields.
func (u TokenUsage) LogUsage(model, phase string) {
	zap.L().Info("model usage",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
	)
}

// IsOverloaded reports whether err is the provider's "service overloaded"
// signal (HTTP 529). Only this condition is worth a local retry; everything
// else propagates to the row boundary.
func IsOverloaded(err error) bool {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == 529
	}
	return false
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new Anthropic client backed by the SDK.
func NewClient(apiKey string) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
	}
}

// CreateMessage streams the response and accumulates it into a single
// message. Website generations run for minutes; a non-streaming call would
// sit silent waiting for headers until the transport gives up.
func (c *sdkClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toSDKMessages(req.Messages),
	}

	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	if req.EnableWebSearch {
		tool := &sdk.WebSearchTool20250305Param{}
		if req.MaxWebSearches > 0 {
			tool.MaxUses = sdk.Int(req.MaxWebSearches)
		}
		params.Tools = []sdk.ToolUnionParam{{OfWebSearchTool20250305: tool}}
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	msg := sdk.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return nil, eris.Wrap(err, "anthropic: accumulate stream event")
		}
	}
	if err := stream.Err(); err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	return fromSDKMessage(&msg), nil
}

func toSDKMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case "assistant":
			out[i] = sdk.NewAssistantMessage(block)
		default:
			out[i] = sdk.NewUserMessage(block)
		}
	}
	return out
}

func fromSDKMessage(msg *sdk.Message) *MessageResponse {
	blocks := make([]ContentBlock, 0, len(msg.Content))
	for _, b := range msg.Content {
		blocks = append(blocks, ContentBlock{
			Type: b.Type,
			Text: b.Text,
		})
	}

	return &MessageResponse{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Content:    blocks,
		StopReason: string(msg.StopReason),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
}
