package llm

import (
	"context"
	"strings"

	"github.com/rahul/wakeel/internal/network"
	"github.com/tmc/langchaingo/llms"
)

// LangChainCompleter adapts any langchaingo model to Completer.
type LangChainCompleter struct {
	Model  llms.Model
	Policy network.Policy
}

func NewLangChainCompleter(model llms.Model, policy network.Policy) *LangChainCompleter {
	return &LangChainCompleter{Model: model, Policy: policy}
}

func (c *LangChainCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	content := toMessageContent(messages)
	return network.Retry(ctx, c.Policy, func(ctx context.Context) (string, error) {
		resp, err := c.Model.GenerateContent(ctx, content)
		if err != nil {
			return "", err
		}
		if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
			return NoReplyPlaceholder, nil
		}
		return resp.Choices[0].Content, nil
	})
}

func toMessageContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch m.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		})
	}
	return out
}
