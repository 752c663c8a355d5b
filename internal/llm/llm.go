package llm

import (
	"context"
	"fmt"

	"github.com/rahul/wakeel/internal/network"
	"github.com/rahul/wakeel/pkg/config"
	"github.com/tmc/langchaingo/llms/openai"
)

// NoReplyPlaceholder is returned when a provider answers without any text.
const NoReplyPlaceholder = "No response was received."

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer turns a role-tagged conversation into a single text reply.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported completion provider: %s", e.Provider)
}

// NewCompleter builds the completion backend for the default enabled provider.
func NewCompleter(cfg *config.Config, client *network.Client) (Completer, error) {
	name, p := cfg.GetDefaultProvider()
	policy := network.Policy{MaxAttempts: cfg.MaxRetries(), BaseDelay: cfg.RetryBaseDelay()}

	switch name {
	case "":
		return nil, fmt.Errorf("no enabled provider found in config")
	case "toolkit":
		return NewToolkitCompleter(p.BaseURL, client, policy), nil
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return NewLangChainCompleter(model, policy), nil
	default:
		return nil, ErrUnsupportedProvider{Provider: name}
	}
}
