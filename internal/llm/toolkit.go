package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/rahul/wakeel/internal/network"
)

const DefaultToolkitURL = "https://toolkit.rork.com/text/llm/"

// ToolkitCompleter talks to a plain `{messages}` -> `{completion}` endpoint.
type ToolkitCompleter struct {
	URL    string
	Client *network.Client
	Policy network.Policy
}

func NewToolkitCompleter(url string, client *network.Client, policy network.Policy) *ToolkitCompleter {
	if url == "" {
		url = DefaultToolkitURL
	}
	if client == nil {
		client = network.NewClient(0)
	}
	return &ToolkitCompleter{URL: url, Client: client, Policy: policy}
}

func (c *ToolkitCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages to complete")
	}
	return network.Retry(ctx, c.Policy, func(ctx context.Context) (string, error) {
		var resp struct {
			Completion string `json:"completion"`
		}
		err := c.Client.CallJSON(ctx, network.Request{
			URL:  c.URL,
			Body: map[string]any{"messages": messages},
		}, &resp)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(resp.Completion) == "" {
			return NoReplyPlaceholder, nil
		}
		return resp.Completion, nil
	})
}
