package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rahul/wakeel/internal/network"
)

// Sandbox is a client for the remote code-execution server. The server keeps
// a single active sandbox; the client creates it lazily on first use.
type Sandbox struct {
	BaseURL string
	Client  *network.Client
	Policy  network.Policy

	mu sync.Mutex
	id string
}

func NewSandbox(baseURL string, client *network.Client, policy network.Policy) *Sandbox {
	return &Sandbox{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		Policy:  policy,
	}
}

func (s *Sandbox) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Create starts a sandbox unless one is already active and returns its id.
func (s *Sandbox) Create(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx)
}

func (s *Sandbox) createLocked(ctx context.Context) (string, error) {
	if s.id != "" {
		return s.id, nil
	}
	if s.BaseURL == "" {
		return "", &ConfigurationError{Setting: "sandbox URL"}
	}
	id, err := network.Retry(ctx, s.Policy, func(ctx context.Context) (string, error) {
		var resp struct {
			SandboxID string `json:"sandboxId"`
		}
		if err := s.Client.CallJSON(ctx, network.Request{URL: s.BaseURL + "/create-sandbox"}, &resp); err != nil {
			return "", err
		}
		if resp.SandboxID == "" {
			return "", fmt.Errorf("sandbox server returned no sandbox id")
		}
		return resp.SandboxID, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create sandbox: %w", err)
	}
	s.id = id
	return id, nil
}

// Run executes code in the active sandbox, creating it if needed.
func (s *Sandbox) Run(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("command is required")
	}
	if _, err := s.createLocked(ctx); err != nil {
		return "", err
	}

	return network.Retry(ctx, s.Policy, func(ctx context.Context) (string, error) {
		var resp struct {
			Logs struct {
				Stdout outputLines `json:"stdout"`
				Stderr outputLines `json:"stderr"`
			} `json:"logs"`
		}
		err := s.Client.CallJSON(ctx, network.Request{
			URL:  s.BaseURL + "/execute-command",
			Body: map[string]string{"command": code},
		}, &resp)
		if err != nil {
			return "", err
		}
		if out := resp.Logs.Stdout.String(); out != "" {
			return out, nil
		}
		if out := resp.Logs.Stderr.String(); out != "" {
			return out, nil
		}
		return "(no output)", nil
	})
}

// Destroy closes the active sandbox. It is a no-op when none is active.
func (s *Sandbox) Destroy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return nil
	}
	_, err := s.Client.Call(ctx, network.Request{URL: s.BaseURL + "/destroy-sandbox"})
	s.id = ""
	return err
}

// outputLines accepts either a string or a list of strings, since the
// sandbox server forwards whatever its interpreter reports.
type outputLines []string

func (o *outputLines) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*o = outputLines{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*o = many
	return nil
}

func (o outputLines) String() string {
	return strings.TrimSpace(strings.Join(o, ""))
}

type SandboxTool struct {
	Sandbox *Sandbox
}

func NewSandboxTool(sb *Sandbox) *SandboxTool {
	return &SandboxTool{Sandbox: sb}
}

func (t *SandboxTool) Name() string {
	return "run_code"
}

func (t *SandboxTool) Description() string {
	return "Execute code in an isolated remote sandbox and return its output."
}

func (t *SandboxTool) Parameters() map[string]any {
	return stringParam("code", "The code or command to execute")
}

func (t *SandboxTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Code string `json:"code"`
	}
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}
	return t.Sandbox.Run(ctx, args.Code)
}
