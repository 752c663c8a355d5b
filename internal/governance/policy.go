package governance

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/rahul/wakeel/pkg/config"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a tool call to be evaluated.
type Request struct {
	Tool      string
	Arguments string
	Goal      string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

func (r Result) Allowed() bool {
	return r.Effect == EffectAllow
}

// PolicyEngine evaluates tool calls against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DeniedError is returned by callers that refuse a step after evaluation.
type DeniedError struct {
	Tool   string
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s denied: %s", e.Tool, e.Reason)
}

// Commands refused in the sandbox unless the config replaces them.
var defaultSandboxPatterns = []string{
	`rm\s+-rf\s+/(\s|$)`,
	`:\(\)\s*\{\s*:\|:&\s*\};:`,
	`\bmkfs(\.\w+)?\b`,
	`\bdd\s+if=/dev/(zero|random)`,
	`\bshutdown\b|\breboot\b`,
}

// DefaultPolicyEngine denies whole tools by name and arguments by pattern.
// It is safe for concurrent use.
type DefaultPolicyEngine struct {
	mu          sync.RWMutex
	DeniedTools map[string]bool
	DeniedRegex []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedTools: make(map[string]bool),
		DeniedRegex: make([]*regexp.Regexp, 0),
	}
}

// NewPolicyEngine builds an engine from config. With no patterns configured
// the built-in sandbox patterns apply.
func NewPolicyEngine(cfg config.GovernanceConfig) (*DefaultPolicyEngine, error) {
	e := NewDefaultPolicyEngine()
	for _, name := range cfg.DeniedTools {
		e.DenyTool(name)
	}
	patterns := cfg.DeniedPatterns
	if len(patterns) == 0 {
		patterns = defaultSandboxPatterns
	}
	for _, p := range patterns {
		if err := e.DenyArguments(p); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	return e, nil
}

func (e *DefaultPolicyEngine) DenyTool(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.DeniedTools[name] = true
}

func (e *DefaultPolicyEngine) DenyArguments(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.DeniedTools[req.Tool] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Tool '%s' is restricted by system policy", req.Tool),
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Arguments) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Arguments match restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
