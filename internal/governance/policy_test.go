package governance

import (
	"context"
	"testing"

	"github.com/rahul/wakeel/pkg/config"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Tool: "web_search"}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	engine.DenyTool("run_code")
	req2 := Request{Tool: "run_code"}
	res2, err := engine.Evaluate(ctx, req2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}
}

func TestNewPolicyEngine_DefaultSandboxPatterns(t *testing.T) {
	engine, err := NewPolicyEngine(config.GovernanceConfig{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	denied := []string{"rm -rf /", "sudo shutdown now", "mkfs.ext4 /dev/sda1"}
	for _, args := range denied {
		res, err := engine.Evaluate(ctx, Request{Tool: "run_code", Arguments: args})
		if err != nil {
			t.Fatal(err)
		}
		if res.Allowed() {
			t.Errorf("expected %q to be denied", args)
		}
	}

	res, err := engine.Evaluate(ctx, Request{Tool: "run_code", Arguments: "print(sum(range(10)))"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Allowed() {
		t.Errorf("expected plain code to be allowed, got %s", res.Reason)
	}
}

func TestNewPolicyEngine_FromConfig(t *testing.T) {
	engine, err := NewPolicyEngine(config.GovernanceConfig{
		DeniedTools:    []string{"generate_image"},
		DeniedPatterns: []string{`curl\s`},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if res, _ := engine.Evaluate(ctx, Request{Tool: "generate_image"}); res.Allowed() {
		t.Error("expected configured tool to be denied")
	}
	if res, _ := engine.Evaluate(ctx, Request{Tool: "run_code", Arguments: "curl http://x"}); res.Allowed() {
		t.Error("expected configured pattern to be denied")
	}
	// configured patterns replace the built-in ones
	if res, _ := engine.Evaluate(ctx, Request{Tool: "run_code", Arguments: "rm -rf /"}); !res.Allowed() {
		t.Error("expected built-in patterns to be replaced")
	}

	if _, err := NewPolicyEngine(config.GovernanceConfig{DeniedPatterns: []string{"("}}); err == nil {
		t.Error("expected invalid pattern error")
	}
}
