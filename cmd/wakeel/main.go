package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahul/wakeel/internal/agent"
	"github.com/rahul/wakeel/internal/gateway"
	"github.com/rahul/wakeel/internal/governance"
	"github.com/rahul/wakeel/internal/llm"
	"github.com/rahul/wakeel/internal/network"
	"github.com/rahul/wakeel/internal/observability"
	"github.com/rahul/wakeel/internal/store"
	"github.com/rahul/wakeel/internal/tools"
	"github.com/rahul/wakeel/pkg/config"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	configPath := "config.json"
	if v := os.Getenv("WAKEEL_CONFIG"); v != "" {
		configPath = v
	}
	cfg := config.LoadConfig(configPath)

	tgCfg, ok := cfg.GetTelegramConfig()
	if !ok {
		log.Fatal("Telegram gateway is not enabled or token is missing")
	}

	client := network.NewClient(cfg.RequestTimeout())
	policy := network.Policy{MaxAttempts: cfg.MaxRetries(), BaseDelay: cfg.RetryBaseDelay()}

	// Initialize Tools
	registry := tools.NewRegistry()

	searcher, err := newSearcher(cfg, client)
	if err != nil {
		log.Printf("Warning: Failed to initialize search provider: %v", err)
	} else {
		// one limiter for every search in the process
		limiter := tools.NewRateLimiter(cfg.MinSearchInterval())
		search := tools.NewSearchService(searcher, limiter, policy)
		if cfg.Search.NumResults > 0 {
			search.NumResults = cfg.Search.NumResults
		}
		registry.Register(tools.NewSearchTool(search))
	}

	images := tools.NewImageService(cfg.Services.ImageURL, cfg.Services.ImageSize, client, policy)
	registry.Register(tools.NewImageTool(images))

	var sandbox *tools.Sandbox
	if cfg.Services.SandboxURL != "" {
		sandbox = tools.NewSandbox(cfg.Services.SandboxURL, client, policy)
		registry.Register(tools.NewSandboxTool(sandbox))
	}

	reader := tools.NewReader(client, policy)
	if cfg.Services.Renderer {
		reader.Renderer = tools.ChromeRenderer{Timeout: cfg.RequestTimeout()}
	}
	registry.Register(tools.NewReaderTool(reader))

	gov, err := governance.NewPolicyEngine(cfg.Governance)
	if err != nil {
		log.Fatal(err)
	}

	dbPath := cfg.Memory.Path
	if dbPath == "" {
		dbPath = "wakeel.db"
	}
	history, err := store.NewHistoryStore(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer history.Close()

	logger := observability.NewLogger("logs")
	logger.Out = observability.NewTermWriter()

	// Initialize LLM (using default enabled provider)
	completer, err := llm.NewCompleter(cfg, client)
	if err != nil {
		log.Fatal(err)
	}
	completer = observability.LoggingCompleter{Next: completer, Logger: logger}

	prompts := agent.NewPromptManager(promptsDir(cfg), cfg.Language())
	router := agent.NewRouter(agent.DefaultRules())

	planner := agent.NewPlanner(completer, router, prompts)
	planner.Strict = cfg.Agent.StrictPlans
	executor := agent.NewExecutor(completer, registry, gov, prompts)
	summarizer := agent.NewSummarizer(completer, prompts)

	orchestrator := agent.NewOrchestrator(planner, executor, summarizer, cfg.StepDelay())
	orchestrator.Recorder = history
	orchestrator.Subscribe(observability.StatusBoard{})
	orchestrator.Subscribe(observability.NewRunObserver(logger))

	handler := &gateway.Handler{
		Goals:     orchestrator,
		Assistant: agent.NewAssistant(router, executor),
		History:   history,
	}
	tg, err := gateway.NewTelegramGateway(tgCfg.Token, handler)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
			}
		}
	}()

	// Start Gateway in a goroutine so we can wait for context in the main loop
	go func() {
		if err := tg.Start(ctx); err != nil {
			log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
			stop() // stop caller if gateway dies
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	tg.Stop()

	if sandbox != nil && sandbox.ID() != "" {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := sandbox.Destroy(shutdownCtx); err != nil {
			log.Printf("Failed to destroy sandbox: %v", err)
		}
		cancel()
	}

	// Reset terminal aesthetics
	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] WAKEEL SHUT DOWN. GOODBYE.\033[0m")
}

// newSearcher builds the configured search backend. Serper is the default,
// so a missing key surfaces as a ConfigurationError on the first search;
// DuckDuckGo is used only when chosen explicitly.
func newSearcher(cfg *config.Config, client *network.Client) (tools.Searcher, error) {
	if cfg.Search.Provider == "duckduckgo" {
		n := cfg.Search.NumResults
		if n <= 0 {
			n = 5
		}
		return tools.NewDuckDuckGoSearcher(n)
	}
	return &tools.SerperSearcher{
		APIKey:   cfg.Search.APIKey,
		Endpoint: cfg.Search.Endpoint,
		Country:  cfg.Search.Country,
		Language: cfg.Search.Language,
		Client:   client,
	}, nil
}

func promptsDir(cfg *config.Config) string {
	if cfg.App.Prompts != "" {
		return cfg.App.Prompts
	}
	return "./prompts"
}
