package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/briefpress/briefpress/internal/config"
	"github.com/briefpress/briefpress/internal/domain"
	"github.com/briefpress/briefpress/internal/generate"
	"github.com/briefpress/briefpress/internal/janitor"
	"github.com/briefpress/briefpress/internal/notify"
	"github.com/briefpress/briefpress/internal/publish"
	"github.com/briefpress/briefpress/internal/runner"
	"github.com/briefpress/briefpress/internal/taskstore"
	"github.com/briefpress/briefpress/web/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// dispatchHandle breaks the construction cycle between the server (which
// needs a dispatcher) and the runner (which emits events through the server).
type dispatchHandle struct {
	runner *runner.Runner
}

func (h *dispatchHandle) Dispatch(req *domain.TaskRequest) string {
	return h.runner.Dispatch(req)
}

func runServe(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Server.ExpectedSecret == "" {
		return fmt.Errorf("expected secret is not configured (set EXPECTED_SECRET)")
	}
	if cfg.Hosting.Token == "" || cfg.Hosting.Username == "" {
		return fmt.Errorf("hosting credentials are not configured (set GITHUB_TOKEN and GITHUB_USERNAME)")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Journal.DatabasePath), 0755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	store, err := taskstore.New(cfg.Journal.DatabasePath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	var providers []generate.Provider
	if cfg.Models.AnthropicAPIKey != "" {
		providers = append(providers, generate.NewAnthropicProvider(cfg.Models.AnthropicAPIKey, cfg.Models.PrimaryModel, cfg.Models.MaxTokens))
	} else {
		log.Printf("ANTHROPIC_API_KEY not set, primary provider disabled")
	}
	if cfg.Models.OpenAIAPIKey != "" {
		providers = append(providers, generate.NewOpenAIProvider(cfg.Models.OpenAIAPIKey, cfg.Models.SecondaryModel))
	} else {
		log.Printf("OPENAI_API_KEY not set, secondary provider disabled")
	}

	handle := &dispatchHandle{}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := api.NewServer(store, handle, cfg.Server.ExpectedSecret, addr)

	handle.runner = runner.New(runner.Options{
		Generator:     generate.New(providers...),
		Publisher:     publish.New(cfg.Hosting.Token, cfg.Hosting.Username),
		Notifier:      notify.NewCallbackNotifier(),
		Journal:       store,
		Events:        server,
		MaxConcurrent: cfg.Runner.MaxConcurrent,
		Timeout:       time.Duration(cfg.Runner.TimeoutMinutes) * time.Minute,
	})

	retention := time.Duration(cfg.Journal.RetentionDays) * 24 * time.Hour
	jan, err := janitor.New(store, cfg.Journal.SweepCron, retention)
	if err != nil {
		return fmt.Errorf("configure janitor: %w", err)
	}
	jan.Start()
	defer jan.Stop()

	log.Printf("briefpress listening on %s", addr)
	return server.Start()
}
