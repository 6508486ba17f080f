package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/avogt/scribe/internal/analyze"
	"github.com/avogt/scribe/internal/config"
	"github.com/avogt/scribe/internal/embedding"
	"github.com/avogt/scribe/internal/gather"
	"github.com/avogt/scribe/internal/inbox"
	"github.com/avogt/scribe/internal/llm"
	"github.com/avogt/scribe/internal/notify"
	"github.com/avogt/scribe/internal/pipeline"
	"github.com/avogt/scribe/internal/router"
	"github.com/avogt/scribe/internal/store"
)

func main() {
	configPath := flag.String("config", "scribe.yaml", "path to config file")
	flag.Parse()

	log.Println("scribed - voice memo pipeline daemon")

	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using environment variables")
	} else {
		log.Println("[config] Loaded .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable required")
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	model := llm.NewClient(cfg.AnthropicAPIKey, "")
	g := gather.New(s, model, cfg.Models.Extraction, cfg.ContextBudgetChars)
	a := analyze.New(model, cfg.Models.Analysis, cfg.UserProfile, cfg.MaxTranscriptChars)

	var hooks []pipeline.Hook
	hooks = append(hooks, embedding.NewIndexer(s, embedding.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Model)))

	if cfg.DiscordToken != "" && cfg.Discord.ChannelID != "" {
		notifier, err := notify.NewDiscordNotifier(cfg.DiscordToken, cfg.Discord.ChannelID)
		if err != nil {
			log.Printf("[main] Discord notifier unavailable: %v", err)
		} else {
			defer notifier.Close()
			hooks = append(hooks, notifier)
		}
	}

	p := pipeline.New(s, g, a, router.New(s), hooks...)

	watcher := inbox.NewWatcher(cfg.InboxDir, func(ctx context.Context, sourceFile, text string, opts pipeline.Options) error {
		_, err := p.ProcessText(ctx, sourceFile, text, opts)
		return err
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("[main] Shutting down")
		cancel()
	}()

	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Watcher failed: %v", err)
	}
}
