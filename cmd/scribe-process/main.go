package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/avogt/scribe/internal/analyze"
	"github.com/avogt/scribe/internal/config"
	"github.com/avogt/scribe/internal/gather"
	"github.com/avogt/scribe/internal/llm"
	"github.com/avogt/scribe/internal/pipeline"
	"github.com/avogt/scribe/internal/router"
	"github.com/avogt/scribe/internal/store"
)

// scribe-process runs one transcript file through the pipeline and
// prints the manifest as JSON. Useful for scripting and for
// reprocessing old memos without the daemon.
func main() {
	configPath := flag.String("config", "scribe.yaml", "path to config file")
	recordingDate := flag.String("date", "", "recording date (YYYY-MM-DD), defaults to file mtime")
	userNotes := flag.String("notes", "", "speaker instructions for the analyzer")
	transcriptID := flag.String("id", "", "re-run a stored transcript by ID instead of reading a file")
	flag.Parse()

	if *transcriptID == "" && flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scribe-process [flags] <transcript-file>")
		os.Exit(2)
	}

	godotenv.Load()

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
	p := pipeline.New(s,
		gather.New(s, model, cfg.Models.Extraction, cfg.ContextBudgetChars),
		analyze.New(model, cfg.Models.Analysis, cfg.UserProfile, cfg.MaxTranscriptChars),
		router.New(s))

	var manifest *router.Manifest
	if *transcriptID != "" {
		tr, err := s.GetTranscript(*transcriptID)
		if err != nil {
			log.Fatalf("Failed to load transcript: %v", err)
		}
		if tr == nil {
			log.Fatalf("No transcript with ID %s", *transcriptID)
		}
		manifest, err = p.ProcessTranscript(context.Background(), tr, *userNotes, nil)
		if err != nil {
			log.Fatalf("Processing failed: %v", err)
		}
	} else {
		path := flag.Arg(0)
		text, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read transcript: %v", err)
		}

		date := *recordingDate
		if date == "" {
			if info, err := os.Stat(path); err == nil {
				date = info.ModTime().UTC().Format("2006-01-02")
			}
		}

		manifest, err = p.ProcessText(context.Background(), filepath.Base(path), string(text), pipeline.Options{
			RecordingDate: date,
			UserNotes:     *userNotes,
		})
		if err != nil {
			log.Fatalf("Processing failed: %v", err)
		}
	}

	out, _ := json.MarshalIndent(manifest, "", "  ")
	fmt.Println(string(out))
}
