// scribe-mcp exposes the memo pipeline and knowledge base over MCP
// stdio, so an agent can process transcripts, look up contacts, and
// check pending tasks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/avogt/scribe/internal/analyze"
	"github.com/avogt/scribe/internal/config"
	"github.com/avogt/scribe/internal/embedding"
	"github.com/avogt/scribe/internal/gather"
	"github.com/avogt/scribe/internal/llm"
	"github.com/avogt/scribe/internal/pipeline"
	"github.com/avogt/scribe/internal/router"
	"github.com/avogt/scribe/internal/store"
)

type app struct {
	store    *store.Store
	pipeline *pipeline.Pipeline
	indexer  *embedding.Indexer
}

func main() {
	godotenv.Load()

	configPath := os.Getenv("SCRIBE_CONFIG")
	if configPath == "" {
		configPath = "scribe.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	model := llm.NewClient(cfg.AnthropicAPIKey, "")
	indexer := embedding.NewIndexer(st, embedding.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Model))
	a := &app{
		store:   st,
		indexer: indexer,
		pipeline: pipeline.New(st,
			gather.New(st, model, cfg.Models.Extraction, cfg.ContextBudgetChars),
			analyze.New(model, cfg.Models.Analysis, cfg.UserProfile, cfg.MaxTranscriptChars),
			router.New(st),
			indexer),
	}

	s := server.NewMCPServer(
		"scribe-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(processTool(), a.handleProcess)
	s.AddTool(searchContactsTool(), a.handleSearchContacts)
	s.AddTool(pendingTasksTool(), a.handlePendingTasks)
	s.AddTool(searchMemosTool(), a.handleSearchMemos)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func processTool() mcp.Tool {
	return mcp.NewTool("process_transcript",
		mcp.WithDescription("Run a voice memo transcript through the analysis pipeline. Creates journal entries, meetings, reflections, tasks, and contact updates in the knowledge base. Returns the manifest of created records."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Full transcript text"),
		),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Source identifier, e.g. the original filename. Reprocessing the same source is a no-op."),
		),
		mcp.WithString("recording_date",
			mcp.Description("Recording date (YYYY-MM-DD). Defaults to today."),
		),
		mcp.WithString("user_notes",
			mcp.Description("Instructions from the speaker about how to file this memo"),
		),
		mcp.WithString("person_name",
			mcp.Description("Pre-confirmed conversation partner; the analyzer trusts this over names it infers"),
		),
	)
}

func (a *app) handleProcess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	text, _ := args["text"].(string)
	source, _ := args["source"].(string)
	date, _ := args["recording_date"].(string)
	notes, _ := args["user_notes"].(string)
	personName, _ := args["person_name"].(string)

	if text == "" || source == "" {
		return mcp.NewToolResultError("text and source are required"), nil
	}

	var person *analyze.PersonContext
	if personName != "" {
		person = &analyze.PersonContext{Name: personName}
		if match, err := a.store.FindContactByName(personName); err == nil && match.Contact != nil {
			person.ContactID = match.Contact.ID
			person.Email = match.Contact.Email
		}
	}

	manifest, err := a.pipeline.ProcessText(ctx, source, text, pipeline.Options{
		RecordingDate: date,
		UserNotes:     notes,
		PersonContext: person,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}
	return jsonResult(manifest)
}

func searchContactsTool() mcp.Tool {
	return mcp.NewTool("search_contacts",
		mcp.WithDescription("Search CRM contacts by name, company, or email."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text"),
		),
	)
}

func (a *app) handleSearchContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	contacts, err := a.store.SearchContacts(query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	type hit struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Company  string `json:"company,omitempty"`
		JobTitle string `json:"job_title,omitempty"`
		Email    string `json:"email,omitempty"`
	}
	hits := make([]hit, 0, len(contacts))
	for _, c := range contacts {
		hits = append(hits, hit{ID: c.ID, Name: c.FullName(), Company: c.Company, JobTitle: c.JobTitle, Email: c.Email})
	}
	return jsonResult(hits)
}

func pendingTasksTool() mcp.Tool {
	return mcp.NewTool("pending_tasks",
		mcp.WithDescription("List open tasks, soonest due first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of tasks to return. Default: 25"),
		),
	)
}

func (a *app) handlePendingTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	limit := 25
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	tasks, err := a.store.OpenTasks(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return jsonResult(tasks)
}

func searchMemosTool() mcp.Tool {
	return mcp.NewTool("search_memos",
		mcp.WithDescription("Semantic search over indexed journal entries, meetings, and reflections."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to look for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of hits. Default: 10"),
		),
	)
}

func (a *app) handleSearchMemos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	limit := 10
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	results, err := a.indexer.Search(query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(results)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
