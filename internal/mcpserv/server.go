package mcpserv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/reviewarena/arena/internal/config"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/store"
)

// Server exposes arena results as read-only MCP tools so an agent can
// query verdicts and reports without parsing the results tree itself.
type Server struct {
	cfg      *config.Config
	manifest *models.Manifest
	paths    store.Paths
	history  *store.History // nil when the run ledger is disabled
}

// NewServer creates the MCP server wrapper. history may be nil.
func NewServer(cfg *config.Config, manifest *models.Manifest, paths store.Paths, history *store.History) *Server {
	return &Server{
		cfg:      cfg,
		manifest: manifest,
		paths:    paths,
		history:  history,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("arena", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listPRsTool())
	srv.AddTool(s.listModelsTool())
	srv.AddTool(s.verdictsTool())
	srv.AddTool(s.hardSummaryTool())
	srv.AddTool(s.softSummaryTool())
	srv.AddTool(s.biasTool())
	srv.AddTool(s.listRunsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// arena_list_prs
func (s *Server) listPRsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("arena_list_prs",
		mcp.WithDescription("List the PRs under evaluation. Returns a JSON array with id, url, title, category (hard/soft), difficulty, and known bug IDs."),
		mcp.WithString("category", mcp.Description("Filter by category: hard or soft")),
	)
	return tool, s.handleListPRs
}

func (s *Server) handleListPRs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := request.GetString("category", "")

	type prOut struct {
		ID         string   `json:"id"`
		URL        string   `json:"url"`
		Title      string   `json:"title"`
		Category   string   `json:"category"`
		Difficulty string   `json:"difficulty"`
		KnownBugs  []string `json:"known_bugs,omitempty"`
	}

	var out []prOut
	for _, p := range s.manifest.PRs {
		if category != "" && string(p.Category) != category {
			continue
		}
		bugs := make([]string, len(p.KnownBugs))
		for i, b := range p.KnownBugs {
			bugs[i] = b.ID
		}
		out = append(out, prOut{
			ID:         p.ID,
			URL:        p.URL,
			Title:      p.Title,
			Category:   string(p.Category),
			Difficulty: p.Difficulty,
			KnownBugs:  bugs,
		})
	}

	return marshalResult(out)
}

// arena_list_models
func (s *Server) listModelsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("arena_list_models",
		mcp.WithDescription("List the configured reviewer models. Returns a JSON array with id, provider, and kind (cli/arg/stream/api)."),
	)
	return tool, s.handleListModels
}

func (s *Server) handleListModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type modelOut struct {
		ID       string `json:"id"`
		Provider string `json:"provider"`
		Kind     string `json:"kind"`
	}

	out := make([]modelOut, len(s.cfg.Models))
	for i, m := range s.cfg.Models {
		out[i] = modelOut{ID: m.ID, Provider: m.Provider, Kind: string(m.Kind)}
	}
	return marshalResult(out)
}

// arena_verdicts
func (s *Server) verdictsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("arena_verdicts",
		mcp.WithDescription("Get hard-scoring verdicts keyed by mode/pr/bug/subject. Each verdict has found, yes_votes, and total_votes. Requires the judge phase to have run."),
		mcp.WithString("pr", mcp.Description("Filter by PR ID")),
	)
	return tool, s.handleVerdicts
}

func (s *Server) handleVerdicts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prFilter := request.GetString("pr", "")

	var verdicts map[string]models.Verdict
	if err := store.LoadJSON(s.paths.Verdicts(), &verdicts); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError("no verdicts yet: run the judge phase first"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load verdicts: %v", err)), nil
	}

	if prFilter != "" {
		filtered := map[string]models.Verdict{}
		for key, v := range verdicts {
			parts := strings.Split(key, "/")
			if len(parts) >= 2 && parts[1] == prFilter {
				filtered[key] = v
			}
		}
		verdicts = filtered
	}

	return marshalResult(verdicts)
}

// arena_hard_summary
func (s *Server) hardSummaryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("arena_hard_summary",
		mcp.WithDescription("Get the hard-scoring rollup: bug detection rates per mode and model, split by difficulty. Requires the report phase to have run."),
	)
	return tool, s.reportFileHandler("hard_summary.json")
}

// arena_soft_summary
func (s *Server) softSummaryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("arena_soft_summary",
		mcp.WithDescription("Get the soft-scoring rollup: per-model quality ratings averaged across dimensions. Requires the report phase to have run."),
	)
	return tool, s.reportFileHandler("soft_summary.json")
}

// arena_bias
func (s *Server) biasTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("arena_bias",
		mcp.WithDescription("Get the judge self-bias analysis: per-judge self vs other average scores and their difference. Requires the report phase to have run."),
	)
	return tool, s.reportFileHandler("judge_bias.json")
}

// reportFileHandler serves a JSON artifact from the reports directory.
func (s *Server) reportFileHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := filepath.Join(s.paths.Reports(), name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return mcp.NewToolResultError(fmt.Sprintf("%s not found: run the report phase first", name)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", name, err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// arena_list_runs
func (s *Server) listRunsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("arena_list_runs",
		mcp.WithDescription("List recent pipeline runs from the run ledger: phase, task counts, start and finish times."),
	)
	return tool, s.handleListRuns
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultError("run ledger is disabled"), nil
	}
	runs, err := s.history.ListRuns(ctx, 50)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	return marshalResult(runs)
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
