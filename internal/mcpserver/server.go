// Package mcpserver exposes the filing operations as MCP tools, so
// LLM agents can fetch, grep, and list SEC filings over stdio or
// streamable HTTP.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bxxd/mcp-edgar-ux/internal/format"
	"github.com/bxxd/mcp-edgar-ux/internal/service"
)

// previewLines is how many leading lines of a freshly fetched filing the
// fetch_filing tool shows inline.
const previewLines = 20

// Server wires the filing service into an MCP tool surface.
type Server struct {
	mcpServer *server.MCPServer
	svc       *service.Service
}

// New creates the MCP server and registers the filing tools.
func New(svc *service.Service, version string) *Server {
	s := server.NewMCPServer(
		"edgar-ux",
		version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{mcpServer: s, svc: svc}
	srv.registerTools()
	return srv
}

func (s *Server) registerTools() {
	fetchTool := mcp.NewTool("fetch_filing",
		mcp.WithDescription("Fetch an SEC filing for a ticker and cache it locally as a plain file. Returns the cache path plus a short preview; use Read(path) or search_filing for the content. Repeated calls are served from the cache."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker symbol, e.g. TSLA"),
		),
		mcp.WithString("form_type",
			mcp.Description("SEC form type (10-K, 10-Q, 8-K, S-1, DEF 14A, ...). Default: 10-K"),
		),
		mcp.WithString("date",
			mcp.Description("Earliest acceptable filing date (YYYY-MM-DD). Picks the first filing on or after this date; omit for the most recent filing."),
		),
		mcp.WithString("format",
			mcp.Description("Rendering format: text (default), markdown, or html"),
		),
		mcp.WithBoolean("force_refetch",
			mcp.Description("Re-download even when a cached copy exists"),
		),
		mcp.WithBoolean("include_exhibits",
			mcp.Description("Append exhibit documents (markdown format only)"),
		),
	)

	searchTool := mcp.NewTool("search_filing",
		mcp.WithDescription("Grep a cached SEC filing with an extended regex. Fetches the filing first when it is not cached yet. Returns matching lines with line numbers and context."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker symbol, e.g. TSLA"),
		),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Extended regular expression, case-insensitive by default"),
		),
		mcp.WithString("form_type",
			mcp.Description("SEC form type. Default: 10-K"),
		),
		mcp.WithString("date",
			mcp.Description("Earliest acceptable filing date (YYYY-MM-DD)"),
		),
		mcp.WithString("format",
			mcp.Description("Rendering format of the searched file: text (default), markdown, or html"),
		),
		mcp.WithNumber("context_lines",
			mcp.Description("Lines of context around each match (default: 2)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum matches to return (default: 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Skip this many matches before returning results"),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Match case exactly"),
		),
		mcp.WithBoolean("whole_word",
			mcp.Description("Match whole words only"),
		),
		mcp.WithNumber("edit_distance",
			mcp.Description("Fuzzy matching tolerance in edits (0-3); treats the pattern as a literal"),
		),
	)

	listTool := mcp.NewTool("list_filings",
		mcp.WithDescription("List SEC filings available upstream, marking which are already cached locally. With a ticker, lists that company's filing history; without one, lists recent filings across all companies."),
		mcp.WithString("ticker",
			mcp.Description("Stock ticker symbol; omit for recent filings across all companies"),
		),
		mcp.WithString("form_type",
			mcp.Description("SEC form type, CORE (default: common forms), or ALL"),
		),
		mcp.WithNumber("start",
			mcp.Description("Pagination offset into the listing"),
		),
		mcp.WithNumber("max",
			mcp.Description("Maximum filings to return (default: 15)"),
		),
	)

	cachedTool := mcp.NewTool("list_cached",
		mcp.WithDescription("List locally cached SEC filings with their file paths and sizes. No network traffic."),
		mcp.WithString("ticker",
			mcp.Description("Narrow to one ticker"),
		),
		mcp.WithString("form_type",
			mcp.Description("Narrow to one form type"),
		),
	)

	statementsTool := mcp.NewTool("financial_statements",
		mcp.WithDescription("Summarize a company's annual financial statements from SEC XBRL data: income statement, balance sheet, and cash flow, several fiscal years side by side."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker symbol, e.g. TSLA"),
		),
		mcp.WithString("statement_type",
			mcp.Description("all (default), income, balance, or cash_flow"),
		),
	)

	s.mcpServer.AddTool(fetchTool, s.handleFetchFiling)
	s.mcpServer.AddTool(searchTool, s.handleSearchFiling)
	s.mcpServer.AddTool(listTool, s.handleListFilings)
	s.mcpServer.AddTool(cachedTool, s.handleListCached)
	s.mcpServer.AddTool(statementsTool, s.handleStatements)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// RunHTTP starts the MCP server on a streamable HTTP endpoint.
func (s *Server) RunHTTP(addr string) error {
	return server.NewStreamableHTTPServer(s.mcpServer).Start(addr)
}

func (s *Server) handleFetchFiling(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticker := request.GetString("ticker", "")
	if ticker == "" {
		return mcp.NewToolResultError("ticker parameter is required"), nil
	}

	content, err := s.svc.FetchFiling(ctx, service.FetchRequest{
		Ticker:          ticker,
		FormType:        request.GetString("form_type", ""),
		Date:            request.GetString("date", ""),
		Format:          request.GetString("format", ""),
		Force:           request.GetBool("force_refetch", false),
		IncludeExhibits: request.GetBool("include_exhibits", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch_filing failed: %v", err)), nil
	}

	preview, _, err := s.svc.Preview(content.Path, previewLines)
	if err != nil {
		preview = nil
	}
	return mcp.NewToolResultText(format.FetchFiling(content, preview)), nil
}

func (s *Server) handleSearchFiling(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticker := request.GetString("ticker", "")
	if ticker == "" {
		return mcp.NewToolResultError("ticker parameter is required"), nil
	}
	pattern := request.GetString("pattern", "")
	if pattern == "" {
		return mcp.NewToolResultError("pattern parameter is required"), nil
	}

	offset := request.GetInt("offset", 0)
	result, err := s.svc.SearchFiling(ctx, service.SearchRequest{
		FetchRequest: service.FetchRequest{
			Ticker:   ticker,
			FormType: request.GetString("form_type", ""),
			Date:     request.GetString("date", ""),
			Format:   request.GetString("format", ""),
		},
		Pattern:       pattern,
		ContextLines:  request.GetInt("context_lines", 2),
		MaxResults:    request.GetInt("max_results", 20),
		Offset:        offset,
		CaseSensitive: request.GetBool("case_sensitive", false),
		WholeWord:     request.GetBool("whole_word", false),
		EditDistance:  request.GetInt("edit_distance", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search_filing failed: %v", err)), nil
	}
	return mcp.NewToolResultText(format.SearchFiling(result, offset)), nil
}

func (s *Server) handleListFilings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.svc.ListFilings(ctx, service.ListRequest{
		Ticker:   request.GetString("ticker", ""),
		FormType: request.GetString("form_type", ""),
		Start:    request.GetInt("start", 0),
		Max:      request.GetInt("max", 15),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list_filings failed: %v", err)), nil
	}
	return mcp.NewToolResultText(format.ListFilings(result)), nil
}

func (s *Server) handleListCached(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.svc.ListCached(
		request.GetString("ticker", ""),
		request.GetString("form_type", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list_cached failed: %v", err)), nil
	}
	return mcp.NewToolResultText(format.ListCached(result)), nil
}

func (s *Server) handleStatements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticker := request.GetString("ticker", "")
	if ticker == "" {
		return mcp.NewToolResultError("ticker parameter is required"), nil
	}

	result, err := s.svc.Statements(ctx, ticker, request.GetString("statement_type", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("financial_statements failed: %v", err)), nil
	}
	return mcp.NewToolResultText(format.Statements(result)), nil
}
