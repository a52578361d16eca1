// edgar-ux: SEC filing fetch, cache, and search for LLM agents
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/bxxd/mcp-edgar-ux/internal/cache"
	"github.com/bxxd/mcp-edgar-ux/internal/config"
	"github.com/bxxd/mcp-edgar-ux/internal/edgar"
	"github.com/bxxd/mcp-edgar-ux/internal/format"
	"github.com/bxxd/mcp-edgar-ux/internal/mcpserver"
	"github.com/bxxd/mcp-edgar-ux/internal/search"
	"github.com/bxxd/mcp-edgar-ux/internal/service"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "edgarux",
	Short: "edgar-ux: SEC filing fetch, cache, and search for LLM agents",
	Long: `edgar-ux fetches SEC EDGAR filings, caches them as plain files in a
stable directory layout, and greps them with extended regular expressions.
The same operations are available as a CLI and as an MCP tool server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cacheDir, _ := cmd.Flags().GetString("cache-dir"); cacheDir != "" {
			cfg.Cache.Dir = cacheDir
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("cache-dir", "", "filing cache directory override")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cachedCmd)
	rootCmd.AddCommand(statementsCmd)
	rootCmd.AddCommand(serveCmd)
}

// buildService wires the fetcher, store, and searcher from the loaded config.
func buildService() *service.Service {
	fetcher := edgar.New(edgar.Config{
		UserAgent:        cfg.SEC.UserAgent,
		RequestTimeout:   cfg.SEC.RequestTimeout(),
		RateLimitPerSec:  cfg.SEC.RateLimitPerSec,
		FreshWindow:      cfg.SEC.FreshWindow(),
		StaleWindow:      cfg.SEC.StaleWindow(),
		FanoutWorkers:    cfg.SEC.FanoutWorkers,
		FanoutTimeout:    cfg.SEC.FanoutTimeout(),
		RecentPageSize:   cfg.SEC.RecentPageSize,
		IncludeOwnership: cfg.SEC.IncludeOwnership,
	})
	return service.New(fetcher, cache.New(cfg.Cache.Dir), search.New(cfg.Search.Timeout()))
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edgar-ux %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch [ticker]",
	Short: "Fetch a filing and cache it locally",
	Long:  "Fetch the most recent filing of a form type for a ticker, render it, and store it in the cache. Served from the cache when already present.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := buildService()

		form, _ := cmd.Flags().GetString("form")
		dateArg, _ := cmd.Flags().GetString("date")
		formatArg, _ := cmd.Flags().GetString("format")
		force, _ := cmd.Flags().GetBool("force")
		exhibits, _ := cmd.Flags().GetBool("exhibits")
		preview, _ := cmd.Flags().GetInt("preview")

		content, err := svc.FetchFiling(cmd.Context(), service.FetchRequest{
			Ticker:          args[0],
			FormType:        form,
			Date:            dateArg,
			Format:          formatArg,
			Force:           force,
			IncludeExhibits: exhibits,
		})
		if err != nil {
			return err
		}

		var previewLines []string
		if preview > 0 {
			previewLines, _, _ = svc.Preview(content.Path, preview)
		}
		fmt.Println(format.FetchFiling(content, previewLines))
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("form", "", "SEC form type (default: 10-K)")
	fetchCmd.Flags().String("date", "", "earliest acceptable filing date (YYYY-MM-DD)")
	fetchCmd.Flags().String("format", "", "rendering format: text, markdown, html")
	fetchCmd.Flags().Bool("force", false, "re-download even when cached")
	fetchCmd.Flags().Bool("exhibits", false, "append exhibit documents (markdown only)")
	fetchCmd.Flags().Int("preview", 0, "show the first N lines of the filing")
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search [ticker] [pattern]",
	Short: "Grep a filing with an extended regex",
	Long:  "Search within a cached filing, fetching it first when necessary. Case-insensitive by default.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := buildService()

		form, _ := cmd.Flags().GetString("form")
		dateArg, _ := cmd.Flags().GetString("date")
		formatArg, _ := cmd.Flags().GetString("format")
		contextLines, _ := cmd.Flags().GetInt("context")
		maxResults, _ := cmd.Flags().GetInt("max")
		offset, _ := cmd.Flags().GetInt("offset")
		caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")
		wholeWord, _ := cmd.Flags().GetBool("word")
		fuzzy, _ := cmd.Flags().GetInt("fuzzy")

		result, err := svc.SearchFiling(cmd.Context(), service.SearchRequest{
			FetchRequest: service.FetchRequest{
				Ticker:   args[0],
				FormType: form,
				Date:     dateArg,
				Format:   formatArg,
			},
			Pattern:       args[1],
			ContextLines:  contextLines,
			MaxResults:    maxResults,
			Offset:        offset,
			CaseSensitive: caseSensitive,
			WholeWord:     wholeWord,
			EditDistance:  fuzzy,
		})
		if err != nil {
			return err
		}
		fmt.Println(format.SearchFiling(result, offset))
		return nil
	},
}

func init() {
	searchCmd.Flags().String("form", "", "SEC form type (default: 10-K)")
	searchCmd.Flags().String("date", "", "earliest acceptable filing date (YYYY-MM-DD)")
	searchCmd.Flags().String("format", "", "rendering format of the searched file")
	searchCmd.Flags().Int("context", 2, "lines of context around each match")
	searchCmd.Flags().Int("max", 20, "maximum matches to return")
	searchCmd.Flags().Int("offset", 0, "skip this many matches")
	searchCmd.Flags().Bool("case-sensitive", false, "match case exactly")
	searchCmd.Flags().Bool("word", false, "match whole words only")
	searchCmd.Flags().Int("fuzzy", 0, "fuzzy matching tolerance in edits (0-3)")
}

// --- List Command ---

var listCmd = &cobra.Command{
	Use:   "list [ticker]",
	Short: "List filings available upstream",
	Long:  "List filings available on EDGAR, marking cached ones. Without a ticker, lists recent filings across all companies.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := buildService()

		ticker := ""
		if len(args) > 0 {
			ticker = args[0]
		}
		form, _ := cmd.Flags().GetString("form")
		start, _ := cmd.Flags().GetInt("start")
		max, _ := cmd.Flags().GetInt("max")

		result, err := svc.ListFilings(cmd.Context(), service.ListRequest{
			Ticker:   ticker,
			FormType: form,
			Start:    start,
			Max:      max,
		})
		if err != nil {
			return err
		}
		fmt.Println(format.ListFilings(result))
		return nil
	},
}

func init() {
	listCmd.Flags().String("form", "", "SEC form type, CORE (default), or ALL")
	listCmd.Flags().Int("start", 0, "pagination offset")
	listCmd.Flags().Int("max", 15, "maximum filings to show")
}

// --- Cached Command ---

var cachedCmd = &cobra.Command{
	Use:   "cached",
	Short: "List locally cached filings",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := buildService()

		ticker, _ := cmd.Flags().GetString("ticker")
		form, _ := cmd.Flags().GetString("form")

		result, err := svc.ListCached(ticker, form)
		if err != nil {
			return err
		}
		fmt.Println(format.ListCached(result))
		return nil
	},
}

func init() {
	cachedCmd.Flags().String("ticker", "", "narrow to one ticker")
	cachedCmd.Flags().String("form", "", "narrow to one form type")
}

// --- Statements Command ---

var statementsCmd = &cobra.Command{
	Use:   "statements [ticker]",
	Short: "Summarize annual financial statements from XBRL data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := buildService()

		stype, _ := cmd.Flags().GetString("type")
		result, err := svc.Statements(cmd.Context(), args[0], stype)
		if err != nil {
			return err
		}
		fmt.Println(format.Statements(result))
		return nil
	},
}

func init() {
	statementsCmd.Flags().String("type", "", "all (default), income, balance, or cash_flow")
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server",
	Long:  "Expose fetch_filing, search_filing, list_filings, list_cached, and financial_statements as MCP tools, over stdio or streamable HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := mcpserver.New(buildService(), version)

		transport, _ := cmd.Flags().GetString("transport")
		if transport == "" {
			transport = cfg.Server.Transport
		}
		switch transport {
		case "stdio", "":
			return srv.Run()
		case "http":
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			log.Printf("edgar-ux MCP server listening on %s", addr)
			return srv.RunHTTP(addr)
		}
		return fmt.Errorf("unknown transport %q (expected stdio or http)", transport)
	},
}

func init() {
	serveCmd.Flags().String("transport", "", "MCP transport: stdio (default) or http")
}
