// Package format renders operation results as BBG-Lite text: terse
// terminal-style output with rule lines and navigation hints. Shared by the
// CLI and the MCP tool surface so both present filings the same way.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bxxd/mcp-edgar-ux/internal/service"
	"github.com/bxxd/mcp-edgar-ux/pkg/models"
)

const rule = "──────────────────────────────────────────────────────────────────────"

const notCached = "(not cached - will download on demand)"

// FetchFiling renders a fetch result with an optional content preview.
func FetchFiling(content *models.FilingContent, preview []string) string {
	var b strings.Builder

	state := "(downloaded)"
	if content.Cached {
		state = "(cached)"
	}
	fmt.Fprintf(&b, "%s %s | %s | FETCHED %s\n\n",
		content.Filing.Ticker, content.Filing.FormType, content.Filing.FilingDate, state)

	company := content.Filing.CompanyName
	if company == "" {
		company = "N/A"
	}
	fmt.Fprintf(&b, "COMPANY:     %s\n", company)
	fmt.Fprintf(&b, "FORM:        %s\n", content.Filing.FormType)
	fmt.Fprintf(&b, "FILED:       %s\n", content.Filing.FilingDate)
	fmt.Fprintf(&b, "FORMAT:      %s\n", content.Format)
	fmt.Fprintf(&b, "SIZE:        %s (%s lines)\n\n", sizeKB(content.SizeBytes), thousands(content.TotalLines))
	fmt.Fprintf(&b, "PATH: %s\n", content.Path)

	if len(preview) > 0 {
		fmt.Fprintf(&b, "\nPREVIEW\n%s\n", rule)
		for _, line := range preview {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	fmt.Fprintf(&b, "\nTry: Read(path, offset=0, limit=50) | search_filing(%q, %q, \"SEARCH TERM\")",
		content.Filing.Ticker, content.Filing.FormType)
	return b.String()
}

// SearchFiling renders a search result. The offset is the pagination offset
// the caller requested, used to describe which slice of the matches the
// output shows.
func SearchFiling(result *models.SearchResult, offset int) string {
	header := fmt.Sprintf("%s %s | %s | SEARCH %q",
		result.Filing.Ticker, result.Filing.FormType, result.Filing.FilingDate, result.Pattern)

	if result.TotalMatches == 0 {
		return fmt.Sprintf("%s\n\nNO MATCHES FOUND\n\nPATH: %s\nTry: Different search term | Read(path) for full filing",
			header, result.FilePath)
	}

	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "\nFILE: %s\n\n", result.FilePath)

	returned := len(result.Matches)
	rangeStr := ""
	if result.TotalMatches > returned {
		if offset == 0 {
			rangeStr = fmt.Sprintf(" (showing first %d)", returned)
		} else {
			rangeStr = fmt.Sprintf(" (showing %d-%d)", offset+1, offset+returned)
		}
	}
	fmt.Fprintf(&b, "MATCHES (%d found%s)\n%s\n", result.TotalMatches, rangeStr, rule)

	for i, m := range result.Matches {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, ctx := range m.ContextBefore {
			fmt.Fprintf(&b, "  %4d: %s\n", m.LineNumber-len(m.ContextBefore)+j, ctx)
		}
		fmt.Fprintf(&b, "  %4d: %s\n", m.LineNumber, m.Line)
		for j, ctx := range m.ContextAfter {
			fmt.Fprintf(&b, "  %4d: %s\n", m.LineNumber+j+1, ctx)
		}
	}

	fmt.Fprintf(&b, "\nPATH: %s\n", result.FilePath)
	if result.TotalMatches > returned {
		fmt.Fprintf(&b, "More: search_filing(..., offset=%d) | Read(path, offset=LINE, limit=50)", offset+returned)
	} else {
		b.WriteString(`Try: Read(path, offset=LINE, limit=50) | search_filing(..., pattern="OTHER")`)
	}
	return b.String()
}

// ListFilings renders an available-filings page. Single-ticker listings get
// a date/location table; mixed listings add ticker and company columns.
func ListFilings(result *service.ListResult) string {
	var b strings.Builder

	if len(result.Filings) == 0 {
		fmt.Fprintf(&b, "FILINGS AVAILABLE\n%s\n\nNo filings found\n", rule)
		return b.String()
	}

	tickers := make(map[string]bool)
	cachedCount := 0
	for _, f := range result.Filings {
		tickers[f.Ticker] = true
		if f.Cached {
			cachedCount++
		}
	}

	if len(tickers) > 1 {
		fmt.Fprintf(&b, "FILINGS AVAILABLE (RECENT FILINGS)\n%s\n", rule)
		fmt.Fprintf(&b, "%-10s  %-30s  %-6s  %-10s  LOCATION\n%s\n", "TICKER", "COMPANY", "FORM", "FILED", rule)
		for _, f := range result.Filings {
			fmt.Fprintf(&b, "%-10s  %-30s  %-6s  %-10s  %s\n",
				clip(f.Ticker, 10), clip(orNA(f.CompanyName), 30), clip(f.FormType, 6), f.FilingDate, location(f))
		}
	} else {
		first := result.Filings[0]
		if first.CompanyName != "" {
			fmt.Fprintf(&b, "%s (%s) FILINGS AVAILABLE\n", first.Ticker, first.CompanyName)
		} else {
			fmt.Fprintf(&b, "%s FILINGS AVAILABLE\n", first.Ticker)
		}
		fmt.Fprintf(&b, "%s\n%-6s  %-10s  LOCATION (if cached)\n%s\n", rule, "FORM", "FILED", rule)
		for _, f := range result.Filings {
			fmt.Fprintf(&b, "%-6s  %-10s  %s\n", clip(f.FormType, 6), f.FilingDate, location(f))
		}
	}

	fmt.Fprintf(&b, "\nShowing %d-%d of %d filings (%d cached)\n",
		result.Start+1, result.Start+len(result.Filings), result.Total, cachedCount)
	b.WriteString("\nTry: fetch_filing(ticker, form, date) | search_filing(ticker, form, pattern)\n")
	b.WriteString("     Read(path) to read cached filing directly")
	return b.String()
}

// ListCached renders the local cache inventory.
func ListCached(result *service.CachedResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CACHED SEC FILINGS\n%s\n", rule)
	fmt.Fprintf(&b, "%d filings cached (%s total)\n", len(result.Filings), sizeKB(result.TotalSizeBytes))

	if len(result.Filings) == 0 {
		b.WriteString("\nNo filings cached yet")
		return b.String()
	}

	fmt.Fprintf(&b, "\n%-8s  %-8s  %-10s  %-8s  %s\n%s\n", "TICKER", "FORM", "FILED", "FORMAT", "SIZE", rule)
	for _, f := range result.Filings {
		fmt.Fprintf(&b, "%-8s  %-8s  %-10s  %-8s  %s bytes\n",
			clip(f.Ticker, 8), clip(f.FormType, 8), f.FilingDate, f.Format.Ext(), thousands(int(f.SizeBytes)))
	}
	fmt.Fprintf(&b, "\n%s\nCache directory: %s", rule, result.CacheDir)
	return b.String()
}

// Statements renders financial statement summaries as aligned tables, one
// block per statement, periods newest first.
func Statements(fs *models.FinancialStatements) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) | FINANCIAL STATEMENTS | CIK %s\n", fs.Ticker, fs.CompanyName, fs.CIK)

	titles := map[models.StatementType]string{
		models.StatementIncome:   "INCOME STATEMENT",
		models.StatementBalance:  "BALANCE SHEET",
		models.StatementCashFlow: "CASH FLOW STATEMENT",
	}

	// Stable statement order.
	order := []models.StatementType{models.StatementIncome, models.StatementBalance, models.StatementCashFlow}
	for _, stype := range order {
		stmt, ok := fs.Statements[stype]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s (ANNUAL, USD)\n%s\n", titles[stype], rule)
		fmt.Fprintf(&b, "%-24s", "")
		for _, p := range stmt.Periods {
			fmt.Fprintf(&b, "  %14s", p)
		}
		b.WriteByte('\n')
		for _, line := range stmt.Lines {
			fmt.Fprintf(&b, "%-24s", clip(line.Label, 24))
			for _, p := range stmt.Periods {
				v, ok := line.Values[p]
				if !ok {
					fmt.Fprintf(&b, "  %14s", "-")
					continue
				}
				fmt.Fprintf(&b, "  %14s", money(v))
			}
			b.WriteByte('\n')
		}
	}

	b.WriteString("\nValues in millions except per-share amounts")
	return b.String()
}

func location(f models.AvailableFiling) string {
	if !f.Cached {
		return notCached
	}
	// Prefer the text rendition, then markdown, then whatever exists.
	for _, format := range []models.Format{models.FormatText, models.FormatMarkdown, models.FormatHTML} {
		if p, ok := f.Paths[format]; ok {
			return p
		}
	}
	paths := make([]string, 0, len(f.Paths))
	for _, p := range f.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if len(paths) > 0 {
		return paths[0]
	}
	return notCached
}

// money renders a USD value scaled to millions, keeping small per-share
// numbers intact.
func money(v float64) string {
	if v > -1000 && v < 1000 {
		return fmt.Sprintf("%.2f", v)
	}
	millions := v / 1e6
	return thousands(int(millions))
}

func sizeKB(bytes int64) string {
	if bytes >= 1<<20 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	}
	return fmt.Sprintf("%d KB", bytes/1024)
}

// thousands formats an integer with comma separators.
func thousands(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + strings.Join(parts, ",")
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
